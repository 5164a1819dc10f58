package repositories

import (
	"database/sql"

	"shootflow/internal/platform/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, phone, account_type, external_auth_id, last_login_at, created_at, updated_at`

func scanUser(s interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := s.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.AccountType,
		&user.ExternalAuthID,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Create(user *models.User) error {
	return r.create(r.db, user)
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	return r.create(tx, user)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (r *UserRepository) create(e execer, user *models.User) error {
	_, err := e.Exec(`
		INSERT INTO users (id, email, password_hash, full_name, phone, account_type, external_auth_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.AccountType, user.ExternalAuthID, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) UpdateLastLogin(userID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, timestamp, userID)
	return err
}

func (r *UserRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}
