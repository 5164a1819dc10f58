package repositories

import (
	"database/sql"

	"shootflow/internal/platform/models"
)

type MemberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const memberColumns = `id, organization_id, user_id, role, created_at`

func scanMember(s interface{ Scan(dest ...interface{}) error }) (*models.OrganizationMember, error) {
	m := &models.OrganizationMember{}
	err := s.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MemberRepository) Create(m *models.OrganizationMember) error {
	return r.create(r.db, m)
}

func (r *MemberRepository) CreateTx(tx *sql.Tx, m *models.OrganizationMember) error {
	return r.create(tx, m)
}

func (r *MemberRepository) create(e execer, m *models.OrganizationMember) error {
	_, err := e.Exec(`
		INSERT INTO organization_members (id, organization_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.OrganizationID, m.UserID, m.Role, m.CreatedAt)
	return err
}

func (r *MemberRepository) Get(orgID, userID string) (*models.OrganizationMember, error) {
	row := r.db.QueryRow(`SELECT `+memberColumns+` FROM organization_members WHERE organization_id = ? AND user_id = ?`, orgID, userID)
	return scanMember(row)
}

func (r *MemberRepository) GetByID(id string) (*models.OrganizationMember, error) {
	row := r.db.QueryRow(`SELECT `+memberColumns+` FROM organization_members WHERE id = ?`, id)
	return scanMember(row)
}

func (r *MemberRepository) List(orgID string) ([]*models.OrganizationMember, error) {
	rows, err := r.db.Query(`
		SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at,
		       u.id, u.email, u.password_hash, u.full_name, u.phone, u.account_type, u.external_auth_id, u.last_login_at, u.created_at, u.updated_at
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = ?
		ORDER BY m.created_at ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.OrganizationMember
	for rows.Next() {
		m := &models.OrganizationMember{User: &models.User{}}
		u := m.User
		err := rows.Scan(
			&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt,
			&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.AccountType, &u.ExternalAuthID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepository) UpdateRoleTx(tx *sql.Tx, id string, role models.OrgRole) error {
	_, err := tx.Exec(`UPDATE organization_members SET role = ? WHERE id = ?`, role, id)
	return err
}

func (r *MemberRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM organization_members WHERE id = ?`, id)
	return err
}
