package repositories

import (
	"database/sql"
	"time"

	"shootflow/internal/platform/models"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, organization_id, user_id, name, email, phone, notes, created_at, updated_at`

func scanCustomer(s interface{ Scan(dest ...interface{}) error }) (*models.OrganizationCustomer, error) {
	c := &models.OrganizationCustomer{}
	err := s.Scan(&c.ID, &c.OrganizationID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepository) Create(c *models.OrganizationCustomer) error {
	return r.create(r.db, c)
}

func (r *CustomerRepository) CreateTx(tx *sql.Tx, c *models.OrganizationCustomer) error {
	return r.create(tx, c)
}

func (r *CustomerRepository) create(e execer, c *models.OrganizationCustomer) error {
	_, err := e.Exec(`
		INSERT INTO organization_customers (id, organization_id, user_id, name, email, phone, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.OrganizationID, c.UserID, c.Name, c.Email, c.Phone, c.Notes, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CustomerRepository) GetByID(id string) (*models.OrganizationCustomer, error) {
	row := r.db.QueryRow(`SELECT `+customerColumns+` FROM organization_customers WHERE id = ?`, id)
	return scanCustomer(row)
}

func (r *CustomerRepository) GetByOrgAndUser(orgID, userID string) (*models.OrganizationCustomer, error) {
	row := r.db.QueryRow(`SELECT `+customerColumns+` FROM organization_customers WHERE organization_id = ? AND user_id = ?`, orgID, userID)
	return scanCustomer(row)
}

func (r *CustomerRepository) GetByOrgAndEmail(orgID, email string) (*models.OrganizationCustomer, error) {
	row := r.db.QueryRow(`SELECT `+customerColumns+` FROM organization_customers WHERE organization_id = ? AND email = ?`, orgID, email)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(orgID string) ([]*models.OrganizationCustomer, error) {
	rows, err := r.db.Query(`SELECT `+customerColumns+` FROM organization_customers WHERE organization_id = ? ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.OrganizationCustomer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(c *models.OrganizationCustomer) error {
	_, err := r.db.Exec(`
		UPDATE organization_customers SET name = ?, email = ?, phone = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.Notes, time.Now().Unix(), c.ID)
	return err
}

func (r *CustomerRepository) SetUserID(id string, userID *string) error {
	_, err := r.db.Exec(`UPDATE organization_customers SET user_id = ?, updated_at = ? WHERE id = ?`, userID, time.Now().Unix(), id)
	return err
}

func (r *CustomerRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM organization_customers WHERE id = ?`, id)
	return err
}
