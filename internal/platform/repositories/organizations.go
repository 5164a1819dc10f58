package repositories

import (
	"database/sql"
	"time"

	"shootflow/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const orgColumns = `id, name, type, personal_owner_id, created_at, updated_at`

func scanOrg(s interface{ Scan(dest ...interface{}) error }) (*models.Organization, error) {
	org := &models.Organization{}
	err := s.Scan(&org.ID, &org.Name, &org.Type, &org.PersonalOwnerID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	return r.createOrg(r.db, org)
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	return r.createOrg(tx, org)
}

func (r *OrganizationRepository) createOrg(e execer, org *models.Organization) error {
	_, err := e.Exec(`
		INSERT INTO organizations (id, name, type, personal_owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.Type, org.PersonalOwnerID, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	row := r.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE id = ?`, id)
	return scanOrg(row)
}

// GetPersonalOrg returns the user's auto-provisioned PERSONAL organization.
func (r *OrganizationRepository) GetPersonalOrg(userID string) (*models.Organization, error) {
	row := r.db.QueryRow(`SELECT `+orgColumns+` FROM organizations WHERE type = 'PERSONAL' AND personal_owner_id = ?`, userID)
	return scanOrg(row)
}

func (r *OrganizationRepository) UpdateName(id, name string) error {
	_, err := r.db.Exec(`UPDATE organizations SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().Unix(), id)
	return err
}

// ListForUser returns every organization the user is a member of.
func (r *OrganizationRepository) ListForUser(userID string) ([]*models.Organization, error) {
	rows, err := r.db.Query(`
		SELECT o.id, o.name, o.type, o.personal_owner_id, o.created_at, o.updated_at
		FROM organizations o
		JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = ?
		ORDER BY o.created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}
