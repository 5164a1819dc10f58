// Package inquiries handles inbound shoot requests and their conversion
// into customers and booked projects.
package inquiries

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/pkg/validator"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const inquiryColumns = `id, organization_id, name, email, phone, address_line, city, state, postal_code, notes, status, converted_project_id, created_at, updated_at`

func scanInquiry(s interface{ Scan(dest ...interface{}) error }) (*models.Inquiry, error) {
	q := &models.Inquiry{}
	err := s.Scan(&q.ID, &q.OrganizationID, &q.Name, &q.Email, &q.Phone, &q.AddressLine, &q.City, &q.State, &q.PostalCode, &q.Notes, &q.Status, &q.ConvertedProjectID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

func (r *Repository) Create(q *models.Inquiry) error {
	_, err := r.db.Exec(`
		INSERT INTO inquiries (id, organization_id, name, email, phone, address_line, city, state, postal_code, notes, status, converted_project_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.OrganizationID, q.Name, q.Email, q.Phone, q.AddressLine, q.City, q.State, q.PostalCode, q.Notes, q.Status, q.ConvertedProjectID, q.CreatedAt, q.UpdatedAt)
	return err
}

func (r *Repository) GetByID(id string) (*models.Inquiry, error) {
	row := r.db.QueryRow(`SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)
	return scanInquiry(row)
}

func (r *Repository) List(orgID string) ([]*models.Inquiry, error) {
	rows, err := r.db.Query(`SELECT `+inquiryColumns+` FROM inquiries WHERE organization_id = ? ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inquiries []*models.Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, q)
	}
	return inquiries, rows.Err()
}

func (r *Repository) UpdateStatus(id string, status models.InquiryStatus) error {
	_, err := r.db.Exec(`UPDATE inquiries SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().Unix(), id)
	return err
}

func (r *Repository) MarkConvertedTx(tx *sql.Tx, id, projectID string) error {
	_, err := tx.Exec(`
		UPDATE inquiries SET status = 'CONVERTED', converted_project_id = ?, updated_at = ? WHERE id = ?
	`, projectID, time.Now().Unix(), id)
	return err
}

type Service struct {
	repo      *Repository
	customers *repositories.CustomerRepository
	projects  *projects.Repository
}

func NewService(repo *Repository, customers *repositories.CustomerRepository, projectRepo *projects.Repository) *Service {
	return &Service{repo: repo, customers: customers, projects: projectRepo}
}

type CreateInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Notes       string `json:"notes"`
}

// Create is the public intake path: no authentication, org-scoped by URL.
func (s *Service) Create(orgID string, in *CreateInput) (*models.Inquiry, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", errors.ErrInvalid)
	}
	if err := validator.ValidEmail(in.Email); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalid, err)
	}

	now := time.Now().Unix()
	q := &models.Inquiry{
		ID:             "inq_" + uuid.NewString(),
		OrganizationID: orgID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		AddressLine:    in.AddressLine,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		Notes:          in.Notes,
		Status:         models.InquiryNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) List(ctx *orgctx.Context) ([]*models.Inquiry, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot manage inquiries", errors.ErrForbidden)
	}
	return s.repo.List(ctx.Org.ID)
}

func (s *Service) UpdateStatus(ctx *orgctx.Context, id string, status models.InquiryStatus) (*models.Inquiry, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot manage inquiries", errors.ErrForbidden)
	}
	if !status.Valid() || status == models.InquiryConverted {
		return nil, fmt.Errorf("%w: invalid status %q", errors.ErrInvalid, status)
	}

	q, err := s.requireInquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(q.ID, status); err != nil {
		return nil, err
	}
	q.Status = status
	return q, nil
}

// Convert turns an inquiry into a customer plus a BOOKED project. The
// customer, project and inquiry updates commit together or not at all.
func (s *Service) Convert(ctx *orgctx.Context, id string) (*models.Project, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot convert inquiries", errors.ErrForbidden)
	}

	q, err := s.requireInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == models.InquiryConverted {
		return nil, fmt.Errorf("%w: inquiry already converted", errors.ErrConflict)
	}

	customer, err := s.customers.GetByOrgAndEmail(ctx.Org.ID, q.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	tx, err := s.repo.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if customer == nil {
		customer = &models.OrganizationCustomer{
			ID:             "cus_" + uuid.NewString(),
			OrganizationID: ctx.Org.ID,
			Name:           q.Name,
			Email:          q.Email,
			Phone:          q.Phone,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.customers.CreateTx(tx, customer); err != nil {
			return nil, err
		}
	}

	p := &models.Project{
		ID:             "prj_" + uuid.NewString(),
		OrganizationID: ctx.Org.ID,
		CustomerID:     &customer.ID,
		Title:          fmt.Sprintf("Shoot at %s", q.AddressLine),
		AddressLine:    q.AddressLine,
		City:           q.City,
		State:          q.State,
		PostalCode:     q.PostalCode,
		Status:         models.StatusBooked,
		CreatedBy:      ctx.User.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := createProjectTx(tx, p); err != nil {
		return nil, err
	}

	if err := s.repo.MarkConvertedTx(tx, q.ID, p.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) requireInquiry(ctx *orgctx.Context, id string) (*models.Inquiry, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%w: inquiry", errors.ErrNotFound)
	}
	if q.OrganizationID != ctx.Org.ID {
		return nil, fmt.Errorf("%w: inquiry belongs to a different organization", errors.ErrForbidden)
	}
	return q, nil
}

func createProjectTx(tx *sql.Tx, p *models.Project) error {
	_, err := tx.Exec(`
		INSERT INTO projects (
			id, organization_id, customer_id, title, description, address_line, city, state, postal_code,
			status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.OrganizationID, p.CustomerID, p.Title, p.Description, p.AddressLine, p.City, p.State, p.PostalCode,
		p.Status, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}
