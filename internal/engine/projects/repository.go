package projects

import (
	"database/sql"
	"time"

	"shootflow/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const projectColumns = `id, organization_id, customer_id, technician_id, editor_id, project_manager_id,
	title, description, address_line, city, state, postal_code, latitude, longitude,
	status, scheduled_time, calendar_event_id, delivery_token, delivery_enabled_at,
	client_approval_status, created_by, created_at, updated_at`

func scanProject(s interface{ Scan(dest ...interface{}) error }) (*models.Project, error) {
	p := &models.Project{}
	err := s.Scan(
		&p.ID, &p.OrganizationID, &p.CustomerID, &p.TechnicianID, &p.EditorID, &p.ProjectManagerID,
		&p.Title, &p.Description, &p.AddressLine, &p.City, &p.State, &p.PostalCode, &p.Latitude, &p.Longitude,
		&p.Status, &p.ScheduledTime, &p.CalendarEventID, &p.DeliveryToken, &p.DeliveryEnabledAt,
		&p.ClientApprovalStatus, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) Create(p *models.Project) error {
	_, err := r.db.Exec(`
		INSERT INTO projects (
			id, organization_id, customer_id, technician_id, editor_id, project_manager_id,
			title, description, address_line, city, state, postal_code, latitude, longitude,
			status, scheduled_time, calendar_event_id, delivery_token, delivery_enabled_at,
			client_approval_status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.OrganizationID, p.CustomerID, p.TechnicianID, p.EditorID, p.ProjectManagerID,
		p.Title, p.Description, p.AddressLine, p.City, p.State, p.PostalCode, p.Latitude, p.Longitude,
		p.Status, p.ScheduledTime, p.CalendarEventID, p.DeliveryToken, p.DeliveryEnabledAt,
		p.ClientApprovalStatus, p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *Repository) GetByID(id string) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

func (r *Repository) GetByDeliveryToken(token string) (*models.Project, error) {
	row := r.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE delivery_token = ?`, token)
	return scanProject(row)
}

// UpdateDetails writes the freely editable fields.
func (r *Repository) UpdateDetails(p *models.Project) error {
	_, err := r.db.Exec(`
		UPDATE projects SET
			title = ?, description = ?, address_line = ?, city = ?, state = ?, postal_code = ?,
			latitude = ?, longitude = ?, scheduled_time = ?, client_approval_status = ?, updated_at = ?
		WHERE id = ?
	`, p.Title, p.Description, p.AddressLine, p.City, p.State, p.PostalCode,
		p.Latitude, p.Longitude, p.ScheduledTime, p.ClientApprovalStatus, time.Now().Unix(), p.ID)
	return err
}

func (r *Repository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	return err
}

// SetAssignee updates one of the assignment columns. column must be one of
// the assigneeColumn constants; it is never caller input.
func (r *Repository) SetAssignee(id, column string, userID *string) error {
	_, err := r.db.Exec(`UPDATE projects SET `+column+` = ?, updated_at = ? WHERE id = ?`, userID, time.Now().Unix(), id)
	return err
}

const (
	ColTechnician     = "technician_id"
	ColEditor         = "editor_id"
	ColProjectManager = "project_manager_id"
	ColCustomer       = "customer_id"
)

// UpdateStatus writes the new status; entering DELIVERED stamps
// delivery_enabled_at in the same statement.
func (r *Repository) UpdateStatus(id string, status models.ProjectStatus) error {
	now := time.Now().Unix()
	if status == models.StatusDelivered {
		_, err := r.db.Exec(`
			UPDATE projects SET status = ?, delivery_enabled_at = ?, updated_at = ? WHERE id = ?
		`, status, now, now, id)
		return err
	}
	_, err := r.db.Exec(`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	return err
}

// SetDeliveryToken replaces the token unconditionally.
func (r *Repository) SetDeliveryToken(id, token string) error {
	_, err := r.db.Exec(`UPDATE projects SET delivery_token = ?, updated_at = ? WHERE id = ?`, token, time.Now().Unix(), id)
	return err
}

func (r *Repository) SetDeliveryEnabledAt(id string, at *int64) error {
	_, err := r.db.Exec(`UPDATE projects SET delivery_enabled_at = ?, updated_at = ? WHERE id = ?`, at, time.Now().Unix(), id)
	return err
}

func (r *Repository) queryProjects(query string, args ...interface{}) ([]*models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repository) ListByOrg(orgID string) ([]*models.Project, error) {
	return r.queryProjects(`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? ORDER BY created_at DESC`, orgID)
}

func (r *Repository) ListByTechnician(orgID, userID string) ([]*models.Project, error) {
	return r.queryProjects(`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? AND technician_id = ? ORDER BY created_at DESC`, orgID, userID)
}

func (r *Repository) ListByEditor(orgID, userID string) ([]*models.Project, error) {
	return r.queryProjects(`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? AND editor_id = ? ORDER BY created_at DESC`, orgID, userID)
}

// ListByProjectManager returns the union of projects managed by the user and
// projects where they are the assigned technician or editor, without
// duplicates.
func (r *Repository) ListByProjectManager(orgID, userID string) ([]*models.Project, error) {
	return r.queryProjects(`
		SELECT `+projectColumns+` FROM projects
		WHERE organization_id = ? AND (project_manager_id = ? OR technician_id = ? OR editor_id = ?)
		ORDER BY created_at DESC
	`, orgID, userID, userID, userID)
}

// ListByCustomerUser returns projects whose linked customer record points at
// the given user, scoped to one org.
func (r *Repository) ListByCustomerUser(orgID, userID string) ([]*models.Project, error) {
	return r.queryProjects(`
		SELECT p.id, p.organization_id, p.customer_id, p.technician_id, p.editor_id, p.project_manager_id,
			p.title, p.description, p.address_line, p.city, p.state, p.postal_code, p.latitude, p.longitude,
			p.status, p.scheduled_time, p.calendar_event_id, p.delivery_token, p.delivery_enabled_at,
			p.client_approval_status, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN organization_customers c ON c.id = p.customer_id
		WHERE p.organization_id = ? AND c.user_id = ?
		ORDER BY p.created_at DESC
	`, orgID, userID)
}

// ListByCustomerUserAllOrgs is the cross-org query for agents viewing their
// personal org: every project, in any organization, where the agent is the
// linked customer.
func (r *Repository) ListByCustomerUserAllOrgs(userID string) ([]*models.Project, error) {
	return r.queryProjects(`
		SELECT p.id, p.organization_id, p.customer_id, p.technician_id, p.editor_id, p.project_manager_id,
			p.title, p.description, p.address_line, p.city, p.state, p.postal_code, p.latitude, p.longitude,
			p.status, p.scheduled_time, p.calendar_event_id, p.delivery_token, p.delivery_enabled_at,
			p.client_approval_status, p.created_by, p.created_at, p.updated_at
		FROM projects p
		JOIN organization_customers c ON c.id = p.customer_id
		WHERE c.user_id = ?
		ORDER BY p.created_at DESC
	`, userID)
}
