package projects

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/availability"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/audit"
	"shootflow/internal/platform/calendar"
	"shootflow/internal/platform/email"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

type Service struct {
	repo          *Repository
	customers     *repositories.CustomerRepository
	users         *repositories.UserRepository
	notifications *repositories.NotificationRepository
	avail         *availability.Service
	calendar      calendar.Syncer
	email         email.Sender
	audit         *audit.Logger
	deliveryBase  string
}

func NewService(
	repo *Repository,
	customers *repositories.CustomerRepository,
	users *repositories.UserRepository,
	notifications *repositories.NotificationRepository,
	avail *availability.Service,
	cal calendar.Syncer,
	sender email.Sender,
	auditLog *audit.Logger,
	deliveryBase string,
) *Service {
	return &Service{
		repo:          repo,
		customers:     customers,
		users:         users,
		notifications: notifications,
		avail:         avail,
		calendar:      cal,
		email:         sender,
		audit:         auditLog,
		deliveryBase:  deliveryBase,
	}
}

type CreateInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	CustomerID    *string  `json:"customer_id"`
	AddressLine   string   `json:"address_line"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postal_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ScheduledTime *int64   `json:"scheduled_time"`
}

func (s *Service) Create(ctx *orgctx.Context, in *CreateInput) (*models.Project, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot create projects in this organization", errors.ErrForbidden)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errors.ErrInvalid)
	}
	if in.CustomerID != nil {
		customer, err := s.customers.GetByID(*in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.OrganizationID != ctx.Org.ID {
			return nil, fmt.Errorf("%w: customer does not belong to this organization", errors.ErrForbidden)
		}
	}

	now := time.Now().Unix()
	p := &models.Project{
		ID:             "prj_" + uuid.NewString(),
		OrganizationID: ctx.Org.ID,
		CustomerID:     in.CustomerID,
		Title:          in.Title,
		Description:    in.Description,
		AddressLine:    in.AddressLine,
		City:           in.City,
		State:          in.State,
		PostalCode:     in.PostalCode,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Status:         models.StatusBooked,
		ScheduledTime:  in.ScheduledTime,
		CreatedBy:      ctx.User.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx *orgctx.Context, id string) (*models.Project, error) {
	p, err := s.loadForCustomerAware(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// loadForCustomerAware fetches a project the caller may view, including the
// cross-org agent-as-customer bypass.
func (s *Service) loadForCustomerAware(ctx *orgctx.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if authz.CanViewProject(ctx, p) {
		return p, nil
	}
	linked, err := s.isLinkedCustomer(ctx.User, p)
	if err != nil {
		return nil, err
	}
	if linked {
		return p, nil
	}
	return nil, fmt.Errorf("%w: no access to this project", errors.ErrForbidden)
}

func (s *Service) isLinkedCustomer(user *models.User, p *models.Project) (bool, error) {
	if user.AccountType != models.AccountAgent || p.CustomerID == nil {
		return false, nil
	}
	customer, err := s.customers.GetByOrgAndUser(p.OrganizationID, user.ID)
	if err != nil {
		return false, err
	}
	return customer != nil && customer.ID == *p.CustomerID, nil
}

// List fans out to the query shape the caller's role entitles them to.
func (s *Service) List(ctx *orgctx.Context) ([]*models.Project, error) {
	scope := authz.ProjectListScope(ctx)
	switch scope.Kind {
	case authz.ScopeForbidden:
		return nil, fmt.Errorf("%w: not a member of this organization", errors.ErrForbidden)
	case authz.ScopeAllOrgsAsCustomer:
		return s.repo.ListByCustomerUserAllOrgs(scope.UserID)
	case authz.ScopeOrgAsCustomer:
		return s.repo.ListByCustomerUser(scope.OrgID, scope.UserID)
	case authz.ScopeAllInOrg:
		return s.repo.ListByOrg(scope.OrgID)
	case authz.ScopeAssignedTechnician:
		return s.repo.ListByTechnician(scope.OrgID, scope.UserID)
	case authz.ScopeAssignedEditor:
		return s.repo.ListByEditor(scope.OrgID, scope.UserID)
	case authz.ScopeAssignedPM:
		return s.repo.ListByProjectManager(scope.OrgID, scope.UserID)
	}
	return nil, fmt.Errorf("%w: not a member of this organization", errors.ErrForbidden)
}

type UpdateInput struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	AddressLine   *string  `json:"address_line"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	PostalCode    *string  `json:"postal_code"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ScheduledTime *int64   `json:"scheduled_time"`
}

func (s *Service) UpdateDetails(ctx *orgctx.Context, id string, in *UpdateInput) (*models.Project, error) {
	p, err := s.requireManage(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.AddressLine != nil {
		p.AddressLine = *in.AddressLine
	}
	if in.City != nil {
		p.City = *in.City
	}
	if in.State != nil {
		p.State = *in.State
	}
	if in.PostalCode != nil {
		p.PostalCode = *in.PostalCode
	}
	if in.Latitude != nil {
		p.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = in.Longitude
	}
	if in.ScheduledTime != nil {
		p.ScheduledTime = in.ScheduledTime
	}

	if err := s.repo.UpdateDetails(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx *orgctx.Context, id string) error {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if !authz.CanDeleteProject(ctx, p) {
		return fmt.Errorf("%w: only owners and admins may delete projects", errors.ErrForbidden)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	// Detach the calendar event. Best-effort: the project row is already gone.
	if p.TechnicianID != nil {
		s.calendar.RemoveProjectFromCalendar(p.ID, *p.TechnicianID)
	}
	s.audit.Record(ctx.Org.ID, ctx.User.ID, "project.delete", "project", p.ID, nil)
	return nil
}

func (s *Service) requireManage(ctx *orgctx.Context, id string) (*models.Project, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if !authz.CanManageProject(ctx, p) {
		return nil, fmt.Errorf("%w: cannot manage this project", errors.ErrForbidden)
	}
	return p, nil
}

// AssignTechnician assigns a technician, checking availability at the
// scheduled time. If the technician auto-declines unavailable slots the
// assignment is rejected; otherwise it proceeds and the returned warning
// carries the availability reason.
func (s *Service) AssignTechnician(ctx *orgctx.Context, projectID, userID string) (*models.Project, string, error) {
	p, err := s.requireManage(ctx, projectID)
	if err != nil {
		return nil, "", err
	}

	target, err := s.users.GetByID(userID)
	if err != nil {
		return nil, "", err
	}
	if target == nil {
		return nil, "", fmt.Errorf("%w: user", errors.ErrNotFound)
	}

	warning := ""
	if p.ScheduledTime != nil {
		result, err := s.avail.IsUserAvailableAt(userID, *p.ScheduledTime)
		if err != nil {
			return nil, "", err
		}
		if !result.Available {
			settings, err := s.avail.GetUserAvailability(userID)
			if err != nil {
				return nil, "", err
			}
			if settings != nil && settings.AutoDeclineBookings {
				return nil, "", fmt.Errorf("%w: technician is unavailable at the scheduled time (%s)", errors.ErrConflict, result.Reason)
			}
			warning = fmt.Sprintf("technician may be unavailable: %s", result.Reason)
		}
	}

	changed := p.TechnicianID == nil || *p.TechnicianID != userID
	if !changed {
		return p, warning, nil
	}
	previous := p.TechnicianID

	if err := s.repo.SetAssignee(p.ID, ColTechnician, &userID); err != nil {
		return nil, "", err
	}
	p.TechnicianID = &userID

	if p.ScheduledTime != nil {
		if previous != nil {
			s.calendar.RemoveProjectFromCalendar(p.ID, *previous)
		}
		s.calendar.SyncProjectToCalendar(p.ID, userID, *p.ScheduledTime)
	}
	s.notifyAssignment(ctx, p, userID, string(models.RoleTechnician))

	return p, warning, nil
}

func (s *Service) AssignEditor(ctx *orgctx.Context, projectID, userID string) (*models.Project, error) {
	return s.assignRole(ctx, projectID, userID, ColEditor, string(models.RoleEditor))
}

func (s *Service) AssignProjectManager(ctx *orgctx.Context, projectID, userID string) (*models.Project, error) {
	return s.assignRole(ctx, projectID, userID, ColProjectManager, string(models.RoleProjectManager))
}

func (s *Service) assignRole(ctx *orgctx.Context, projectID, userID, column, role string) (*models.Project, error) {
	p, err := s.requireManage(ctx, projectID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: user", errors.ErrNotFound)
	}

	var current *string
	switch column {
	case ColEditor:
		current = p.EditorID
	case ColProjectManager:
		current = p.ProjectManagerID
	}
	if current != nil && *current == userID {
		return p, nil
	}

	if err := s.repo.SetAssignee(p.ID, column, &userID); err != nil {
		return nil, err
	}
	switch column {
	case ColEditor:
		p.EditorID = &userID
	case ColProjectManager:
		p.ProjectManagerID = &userID
	}

	s.notifyAssignment(ctx, p, userID, role)
	return p, nil
}

// AssignCustomer follows the delete rule: PROJECT_MANAGER may not change a
// project's customer. The linked user, if any, is the one notified.
func (s *Service) AssignCustomer(ctx *orgctx.Context, projectID, customerID string) (*models.Project, error) {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}
	if !authz.CanChangeProjectCustomer(ctx, p) {
		return nil, fmt.Errorf("%w: cannot change this project's customer", errors.ErrForbidden)
	}

	customer, err := s.customers.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer", errors.ErrNotFound)
	}
	if customer.OrganizationID != ctx.Org.ID {
		return nil, fmt.Errorf("%w: customer belongs to a different organization", errors.ErrForbidden)
	}

	if p.CustomerID != nil && *p.CustomerID == customerID {
		return p, nil
	}

	if err := s.repo.SetAssignee(p.ID, ColCustomer, &customerID); err != nil {
		return nil, err
	}
	p.CustomerID = &customerID

	if customer.UserID != nil {
		s.notifyAssignment(ctx, p, *customer.UserID, "CUSTOMER")
	}
	return p, nil
}

// notifyAssignment creates the assignment notification. The repository's
// dedup key makes re-notification of an unchanged assignment a no-op.
func (s *Service) notifyAssignment(ctx *orgctx.Context, p *models.Project, userID, role string) {
	err := s.notifications.Create(&models.Notification{
		ID:             "ntf_" + uuid.NewString(),
		UserID:         userID,
		OrganizationID: ctx.Org.ID,
		ProjectID:      &p.ID,
		Kind:           models.NotifyAssignment,
		Role:           &role,
		Body:           fmt.Sprintf("You were assigned to %s", p.Title),
		CreatedAt:      time.Now().Unix(),
	})
	if err != nil {
		log.Warn().Err(err).Str("project_id", p.ID).Str("user_id", userID).Msg("projects: assignment notification failed")
	}
}

// ownWorkTransition reports whether a non-manager assignee may perform the
// move. Exactly two forward transitions are open to them.
func ownWorkTransition(from, to models.ProjectStatus) bool {
	return (from == models.StatusBooked && to == models.StatusShooting) ||
		(from == models.StatusShooting && to == models.StatusEditing)
}

// UpdateStatus applies the status state machine. Managers may set any
// status; an assigned technician or editor only the two own-work moves.
// Entering DELIVERED stamps delivery_enabled_at in the same write; entering
// CANCELLED detaches the calendar event best-effort.
func (s *Service) UpdateStatus(ctx *orgctx.Context, projectID string, status models.ProjectStatus) (*models.Project, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", errors.ErrInvalid, status)
	}

	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: project", errors.ErrNotFound)
	}

	if !authz.CanManageProject(ctx, p) {
		if !authz.CanUpdateOwnWork(ctx, p) {
			return nil, fmt.Errorf("%w: cannot update this project", errors.ErrForbidden)
		}
		if !ownWorkTransition(p.Status, status) {
			return nil, fmt.Errorf("%w: transition %s -> %s is not allowed for assignees", errors.ErrForbidden, p.Status, status)
		}
	}

	if err := s.repo.UpdateStatus(p.ID, status); err != nil {
		return nil, err
	}
	p.Status = status
	if status == models.StatusDelivered {
		now := time.Now().Unix()
		p.DeliveryEnabledAt = &now
	}

	if status == models.StatusCancelled && p.TechnicianID != nil {
		s.calendar.RemoveProjectFromCalendar(p.ID, *p.TechnicianID)
	}

	return p, nil
}

// EnableDelivery turns on customer delivery. The token is generated only if
// the project never had one; a legacy token is kept so previously shared
// links stay stable.
func (s *Service) EnableDelivery(ctx *orgctx.Context, projectID string) (*models.Project, error) {
	p, err := s.requireManage(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if p.DeliveryToken == nil {
		token := uuid.NewString()
		if err := s.repo.SetDeliveryToken(p.ID, token); err != nil {
			return nil, err
		}
		p.DeliveryToken = &token
	}

	now := time.Now().Unix()
	if err := s.repo.SetDeliveryEnabledAt(p.ID, &now); err != nil {
		return nil, err
	}
	p.DeliveryEnabledAt = &now

	s.notifyDelivery(ctx, p)
	return p, nil
}

func (s *Service) notifyDelivery(ctx *orgctx.Context, p *models.Project) {
	if p.CustomerID == nil {
		return
	}
	customer, err := s.customers.GetByID(*p.CustomerID)
	if err != nil || customer == nil {
		if err != nil {
			log.Warn().Err(err).Str("project_id", p.ID).Msg("projects: loading customer for delivery failed")
		}
		return
	}

	if customer.UserID != nil {
		err := s.notifications.Create(&models.Notification{
			ID:             "ntf_" + uuid.NewString(),
			UserID:         *customer.UserID,
			OrganizationID: ctx.Org.ID,
			ProjectID:      &p.ID,
			Kind:           models.NotifyDelivery,
			Body:           fmt.Sprintf("Media for %s is ready", p.AddressLine),
			CreatedAt:      time.Now().Unix(),
		})
		if err != nil {
			log.Warn().Err(err).Str("project_id", p.ID).Msg("projects: delivery notification failed")
		}
	}

	if customer.Email != "" && p.DeliveryToken != nil {
		deliveryURL := fmt.Sprintf("%s/%s", s.deliveryBase, *p.DeliveryToken)
		toEmail, toName := customer.Email, customer.Name
		orgName, address, projectID := ctx.Org.Name, p.AddressLine, p.ID
		go func() {
			if err := s.email.SendDeliveryEmail(toEmail, toName, orgName, address, deliveryURL); err != nil {
				log.Warn().Err(err).Str("project_id", projectID).Msg("projects: delivery email failed")
			}
		}()
	}
}

// DisableDelivery clears the enabled timestamp but keeps the token; links
// already distributed become inert without being invalidated.
func (s *Service) DisableDelivery(ctx *orgctx.Context, projectID string) (*models.Project, error) {
	p, err := s.requireManage(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetDeliveryEnabledAt(p.ID, nil); err != nil {
		return nil, err
	}
	p.DeliveryEnabledAt = nil
	return p, nil
}

// RegenerateDeliveryToken replaces the token unconditionally, invalidating
// every previously distributed delivery link.
func (s *Service) RegenerateDeliveryToken(ctx *orgctx.Context, projectID string) (*models.Project, error) {
	p, err := s.requireManage(ctx, projectID)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.repo.SetDeliveryToken(p.ID, token); err != nil {
		return nil, err
	}
	p.DeliveryToken = &token

	s.audit.Record(ctx.Org.ID, ctx.User.ID, "project.delivery_token.regenerate", "project", p.ID, nil)
	return p, nil
}

// GetDeliveryByToken serves the public (unauthenticated) delivery page. The
// token alone is not enough: delivery must currently be enabled.
func (s *Service) GetDeliveryByToken(token string) (*models.Project, error) {
	p, err := s.repo.GetByDeliveryToken(token)
	if err != nil {
		return nil, err
	}
	if p == nil || p.DeliveryEnabledAt == nil {
		return nil, fmt.Errorf("%w: delivery", errors.ErrNotFound)
	}
	return p, nil
}
