// Package customers manages the org's customer roster. A customer is a
// contact record, optionally linked to a user account; linking is what lets
// that user see their projects through the customer-facing surfaces.
package customers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/pkg/validator"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

type Service struct {
	repo  *repositories.CustomerRepository
	users *repositories.UserRepository
}

func NewService(repo *repositories.CustomerRepository, users *repositories.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

type CreateInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Create adds a customer record. When the email matches a registered user,
// the record is linked to that account immediately.
func (s *Service) Create(ctx *orgctx.Context, in CreateInput) (*models.OrganizationCustomer, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot manage customers", errors.ErrForbidden)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", errors.ErrInvalid)
	}
	if in.Email != "" {
		if err := validator.ValidEmail(in.Email); err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrInvalid, err)
		}
	}

	var userID *string
	if in.Email != "" {
		user, err := s.users.GetByEmail(in.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			// One customer record per linked account per org.
			existing, err := s.repo.GetByOrgAndUser(ctx.Org.ID, user.ID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, fmt.Errorf("%w: a customer record for this account already exists", errors.ErrConflict)
			}
			userID = &user.ID
		}
	}

	now := time.Now().Unix()
	c := &models.OrganizationCustomer{
		ID:             "cus_" + uuid.NewString(),
		OrganizationID: ctx.Org.ID,
		UserID:         userID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx *orgctx.Context, id string) (*models.OrganizationCustomer, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot manage customers", errors.ErrForbidden)
	}
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.OrganizationID != ctx.Org.ID {
		return nil, fmt.Errorf("%w: customer", errors.ErrNotFound)
	}
	return c, nil
}

func (s *Service) List(ctx *orgctx.Context) ([]*models.OrganizationCustomer, error) {
	if !authz.CanManageCustomers(ctx) {
		return nil, fmt.Errorf("%w: cannot manage customers", errors.ErrForbidden)
	}
	return s.repo.List(ctx.Org.ID)
}

type UpdateInput struct {
	Name  *string
	Email *string
	Phone *string
	Notes *string
}

func (s *Service) Update(ctx *orgctx.Context, id string, in UpdateInput) (*models.OrganizationCustomer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name is required", errors.ErrInvalid)
		}
		c.Name = *in.Name
	}
	if in.Email != nil {
		if *in.Email != "" {
			if err := validator.ValidEmail(*in.Email); err != nil {
				return nil, fmt.Errorf("%w: %s", errors.ErrInvalid, err)
			}
		}
		c.Email = *in.Email
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}

	if err := s.repo.Update(c); err != nil {
		return nil, err
	}

	// Re-evaluate the account link after an email change.
	if in.Email != nil {
		var userID *string
		if c.Email != "" {
			user, err := s.users.GetByEmail(c.Email)
			if err != nil {
				return nil, err
			}
			if user != nil {
				userID = &user.ID
			}
		}
		if err := s.repo.SetUserID(c.ID, userID); err != nil {
			return nil, err
		}
		c.UserID = userID
	}
	return c, nil
}

func (s *Service) Delete(ctx *orgctx.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(c.ID)
}
