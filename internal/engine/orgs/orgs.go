// Package orgs implements organization lifecycle and membership management:
// personal-org provisioning at registration, org creation, the
// promote-and-demote OWNER transfer, and the invitation flow.
package orgs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shootflow/internal/engine/authz"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/pkg/validator"
	"shootflow/internal/platform/audit"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

type Service struct {
	orgs    *repositories.OrganizationRepository
	members *repositories.MemberRepository
	invites *repositories.InvitationRepository
	users   *repositories.UserRepository
	audit   *audit.Logger
}

func NewService(
	orgs *repositories.OrganizationRepository,
	members *repositories.MemberRepository,
	invites *repositories.InvitationRepository,
	users *repositories.UserRepository,
	auditLog *audit.Logger,
) *Service {
	return &Service{orgs: orgs, members: members, invites: invites, users: users, audit: auditLog}
}

// ProvisionPersonalOrg creates the user's PERSONAL organization and its sole
// OWNER membership inside the caller's registration transaction. Every user
// has exactly one; it is never created through the public API.
func (s *Service) ProvisionPersonalOrg(tx *sql.Tx, user *models.User) (*models.Organization, error) {
	now := time.Now().Unix()
	org := &models.Organization{
		ID:              "org_" + uuid.NewString(),
		Name:            user.FullName,
		Type:            models.OrgPersonal,
		PersonalOwnerID: &user.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orgs.CreateTx(tx, org); err != nil {
		return nil, err
	}

	member := &models.OrganizationMember{
		ID:             "mem_" + uuid.NewString(),
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.RoleOwner,
		CreatedAt:      now,
	}
	if err := s.members.CreateTx(tx, member); err != nil {
		return nil, err
	}
	return org, nil
}

// Create makes a TEAM or COMPANY org; the creator becomes OWNER. PERSONAL
// is rejected unconditionally.
func (s *Service) Create(user *models.User, name string, orgType models.OrgType) (*models.Organization, error) {
	if !authz.CanCreateOrganization(orgType) {
		return nil, fmt.Errorf("%w: organizations of type %q cannot be created", errors.ErrInvalid, orgType)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", errors.ErrInvalid)
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:        "org_" + uuid.NewString(),
		Name:      name,
		Type:      orgType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.orgs.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.orgs.CreateTx(tx, org); err != nil {
		return nil, err
	}
	member := &models.OrganizationMember{
		ID:             "mem_" + uuid.NewString(),
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.RoleOwner,
		CreatedAt:      now,
	}
	if err := s.members.CreateTx(tx, member); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) ListForUser(userID string) ([]*models.Organization, error) {
	return s.orgs.ListForUser(userID)
}

func (s *Service) UpdateName(ctx *orgctx.Context, name string) (*models.Organization, error) {
	if !authz.CanManageOrgSettings(ctx) {
		return nil, fmt.Errorf("%w: cannot manage organization settings", errors.ErrForbidden)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", errors.ErrInvalid)
	}
	if err := s.orgs.UpdateName(ctx.Org.ID, name); err != nil {
		return nil, err
	}
	ctx.Org.Name = name
	return ctx.Org, nil
}

func (s *Service) ListMembers(ctx *orgctx.Context) ([]*models.OrganizationMember, error) {
	if ctx.EffectiveRole == orgctx.RoleNone {
		return nil, fmt.Errorf("%w: not a member of this organization", errors.ErrForbidden)
	}
	return s.members.List(ctx.Org.ID)
}

// ChangeMemberRole applies the role-change rules. Promoting a member to
// OWNER demotes the acting OWNER to ADMIN in the same transaction, so the
// org never has two OWNERs or zero.
func (s *Service) ChangeMemberRole(ctx *orgctx.Context, memberID string, newRole models.OrgRole) (*models.OrganizationMember, error) {
	if !newRole.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", errors.ErrInvalid, newRole)
	}

	target, err := s.members.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: member", errors.ErrNotFound)
	}

	if !authz.CanChangeMemberRole(ctx, target, newRole) {
		return nil, fmt.Errorf("%w: cannot change this member's role", errors.ErrForbidden)
	}
	if target.UserID == ctx.User.ID {
		return nil, fmt.Errorf("%w: cannot change your own role", errors.ErrInvalid)
	}

	tx, err := s.members.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if newRole == models.RoleOwner {
		// Demote the acting OWNER first: the partial unique index on
		// (organization_id) WHERE role='OWNER' would reject a second OWNER.
		actor := ctx.Membership
		if err := s.members.UpdateRoleTx(tx, actor.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
	}
	if err := s.members.UpdateRoleTx(tx, target.ID, newRole); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.Record(ctx.Org.ID, ctx.User.ID, "member.role_change", "member", target.ID, map[string]interface{}{
		"from": string(target.Role),
		"to":   string(newRole),
	})
	target.Role = newRole
	return target, nil
}

// RemoveMember drops a membership. Removing the OWNER is rejected: the
// OWNER must transfer ownership first.
func (s *Service) RemoveMember(ctx *orgctx.Context, memberID string) error {
	if !authz.CanManageTeam(ctx) {
		return fmt.Errorf("%w: cannot manage team members", errors.ErrForbidden)
	}

	target, err := s.members.GetByID(memberID)
	if err != nil {
		return err
	}
	if target == nil || target.OrganizationID != ctx.Org.ID {
		return fmt.Errorf("%w: member", errors.ErrNotFound)
	}
	if target.Role == models.RoleOwner {
		return fmt.Errorf("%w: the owner cannot be removed; transfer ownership first", errors.ErrConflict)
	}

	return s.members.Delete(target.ID)
}

const invitationTTL = 14 * 24 * time.Hour

// Invite creates a pending offer to join the org with a specific role.
func (s *Service) Invite(ctx *orgctx.Context, email string, role models.OrgRole) (*models.Invitation, error) {
	if !authz.CanManageTeam(ctx) {
		return nil, fmt.Errorf("%w: cannot invite members", errors.ErrForbidden)
	}
	if err := validator.ValidEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalid, err)
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, fmt.Errorf("%w: invalid invitation role %q", errors.ErrInvalid, role)
	}

	now := time.Now()
	inv := &models.Invitation{
		ID:             "inv_" + uuid.NewString(),
		OrganizationID: ctx.Org.ID,
		Email:          email,
		Role:           role,
		Token:          uuid.NewString(),
		InvitedBy:      ctx.User.ID,
		ExpiresAt:      now.Add(invitationTTL).Unix(),
		CreatedAt:      now.Unix(),
		UpdatedAt:      now.Unix(),
	}
	if err := s.invites.Create(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListInvitations(ctx *orgctx.Context) ([]*models.Invitation, error) {
	if !authz.CanManageTeam(ctx) {
		return nil, fmt.Errorf("%w: cannot list invitations", errors.ErrForbidden)
	}
	return s.invites.List(ctx.Org.ID)
}

func (s *Service) RevokeInvitation(ctx *orgctx.Context, id string) error {
	if !authz.CanManageTeam(ctx) {
		return fmt.Errorf("%w: cannot revoke invitations", errors.ErrForbidden)
	}
	inv, err := s.invites.GetByID(id)
	if err != nil {
		return err
	}
	if inv == nil || inv.OrganizationID != ctx.Org.ID {
		return fmt.Errorf("%w: invitation", errors.ErrNotFound)
	}
	return s.invites.Delete(inv.ID)
}

// AcceptInvitation consumes an invitation token for the calling user.
// Accepting an already-accepted invitation is a no-op returning it
// unchanged; the membership is created at most once.
func (s *Service) AcceptInvitation(user *models.User, token string) (*models.Invitation, error) {
	inv, err := s.invites.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invitation", errors.ErrNotFound)
	}
	if inv.Accepted {
		return inv, nil
	}
	if time.Now().Unix() > inv.ExpiresAt {
		return nil, fmt.Errorf("%w: invitation expired", errors.ErrConflict)
	}

	existing, err := s.members.Get(inv.OrganizationID, user.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.invites.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if existing == nil {
		member := &models.OrganizationMember{
			ID:             "mem_" + uuid.NewString(),
			OrganizationID: inv.OrganizationID,
			UserID:         user.ID,
			Role:           inv.Role,
			CreatedAt:      time.Now().Unix(),
		}
		if err := s.members.CreateTx(tx, member); err != nil {
			return nil, err
		}
	}
	if err := s.invites.MarkAcceptedTx(tx, inv.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	inv.Accepted = true
	return inv, nil
}
