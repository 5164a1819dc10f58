// Package orgctx resolves the active organization for a request and computes
// the caller's effective role in it. The resolver never rejects a caller: a
// user with no standing gets RoleNone and the authorization layer decides.
package orgctx

import (
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

// Role is the effective role used for every authorization decision. It is a
// closed set; switches over it are written exhaustively so a new role forces
// a review of each predicate.
type Role string

const (
	RolePersonalOwner  Role = "PERSONAL_OWNER"
	RoleOwner          Role = "OWNER"
	RoleAdmin          Role = "ADMIN"
	RoleTechnician     Role = "TECHNICIAN"
	RoleEditor         Role = "EDITOR"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleAgent          Role = "AGENT"
	RoleNone           Role = "NONE"
)

// Manager reports whether the role carries org-level management authority.
// PROJECT_MANAGER is deliberately excluded: its authority is per-project.
func (r Role) Manager() bool {
	switch r {
	case RolePersonalOwner, RoleOwner, RoleAdmin:
		return true
	case RoleProjectManager, RoleTechnician, RoleEditor, RoleAgent, RoleNone:
		return false
	}
	return false
}

// Context is the per-request organization standing of a caller. It is built
// once by the resolver middleware and passed explicitly into services.
type Context struct {
	Org           *models.Organization
	Membership    *models.OrganizationMember
	User          *models.User
	EffectiveRole Role
	IsPersonalOrg bool
}

// EffectiveRole derives the single role value from org type and membership.
// Deterministic and total: every (org, membership) pair maps to exactly one
// role.
func EffectiveRole(org *models.Organization, membership *models.OrganizationMember) Role {
	if membership == nil {
		return RoleNone
	}
	if org.Type == models.OrgPersonal && membership.Role == models.RoleOwner {
		return RolePersonalOwner
	}
	switch membership.Role {
	case models.RoleOwner:
		return RoleOwner
	case models.RoleAdmin:
		return RoleAdmin
	case models.RoleTechnician:
		return RoleTechnician
	case models.RoleEditor:
		return RoleEditor
	case models.RoleProjectManager:
		return RoleProjectManager
	case models.RoleAgent:
		return RoleAgent
	}
	return RoleNone
}

// Resolver loads org and membership rows to build a Context.
type Resolver struct {
	orgRepo    *repositories.OrganizationRepository
	memberRepo *repositories.MemberRepository
}

func NewResolver(orgRepo *repositories.OrganizationRepository, memberRepo *repositories.MemberRepository) *Resolver {
	return &Resolver{orgRepo: orgRepo, memberRepo: memberRepo}
}

// Resolve builds the Context for user in org orgID. When orgID is empty the
// user's PERSONAL org is the active one. Returns (nil, nil) when the org
// does not exist at all.
func (r *Resolver) Resolve(user *models.User, orgID string) (*Context, error) {
	var org *models.Organization
	var err error

	if orgID == "" {
		org, err = r.orgRepo.GetPersonalOrg(user.ID)
	} else {
		org, err = r.orgRepo.GetByID(orgID)
	}
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, nil
	}

	membership, err := r.memberRepo.Get(org.ID, user.ID)
	if err != nil {
		return nil, err
	}

	return &Context{
		Org:           org,
		Membership:    membership,
		User:          user,
		EffectiveRole: EffectiveRole(org, membership),
		IsPersonalOrg: org.Type == models.OrgPersonal,
	}, nil
}
