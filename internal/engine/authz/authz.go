// Package authz holds the pure authorization predicates. Every function is
// side-effect free and consults nothing but its arguments, so each rule is
// independently testable.
//
// Rules:
//   - Org settings and team management: PERSONAL_OWNER in a personal org,
//     OWNER or ADMIN elsewhere.
//   - Customer and inquiry management additionally admits PROJECT_MANAGER.
//   - PROJECT_MANAGER authority over a project is scoped to projects where
//     they are the assigned PM; OWNER/ADMIN/PERSONAL_OWNER are org-scoped.
//   - Delete project and change-customer exclude PROJECT_MANAGER entirely.
//   - TECHNICIAN/EDITOR act only on projects they are assigned to.
package authz

import (
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/platform/models"
)

// CanManageOrgSettings covers org renames and org-level configuration.
func CanManageOrgSettings(ctx *orgctx.Context) bool {
	if ctx.IsPersonalOrg {
		return ctx.EffectiveRole == orgctx.RolePersonalOwner
	}
	switch ctx.EffectiveRole {
	case orgctx.RoleOwner, orgctx.RoleAdmin:
		return true
	case orgctx.RolePersonalOwner, orgctx.RoleTechnician, orgctx.RoleEditor,
		orgctx.RoleProjectManager, orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanManageTeam covers member role changes, removals and invitations.
func CanManageTeam(ctx *orgctx.Context) bool {
	return CanManageOrgSettings(ctx)
}

// CanManageCustomers covers customer CRUD, inquiries and inquiry conversion.
func CanManageCustomers(ctx *orgctx.Context) bool {
	if ctx.IsPersonalOrg {
		return ctx.EffectiveRole == orgctx.RolePersonalOwner
	}
	switch ctx.EffectiveRole {
	case orgctx.RoleOwner, orgctx.RoleAdmin, orgctx.RoleProjectManager:
		return true
	case orgctx.RolePersonalOwner, orgctx.RoleTechnician, orgctx.RoleEditor,
		orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanViewProject requires the project to live in the active org.
func CanViewProject(ctx *orgctx.Context, p *models.Project) bool {
	if p.OrganizationID != ctx.Org.ID {
		return false
	}
	if ctx.IsPersonalOrg {
		return ctx.EffectiveRole == orgctx.RolePersonalOwner
	}
	return ctx.EffectiveRole != orgctx.RoleNone
}

// CanManageProject gates assignment, scheduling and broad status changes.
// A PROJECT_MANAGER may only manage projects explicitly assigned to them.
func CanManageProject(ctx *orgctx.Context, p *models.Project) bool {
	if p.OrganizationID != ctx.Org.ID {
		return false
	}
	switch ctx.EffectiveRole {
	case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin:
		return true
	case orgctx.RoleProjectManager:
		return p.ProjectManagerID != nil && *p.ProjectManagerID == ctx.User.ID
	case orgctx.RoleTechnician, orgctx.RoleEditor, orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanDeleteProject excludes PROJECT_MANAGER even on their own projects.
func CanDeleteProject(ctx *orgctx.Context, p *models.Project) bool {
	if p.OrganizationID != ctx.Org.ID {
		return false
	}
	switch ctx.EffectiveRole {
	case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin:
		return true
	case orgctx.RoleProjectManager, orgctx.RoleTechnician, orgctx.RoleEditor,
		orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanChangeProjectCustomer follows the delete rule, not the manage rule.
func CanChangeProjectCustomer(ctx *orgctx.Context, p *models.Project) bool {
	return CanDeleteProject(ctx, p)
}

// CanUpdateOwnWork admits managers plus the assigned technician or editor.
func CanUpdateOwnWork(ctx *orgctx.Context, p *models.Project) bool {
	if CanManageProject(ctx, p) {
		return true
	}
	if p.OrganizationID != ctx.Org.ID {
		return false
	}
	switch ctx.EffectiveRole {
	case orgctx.RoleTechnician:
		return p.TechnicianID != nil && *p.TechnicianID == ctx.User.ID
	case orgctx.RoleEditor:
		return p.EditorID != nil && *p.EditorID == ctx.User.ID
	case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin,
		orgctx.RoleProjectManager, orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanUploadMedia matches the own-work rule.
func CanUploadMedia(ctx *orgctx.Context, p *models.Project) bool {
	return CanUpdateOwnWork(ctx, p)
}

// managerRole reports membership in the customer-facing manager set:
// PERSONAL_OWNER, OWNER, ADMIN, PROJECT_MANAGER.
func managerRole(r orgctx.Role) bool {
	switch r {
	case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin, orgctx.RoleProjectManager:
		return true
	case orgctx.RoleTechnician, orgctx.RoleEditor, orgctx.RoleAgent, orgctx.RoleNone:
		return false
	}
	return false
}

// CanPostMessage: the team channel is open to any member; the customer
// channel is restricted to manager roles.
func CanPostMessage(ctx *orgctx.Context, p *models.Project, channel models.ChatChannel) bool {
	if p.OrganizationID != ctx.Org.ID {
		return false
	}
	switch channel {
	case models.ChannelTeam:
		return ctx.EffectiveRole != orgctx.RoleNone
	case models.ChannelCustomer:
		return managerRole(ctx.EffectiveRole)
	}
	return false
}

// CanReadChannel: technicians and editors read team chat only on projects
// they are assigned to; manager roles read it everywhere, mirroring the post
// rule. Customer chat is manager-only plus the linked customer
// (isLinkedCustomer is resolved by the caller from the OrganizationCustomer
// relation).
func CanReadChannel(ctx *orgctx.Context, p *models.Project, channel models.ChatChannel, isLinkedCustomer bool) bool {
	if p.OrganizationID != ctx.Org.ID && !isLinkedCustomer {
		return false
	}
	switch channel {
	case models.ChannelTeam:
		switch ctx.EffectiveRole {
		case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin, orgctx.RoleProjectManager:
			return true
		case orgctx.RoleTechnician:
			return p.TechnicianID != nil && *p.TechnicianID == ctx.User.ID
		case orgctx.RoleEditor:
			return p.EditorID != nil && *p.EditorID == ctx.User.ID
		case orgctx.RoleAgent, orgctx.RoleNone:
			return false
		}
		return false
	case models.ChannelCustomer:
		return managerRole(ctx.EffectiveRole) || isLinkedCustomer
	}
	return false
}

// CanCreateOrganization rejects PERSONAL outright: personal orgs are
// provisioned at registration, never through the API.
func CanCreateOrganization(orgType models.OrgType) bool {
	return orgType.Valid() && orgType != models.OrgPersonal
}

// CanChangeMemberRole applies the role-change rules between an actor and a
// target member. Promotion of anyone to OWNER is reserved to the current
// OWNER; an ADMIN may never touch an OWNER's role.
func CanChangeMemberRole(ctx *orgctx.Context, target *models.OrganizationMember, newRole models.OrgRole) bool {
	if !CanManageTeam(ctx) {
		return false
	}
	if target.OrganizationID != ctx.Org.ID {
		return false
	}
	actorRole := ctx.EffectiveRole
	if target.Role == models.RoleOwner && actorRole != orgctx.RoleOwner && actorRole != orgctx.RolePersonalOwner {
		return false
	}
	if newRole == models.RoleOwner && actorRole != orgctx.RoleOwner {
		return false
	}
	return true
}
