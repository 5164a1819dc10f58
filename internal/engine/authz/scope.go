package authz

import (
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/platform/models"
)

// ListScopeKind names the query shape a caller is entitled to when listing
// projects. Getting this branch order wrong either leaks projects across
// orgs or blanks out a legitimate agent, so the resolution lives here in one
// pure function.
type ListScopeKind int

const (
	// ScopeForbidden: caller may not list projects in this org.
	ScopeForbidden ListScopeKind = iota
	// ScopeAllOrgsAsCustomer: agent in their personal org; all projects
	// across every org where they are the linked customer.
	ScopeAllOrgsAsCustomer
	// ScopeOrgAsCustomer: agent without membership in a specific org;
	// projects in that org where they are the linked customer.
	ScopeOrgAsCustomer
	// ScopeAllInOrg: manager roles; every project in the org.
	ScopeAllInOrg
	// ScopeAssignedTechnician / ScopeAssignedEditor: only own assignments.
	ScopeAssignedTechnician
	ScopeAssignedEditor
	// ScopeAssignedPM: union of PM-assigned and own technician/editor
	// assignments, de-duplicated.
	ScopeAssignedPM
)

type ListScope struct {
	Kind   ListScopeKind
	OrgID  string
	UserID string
}

// ProjectListScope resolves the listing branch for a caller. The agent
// customer bypass applies only to accountType AGENT; every other account
// type with no membership is forbidden.
func ProjectListScope(ctx *orgctx.Context) ListScope {
	user := ctx.User

	if user.AccountType == models.AccountAgent && ctx.IsPersonalOrg &&
		ctx.EffectiveRole == orgctx.RolePersonalOwner {
		return ListScope{Kind: ScopeAllOrgsAsCustomer, UserID: user.ID}
	}

	if ctx.EffectiveRole == orgctx.RoleNone {
		if user.AccountType == models.AccountAgent {
			return ListScope{Kind: ScopeOrgAsCustomer, OrgID: ctx.Org.ID, UserID: user.ID}
		}
		return ListScope{Kind: ScopeForbidden}
	}

	switch ctx.EffectiveRole {
	case orgctx.RolePersonalOwner, orgctx.RoleOwner, orgctx.RoleAdmin:
		return ListScope{Kind: ScopeAllInOrg, OrgID: ctx.Org.ID}
	case orgctx.RoleTechnician:
		return ListScope{Kind: ScopeAssignedTechnician, OrgID: ctx.Org.ID, UserID: user.ID}
	case orgctx.RoleEditor:
		return ListScope{Kind: ScopeAssignedEditor, OrgID: ctx.Org.ID, UserID: user.ID}
	case orgctx.RoleProjectManager:
		return ListScope{Kind: ScopeAssignedPM, OrgID: ctx.Org.ID, UserID: user.ID}
	case orgctx.RoleAgent:
		// AGENT membership role: sees projects where they are the linked
		// customer, same shape as the non-member agent case.
		return ListScope{Kind: ScopeOrgAsCustomer, OrgID: ctx.Org.ID, UserID: user.ID}
	case orgctx.RoleNone:
		return ListScope{Kind: ScopeForbidden}
	}
	return ListScope{Kind: ScopeForbidden}
}
