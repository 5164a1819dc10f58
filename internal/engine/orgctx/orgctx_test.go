package orgctx

import (
	"testing"

	"shootflow/internal/platform/models"
)

func TestEffectiveRole(t *testing.T) {
	personal := &models.Organization{ID: "org_p", Type: models.OrgPersonal}
	team := &models.Organization{ID: "org_t", Type: models.OrgTeam}

	member := func(role models.OrgRole) *models.OrganizationMember {
		return &models.OrganizationMember{ID: "mem_1", OrganizationID: "org_t", UserID: "usr_1", Role: role}
	}

	tests := []struct {
		name       string
		org        *models.Organization
		membership *models.OrganizationMember
		want       Role
	}{
		{"no membership", team, nil, RoleNone},
		{"owner of personal org", personal, member(models.RoleOwner), RolePersonalOwner},
		{"admin in personal org stays admin", personal, member(models.RoleAdmin), RoleAdmin},
		{"owner of team org", team, member(models.RoleOwner), RoleOwner},
		{"admin", team, member(models.RoleAdmin), RoleAdmin},
		{"technician", team, member(models.RoleTechnician), RoleTechnician},
		{"editor", team, member(models.RoleEditor), RoleEditor},
		{"project manager", team, member(models.RoleProjectManager), RoleProjectManager},
		{"agent", team, member(models.RoleAgent), RoleAgent},
		{"unknown stored role", team, member(models.OrgRole("INTERN")), RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveRole(tt.org, tt.membership); got != tt.want {
				t.Errorf("EffectiveRole() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleManager(t *testing.T) {
	managers := []Role{RolePersonalOwner, RoleOwner, RoleAdmin}
	for _, r := range managers {
		if !r.Manager() {
			t.Errorf("%s.Manager() = false, want true", r)
		}
	}
	others := []Role{RoleProjectManager, RoleTechnician, RoleEditor, RoleAgent, RoleNone}
	for _, r := range others {
		if r.Manager() {
			t.Errorf("%s.Manager() = true, want false", r)
		}
	}
}
