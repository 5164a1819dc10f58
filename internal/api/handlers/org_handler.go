package handlers

import (
	"encoding/json"
	"net/http"

	"shootflow/internal/engine/orgs"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

type OrgHandler struct {
	orgSvc *orgs.Service
}

func NewOrgHandler(orgSvc *orgs.Service) *OrgHandler {
	return &OrgHandler{orgSvc: orgSvc}
}

type CreateOrgRequest struct {
	Name string         `json:"name"`
	Type models.OrgType `json:"type"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.orgSvc.Create(currentUser(r), req.Name, req.Type)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.orgSvc.ListForUser(currentUser(r).ID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type CurrentOrgResponse struct {
	Organization  *models.Organization `json:"organization"`
	EffectiveRole string               `json:"effective_role"`
	IsPersonalOrg bool                 `json:"is_personal_org"`
	IsManager     bool                 `json:"is_manager"`
}

func (h *OrgHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)
	writeJSON(w, http.StatusOK, CurrentOrgResponse{
		Organization:  octx.Org,
		EffectiveRole: string(octx.EffectiveRole),
		IsPersonalOrg: octx.IsPersonalOrg,
		IsManager:     octx.EffectiveRole.Manager(),
	})
}

type UpdateOrgRequest struct {
	Name string `json:"name"`
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.orgSvc.UpdateName(orgContext(r), req.Name)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.orgSvc.ListMembers(orgContext(r))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type ChangeRoleRequest struct {
	Role models.OrgRole `json:"role"`
}

func (h *OrgHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	member, err := h.orgSvc.ChangeMemberRole(orgContext(r), param(r, "member_id"), req.Role)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *OrgHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.orgSvc.RemoveMember(orgContext(r), param(r, "member_id")); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type InviteHandler struct {
	orgSvc *orgs.Service
}

func NewInviteHandler(orgSvc *orgs.Service) *InviteHandler {
	return &InviteHandler{orgSvc: orgSvc}
}

type CreateInviteRequest struct {
	Email string         `json:"email"`
	Role  models.OrgRole `json:"role"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	inv, err := h.orgSvc.Invite(orgContext(r), req.Email, req.Role)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.orgSvc.ListInvitations(orgContext(r))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.orgSvc.RevokeInvitation(orgContext(r), param(r, "invite_id")); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// Accept consumes an invitation token for the authenticated user. It does
// not require an org context: the invitation names the org.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	inv, err := h.orgSvc.AcceptInvitation(currentUser(r), req.Token)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
