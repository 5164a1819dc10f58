package handlers

import (
	"encoding/json"
	"net/http"

	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

type ProjectHandler struct {
	svc *projects.Service
}

func NewProjectHandler(svc *projects.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projects.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.Create(orgContext(r), &req)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(orgContext(r))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req projects.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.UpdateDetails(orgContext(r), param(r, "project_id"), &req)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(orgContext(r), param(r, "project_id")); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AssignRequest struct {
	UserID string `json:"user_id"`
}

type AssignResponse struct {
	Project *models.Project `json:"project"`
	// Warning is set when the assignee's availability could not be confirmed
	// but the assignment went through anyway.
	Warning string `json:"warning,omitempty"`
}

func (h *ProjectHandler) AssignTechnician(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, warning, err := h.svc.AssignTechnician(orgContext(r), param(r, "project_id"), req.UserID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssignResponse{Project: p, Warning: warning})
}

func (h *ProjectHandler) AssignEditor(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.AssignEditor(orgContext(r), param(r, "project_id"), req.UserID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssignResponse{Project: p})
}

func (h *ProjectHandler) AssignProjectManager(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.AssignProjectManager(orgContext(r), param(r, "project_id"), req.UserID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssignResponse{Project: p})
}

type AssignCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

func (h *ProjectHandler) AssignCustomer(w http.ResponseWriter, r *http.Request) {
	var req AssignCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.AssignCustomer(orgContext(r), param(r, "project_id"), req.CustomerID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AssignResponse{Project: p})
}

type StatusRequest struct {
	Status models.ProjectStatus `json:"status"`
}

func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	p, err := h.svc.UpdateStatus(orgContext(r), param(r, "project_id"), req.Status)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) EnableDelivery(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.EnableDelivery(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) DisableDelivery(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.DisableDelivery(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) RegenerateDeliveryToken(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.RegenerateDeliveryToken(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
