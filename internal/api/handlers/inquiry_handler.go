package handlers

import (
	"encoding/json"
	"net/http"

	"shootflow/internal/engine/inquiries"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

type InquiryHandler struct {
	svc *inquiries.Service
}

func NewInquiryHandler(svc *inquiries.Service) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

// CreatePublic is the unauthenticated intake endpoint: anyone can submit an
// inquiry to an org's booking page.
func (h *InquiryHandler) CreatePublic(w http.ResponseWriter, r *http.Request) {
	var req inquiries.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	q, err := h.svc.Create(param(r, "org_id"), &req)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(orgContext(r))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type InquiryStatusRequest struct {
	Status models.InquiryStatus `json:"status"`
}

func (h *InquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req InquiryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	q, err := h.svc.UpdateStatus(orgContext(r), param(r, "inquiry_id"), req.Status)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Convert turns an inquiry into a customer and a BOOKED project.
func (h *InquiryHandler) Convert(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Convert(orgContext(r), param(r, "inquiry_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
