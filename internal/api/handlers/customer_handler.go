package handlers

import (
	"encoding/json"
	"net/http"

	"shootflow/internal/engine/customers"
	"shootflow/internal/pkg/errors"
)

type CustomerHandler struct {
	svc *customers.Service
}

func NewCustomerHandler(svc *customers.Service) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	c, err := h.svc.Create(orgContext(r), customers.CreateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(orgContext(r))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(orgContext(r), param(r, "customer_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Notes *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	c, err := h.svc.Update(orgContext(r), param(r, "customer_id"), customers.UpdateInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(orgContext(r), param(r, "customer_id")); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
