package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"shootflow/internal/engine/availability"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

// AvailabilityHandler manages the caller's own scheduling settings; there is
// no cross-user surface here.
type AvailabilityHandler struct {
	svc *availability.Service
}

func NewAvailabilityHandler(svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.svc.GetUserAvailability(currentUser(r).ID)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	if setting == nil {
		// No settings row means always available.
		writeJSON(w, http.StatusOK, map[string]interface{}{"configured": false})
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AutoDeclineBookings bool  `json:"auto_decline_bookings"`
		WorkStartMinute     int   `json:"work_start_minute"`
		WorkEndMinute       int   `json:"work_end_minute"`
		WorkingDays         []int `json:"working_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	setting := &models.AvailabilitySetting{
		UserID:              currentUser(r).ID,
		AutoDeclineBookings: req.AutoDeclineBookings,
		WorkStartMinute:     req.WorkStartMinute,
		WorkEndMinute:       req.WorkEndMinute,
		WorkingDays:         req.WorkingDays,
		UpdatedAt:           time.Now().Unix(),
	}
	if err := h.svc.UpdateSettings(setting); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (h *AvailabilityHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartTime int64  `json:"start_time"`
		EndTime   int64  `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	block := &models.AvailabilityBlock{
		ID:        "blk_" + uuid.NewString(),
		UserID:    currentUser(r).ID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if err := h.svc.AddBlock(block); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (h *AvailabilityHandler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveBlock(param(r, "block_id"), currentUser(r).ID); err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
