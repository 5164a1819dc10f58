package handlers

import (
	"net/http"
	"strconv"

	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/repositories"
)

type NotificationHandler struct {
	repo *repositories.NotificationRepository
}

func NewNotificationHandler(repo *repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	list, err := h.repo.ListForUser(octx.User.ID, octx.Org.ID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)

	count, err := h.repo.CountUnread(octx.User.ID, octx.Org.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)

	if err := h.repo.MarkRead(param(r, "notification_id"), octx.User.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)

	if err := h.repo.MarkAllRead(octx.User.ID, octx.Org.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
