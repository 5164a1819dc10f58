package handlers

import (
	"encoding/json"
	"net/http"

	"shootflow/internal/engine/messaging"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

type MessageHandler struct {
	svc *messaging.Service
}

func NewMessageHandler(svc *messaging.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req messaging.PostInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	msg, err := h.svc.Post(orgContext(r), param(r, "project_id"), &req)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	channel := models.ChatChannel(r.URL.Query().Get("channel"))
	if channel == "" {
		channel = models.ChannelTeam
	}

	msgs, err := h.svc.ListChannel(orgContext(r), param(r, "project_id"), channel)
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
