package handlers

import (
	"net/http"

	"shootflow/internal/engine/artifacts"
	"shootflow/internal/pkg/errors"
)

type ArtifactHandler struct {
	svc *artifacts.Service
}

func NewArtifactHandler(svc *artifacts.Service) *ArtifactHandler {
	return &ArtifactHandler{svc: svc}
}

// Request enqueues a download archive build for the project. The worker
// picks it up asynchronously.
func (h *ArtifactHandler) Request(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Request(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, a)
}

func (h *ArtifactHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(orgContext(r), param(r, "project_id"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
