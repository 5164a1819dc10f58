package handlers

import (
	"net/http"

	"shootflow/internal/engine/artifacts"
	"shootflow/internal/engine/projects"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

// DeliveryHandler serves the public delivery page. Access is by unguessable
// token only; no authentication.
type DeliveryHandler struct {
	projects  *projects.Service
	artifacts *artifacts.Repository
}

func NewDeliveryHandler(projectSvc *projects.Service, artifactRepo *artifacts.Repository) *DeliveryHandler {
	return &DeliveryHandler{projects: projectSvc, artifacts: artifactRepo}
}

type DeliveryView struct {
	Project   *models.Project            `json:"project"`
	Downloads []*models.DownloadArtifact `json:"downloads"`
}

func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetDeliveryByToken(param(r, "token"))
	if err != nil {
		errors.WriteServiceError(w, err)
		return
	}

	all, err := h.artifacts.ListByProject(p.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	// Only finished archives are shown on the public page.
	ready := make([]*models.DownloadArtifact, 0, len(all))
	for _, a := range all {
		if a.Status == models.ArtifactReady {
			ready = append(ready, a)
		}
	}

	writeJSON(w, http.StatusOK, DeliveryView{Project: p, Downloads: ready})
}
