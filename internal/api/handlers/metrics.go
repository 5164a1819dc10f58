package handlers

import (
	"fmt"
	"net/http"

	"shootflow/internal/engine/artifacts"
	"shootflow/internal/platform/models"
)

// MetricsHandler exports a small plaintext snapshot in the Prometheus
// exposition format. The archive queue is the only thing worth watching;
// everything else is visible through logs.
type MetricsHandler struct {
	artifacts *artifacts.Repository
}

func NewMetricsHandler(artifactRepo *artifacts.Repository) *MetricsHandler {
	return &MetricsHandler{artifacts: artifactRepo}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	fmt.Fprintf(w, "# HELP shootflow_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE shootflow_up gauge\n")
	fmt.Fprintf(w, "shootflow_up 1\n")

	counts, err := h.artifacts.CountByStatus()
	if err != nil {
		return
	}

	fmt.Fprintf(w, "# HELP shootflow_artifacts Download artifacts by status\n")
	fmt.Fprintf(w, "# TYPE shootflow_artifacts gauge\n")
	for _, status := range []models.ArtifactStatus{models.ArtifactPending, models.ArtifactGenerating, models.ArtifactReady, models.ArtifactFailed} {
		fmt.Fprintf(w, "shootflow_artifacts{status=%q} %d\n", string(status), counts[status])
	}
}
