package handlers

import (
	"net/http"
	"strconv"

	"shootflow/internal/engine/authz"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/audit"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(auditLog *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: auditLog}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	octx := orgContext(r)
	if !authz.CanManageOrgSettings(octx) {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Cannot view the audit log", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	entries, err := h.audit.List(octx.Org.ID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
