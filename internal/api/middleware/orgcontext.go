package middleware

import (
	"context"
	"net/http"

	apiContext "shootflow/internal/api/context"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/models"
)

// OrgHeader selects the active organization for a request. When absent the
// caller's PERSONAL org is used.
const OrgHeader = "X-Organization-ID"

type OrgContextMiddleware struct {
	resolver *orgctx.Resolver
}

func NewOrgContextMiddleware(resolver *orgctx.Resolver) *OrgContextMiddleware {
	return &OrgContextMiddleware{resolver: resolver}
}

// Handle resolves the caller's standing in the active org and attaches the
// orgctx.Context. A caller with no membership still passes through with
// RoleNone; only a nonexistent org is rejected here.
func (m *OrgContextMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(apiContext.CurrentUser).(*models.User)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authenticated user found", nil)
			return
		}

		octx, err := m.resolver.Resolve(user, r.Header.Get(OrgHeader))
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to resolve organization", nil)
			return
		}
		if octx == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.OrgContext, octx)
		next(w, r.WithContext(ctx))
	}
}
