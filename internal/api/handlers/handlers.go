// Package handlers contains the HTTP layer. Handlers decode requests, pull
// the authenticated user and org context out of the request, and delegate to
// the engine services; all policy lives below this layer.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "shootflow/internal/api/context"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/platform/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func currentUser(r *http.Request) *models.User {
	return r.Context().Value(apiContext.CurrentUser).(*models.User)
}

func orgContext(r *http.Request) *orgctx.Context {
	return r.Context().Value(apiContext.OrgContext).(*orgctx.Context)
}

func param(r *http.Request, name string) string {
	params, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return params.ByName(name)
}
