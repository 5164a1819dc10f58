package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	apiContext "shootflow/internal/api/context"
	"shootflow/internal/engine/orgctx"
	"shootflow/internal/platform/models"
	"shootflow/internal/platform/repositories"
)

func newOrgMiddleware(t *testing.T) (*OrgContextMiddleware, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	resolver := orgctx.NewResolver(
		repositories.NewOrganizationRepository(db),
		repositories.NewMemberRepository(db),
	)
	return NewOrgContextMiddleware(resolver), mock
}

func authedRequest(user *models.User) *http.Request {
	req := httptest.NewRequest("GET", "/api/v1/projects", nil)
	ctx := context.WithValue(req.Context(), apiContext.CurrentUser, user)
	return req.WithContext(ctx)
}

func orgRows(id, name, orgType string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "type", "personal_owner_id", "created_at", "updated_at"}).
		AddRow(id, name, orgType, nil, 100, 100)
}

func TestOrgContextMiddleware(t *testing.T) {
	user := &models.User{ID: "usr_1", AccountType: models.AccountProvider}

	t.Run("resolves org from header", func(t *testing.T) {
		mw, mock := newOrgMiddleware(t)
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_1").
			WillReturnRows(orgRows("org_1", "Skyline Media", "TEAM"))
		mock.ExpectQuery("SELECT (.+) FROM organization_members").
			WithArgs("org_1", "usr_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "user_id", "role", "created_at"}).
				AddRow("mem_1", "org_1", "usr_1", "ADMIN", 100))

		var got *orgctx.Context
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			got, _ = r.Context().Value(apiContext.OrgContext).(*orgctx.Context)
			w.WriteHeader(http.StatusOK)
		})

		req := authedRequest(user)
		req.Header.Set(OrgHeader, "org_1")
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got == nil || got.Org.ID != "org_1" || got.EffectiveRole != orgctx.RoleAdmin {
			t.Errorf("unexpected org context: %+v", got)
		}
	})

	t.Run("falls back to personal org without header", func(t *testing.T) {
		mw, mock := newOrgMiddleware(t)
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE type = 'PERSONAL'").
			WithArgs("usr_1").
			WillReturnRows(orgRows("org_p", "Dana Reed", "PERSONAL"))
		mock.ExpectQuery("SELECT (.+) FROM organization_members").
			WithArgs("org_p", "usr_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "user_id", "role", "created_at"}).
				AddRow("mem_1", "org_p", "usr_1", "OWNER", 100))

		var got *orgctx.Context
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			got, _ = r.Context().Value(apiContext.OrgContext).(*orgctx.Context)
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		handler(w, authedRequest(user))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got == nil || got.EffectiveRole != orgctx.RolePersonalOwner || !got.IsPersonalOrg {
			t.Errorf("unexpected org context: %+v", got)
		}
	})

	t.Run("non-member passes through with RoleNone", func(t *testing.T) {
		mw, mock := newOrgMiddleware(t)
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_1").
			WillReturnRows(orgRows("org_1", "Skyline Media", "TEAM"))
		mock.ExpectQuery("SELECT (.+) FROM organization_members").
			WithArgs("org_1", "usr_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "user_id", "role", "created_at"}))

		var got *orgctx.Context
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			got, _ = r.Context().Value(apiContext.OrgContext).(*orgctx.Context)
			w.WriteHeader(http.StatusOK)
		})

		req := authedRequest(user)
		req.Header.Set(OrgHeader, "org_1")
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: authorization decides, not resolution", w.Code)
		}
		if got == nil || got.EffectiveRole != orgctx.RoleNone || got.Membership != nil {
			t.Errorf("unexpected org context: %+v", got)
		}
	})

	t.Run("unknown org is 404", func(t *testing.T) {
		mw, mock := newOrgMiddleware(t)
		mock.ExpectQuery("SELECT (.+) FROM organizations WHERE id = ?").
			WithArgs("org_missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "personal_owner_id", "created_at", "updated_at"}))

		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run for an unknown org")
		})

		req := authedRequest(user)
		req.Header.Set(OrgHeader, "org_missing")
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("missing user is 401", func(t *testing.T) {
		mw, _ := newOrgMiddleware(t)
		handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run without a user")
		})

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/api/v1/projects", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}
