package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "shootflow/internal/api/context"
	"shootflow/internal/pkg/errors"
	"shootflow/internal/platform/auth"
	"shootflow/internal/platform/repositories"
)

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	userRepo *repositories.UserRepository
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, userRepo *repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo}
}

// Handle validates the bearer token and attaches both the claims and the
// loaded user row to the request context.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		user, err := m.userRepo.GetByID(claims.UserID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load user", nil)
			return
		}
		if user == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "User not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		ctx = context.WithValue(ctx, apiContext.CurrentUser, user)
		next(w, r.WithContext(ctx))
	}
}
