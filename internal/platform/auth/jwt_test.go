package auth

import (
	"testing"
	"time"

	"shootflow/internal/platform/config"
	"shootflow/internal/platform/models"
)

func testTokenService(accessTTL time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testTokenService(time.Minute)
	user := &models.User{ID: "usr_1", Email: "dana@example.com", AccountType: models.AccountProvider}

	token, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != "usr_1" || claims.Email != "dana@example.com" || claims.AccountType != models.AccountProvider {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := testTokenService(-time.Minute)
	token, err := svc.GenerateAccessToken(&models.User{ID: "usr_1"})
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token should not validate")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	svc := testTokenService(time.Minute)
	token, err := svc.GenerateAccessToken(&models.User{ID: "usr_1"})
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	other := NewTokenService(config.JWTConfig{Secret: "different-secret", AccessTokenTTL: time.Minute})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestRefreshToken(t *testing.T) {
	svc := testTokenService(time.Minute)

	token, err := svc.GenerateRefreshToken("usr_1")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}
	userID, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error: %v", err)
	}
	if userID != "usr_1" {
		t.Errorf("subject = %s, want usr_1", userID)
	}

	if _, err := svc.ValidateRefreshToken("not-a-token"); err == nil {
		t.Error("garbage refresh token should not validate")
	}
}
