package jwt

import (
	"testing"
	"time"

	"disability-services-api/config"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: time.Minute,
	})

	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "+254700000000", 3)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Phone != "+254700000000" {
		t.Errorf("Phone = %q", claims.Phone)
	}
	if claims.RoleID != 3 {
		t.Errorf("RoleID = %d, want 3", claims.RoleID)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "secret-a", AccessExpiry: time.Minute})
	verifier := NewJWTService(config.JWTConfig{Secret: "secret-b", AccessExpiry: time.Minute})

	token, err := issuer.GenerateToken(uuid.New(), "+254700000000", 1)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: -time.Minute,
	})

	token, err := svc.GenerateToken(uuid.New(), "+254700000000", 1)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}
