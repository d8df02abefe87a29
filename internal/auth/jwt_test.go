package auth_test

import (
	"testing"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/auth"
	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	staffID := uuid.New()
	email := "cashier@gloriapos.com"
	role := "cashier"

	token, err := auth.GenerateToken(secret, staffID, email, role, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.StaffID != staffID {
		t.Errorf("staff ID: got %v, want %v", claims.StaffID, staffID)
	}
	if claims.Email != email {
		t.Errorf("email: got %v, want %v", claims.Email, email)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
	if claims.Subject != staffID.String() {
		t.Errorf("subject: got %v", claims.Subject)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "a@b.c", "cashier", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	token, err := auth.GenerateToken("secret", uuid.New(), "a@b.c", "admin", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := auth.ValidateToken("secret", token); err == nil {
		t.Fatal("expected error validating expired token")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}
