package auth

import (
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateAccessToken("01ABC", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateToken(token, PurposeAccess)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "01ABC" {
		t.Errorf("expected user ID 01ABC, got %s", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", claims.Email)
	}
}

func TestTokenPurposeMismatch(t *testing.T) {
	InitializeJWT("test-secret")

	resetToken, err := GeneratePasswordResetToken("01ABC", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GeneratePasswordResetToken: %v", err)
	}

	// A reset token must never open a session
	if _, err := ValidateToken(resetToken, PurposeAccess); err == nil {
		t.Error("expected reset token to be rejected as access token")
	}

	accessToken, err := GenerateAccessToken("01ABC", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ValidateToken(accessToken, PurposePasswordReset); err == nil {
		t.Error("expected access token to be rejected as reset token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	InitializeJWT("test-secret")

	token, err := GenerateAccessToken("01ABC", "alice@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ValidateToken(token, PurposeAccess); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	InitializeJWT("secret-one")
	token, err := GenerateAccessToken("01ABC", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	InitializeJWT("secret-two")
	if _, err := ValidateToken(token, PurposeAccess); err == nil {
		t.Error("expected token signed with a different secret to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if hash == "secret123" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	if err := VerifyPassword("secret123", hash); err != nil {
		t.Errorf("expected correct password to verify: %v", err)
	}
	if err := VerifyPassword("wrong", hash); err == nil {
		t.Error("expected wrong password to fail verification")
	}
}
