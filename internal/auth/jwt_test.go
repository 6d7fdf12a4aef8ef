package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
)

func TestGenerateAndValidateProfileToken(t *testing.T) {
	secret := "test-secret"
	profileID := uuid.New()

	token, err := auth.GenerateProfileToken(secret, profileID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateProfileToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.ProfileID != profileID {
		t.Errorf("profile ID: got %v, want %v", claims.ProfileID, profileID)
	}
	if claims.ExpiresAt.Time.Before(time.Now().Add(300 * 24 * time.Hour)) {
		t.Errorf("expiry too short: %v", claims.ExpiresAt.Time)
	}
}

func TestValidateProfileTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateProfileToken("secret-a", uuid.New())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := auth.ValidateProfileToken("secret-b", token); err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateProfileTokenWithInvalidString(t *testing.T) {
	if _, err := auth.ValidateProfileToken("secret", "not-a-jwt"); err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestValidateProfileTokenWithoutProfile(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateProfileToken("secret", signed); err == nil {
		t.Fatal("expected error for token without profile id")
	}
}

func TestEmailFromIDToken(t *testing.T) {
	// Signed with a key this client never sees; the email is still readable.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "ana@example.com",
		"sub":   "user-1",
	})
	signed, err := token.SignedString([]byte("provider-key"))
	if err != nil {
		t.Fatal(err)
	}

	if got := auth.EmailFromIDToken(signed); got != "ana@example.com" {
		t.Errorf("email: got %q", got)
	}
	if got := auth.EmailFromIDToken("garbage"); got != "" {
		t.Errorf("email from garbage: got %q", got)
	}
}
