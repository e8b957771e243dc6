package tokens

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAccessToken(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key-that-is-long-enough")

	tests := []struct {
		name   string
		userID string
		email  string
		roles  []string
	}{
		{
			name:   "single role",
			userID: "user-123",
			email:  "admin@example.com",
			roles:  []string{"Admin"},
		},
		{
			name:   "multiple roles",
			userID: "user-456",
			email:  "editor@example.com",
			roles:  []string{"Admin", "Editor", "Viewer"},
		},
		{
			name:   "no roles",
			userID: "user-789",
			email:  "nobody@example.com",
			roles:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tg.GenerateAccessToken(tt.userID, tt.email, tt.roles)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if parts := strings.Split(token, "."); len(parts) != 3 {
				t.Errorf("Expected 3 JWT parts, got %d", len(parts))
			}
		})
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key-that-is-long-enough",
		WithAccessTTL(30*time.Minute))

	tokenString, err := tg.GenerateAccessToken("user-123", "admin@example.com", []string{"Admin", "Viewer"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := tg.ValidateAccessToken(tokenString)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("Expected UserID user-123, got %s", claims.UserID)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("Expected email admin@example.com, got %s", claims.Email)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "Admin" {
		t.Errorf("Roles not preserved: %v", claims.Roles)
	}
	if claims.Issuer != "backoffice-auth" {
		t.Errorf("Expected issuer 'backoffice-auth', got %s", claims.Issuer)
	}

	if claims.ExpiresAt == nil {
		t.Fatal("Expected ExpiresAt to be set")
	}
	expectedExpiry := time.Now().Add(30 * time.Minute)
	if claims.ExpiresAt.Time.Before(expectedExpiry.Add(-5*time.Second)) ||
		claims.ExpiresAt.Time.After(expectedExpiry.Add(5*time.Second)) {
		t.Errorf("Expected expiry around %v, got %v", expectedExpiry, claims.ExpiresAt.Time)
	}
}

func TestValidateAccessToken(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key-that-is-long-enough")
	validToken, _ := tg.GenerateAccessToken("user-123", "a@example.com", []string{"Admin"})

	other := NewTokenGenerator("different-secret-key-that-is-long")
	foreignToken, _ := other.GenerateAccessToken("user-456", "b@example.com", nil)

	tests := []struct {
		name        string
		tokenString string
		expectError bool
	}{
		{name: "valid token", tokenString: validToken},
		{name: "empty token", tokenString: "", expectError: true},
		{name: "garbage token", tokenString: "not-a-jwt", expectError: true},
		{name: "missing parts", tokenString: "header.payload", expectError: true},
		{name: "wrong secret", tokenString: foreignToken, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tg.ValidateAccessToken(tt.tokenString)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if claims.UserID != "user-123" {
				t.Errorf("Expected UserID user-123, got %s", claims.UserID)
			}
		})
	}
}

func TestValidateExpiredToken(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key-that-is-long-enough")

	claims := Claims{
		UserID: "user-expired",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "backoffice-auth",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expired, err := token.SignedString(tg.secret)
	if err != nil {
		t.Fatalf("Failed to create expired token: %v", err)
	}

	_, err = tg.ValidateAccessToken(expired)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("Expected ErrExpiredToken, got %v", err)
	}
}

func TestGenerateRefreshTokenUniqueness(t *testing.T) {
	tg := NewTokenGenerator("secret")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := tg.GenerateRefreshToken()
		if err != nil {
			t.Fatalf("Failed to generate token: %v", err)
		}
		if token == "" {
			t.Fatal("Expected non-empty refresh token")
		}
		if seen[token] {
			t.Fatalf("Generated duplicate refresh token: %s", token)
		}
		seen[token] = true
	}
}
