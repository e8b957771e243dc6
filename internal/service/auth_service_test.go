package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/logging"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/tokens"
)

func quietLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testRoles() []models.Role {
	return []models.Role{
		{ID: "role-admin", Name: models.RoleAdmin},
		{ID: "role-editor", Name: models.RoleEditor},
		{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true},
	}
}

func setupAuthService() (*AuthService, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	repo.SeedRoles(testRoles(), nil)
	tokenGen := tokens.NewTokenGenerator("test-jwt-secret-that-is-long-enough-for-hs256")
	auditLog := audit.NewLogger(repo, quietLogger())
	return NewAuthService(repo, tokenGen, auditLog), repo
}

func seedUser(t *testing.T, repo *repository.MemoryRepository, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           "user-" + email,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Roles:        []models.Role{{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true}},
		IsActive:     active,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := setupAuthService()
	seedUser(t, repo, "admin@example.com", "password123", true)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("Expected an access token")
	}
	if resp.RefreshToken == "" {
		t.Error("Expected a refresh token")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("Expected token type Bearer, got %s", resp.TokenType)
	}
	if resp.ExpiresIn <= 0 {
		t.Errorf("Expected positive expires_in, got %d", resp.ExpiresIn)
	}

	// The refresh token must be backed by a live session.
	session, err := repo.GetSession(context.Background(), resp.RefreshToken)
	if err != nil {
		t.Fatalf("Expected session for refresh token: %v", err)
	}
	if !session.IsActive() {
		t.Error("Expected a live session after login")
	}
}

func TestLoginFailures(t *testing.T) {
	svc, repo := setupAuthService()
	seedUser(t, repo, "admin@example.com", "password123", true)
	seedUser(t, repo, "disabled@example.com", "password123", false)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown user", "nobody@example.com", "password123"},
		{"wrong password", "admin@example.com", "nope"},
		{"disabled account", "disabled@example.com", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &models.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, repo := setupAuthService()
	seedUser(t, repo, "admin@example.com", "password123", true)

	login, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("Expected a fresh access token")
	}
	if refreshed.RefreshToken != login.RefreshToken {
		t.Error("Refresh token should not rotate")
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	svc, repo := setupAuthService()
	user := seedUser(t, repo, "admin@example.com", "password123", true)

	login, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for unknown token, got %v", err)
	}

	if err := repo.RevokeSession(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for revoked session, got %v", err)
	}

	// A live session belonging to a deactivated account must also be refused.
	login2, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	user.IsActive = false
	if err := repo.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login2.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for deactivated account, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	svc, repo := setupAuthService()
	seedUser(t, repo, "admin@example.com", "password123", true)

	login, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	resp := svc.Validate(login.AccessToken)
	if !resp.Valid {
		t.Fatal("Expected a freshly issued token to validate")
	}
	if resp.UserID != "user-admin@example.com" {
		t.Errorf("Unexpected user ID %s", resp.UserID)
	}

	if svc.Validate("garbage").Valid {
		t.Error("Expected a garbage token to be invalid")
	}
}

func TestRevoke(t *testing.T) {
	svc, repo := setupAuthService()
	seedUser(t, repo, "admin@example.com", "password123", true)

	login, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.Revoke(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	session, err := repo.GetSession(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if session.IsActive() {
		t.Error("Expected a revoked session")
	}
}
