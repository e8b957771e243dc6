package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/handlers"
	"github.com/crestline-labs/backoffice/internal/logging"
	"github.com/crestline-labs/backoffice/internal/middleware"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/notification"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/internal/server"
	"github.com/crestline-labs/backoffice/internal/service"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
	"github.com/crestline-labs/backoffice/pkg/tokens"
)

type testEnv struct {
	server *httptest.Server
	repo   *repository.MemoryRepository
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.SeedRoles([]models.Role{
		{ID: "role-admin", Name: models.RoleAdmin},
		{ID: "role-editor", Name: models.RoleEditor},
		{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true},
	}, nil)

	logger := &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	tokenGen := tokens.NewTokenGenerator("test-jwt-secret-that-is-long-enough-for-hs256")
	auditLog := audit.NewLogger(repo, logger)
	center := notification.NewCenter(nil, nil, "", logger)

	h := server.Handlers{
		Auth:          handlers.NewAuthHandler(service.NewAuthService(repo, tokenGen, auditLog)),
		Users:         handlers.NewUserHandler(service.NewUserService(repo, auditLog)),
		Contents:      handlers.NewContentHandler(service.NewContentService(repo, auditLog)),
		Media:         handlers.NewMediaHandler(service.NewMediaService(repo, auditLog)),
		AuditLogs:     handlers.NewAuditLogHandler(repo),
		Notifications: handlers.NewNotificationHandler(center),
	}

	router := server.NewRouter(h, middleware.NewAuthMiddleware(tokenGen), middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, repo: repo}
}

func (e *testEnv) seedUser(t *testing.T, email string, roles ...models.Role) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if len(roles) == 0 {
		roles = []models.Role{{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true}}
	}
	user := &models.User{
		ID:           "user-" + email,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := e.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Email: email, Password: "password123"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
	var login models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return login.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestLoginAndMe(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")
	token := env.login(t, "viewer@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/accounts/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me returned %d", resp.StatusCode)
	}
	var me models.User
	decodeInto(t, resp, &me)
	if me.Email != "viewer@example.com" {
		t.Errorf("Expected viewer@example.com, got %s", me.Email)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Email: "viewer@example.com", Password: "wrong"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/users", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Email: "viewer@example.com", Password: "password123"})
	var login models.LoginResponse
	decodeInto(t, resp, &login)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "",
		models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh returned %d", resp.StatusCode)
	}
	var refreshed models.LoginResponse
	decodeInto(t, resp, &refreshed)
	if refreshed.AccessToken == "" {
		t.Error("Expected a fresh access token")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", "",
		models.RefreshTokenRequest{RefreshToken: "bogus"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a bogus refresh token, got %d", resp.StatusCode)
	}
}

func TestUserMutationsAreAdminOnly(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")
	token := env.login(t, "viewer@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/users", token, models.CreateUserRequest{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "User",
		Password:  "password123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin create, got %d", resp.StatusCode)
	}
}

func TestCreateUserValidationSurfacesFields(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "admin@example.com", models.Role{ID: "role-admin", Name: models.RoleAdmin})
	token := env.login(t, "admin@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/users", token, models.CreateUserRequest{
		Email:    "bad",
		Password: "short",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	var body struct {
		Error  string              `json:"error"`
		Fields map[string][]string `json:"fields"`
	}
	decodeInto(t, resp, &body)
	if body.Error != "validation failed" {
		t.Errorf("Expected top-level error, got %q", body.Error)
	}
	for _, field := range []string{"email", "firstName", "lastName", "password"} {
		if len(body.Fields[field]) == 0 {
			t.Errorf("Expected a message for field %q, got %v", field, body.Fields)
		}
	}
}

func TestUsersDynamicListing(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "admin@example.com", models.Role{ID: "role-admin", Name: models.RoleAdmin})
	for i := 0; i < 5; i++ {
		env.seedUser(t, fmt.Sprintf("member-%d@example.com", i))
	}
	token := env.login(t, "admin@example.com")

	q := dynquery.DynamicQuery{
		Filter: &dynquery.FilterDescriptor{
			Field:    "email",
			Operator: dynquery.OpContains,
			Value:    "member-",
		},
		Sort:      []dynquery.SortDescriptor{{Field: "email", Dir: dynquery.DirAsc}},
		PageIndex: 0,
		PageSize:  3,
	}
	resp := env.do(t, http.MethodPost, "/api/v1/users/dynamic", token, q)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dynamic listing returned %d", resp.StatusCode)
	}
	var page dynquery.PaginatedResponse[models.User]
	decodeInto(t, resp, &page)
	if page.TotalCount != 5 {
		t.Errorf("Expected 5 matches, got %d", page.TotalCount)
	}
	if len(page.Items) != 3 {
		t.Errorf("Expected a 3-item page, got %d", len(page.Items))
	}
	if page.TotalPages != 2 {
		t.Errorf("Expected 2 pages, got %d", page.TotalPages)
	}
	if page.Items[0].Email != "member-0@example.com" {
		t.Errorf("Expected ascending email sort, got %s first", page.Items[0].Email)
	}
}

func TestDynamicListingRejectsUnknownField(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")
	token := env.login(t, "viewer@example.com")

	q := dynquery.DynamicQuery{
		Filter: &dynquery.FilterDescriptor{
			Field:    "passwordHash",
			Operator: dynquery.OpContains,
			Value:    "x",
		},
	}
	resp := env.do(t, http.MethodPost, "/api/v1/users/dynamic", token, q)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown filter field, got %d", resp.StatusCode)
	}
}

func TestContentLifecycleOverHTTP(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "editor@example.com", models.Role{ID: "role-editor", Name: models.RoleEditor})
	token := env.login(t, "editor@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/contents", token, models.CreateContentRequest{
		Title: "Release Notes",
		Slug:  "release-notes",
		Body:  "hello",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	var content models.Content
	decodeInto(t, resp, &content)
	if content.Status != models.ContentDraft {
		t.Errorf("Expected draft, got %s", content.Status)
	}

	resp = env.do(t, http.MethodPost, "/api/v1/contents/"+content.ID+"/publish", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("publish returned %d", resp.StatusCode)
	}
	var published models.Content
	decodeInto(t, resp, &published)
	if published.Status != models.ContentPublished || published.PublishedAt == nil {
		t.Errorf("Expected published content with timestamp, got %+v", published)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/contents/no-such-id", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestAuditTrailIsAdminOnly(t *testing.T) {
	env := setupEnv(t)
	env.seedUser(t, "viewer@example.com")
	env.seedUser(t, "admin@example.com", models.Role{ID: "role-admin", Name: models.RoleAdmin})

	viewerToken := env.login(t, "viewer@example.com")
	resp := env.do(t, http.MethodGet, "/api/v1/auditlogs", viewerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for viewer, got %d", resp.StatusCode)
	}

	adminToken := env.login(t, "admin@example.com")
	resp = env.do(t, http.MethodGet, "/api/v1/auditlogs", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auditlogs returned %d", resp.StatusCode)
	}
	var page dynquery.PaginatedResponse[models.AuditLog]
	decodeInto(t, resp, &page)
	// Both logins above left audit entries.
	if page.TotalCount < 2 {
		t.Errorf("Expected at least 2 audit entries, got %d", page.TotalCount)
	}
}

func TestHealthz(t *testing.T) {
	env := setupEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
