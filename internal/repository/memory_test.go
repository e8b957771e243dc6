package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

func seedUsers(t *testing.T, repo *MemoryRepository, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		err := repo.CreateUser(context.Background(), &models.User{
			ID:        fmt.Sprintf("user-%03d", i),
			Email:     fmt.Sprintf("user%03d@example.com", i),
			FirstName: fmt.Sprintf("First%03d", i),
			LastName:  fmt.Sprintf("Last%03d", i),
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to seed user %d: %v", i, err)
		}
	}
}

func TestMemoryUserCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	user := &models.User{
		ID:        "user-1",
		Email:     "admin@example.com",
		FirstName: "Ada",
		LastName:  "Admin",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.CreateUser(ctx, &models.User{ID: "user-2", Email: "admin@example.com"}); !errors.Is(err, ErrUserExists) {
		t.Errorf("Expected ErrUserExists for duplicate email, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("Expected user-1, got %s", got.ID)
	}

	got.FirstName = "Adele"
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	updated, _ := repo.GetUserByID(ctx, "user-1")
	if updated.FirstName != "Adele" {
		t.Errorf("Update not applied: %s", updated.FirstName)
	}

	if err := repo.DeleteUser(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, "user-1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestMemoryListUsersPagination(t *testing.T) {
	repo := NewMemoryRepository()
	seedUsers(t, repo, 25)

	page, err := repo.ListUsers(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if page.TotalCount != 25 {
		t.Errorf("Expected totalCount 25, got %d", page.TotalCount)
	}
	if page.TotalPages != 3 {
		t.Errorf("Expected totalPages 3, got %d", page.TotalPages)
	}
	if len(page.Items) != 10 {
		t.Errorf("Expected 10 items, got %d", len(page.Items))
	}
	// Default ordering is newest first.
	if page.Items[0].ID != "user-024" {
		t.Errorf("Expected newest user first, got %s", page.Items[0].ID)
	}

	last, err := repo.ListUsers(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(last.Items) != 5 {
		t.Errorf("Expected 5 items on last page, got %d", len(last.Items))
	}
	if last.HasNextPage {
		t.Error("Last page should not have next")
	}
}

func TestMemoryListUsersDynamicFilter(t *testing.T) {
	repo := NewMemoryRepository()
	seedUsers(t, repo, 20)

	page, err := repo.ListUsersDynamic(context.Background(), dynquery.DynamicQuery{
		Filter: &dynquery.FilterDescriptor{
			Field:    "email",
			Operator: dynquery.OpContains,
			Value:    "USER01", // case-insensitive by default
		},
		PageIndex: 0,
		PageSize:  10,
	})
	if err != nil {
		t.Fatalf("ListUsersDynamic failed: %v", err)
	}
	// user010 through user019
	if page.TotalCount != 10 {
		t.Errorf("Expected 10 matches, got %d", page.TotalCount)
	}

	sensitive, err := repo.ListUsersDynamic(context.Background(), dynquery.DynamicQuery{
		Filter: &dynquery.FilterDescriptor{
			Field:         "email",
			Operator:      dynquery.OpContains,
			Value:         "USER01",
			CaseSensitive: true,
		},
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListUsersDynamic failed: %v", err)
	}
	if sensitive.TotalCount != 0 {
		t.Errorf("Expected 0 case-sensitive matches, got %d", sensitive.TotalCount)
	}
}

func TestMemoryListUsersDynamicSort(t *testing.T) {
	repo := NewMemoryRepository()
	seedUsers(t, repo, 5)

	page, err := repo.ListUsersDynamic(context.Background(), dynquery.DynamicQuery{
		Sort:     []dynquery.SortDescriptor{{Field: "email", Dir: dynquery.DirAsc}},
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListUsersDynamic failed: %v", err)
	}
	if page.Items[0].Email != "user000@example.com" {
		t.Errorf("Expected ascending email order, got %s first", page.Items[0].Email)
	}

	desc, err := repo.ListUsersDynamic(context.Background(), dynquery.DynamicQuery{
		Sort:     []dynquery.SortDescriptor{{Field: "email", Dir: dynquery.DirDesc}},
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListUsersDynamic failed: %v", err)
	}
	if desc.Items[0].Email != "user004@example.com" {
		t.Errorf("Expected descending email order, got %s first", desc.Items[0].Email)
	}
}

func TestMemoryDynamicRejectsUnknownField(t *testing.T) {
	repo := NewMemoryRepository()
	seedUsers(t, repo, 1)

	_, err := repo.ListUsersDynamic(context.Background(), dynquery.DynamicQuery{
		Filter:   &dynquery.FilterDescriptor{Field: "passwordHash", Operator: dynquery.OpContains, Value: "x"},
		PageSize: 10,
	})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Expected ErrUnknownField, got %v", err)
	}
}

func TestMemoryUserRoles(t *testing.T) {
	repo := NewMemoryRepository()
	repo.SeedRoles([]models.Role{
		{ID: "role-admin", Name: models.RoleAdmin},
		{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true},
	}, nil)
	seedUsers(t, repo, 1)
	ctx := context.Background()

	if err := repo.AddUserRole(ctx, "user-000", "role-admin"); err != nil {
		t.Fatalf("AddUserRole failed: %v", err)
	}
	// Assigning twice is a no-op.
	if err := repo.AddUserRole(ctx, "user-000", "role-admin"); err != nil {
		t.Fatalf("AddUserRole second time failed: %v", err)
	}

	user, _ := repo.GetUserByID(ctx, "user-000")
	if len(user.Roles) != 1 || user.Roles[0].Name != models.RoleAdmin {
		t.Errorf("Expected single Admin role, got %v", user.Roles)
	}

	if err := repo.RemoveUserRole(ctx, "user-000", "role-admin"); err != nil {
		t.Fatalf("RemoveUserRole failed: %v", err)
	}
	if err := repo.RemoveUserRole(ctx, "user-000", "role-admin"); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("Expected ErrRoleNotFound on second removal, got %v", err)
	}

	if err := repo.AddUserRole(ctx, "user-000", "role-missing"); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("Expected ErrRoleNotFound for unknown role, got %v", err)
	}
}

func TestMemorySessions(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	session := &models.Session{
		ID:           "sess-1",
		UserID:       "user-1",
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := repo.GetSession(ctx, "rt-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !got.IsActive() {
		t.Error("Expected active session")
	}

	if err := repo.RevokeSession(ctx, "rt-1"); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	revoked, _ := repo.GetSession(ctx, "rt-1")
	if revoked.IsActive() {
		t.Error("Expected revoked session to be inactive")
	}

	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryContentSlugUniqueness(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &models.Content{ID: "c-1", Title: "Hello", Slug: "hello", Status: models.ContentDraft}
	if err := repo.CreateContent(ctx, first); err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}
	dup := &models.Content{ID: "c-2", Title: "Hello again", Slug: "hello"}
	if err := repo.CreateContent(ctx, dup); !errors.Is(err, ErrSlugExists) {
		t.Errorf("Expected ErrSlugExists, got %v", err)
	}
}

func TestMemoryAuditLogOrdering(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := repo.InsertAuditLog(ctx, &models.AuditLog{
			ID:        fmt.Sprintf("audit-%d", i),
			User:      "admin@example.com",
			Action:    models.ActionUpdate,
			Entity:    models.EntityUser,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("InsertAuditLog failed: %v", err)
		}
	}

	page, err := repo.ListAuditLogs(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListAuditLogs failed: %v", err)
	}
	if page.Items[0].ID != "audit-2" {
		t.Errorf("Expected newest entry first, got %s", page.Items[0].ID)
	}
}
