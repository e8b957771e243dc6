package service

import (
	"context"
	"errors"
	"testing"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
)

func setupContentService() (*ContentService, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	auditLog := audit.NewLogger(repo, quietLogger())
	return NewContentService(repo, auditLog), repo
}

func TestCreateContentValidation(t *testing.T) {
	svc, _ := setupContentService()

	tests := []struct {
		name    string
		request *models.CreateContentRequest
		field   string
	}{
		{"missing title", &models.CreateContentRequest{Slug: "ok-slug"}, "title"},
		{"missing slug", &models.CreateContentRequest{Title: "Post"}, "slug"},
		{"uppercase slug", &models.CreateContentRequest{Title: "Post", Slug: "Not-Valid"}, "slug"},
		{"trailing hyphen", &models.CreateContentRequest{Title: "Post", Slug: "post-"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.request, "author-1", "admin@example.com")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Fields[tt.field]) == 0 {
				t.Errorf("Expected a message for field %q, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestCreateContentStartsAsDraft(t *testing.T) {
	svc, _ := setupContentService()

	content, err := svc.Create(context.Background(), &models.CreateContentRequest{
		Title: "Launch Notes",
		Slug:  "launch-notes",
		Body:  "hello",
	}, "author-1", "admin@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if content.Status != models.ContentDraft {
		t.Errorf("Expected draft status, got %s", content.Status)
	}
	if content.PublishedAt != nil {
		t.Error("Expected no publish timestamp on a draft")
	}
	if content.AuthorID != "author-1" {
		t.Errorf("Expected author-1, got %s", content.AuthorID)
	}
}

func TestCreateContentDuplicateSlug(t *testing.T) {
	svc, _ := setupContentService()

	req := &models.CreateContentRequest{Title: "One", Slug: "same-slug"}
	if _, err := svc.Create(context.Background(), req, "author-1", "admin@example.com"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create(context.Background(), &models.CreateContentRequest{
		Title: "Two", Slug: "same-slug",
	}, "author-1", "admin@example.com")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for duplicate slug, got %v", err)
	}
	if len(verr.Fields["slug"]) == 0 {
		t.Errorf("Expected a slug field message, got %v", verr.Fields)
	}
}

func TestPublishContent(t *testing.T) {
	svc, _ := setupContentService()

	content, err := svc.Create(context.Background(), &models.CreateContentRequest{
		Title: "Launch Notes",
		Slug:  "launch-notes",
	}, "author-1", "admin@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	published, err := svc.Publish(context.Background(), content.ID, "admin@example.com")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.Status != models.ContentPublished {
		t.Errorf("Expected published status, got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatal("Expected a publish timestamp")
	}

	if _, err := svc.Publish(context.Background(), "no-such-id", "admin@example.com"); !errors.Is(err, repository.ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound, got %v", err)
	}
}

func TestMediaCreateValidation(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewMediaService(repo, audit.NewLogger(repo, quietLogger()))

	_, err := svc.Create(context.Background(), &models.CreateMediaRequest{
		ContentType: "image/png",
		SizeBytes:   -1,
	}, "uploader-1", "admin@example.com")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	for _, field := range []string{"fileName", "url", "sizeBytes"} {
		if len(verr.Fields[field]) == 0 {
			t.Errorf("Expected a message for field %q, got %v", field, verr.Fields)
		}
	}
}

func TestMediaLifecycle(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewMediaService(repo, audit.NewLogger(repo, quietLogger()))

	asset, err := svc.Create(context.Background(), &models.CreateMediaRequest{
		FileName:    "hero.png",
		ContentType: "image/png",
		SizeBytes:   2048,
		URL:         "https://cdn.example.com/hero.png",
	}, "uploader-1", "admin@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Get(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.FileName != "hero.png" {
		t.Errorf("Expected hero.png, got %s", got.FileName)
	}

	if err := svc.Delete(context.Background(), asset.ID, "admin@example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), asset.ID); !errors.Is(err, repository.ErrMediaNotFound) {
		t.Errorf("Expected ErrMediaNotFound after delete, got %v", err)
	}
}
