package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type ContentService struct {
	repo     repository.Repository
	auditLog *audit.Logger
}

func NewContentService(repo repository.Repository, auditLog *audit.Logger) *ContentService {
	return &ContentService{repo: repo, auditLog: auditLog}
}

func (s *ContentService) List(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.Content], error) {
	return s.repo.ListContents(ctx, pageIndex, pageSize)
}

func (s *ContentService) ListDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.Content], error) {
	metrics.DynamicQueriesTotal.WithLabelValues("contents").Inc()
	return s.repo.ListContentsDynamic(ctx, q)
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	return s.repo.GetContentByID(ctx, id)
}

func validateContent(title, slug string) error {
	verr := newValidationError()
	if title == "" {
		verr.add("title", "title is required")
	}
	if slug == "" {
		verr.add("slug", "slug is required")
	} else if !slugPattern.MatchString(slug) {
		verr.add("slug", "slug must be lowercase letters, digits and hyphens")
	}
	return verr.orNil()
}

func (s *ContentService) Create(ctx context.Context, req *models.CreateContentRequest, authorID, actor string) (*models.Content, error) {
	if err := validateContent(req.Title, req.Slug); err != nil {
		return nil, err
	}

	contentID, _ := uuid.NewV7()
	now := time.Now()
	content := &models.Content{
		ID:        contentID.String(),
		Title:     req.Title,
		Slug:      req.Slug,
		Body:      req.Body,
		Status:    models.ContentDraft,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateContent(ctx, content); err != nil {
		if err == repository.ErrSlugExists {
			verr := newValidationError()
			verr.add("slug", "slug is already in use")
			return nil, verr
		}
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionCreate, models.EntityContent, content.ID,
		fmt.Sprintf("created draft %q", content.Title))
	return content, nil
}

func (s *ContentService) Update(ctx context.Context, id string, req *models.UpdateContentRequest, actor string) (*models.Content, error) {
	content, err := s.repo.GetContentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		content.Title = req.Title
	}
	if req.Slug != "" {
		if !slugPattern.MatchString(req.Slug) {
			verr := newValidationError()
			verr.add("slug", "slug must be lowercase letters, digits and hyphens")
			return nil, verr
		}
		content.Slug = req.Slug
	}
	if req.Body != "" {
		content.Body = req.Body
	}
	content.UpdatedAt = time.Now()

	if err := s.repo.UpdateContent(ctx, content); err != nil {
		if err == repository.ErrSlugExists {
			verr := newValidationError()
			verr.add("slug", "slug is already in use")
			return nil, verr
		}
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionUpdate, models.EntityContent, content.ID,
		fmt.Sprintf("updated %q", content.Title))
	return content, nil
}

func (s *ContentService) Delete(ctx context.Context, id, actor string) error {
	content, err := s.repo.GetContentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteContent(ctx, id); err != nil {
		return err
	}
	s.auditLog.Record(ctx, actor, models.ActionDelete, models.EntityContent, id,
		fmt.Sprintf("deleted %q", content.Title))
	return nil
}

// Publish moves a draft to the published state. Publishing an already
// published item only bumps its timestamp.
func (s *ContentService) Publish(ctx context.Context, id, actor string) (*models.Content, error) {
	content, err := s.repo.GetContentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	content.Status = models.ContentPublished
	content.PublishedAt = &now
	content.UpdatedAt = now

	if err := s.repo.UpdateContent(ctx, content); err != nil {
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionPublish, models.EntityContent, content.ID,
		fmt.Sprintf("published %q", content.Title))
	return content, nil
}
