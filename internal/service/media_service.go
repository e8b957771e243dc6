package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

type MediaService struct {
	repo     repository.Repository
	auditLog *audit.Logger
}

func NewMediaService(repo repository.Repository, auditLog *audit.Logger) *MediaService {
	return &MediaService{repo: repo, auditLog: auditLog}
}

func (s *MediaService) List(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	return s.repo.ListMedia(ctx, pageIndex, pageSize)
}

func (s *MediaService) ListDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	metrics.DynamicQueriesTotal.WithLabelValues("media").Inc()
	return s.repo.ListMediaDynamic(ctx, q)
}

func (s *MediaService) Get(ctx context.Context, id string) (*models.MediaAsset, error) {
	return s.repo.GetMediaByID(ctx, id)
}

func (s *MediaService) Create(ctx context.Context, req *models.CreateMediaRequest, uploaderID, actor string) (*models.MediaAsset, error) {
	verr := newValidationError()
	if req.FileName == "" {
		verr.add("fileName", "file name is required")
	}
	if req.URL == "" {
		verr.add("url", "url is required")
	}
	if req.SizeBytes < 0 {
		verr.add("sizeBytes", "size must not be negative")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	assetID, _ := uuid.NewV7()
	asset := &models.MediaAsset{
		ID:          assetID.String(),
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		URL:         req.URL,
		UploadedBy:  uploaderID,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateMedia(ctx, asset); err != nil {
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionCreate, models.EntityMedia, asset.ID,
		fmt.Sprintf("registered asset %s", asset.FileName))
	return asset, nil
}

func (s *MediaService) Delete(ctx context.Context, id, actor string) error {
	asset, err := s.repo.GetMediaByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		return err
	}
	s.auditLog.Record(ctx, actor, models.ActionDelete, models.EntityMedia, id,
		fmt.Sprintf("deleted asset %s", asset.FileName))
	return nil
}
