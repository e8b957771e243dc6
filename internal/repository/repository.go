package repository

import (
	"context"
	"errors"

	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrRoleNotFound    = errors.New("role not found")
	ErrContentNotFound = errors.New("content not found")
	ErrSlugExists      = errors.New("slug already exists")
	ErrMediaNotFound   = errors.New("media not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.User], error)
	ListUsersDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.User], error)
	AddUserRole(ctx context.Context, userID, roleID string) error
	RemoveUserRole(ctx context.Context, userID, roleID string) error

	ListRoles(ctx context.Context) ([]models.Role, error)
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)

	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, refreshToken string) (*models.Session, error)
	RevokeSession(ctx context.Context, refreshToken string) error

	CreateContent(ctx context.Context, content *models.Content) error
	GetContentByID(ctx context.Context, id string) (*models.Content, error)
	UpdateContent(ctx context.Context, content *models.Content) error
	DeleteContent(ctx context.Context, id string) error
	ListContents(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.Content], error)
	ListContentsDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.Content], error)

	CreateMedia(ctx context.Context, asset *models.MediaAsset) error
	GetMediaByID(ctx context.Context, id string) (*models.MediaAsset, error)
	DeleteMedia(ctx context.Context, id string) error
	ListMedia(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.MediaAsset], error)
	ListMediaDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.MediaAsset], error)

	InsertAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.AuditLog], error)
	ListAuditLogsDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.AuditLog], error)
}
