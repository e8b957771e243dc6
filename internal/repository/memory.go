package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

// fieldMap exposes the filterable/sortable fields of a resource as string
// getters. Timestamps are formatted RFC3339 so lexicographic order matches
// chronological order.
type fieldMap[T any] map[string]func(T) string

func matchFilter[T any](item T, f *dynquery.FilterDescriptor, fields fieldMap[T]) (bool, error) {
	if f == nil {
		return true, nil
	}

	if len(f.Filters) > 0 {
		logic := strings.ToLower(f.Logic)
		if logic == "" {
			logic = "and"
		}
		for _, child := range f.Filters {
			ok, err := matchFilter(item, child, fields)
			if err != nil {
				return false, err
			}
			if logic == "or" && ok {
				return true, nil
			}
			if logic != "or" && !ok {
				return false, nil
			}
		}
		return logic != "or", nil
	}

	getter, ok := fields[f.Field]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownField, f.Field)
	}
	if f.Operator != dynquery.OpContains {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Operator)
	}

	value := getter(item)
	needle := f.Value
	if !f.CaseSensitive {
		value = strings.ToLower(value)
		needle = strings.ToLower(needle)
	}
	return strings.Contains(value, needle), nil
}

func sortItems[T any](items []T, descriptors []dynquery.SortDescriptor, fields fieldMap[T]) error {
	if len(descriptors) == 0 {
		return nil
	}
	getters := make([]func(T) string, len(descriptors))
	for i, d := range descriptors {
		getter, ok := fields[d.Field]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, d.Field)
		}
		if d.Dir != dynquery.DirAsc && d.Dir != dynquery.DirDesc {
			return fmt.Errorf("%w: %q", ErrInvalidSortDir, d.Dir)
		}
		getters[i] = getter
	}
	sort.SliceStable(items, func(a, b int) bool {
		for i, d := range descriptors {
			va, vb := getters[i](items[a]), getters[i](items[b])
			if va == vb {
				continue
			}
			if d.Dir == dynquery.DirDesc {
				return va > vb
			}
			return va < vb
		}
		return false
	})
	return nil
}

func paginate[T any](items []T, pageIndex, pageSize int) *dynquery.PaginatedResponse[T] {
	if pageSize <= 0 {
		pageSize = dynquery.DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	total := len(items)
	start := pageIndex * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return dynquery.NewPaginatedResponse(page, pageIndex, pageSize, total)
}

func applyDynamic[T any](items []T, q dynquery.DynamicQuery, fields fieldMap[T]) (*dynquery.PaginatedResponse[T], error) {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := matchFilter(item, q.Filter, fields)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, item)
		}
	}
	if err := sortItems(filtered, q.Sort, fields); err != nil {
		return nil, err
	}
	return paginate(filtered, q.PageIndex, q.PageSize), nil
}

var (
	userFields = fieldMap[models.User]{
		"email":     func(u models.User) string { return u.Email },
		"firstName": func(u models.User) string { return u.FirstName },
		"lastName":  func(u models.User) string { return u.LastName },
		"createdAt": func(u models.User) string { return u.CreatedAt.UTC().Format(time.RFC3339Nano) },
	}
	contentFields = fieldMap[models.Content]{
		"title":     func(c models.Content) string { return c.Title },
		"slug":      func(c models.Content) string { return c.Slug },
		"status":    func(c models.Content) string { return c.Status },
		"createdAt": func(c models.Content) string { return c.CreatedAt.UTC().Format(time.RFC3339Nano) },
		"updatedAt": func(c models.Content) string { return c.UpdatedAt.UTC().Format(time.RFC3339Nano) },
	}
	mediaFields = fieldMap[models.MediaAsset]{
		"fileName":    func(m models.MediaAsset) string { return m.FileName },
		"contentType": func(m models.MediaAsset) string { return m.ContentType },
		"createdAt":   func(m models.MediaAsset) string { return m.CreatedAt.UTC().Format(time.RFC3339Nano) },
	}
	auditFields = fieldMap[models.AuditLog]{
		"user":      func(a models.AuditLog) string { return a.User },
		"action":    func(a models.AuditLog) string { return a.Action },
		"entity":    func(a models.AuditLog) string { return a.Entity },
		"entityId":  func(a models.AuditLog) string { return a.EntityID },
		"details":   func(a models.AuditLog) string { return a.Details },
		"timestamp": func(a models.AuditLog) string { return a.Timestamp.UTC().Format(time.RFC3339Nano) },
	}
)

// MemoryRepository is the non-persistent store used by tests and local
// development.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	roles    []models.Role
	perms    []models.Permission
	sessions map[string]*models.Session
	contents map[string]*models.Content
	media    map[string]*models.MediaAsset
	audits   []models.AuditLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]*models.User),
		sessions: make(map[string]*models.Session),
		contents: make(map[string]*models.Content),
		media:    make(map[string]*models.MediaAsset),
	}
}

// SeedRoles installs the role/permission catalog. The SQL migrations do this
// for the Postgres store.
func (r *MemoryRepository) SeedRoles(roles []models.Role, perms []models.Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = roles
	r.perms = perms
}

func (r *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrUserExists
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryRepository) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *MemoryRepository) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) snapshotUsers() []models.User {
	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	// Newest first, matching the Postgres default ordering.
	sort.Slice(users, func(a, b int) bool {
		return users[a].CreatedAt.After(users[b].CreatedAt)
	})
	return users
}

func (r *MemoryRepository) ListUsers(_ context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.snapshotUsers(), pageIndex, pageSize), nil
}

func (r *MemoryRepository) ListUsersDynamic(_ context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return applyDynamic(r.snapshotUsers(), q, userFields)
}

func (r *MemoryRepository) AddUserRole(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	var role *models.Role
	for i := range r.roles {
		if r.roles[i].ID == roleID {
			role = &r.roles[i]
			break
		}
	}
	if role == nil {
		return ErrRoleNotFound
	}
	for _, assigned := range user.Roles {
		if assigned.ID == roleID {
			return nil
		}
	}
	user.Roles = append(user.Roles, *role)
	return nil
}

func (r *MemoryRepository) RemoveUserRole(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for i, assigned := range user.Roles {
		if assigned.ID == roleID {
			user.Roles = append(user.Roles[:i], user.Roles[i+1:]...)
			return nil
		}
	}
	return ErrRoleNotFound
}

func (r *MemoryRepository) ListRoles(_ context.Context) ([]models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles := make([]models.Role, len(r.roles))
	copy(roles, r.roles)
	return roles, nil
}

func (r *MemoryRepository) GetRoleByID(_ context.Context, id string) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, role := range r.roles {
		if role.ID == id {
			clone := role
			return &clone, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (r *MemoryRepository) ListPermissions(_ context.Context) ([]models.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	perms := make([]models.Permission, len(r.perms))
	copy(perms, r.perms)
	return perms, nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.RefreshToken] = &clone
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, refreshToken string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[refreshToken]
	if !ok {
		return nil, ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *MemoryRepository) RevokeSession(_ context.Context, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[refreshToken]
	if !ok {
		return ErrSessionNotFound
	}
	session.Revoked = true
	return nil
}

func (r *MemoryRepository) CreateContent(_ context.Context, content *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.contents {
		if existing.Slug == content.Slug {
			return ErrSlugExists
		}
	}
	clone := *content
	r.contents[content.ID] = &clone
	return nil
}

func (r *MemoryRepository) GetContentByID(_ context.Context, id string) (*models.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	content, ok := r.contents[id]
	if !ok {
		return nil, ErrContentNotFound
	}
	clone := *content
	return &clone, nil
}

func (r *MemoryRepository) UpdateContent(_ context.Context, content *models.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[content.ID]; !ok {
		return ErrContentNotFound
	}
	for id, existing := range r.contents {
		if id != content.ID && existing.Slug == content.Slug {
			return ErrSlugExists
		}
	}
	clone := *content
	r.contents[content.ID] = &clone
	return nil
}

func (r *MemoryRepository) DeleteContent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contents[id]; !ok {
		return ErrContentNotFound
	}
	delete(r.contents, id)
	return nil
}

func (r *MemoryRepository) snapshotContents() []models.Content {
	contents := make([]models.Content, 0, len(r.contents))
	for _, c := range r.contents {
		contents = append(contents, *c)
	}
	sort.Slice(contents, func(a, b int) bool {
		return contents[a].CreatedAt.After(contents[b].CreatedAt)
	})
	return contents
}

func (r *MemoryRepository) ListContents(_ context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.Content], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.snapshotContents(), pageIndex, pageSize), nil
}

func (r *MemoryRepository) ListContentsDynamic(_ context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.Content], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return applyDynamic(r.snapshotContents(), q, contentFields)
}

func (r *MemoryRepository) CreateMedia(_ context.Context, asset *models.MediaAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *asset
	r.media[asset.ID] = &clone
	return nil
}

func (r *MemoryRepository) GetMediaByID(_ context.Context, id string) (*models.MediaAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.media[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	clone := *asset
	return &clone, nil
}

func (r *MemoryRepository) DeleteMedia(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.media[id]; !ok {
		return ErrMediaNotFound
	}
	delete(r.media, id)
	return nil
}

func (r *MemoryRepository) snapshotMedia() []models.MediaAsset {
	assets := make([]models.MediaAsset, 0, len(r.media))
	for _, m := range r.media {
		assets = append(assets, *m)
	}
	sort.Slice(assets, func(a, b int) bool {
		return assets[a].CreatedAt.After(assets[b].CreatedAt)
	})
	return assets
}

func (r *MemoryRepository) ListMedia(_ context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.snapshotMedia(), pageIndex, pageSize), nil
}

func (r *MemoryRepository) ListMediaDynamic(_ context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return applyDynamic(r.snapshotMedia(), q, mediaFields)
}

func (r *MemoryRepository) InsertAuditLog(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, *entry)
	return nil
}

func (r *MemoryRepository) snapshotAudits() []models.AuditLog {
	audits := make([]models.AuditLog, len(r.audits))
	copy(audits, r.audits)
	sort.Slice(audits, func(a, b int) bool {
		return audits[a].Timestamp.After(audits[b].Timestamp)
	})
	return audits
}

func (r *MemoryRepository) ListAuditLogs(_ context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.AuditLog], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.snapshotAudits(), pageIndex, pageSize), nil
}

func (r *MemoryRepository) ListAuditLogsDynamic(_ context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.AuditLog], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return applyDynamic(r.snapshotAudits(), q, auditFields)
}
