package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

const queryTimeout = 5 * time.Second

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	for _, role := range user.Roles {
		if err := r.AddUserRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
	}

	return nil
}

const userSelect = `
	SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.is_active, u.created_at, u.updated_at
	FROM users u
`

func (r *PostgresRepository) scanUser(ctx context.Context, row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := r.loadUserRoles(ctx, []string{user.ID})
	if err != nil {
		return nil, err
	}
	user.Roles = roles[user.ID]
	return &user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.scanUser(ctx, r.pool.QueryRow(ctx, userSelect+`WHERE u.email = $1`, email))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.scanUser(ctx, r.pool.QueryRow(ctx, userSelect+`WHERE u.id = $1`, id))
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, password_hash = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) loadUserRoles(ctx context.Context, userIDs []string) (map[string][]models.Role, error) {
	if len(userIDs) == 0 {
		return map[string][]models.Role{}, nil
	}

	query := `
		SELECT ur.user_id, r.id, r.name, r.is_default
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = ANY($1)
		ORDER BY r.name
	`

	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load user roles: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string][]models.Role)
	for rows.Next() {
		var userID string
		var role models.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name, &role.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		byUser[userID] = append(byUser[userID], role)
	}
	return byUser, rows.Err()
}

func (r *PostgresRepository) queryUserPage(ctx context.Context, where, orderBy string, args []any, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.User], error) {
	if pageSize <= 0 {
		pageSize = dynquery.DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	countQuery := `SELECT COUNT(*) FROM users u`
	if where != "" {
		countQuery += " WHERE " + where
	}
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if orderBy == "" {
		orderBy = "u.created_at DESC"
	}
	pageQuery := userSelect
	if where != "" {
		pageQuery += " WHERE " + where
	}
	pageQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)+1, len(args)+2)
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	var ids []string
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.FirstName, &user.LastName,
			&user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
		ids = append(ids, user.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	roles, err := r.loadUserRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Roles = roles[users[i].ID]
	}

	return dynquery.NewPaginatedResponse(users, pageIndex, pageSize, total), nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.User], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryUserPage(ctx, "", "", nil, pageIndex, pageSize)
}

func (r *PostgresRepository) ListUsersDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.User], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var args []any
	where, err := userColumns.where(q.Filter, &args)
	if err != nil {
		return nil, err
	}
	orderBy, err := userColumns.orderBy(q.Sort)
	if err != nil {
		return nil, err
	}
	return r.queryUserPage(ctx, where, orderBy, args, q.PageIndex, q.PageSize)
}

func (r *PostgresRepository) AddUserRole(ctx context.Context, userID, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveUserRole(ctx context.Context, userID, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func (r *PostgresRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name, is_default FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *PostgresRepository) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var role models.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_default FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

func (r *PostgresRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, feature, name FROM permissions ORDER BY feature, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var perm models.Permission
		if err := rows.Scan(&perm.ID, &perm.Feature, &perm.Name); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, perm)
	}
	return perms, rows.Err()
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session *models.Session) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO sessions (id, user_id, refresh_token, expires_at, created_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID, session.UserID, session.RefreshToken,
		session.ExpiresAt, session.CreatedAt, session.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, refresh_token, expires_at, created_at, revoked
		FROM sessions
		WHERE refresh_token = $1
	`
	var session models.Session
	err := r.pool.QueryRow(ctx, query, refreshToken).Scan(
		&session.ID, &session.UserID, &session.RefreshToken,
		&session.ExpiresAt, &session.CreatedAt, &session.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *PostgresRepository) RevokeSession(ctx context.Context, refreshToken string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.pool.Exec(ctx,
		`UPDATE sessions SET revoked = true WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

const contentSelect = `
	SELECT c.id, c.title, c.slug, c.body, c.status, c.author_id, c.created_at, c.updated_at, c.published_at
	FROM contents c
`

func (r *PostgresRepository) CreateContent(ctx context.Context, content *models.Content) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO contents (id, title, slug, body, status, author_id, created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		content.ID, content.Title, content.Slug, content.Body, content.Status,
		content.AuthorID, content.CreatedAt, content.UpdatedAt, content.PublishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetContentByID(ctx context.Context, id string) (*models.Content, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var content models.Content
	err := r.pool.QueryRow(ctx, contentSelect+`WHERE c.id = $1`, id).Scan(
		&content.ID, &content.Title, &content.Slug, &content.Body, &content.Status,
		&content.AuthorID, &content.CreatedAt, &content.UpdatedAt, &content.PublishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &content, nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, content *models.Content) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE contents
		SET title = $2, slug = $3, body = $4, status = $5, updated_at = $6, published_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		content.ID, content.Title, content.Slug, content.Body,
		content.Status, content.UpdatedAt, content.PublishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to update content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteContent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (r *PostgresRepository) queryContentPage(ctx context.Context, where, orderBy string, args []any, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.Content], error) {
	if pageSize <= 0 {
		pageSize = dynquery.DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	countQuery := `SELECT COUNT(*) FROM contents c`
	if where != "" {
		countQuery += " WHERE " + where
	}
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count contents: %w", err)
	}

	if orderBy == "" {
		orderBy = "c.created_at DESC"
	}
	pageQuery := contentSelect
	if where != "" {
		pageQuery += " WHERE " + where
	}
	pageQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)+1, len(args)+2)
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		var content models.Content
		err := rows.Scan(
			&content.ID, &content.Title, &content.Slug, &content.Body, &content.Status,
			&content.AuthorID, &content.CreatedAt, &content.UpdatedAt, &content.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contents: %w", err)
	}

	return dynquery.NewPaginatedResponse(contents, pageIndex, pageSize, total), nil
}

func (r *PostgresRepository) ListContents(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.Content], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryContentPage(ctx, "", "", nil, pageIndex, pageSize)
}

func (r *PostgresRepository) ListContentsDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.Content], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var args []any
	where, err := contentColumns.where(q.Filter, &args)
	if err != nil {
		return nil, err
	}
	orderBy, err := contentColumns.orderBy(q.Sort)
	if err != nil {
		return nil, err
	}
	return r.queryContentPage(ctx, where, orderBy, args, q.PageIndex, q.PageSize)
}

const mediaSelect = `
	SELECT m.id, m.file_name, m.content_type, m.size_bytes, m.url, m.uploaded_by, m.created_at
	FROM media m
`

func (r *PostgresRepository) CreateMedia(ctx context.Context, asset *models.MediaAsset) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO media (id, file_name, content_type, size_bytes, url, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		asset.ID, asset.FileName, asset.ContentType, asset.SizeBytes,
		asset.URL, asset.UploadedBy, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create media: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetMediaByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var asset models.MediaAsset
	err := r.pool.QueryRow(ctx, mediaSelect+`WHERE m.id = $1`, id).Scan(
		&asset.ID, &asset.FileName, &asset.ContentType, &asset.SizeBytes,
		&asset.URL, &asset.UploadedBy, &asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return &asset, nil
}

func (r *PostgresRepository) DeleteMedia(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (r *PostgresRepository) queryMediaPage(ctx context.Context, where, orderBy string, args []any, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	if pageSize <= 0 {
		pageSize = dynquery.DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	countQuery := `SELECT COUNT(*) FROM media m`
	if where != "" {
		countQuery += " WHERE " + where
	}
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count media: %w", err)
	}

	if orderBy == "" {
		orderBy = "m.created_at DESC"
	}
	pageQuery := mediaSelect
	if where != "" {
		pageQuery += " WHERE " + where
	}
	pageQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)+1, len(args)+2)
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var assets []models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		err := rows.Scan(
			&asset.ID, &asset.FileName, &asset.ContentType, &asset.SizeBytes,
			&asset.URL, &asset.UploadedBy, &asset.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media: %w", err)
	}

	return dynquery.NewPaginatedResponse(assets, pageIndex, pageSize, total), nil
}

func (r *PostgresRepository) ListMedia(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryMediaPage(ctx, "", "", nil, pageIndex, pageSize)
}

func (r *PostgresRepository) ListMediaDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.MediaAsset], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var args []any
	where, err := mediaColumns.where(q.Filter, &args)
	if err != nil {
		return nil, err
	}
	orderBy, err := mediaColumns.orderBy(q.Sort)
	if err != nil {
		return nil, err
	}
	return r.queryMediaPage(ctx, where, orderBy, args, q.PageIndex, q.PageSize)
}

const auditSelect = `
	SELECT a.id, a.user_email, a.action, a.entity, a.entity_id, a.timestamp, a.details
	FROM audit_logs a
`

func (r *PostgresRepository) InsertAuditLog(ctx context.Context, entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO audit_logs (id, user_email, action, entity, entity_id, timestamp, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.User, entry.Action, entry.Entity,
		entry.EntityID, entry.Timestamp, entry.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryAuditPage(ctx context.Context, where, orderBy string, args []any, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.AuditLog], error) {
	if pageSize <= 0 {
		pageSize = dynquery.DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	countQuery := `SELECT COUNT(*) FROM audit_logs a`
	if where != "" {
		countQuery += " WHERE " + where
	}
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if orderBy == "" {
		orderBy = "a.timestamp DESC"
	}
	pageQuery := auditSelect
	if where != "" {
		pageQuery += " WHERE " + where
	}
	pageQuery += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", orderBy, len(args)+1, len(args)+2)
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := r.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.ID, &entry.User, &entry.Action, &entry.Entity,
			&entry.EntityID, &entry.Timestamp, &entry.Details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return dynquery.NewPaginatedResponse(entries, pageIndex, pageSize, total), nil
}

func (r *PostgresRepository) ListAuditLogs(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.AuditLog], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryAuditPage(ctx, "", "", nil, pageIndex, pageSize)
}

func (r *PostgresRepository) ListAuditLogsDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.AuditLog], error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var args []any
	where, err := auditColumns.where(q.Filter, &args)
	if err != nil {
		return nil, err
	}
	orderBy, err := auditColumns.orderBy(q.Sort)
	if err != nil {
		return nil, err
	}
	return r.queryAuditPage(ctx, where, orderBy, args, q.PageIndex, q.PageSize)
}
