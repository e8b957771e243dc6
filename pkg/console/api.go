package console

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

// List fetches one page of the plain (unfiltered, unsorted) listing for a
// resource.
func List[T any](ctx context.Context, c *Client, resource string, pageIndex, pageSize int) (*dynquery.PaginatedResponse[T], error) {
	query := url.Values{
		"pageIndex": {strconv.Itoa(pageIndex)},
		"pageSize":  {strconv.Itoa(pageSize)},
	}
	var out dynquery.PaginatedResponse[T]
	if err := c.Do(ctx, http.MethodGet, "/api/v1/"+resource, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDynamic fetches one page of the filtered/sorted listing for a resource.
func ListDynamic[T any](ctx context.Context, c *Client, resource string, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[T], error) {
	query := url.Values{
		"pageIndex": {strconv.Itoa(q.PageIndex)},
		"pageSize":  {strconv.Itoa(q.PageSize)},
	}
	body := map[string]any{}
	if len(q.Sort) > 0 {
		body["sort"] = q.Sort
	}
	if q.Filter != nil {
		body["filter"] = q.Filter
	}
	var out dynquery.PaginatedResponse[T]
	if err := c.Do(ctx, http.MethodPost, "/api/v1/"+resource+"/dynamic", query, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and populates the session with the returned tokens and
// profile. The credential check bypasses the silent-refresh pipeline: a 401
// here surfaces as an APIError, not as an expired session.
func (c *Client) Login(ctx context.Context, email, password string) (*UserProfile, error) {
	var tokens TokenSet
	err := c.doDirect(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		map[string]string{"email": email, "password": password}, &tokens)
	if err != nil {
		return nil, err
	}
	c.session.LoginSucceeded(nil, tokens)

	profile, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	c.session.LoginSucceeded(profile, tokens)
	return profile, nil
}

// Logout revokes the refresh token and clears the session.
func (c *Client) Logout(ctx context.Context) error {
	snap := c.session.Snapshot()
	if snap.Tokens.RefreshToken != "" {
		_ = c.Do(ctx, http.MethodPost, "/api/v1/auth/revoke", nil,
			map[string]string{"refresh_token": snap.Tokens.RefreshToken}, nil)
	}
	c.session.Cleared()
	return nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.Do(ctx, http.MethodGet, "/api/v1/accounts/me", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodPost, "/api/v1/users", nil, req, &user); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagUsers, TagAuditLogs)
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodPut, "/api/v1/users/"+id, nil, req, &user); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagUsers, TagAuditLogs)
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.Do(ctx, http.MethodDelete, "/api/v1/users/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagUsers, TagAuditLogs)
	return nil
}

// PatchUserRoles adds or removes a single role on a user.
func (c *Client) PatchUserRoles(ctx context.Context, id, operation, roleID string) error {
	req := PatchUserRolesRequest{Operation: operation, RoleID: roleID}
	if err := c.Do(ctx, http.MethodPatch, "/api/v1/users/"+id+"/roles", nil, req, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagUsers, TagAuditLogs)
	return nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodGet, "/api/v1/users/"+id, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.Do(ctx, http.MethodGet, "/api/v1/roles", nil, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) Permissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := c.Do(ctx, http.MethodGet, "/api/v1/permissions", nil, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (c *Client) CreateContent(ctx context.Context, req CreateContentRequest) (*Content, error) {
	var content Content
	if err := c.Do(ctx, http.MethodPost, "/api/v1/contents", nil, req, &content); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagContents, TagAuditLogs)
	return &content, nil
}

func (c *Client) UpdateContent(ctx context.Context, id string, req UpdateContentRequest) (*Content, error) {
	var content Content
	if err := c.Do(ctx, http.MethodPut, "/api/v1/contents/"+id, nil, req, &content); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagContents, TagAuditLogs)
	return &content, nil
}

func (c *Client) DeleteContent(ctx context.Context, id string) error {
	if err := c.Do(ctx, http.MethodDelete, "/api/v1/contents/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagContents, TagAuditLogs)
	return nil
}

// PublishContent moves a draft to the published state.
func (c *Client) PublishContent(ctx context.Context, id string) (*Content, error) {
	var content Content
	if err := c.Do(ctx, http.MethodPost, "/api/v1/contents/"+id+"/publish", nil, nil, &content); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagContents, TagAuditLogs)
	return &content, nil
}

func (c *Client) CreateMedia(ctx context.Context, req CreateMediaRequest) (*MediaAsset, error) {
	var asset MediaAsset
	if err := c.Do(ctx, http.MethodPost, "/api/v1/media", nil, req, &asset); err != nil {
		return nil, err
	}
	c.tags.Invalidate(TagMedia, TagAuditLogs)
	return &asset, nil
}

func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	if err := c.Do(ctx, http.MethodDelete, "/api/v1/media/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagMedia, TagAuditLogs)
	return nil
}

func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	var list []Notification
	if err := c.Do(ctx, http.MethodGet, "/api/v1/notifications", query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UnreadNotificationCount returns how many feed entries the authenticated
// user has not read yet.
func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/v1/notifications/unread-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if err := c.Do(ctx, http.MethodPost, "/api/v1/notifications/"+id+"/read", nil, nil, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagNotifications)
	return nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.Do(ctx, http.MethodPost, "/api/v1/notifications/read-all", nil, nil, nil); err != nil {
		return err
	}
	c.tags.Invalidate(TagNotifications)
	return nil
}
