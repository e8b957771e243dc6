package console

import "time"

// Wire types for the console resources. They mirror the server's JSON
// contracts; the SDK keeps its own copies so it can be versioned against the
// API rather than against server internals.

type Role struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

type Permission struct {
	ID      string `json:"id"`
	Feature string `json:"feature"`
	Name    string `json:"name"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Roles     []Role    `json:"roles"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoleNames flattens the role list for display.
func (u User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

type Content struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	AuthorID    string     `json:"authorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

type MediaAsset struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

type Notification struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
	IsRead    bool      `json:"isRead"`
}

type CreateUserRequest struct {
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Password  string   `json:"password"`
	RoleIDs   []string `json:"roleIds,omitempty"`
}

type UpdateUserRequest struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Role patch operations, matching the users API contract.
const (
	RoleOpAdd    = "Add"
	RoleOpRemove = "Remove"
)

type PatchUserRolesRequest struct {
	Operation string `json:"operation"`
	RoleID    string `json:"roleId"`
}

type CreateContentRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Body  string `json:"body"`
}

type UpdateContentRequest struct {
	Title string `json:"title,omitempty"`
	Slug  string `json:"slug,omitempty"`
	Body  string `json:"body,omitempty"`
}

type CreateMediaRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	URL         string `json:"url"`
}
