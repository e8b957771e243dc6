package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoleNames flattens the assigned roles for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IsDefault   bool         `json:"isDefault"`
	Permissions []Permission `json:"permissions,omitempty"`
}

type Permission struct {
	ID      string `json:"id"`
	Feature string `json:"feature"`
	Name    string `json:"name"`
}

// Built-in role names seeded by the migrations.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// Session is a server-side refresh session. The refresh token is opaque and
// only meaningful against this table.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	Revoked      bool      `json:"revoked"`
}

func (s *Session) IsActive() bool {
	return !s.Revoked && time.Now().Before(s.ExpiresAt)
}
