package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crestline-labs/backoffice/pkg/tokens"
)

const (
	UserIDKey    = contextKey("user_id")
	UserEmailKey = contextKey("user_email")
	RolesKey     = contextKey("roles")
)

type AuthMiddleware struct {
	tokenGen *tokens.TokenGenerator
}

func NewAuthMiddleware(tokenGen *tokens.TokenGenerator) *AuthMiddleware {
	return &AuthMiddleware{tokenGen: tokenGen}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenGen.ValidateAccessToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = context.WithValue(ctx, RolesKey, claims.Roles)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireRole layers a role check on top of RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			roles, ok := r.Context().Value(RolesKey).([]string)
			if !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			for _, have := range roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

// UserID returns the authenticated user's ID from the context.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// UserEmail returns the authenticated user's email from the context.
func UserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}
