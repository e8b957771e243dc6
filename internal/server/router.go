package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crestline-labs/backoffice/internal/handlers"
	"github.com/crestline-labs/backoffice/internal/httputil"
	"github.com/crestline-labs/backoffice/internal/middleware"
	"github.com/crestline-labs/backoffice/internal/models"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Contents      *handlers.ContentHandler
	Media         *handlers.MediaHandler
	AuditLogs     *handlers.AuditLogHandler
	Notifications *handlers.NotificationHandler
}

// NewRouter constructs a ServeMux with the console API routes registered.
// Every listing resource exposes the same pair of endpoints: a GET for plain
// pagination and a POST /dynamic for query-builder requests.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, cors middleware.CORSConfig) http.Handler {
	mux := http.NewServeMux()

	requireAdmin := authMW.RequireRole(models.RoleAdmin)

	// Authentication (public)
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /api/v1/auth/validate", h.Auth.Validate)
	mux.HandleFunc("POST /api/v1/auth/revoke", h.Auth.Revoke)

	mux.HandleFunc("GET /api/v1/accounts/me", authMW.RequireAuth(h.Auth.Me))

	// User management (mutations are admin-only)
	mux.HandleFunc("GET /api/v1/users", authMW.RequireAuth(h.Users.List))
	mux.HandleFunc("POST /api/v1/users/dynamic", authMW.RequireAuth(h.Users.ListDynamic))
	mux.HandleFunc("GET /api/v1/users/{id}", authMW.RequireAuth(h.Users.Get))
	mux.HandleFunc("POST /api/v1/users", requireAdmin(h.Users.Create))
	mux.HandleFunc("PUT /api/v1/users/{id}", requireAdmin(h.Users.Update))
	mux.HandleFunc("DELETE /api/v1/users/{id}", requireAdmin(h.Users.Delete))
	mux.HandleFunc("PATCH /api/v1/users/{id}/roles", requireAdmin(h.Users.PatchRoles))

	mux.HandleFunc("GET /api/v1/roles", authMW.RequireAuth(h.Users.Roles))
	mux.HandleFunc("GET /api/v1/permissions", authMW.RequireAuth(h.Users.Permissions))

	// Content
	mux.HandleFunc("GET /api/v1/contents", authMW.RequireAuth(h.Contents.List))
	mux.HandleFunc("POST /api/v1/contents/dynamic", authMW.RequireAuth(h.Contents.ListDynamic))
	mux.HandleFunc("GET /api/v1/contents/{id}", authMW.RequireAuth(h.Contents.Get))
	mux.HandleFunc("POST /api/v1/contents", authMW.RequireAuth(h.Contents.Create))
	mux.HandleFunc("PUT /api/v1/contents/{id}", authMW.RequireAuth(h.Contents.Update))
	mux.HandleFunc("DELETE /api/v1/contents/{id}", authMW.RequireAuth(h.Contents.Delete))
	mux.HandleFunc("POST /api/v1/contents/{id}/publish", authMW.RequireAuth(h.Contents.Publish))

	// Media
	mux.HandleFunc("GET /api/v1/media", authMW.RequireAuth(h.Media.List))
	mux.HandleFunc("POST /api/v1/media/dynamic", authMW.RequireAuth(h.Media.ListDynamic))
	mux.HandleFunc("GET /api/v1/media/{id}", authMW.RequireAuth(h.Media.Get))
	mux.HandleFunc("POST /api/v1/media", authMW.RequireAuth(h.Media.Create))
	mux.HandleFunc("DELETE /api/v1/media/{id}", requireAdmin(h.Media.Delete))

	// Audit trail (read-only, admin-only)
	mux.HandleFunc("GET /api/v1/auditlogs", requireAdmin(h.AuditLogs.List))
	mux.HandleFunc("POST /api/v1/auditlogs/dynamic", requireAdmin(h.AuditLogs.ListDynamic))

	// Activity feed
	mux.HandleFunc("GET /api/v1/notifications", authMW.RequireAuth(h.Notifications.List))
	mux.HandleFunc("GET /api/v1/notifications/unread-count", authMW.RequireAuth(h.Notifications.UnreadCount))
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", authMW.RequireAuth(h.Notifications.MarkRead))
	mux.HandleFunc("POST /api/v1/notifications/read-all", authMW.RequireAuth(h.Notifications.MarkAllRead))

	// Health check (public)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(middleware.CORS(cors)(middleware.Metrics(mux)))
}
