package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/config"
	"github.com/crestline-labs/backoffice/internal/handlers"
	"github.com/crestline-labs/backoffice/internal/logging"
	"github.com/crestline-labs/backoffice/internal/middleware"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/notification"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/internal/server"
	"github.com/crestline-labs/backoffice/internal/service"
	"github.com/crestline-labs/backoffice/pkg/tokens"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With("service", "console")
	logging.SetDefault(logger)

	logger.Info("Starting console service",
		"port", cfg.Server.Port,
		"database", cfg.Database.Type,
		"log_level", cfg.Logging.Level,
	)

	repo, cleanup, err := buildRepository(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	tokenGen := tokens.NewTokenGenerator(cfg.Auth.JWTSecret,
		tokens.WithAccessTTL(cfg.Auth.AccessTokenTTL),
		tokens.WithRefreshTTL(cfg.Auth.RefreshTokenTTL),
	)

	auditLog := audit.NewLogger(repo, logger)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("Failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	}

	var broadcaster notification.Broadcaster
	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS.URL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			logger.Error("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		broadcaster = nc
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	center := notification.NewCenter(redisClient, broadcaster, cfg.NATS.Subject, logger)
	if center.IsEnabled() {
		auditLog.SetNotifier(center)
	} else {
		logger.Warn("Activity feed disabled (no Redis configured)")
	}

	h := server.Handlers{
		Auth:          handlers.NewAuthHandler(service.NewAuthService(repo, tokenGen, auditLog)),
		Users:         handlers.NewUserHandler(service.NewUserService(repo, auditLog)),
		Contents:      handlers.NewContentHandler(service.NewContentService(repo, auditLog)),
		Media:         handlers.NewMediaHandler(service.NewMediaService(repo, auditLog)),
		AuditLogs:     handlers.NewAuditLogHandler(repo),
		Notifications: handlers.NewNotificationHandler(center),
	}

	router := server.NewRouter(h, middleware.NewAuthMiddleware(tokenGen), middleware.CORSConfig{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Console service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// buildRepository returns the configured store. Postgres gets its schema from
// the migrations directory; the in-memory store is seeded with the default
// catalog and a bootstrap admin.
func buildRepository(cfg *config.Config, logger *logging.Logger) (repository.Repository, func(), error) {
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.ConnString()
		logger.Info("Connecting to PostgreSQL",
			"host", cfg.Database.Postgres.Host,
			"database", cfg.Database.Postgres.Database,
		)

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}

		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			pgRepo.Close()
			return nil, nil, fmt.Errorf("initialize migrations: %w", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			pgRepo.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		if version, dirty, err := m.Version(); err == nil {
			logger.Info("Database migration complete", "version", version, "dirty", dirty)
		}

		return pgRepo, pgRepo.Close, nil
	}

	logger.Warn("Using in-memory repository (development only)")
	repo := repository.NewMemoryRepository()
	repo.SeedRoles(defaultRoles(), defaultPermissions())
	if err := seedBootstrapAdmin(repo); err != nil {
		return nil, nil, fmt.Errorf("seed bootstrap admin: %w", err)
	}
	logger.Warn("Seeded bootstrap admin", "email", "admin@example.com")
	return repo, func() {}, nil
}

func defaultRoles() []models.Role {
	return []models.Role{
		{ID: "role-admin", Name: models.RoleAdmin},
		{ID: "role-editor", Name: models.RoleEditor},
		{ID: "role-viewer", Name: models.RoleViewer, IsDefault: true},
	}
}

func defaultPermissions() []models.Permission {
	return []models.Permission{
		{ID: "perm-users-read", Feature: "users", Name: "users:read"},
		{ID: "perm-users-write", Feature: "users", Name: "users:write"},
		{ID: "perm-contents-read", Feature: "contents", Name: "contents:read"},
		{ID: "perm-contents-write", Feature: "contents", Name: "contents:write"},
		{ID: "perm-media-read", Feature: "media", Name: "media:read"},
		{ID: "perm-media-write", Feature: "media", Name: "media:write"},
		{ID: "perm-auditlogs-read", Feature: "auditlogs", Name: "auditlogs:read"},
	}
}

func seedBootstrapAdmin(repo repository.Repository) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	return repo.CreateUser(context.Background(), &models.User{
		ID:           "user-bootstrap-admin",
		Email:        "admin@example.com",
		FirstName:    "Bootstrap",
		LastName:     "Admin",
		PasswordHash: string(hash),
		Roles:        []models.Role{{ID: "role-admin", Name: models.RoleAdmin}},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
