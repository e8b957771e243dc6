package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crestline-labs/backoffice/internal/logging"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
)

// Notifier receives every recorded entry, typically to fan it out to the
// activity feed.
type Notifier interface {
	Notify(ctx context.Context, entry *models.AuditLog)
}

// Logger persists an audit trail entry for every mutation. Recording never
// fails the calling operation: storage errors are logged and swallowed.
type Logger struct {
	repo     repository.Repository
	logger   *logging.Logger
	notifier Notifier
}

func NewLogger(repo repository.Repository, logger *logging.Logger) *Logger {
	return &Logger{repo: repo, logger: logger}
}

// SetNotifier attaches the activity feed hook. Safe to leave unset.
func (l *Logger) SetNotifier(n Notifier) {
	l.notifier = n
}

// Record writes one audit entry attributed to userEmail.
func (l *Logger) Record(ctx context.Context, userEmail, action, entity, entityID, details string) *models.AuditLog {
	id, _ := uuid.NewV7()
	entry := &models.AuditLog{
		ID:        id.String(),
		User:      userEmail,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Details:   details,
	}

	if err := l.repo.InsertAuditLog(ctx, entry); err != nil {
		l.logger.ErrorContext(ctx, "failed to persist audit entry",
			"action", action, "entity", entity, "entity_id", entityID, "error", err)
	}

	l.logger.InfoContext(ctx, "audit",
		"user", userEmail, "action", action, "entity", entity,
		"entity_id", entityID, "details", details)

	if l.notifier != nil {
		l.notifier.Notify(ctx, entry)
	}

	return entry
}
