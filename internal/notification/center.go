package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crestline-labs/backoffice/internal/logging"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/models"
)

const (
	recentKey     = "console:notifications:recent"
	readKeyPrefix = "console:notifications:read:"

	// DefaultSubject is the NATS subject live watchers subscribe to.
	DefaultSubject = "console.notifications"

	// How many entries the feed retains.
	defaultLimit = 200
)

// The feed itself is shared, but read markers are kept per user so one admin
// catching up does not clear the badge for everyone else.
func readKey(userID string) string {
	return readKeyPrefix + userID
}

// Broadcaster pushes a notification to live subscribers. *nats.Conn satisfies
// this directly.
type Broadcaster interface {
	Publish(subject string, data []byte) error
}

// Center maintains the recent-activity feed in Redis and broadcasts new
// entries over NATS. Both backends are optional; with Redis absent the feed
// is disabled and reads return empty results.
type Center struct {
	redis       *redis.Client
	broadcaster Broadcaster
	subject     string
	limit       int64
	logger      *logging.Logger
}

func NewCenter(redisClient *redis.Client, broadcaster Broadcaster, subject string, logger *logging.Logger) *Center {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Center{
		redis:       redisClient,
		broadcaster: broadcaster,
		subject:     subject,
		limit:       defaultLimit,
		logger:      logger,
	}
}

func (c *Center) IsEnabled() bool {
	return c.redis != nil
}

// Notify implements audit.Notifier: every audit entry becomes a feed item.
func (c *Center) Notify(ctx context.Context, entry *models.AuditLog) {
	n := models.Notification{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Timestamp: entry.Timestamp,
		Details:   entry.Details,
	}
	if err := c.Publish(ctx, n); err != nil {
		c.logger.WarnContext(ctx, "failed to publish notification",
			"entity", entry.Entity, "error", err)
	}
}

// Publish appends the notification to the feed and broadcasts it.
func (c *Center) Publish(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if c.redis != nil {
		pipe := c.redis.TxPipeline()
		pipe.LPush(ctx, recentKey, data)
		pipe.LTrim(ctx, recentKey, 0, c.limit-1)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("store notification: %w", err)
		}
	}

	if c.broadcaster != nil {
		if err := c.broadcaster.Publish(c.subject, data); err != nil {
			return fmt.Errorf("broadcast notification: %w", err)
		}
	}

	metrics.NotificationsPublished.Inc()
	return nil
}

// Recent returns up to limit feed entries, newest first, with the read state
// of the given user resolved per entry.
func (c *Center) Recent(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if c.redis == nil {
		return []models.Notification{}, nil
	}
	if limit <= 0 || int64(limit) > c.limit {
		limit = int(c.limit)
	}

	raw, err := c.redis.LRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	if len(raw) == 0 {
		return []models.Notification{}, nil
	}

	list := make([]models.Notification, 0, len(raw))
	ids := make([]interface{}, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		list = append(list, n)
		ids = append(ids, n.ID)
	}

	read, err := c.redis.SMIsMember(ctx, readKey(userID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read notification state: %w", err)
	}
	for i := range list {
		if i < len(read) {
			list[i].IsRead = read[i]
		}
	}

	return list, nil
}

// MarkRead flags one notification as read for the given user.
func (c *Center) MarkRead(ctx context.Context, userID, id string) error {
	if c.redis == nil {
		return nil
	}
	if err := c.redis.SAdd(ctx, readKey(userID), id).Err(); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead flags every entry currently in the feed as read for the given
// user.
func (c *Center) MarkAllRead(ctx context.Context, userID string) error {
	if c.redis == nil {
		return nil
	}
	ids, err := c.recentIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := c.redis.SAdd(ctx, readKey(userID), ids...).Err(); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// UnreadCount returns how many feed entries the given user has not read yet.
func (c *Center) UnreadCount(ctx context.Context, userID string) (int, error) {
	if c.redis == nil {
		return 0, nil
	}
	ids, err := c.recentIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	read, err := c.redis.SMIsMember(ctx, readKey(userID), ids...).Result()
	if err != nil {
		return 0, fmt.Errorf("read notification state: %w", err)
	}
	unread := 0
	for _, isRead := range read {
		if !isRead {
			unread++
		}
	}
	return unread, nil
}

func (c *Center) recentIDs(ctx context.Context) ([]interface{}, error) {
	raw, err := c.redis.LRange(ctx, recentKey, 0, c.limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	ids := make([]interface{}, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		ids = append(ids, n.ID)
	}
	return ids, nil
}
