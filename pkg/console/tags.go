package console

import "sync"

// Resource tags shared between queries and mutations. A query subscribes to
// the tags it depends on; a mutation invalidates the tags it touches and
// every subscribed query re-runs.
const (
	TagUsers         = "users"
	TagRoles         = "roles"
	TagPermissions   = "permissions"
	TagAuditLogs     = "auditlogs"
	TagContents      = "contents"
	TagMedia         = "media"
	TagNotifications = "notifications"
)

// TagRegistry is the publish/subscribe table backing tag-based cache
// invalidation: tag -> set of active queries.
type TagRegistry struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewTagRegistry() *TagRegistry {
	return &TagRegistry{subs: make(map[string]map[int]func())}
}

// Subscribe registers refetch to run whenever any of tags is invalidated.
// The returned function removes the subscription.
func (r *TagRegistry) Subscribe(tags []string, refetch func()) (unsubscribe func()) {
	r.mu.Lock()
	id := r.next
	r.next++
	for _, tag := range tags {
		if r.subs[tag] == nil {
			r.subs[tag] = make(map[int]func())
		}
		r.subs[tag][id] = refetch
	}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		for _, tag := range tags {
			delete(r.subs[tag], id)
		}
		r.mu.Unlock()
	}
}

// Invalidate re-runs every query subscribed to any of the given tags. A query
// subscribed to several invalidated tags runs once.
func (r *TagRegistry) Invalidate(tags ...string) {
	r.mu.Lock()
	pending := make(map[int]func())
	for _, tag := range tags {
		for id, fn := range r.subs[tag] {
			pending[id] = fn
		}
	}
	r.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}
