package console

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

// FetchFunc loads one page for a view, using the endpoint selected by mode.
type FetchFunc[T any] func(ctx context.Context, mode dynquery.Mode, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[T], error)

// ResourceFetcher builds a FetchFunc that routes between the plain and
// dynamic listing endpoints of a resource.
func ResourceFetcher[T any](c *Client, resource string) FetchFunc[T] {
	return func(ctx context.Context, mode dynquery.Mode, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[T], error) {
		if mode == dynquery.ModePlain {
			return List[T](ctx, c, resource, q.PageIndex, q.PageSize)
		}
		return ListDynamic[T](ctx, c, resource, q)
	}
}

// View binds a query builder to a fetcher and holds the visible page of a
// list. Each issued request carries a monotonically increasing sequence
// number; a response is applied only if it belongs to the latest issued
// request, so slow responses cannot clobber newer ones. A failed fetch keeps
// the previous items visible and reports the error instead of clearing the
// list.
type View[T any] struct {
	builder *dynquery.Builder
	fetch   FetchFunc[T]
	ctx     context.Context

	seq atomic.Uint64

	mu      sync.Mutex
	items   []T
	total   int
	lastErr error
	onError func(error)
	onData  func()
	unsub   func()
	wg      sync.WaitGroup
}

// ViewOption configures a View.
type ViewOption[T any] func(*View[T])

// WithErrorHandler registers the user-visible error notification hook.
func WithErrorHandler[T any](fn func(error)) ViewOption[T] {
	return func(v *View[T]) { v.onError = fn }
}

// WithDataHandler registers a hook invoked after every applied response.
func WithDataHandler[T any](fn func()) ViewOption[T] {
	return func(v *View[T]) { v.onData = fn }
}

// WithContext sets the base context used for fetches triggered by state
// changes. Defaults to context.Background().
func WithContext[T any](ctx context.Context) ViewOption[T] {
	return func(v *View[T]) { v.ctx = ctx }
}

// NewView wires the builder's change notifications to the fetcher. The view
// does not issue an initial request; call Refresh to load the first page.
func NewView[T any](builder *dynquery.Builder, fetch FetchFunc[T], opts ...ViewOption[T]) *View[T] {
	v := &View[T]{
		builder: builder,
		fetch:   fetch,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(v)
	}
	builder.SetOnChange(func() { v.reload(v.ctx) })
	return v
}

// Bind subscribes the view to tag invalidation so mutations elsewhere force a
// refetch.
func (v *View[T]) Bind(reg *TagRegistry, tags ...string) {
	v.mu.Lock()
	if v.unsub != nil {
		v.unsub()
	}
	v.unsub = reg.Subscribe(tags, func() { v.reload(v.ctx) })
	v.mu.Unlock()
}

// Refresh re-issues the currently active query without mutating any view
// state. Safe to call while a previous request is in flight.
func (v *View[T]) Refresh(ctx context.Context) {
	v.reload(ctx)
}

func (v *View[T]) reload(ctx context.Context) {
	seq := v.seq.Add(1)
	mode := v.builder.Mode()
	req := v.builder.Request()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		resp, err := v.fetch(ctx, mode, req)

		// Discard anything superseded while we were waiting.
		if v.seq.Load() != seq {
			return
		}

		v.mu.Lock()
		if err != nil {
			v.lastErr = err
			onError := v.onError
			v.mu.Unlock()
			if onError != nil {
				onError(err)
			}
			return
		}
		v.items = resp.Items
		v.total = resp.TotalCount
		v.lastErr = nil
		onData := v.onData
		v.mu.Unlock()
		if onData != nil {
			onData()
		}
	}()
}

// Wait blocks until all in-flight fetches have settled. Intended for tests
// and teardown.
func (v *View[T]) Wait() {
	v.wg.Wait()
}

// Items returns the last successfully applied page.
func (v *View[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items
}

// Total returns the last applied total count.
func (v *View[T]) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// Err returns the error of the most recent failed fetch, or nil after a
// success.
func (v *View[T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// Close detaches the view from the builder and the tag registry.
func (v *View[T]) Close() {
	v.builder.SetOnChange(nil)
	v.mu.Lock()
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
	v.mu.Unlock()
}
