package dynquery

import (
	"sync"
	"time"
)

// Mode selects which listing endpoint a view should hit.
type Mode int

const (
	// ModePlain is the fixed paginated listing (GET /<resource>).
	ModePlain Mode = iota
	// ModeDynamic is the filtered/sorted listing (POST /<resource>/dynamic).
	ModeDynamic
)

const (
	DefaultPageSize       = 10
	DefaultSearchDebounce = 500 * time.Millisecond
)

// Builder holds the query state of a single list view and turns UI-level
// events (typing, column sorts, page changes) into normalized requests. It
// performs no I/O itself; a change listener is notified whenever the active
// request may have changed.
//
// State rules, deliberately matching the console's observed behavior:
//   - search text is debounced; landing a non-empty value resets the page,
//     landing an empty value additionally clears the sort and drops back to
//     the plain endpoint;
//   - a new sort always replaces the previous one (no multi-column sort) and
//     keeps the current page;
//   - a page-size change always resets the page index to zero, regardless of
//     the index requested alongside it.
type Builder struct {
	mu          sync.Mutex
	searchText  string
	searchField string
	sort        *SortDescriptor
	extra       *FilterDescriptor
	pageIndex   int
	pageSize    int
	onChange    func()
	debounce    *Debouncer
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithSearchDebounce overrides the 500 ms search quiescence window.
func WithSearchDebounce(d time.Duration) BuilderOption {
	return func(b *Builder) {
		b.debounce = NewDebouncer(d, b.applySearchText)
	}
}

// WithPageSize sets the initial page size.
func WithPageSize(size int) BuilderOption {
	return func(b *Builder) {
		if size > 0 {
			b.pageSize = size
		}
	}
}

// NewBuilder creates a view query builder whose contains-filter targets
// searchField.
func NewBuilder(searchField string, opts ...BuilderOption) *Builder {
	b := &Builder{
		searchField: searchField,
		pageSize:    DefaultPageSize,
	}
	b.debounce = NewDebouncer(DefaultSearchDebounce, b.applySearchText)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetOnChange registers the listener invoked after every transition that may
// alter the active request.
func (b *Builder) SetOnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Builder) notify() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OnSearchTextChange feeds a keystroke into the debouncer. The request is not
// affected until input quiesces.
func (b *Builder) OnSearchTextChange(text string) {
	b.debounce.Trigger(text)
}

// FlushSearch applies any pending debounced text immediately. Intended for
// tests and for form submission shortcuts.
func (b *Builder) FlushSearch() {
	b.debounce.Flush()
}

func (b *Builder) applySearchText(text string) {
	b.mu.Lock()
	if text == b.searchText {
		b.mu.Unlock()
		return
	}
	b.searchText = text
	b.pageIndex = 0
	if text == "" {
		// Clearing the search returns the view to the plain listing from
		// page zero, dropping any sort the user applied meanwhile.
		b.sort = nil
	}
	b.mu.Unlock()
	b.notify()
}

// SetSearchField changes which attribute the contains-filter targets. It only
// triggers a new request when a search is already active.
func (b *Builder) SetSearchField(field string) {
	b.mu.Lock()
	changed := field != b.searchField && b.searchText != ""
	b.searchField = field
	b.mu.Unlock()
	if changed {
		b.notify()
	}
}

// OnSort replaces the active sort. The page index is kept so the user stays
// on the page they were reading.
func (b *Builder) OnSort(field, dir string) {
	b.mu.Lock()
	b.sort = &SortDescriptor{Field: field, Dir: dir}
	b.mu.Unlock()
	b.notify()
}

// ClearSort removes the active sort. With no filter active the view falls
// back to the plain endpoint.
func (b *Builder) ClearSort() {
	b.mu.Lock()
	cleared := b.sort != nil
	b.sort = nil
	b.mu.Unlock()
	if cleared {
		b.notify()
	}
}

// SetExtraFilter installs a secondary fixed filter (e.g. a role constraint)
// combined with the search filter. Pass nil to remove it.
func (b *Builder) SetExtraFilter(f *FilterDescriptor) {
	b.mu.Lock()
	b.extra = f
	b.pageIndex = 0
	b.mu.Unlock()
	b.notify()
}

// OnPageChange applies a pagination interaction. A page-size change resets
// the index to zero even if the caller requested another page, keeping the
// result set aligned with a valid page boundary.
func (b *Builder) OnPageChange(pageIndex, pageSize int) {
	b.mu.Lock()
	if pageSize > 0 && pageSize != b.pageSize {
		b.pageSize = pageSize
		b.pageIndex = 0
	} else if pageIndex >= 0 {
		b.pageIndex = pageIndex
	}
	b.mu.Unlock()
	b.notify()
}

// Mode reports which endpoint the current state routes to. It is a pure
// function of the filter/sort state.
func (b *Builder) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.searchText != "" || b.sort != nil || b.extra != nil {
		return ModeDynamic
	}
	return ModePlain
}

// Request snapshots the current state as a DynamicQuery. For ModePlain only
// the pagination fields are meaningful.
func (b *Builder) Request() DynamicQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := DynamicQuery{
		PageIndex: b.pageIndex,
		PageSize:  b.pageSize,
	}
	if b.sort != nil {
		q.Sort = []SortDescriptor{*b.sort}
	}
	search := BuildFilterDescriptor(b.searchText, b.searchField)
	switch {
	case search != nil && b.extra != nil:
		q.Filter = &FilterDescriptor{
			Logic:   "and",
			Filters: []*FilterDescriptor{b.extra, search},
		}
	case search != nil:
		q.Filter = search
	case b.extra != nil:
		q.Filter = b.extra
	}
	return q
}

// Page returns the current pagination cursor.
func (b *Builder) Page() (pageIndex, pageSize int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageIndex, b.pageSize
}

// Close stops the debounce timer.
func (b *Builder) Close() {
	b.debounce.Stop()
}
