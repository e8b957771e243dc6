package dynquery

import (
	"sync"
	"testing"
	"time"
)

func newTestBuilder(field string, opts ...BuilderOption) *Builder {
	opts = append([]BuilderOption{WithSearchDebounce(20 * time.Millisecond)}, opts...)
	return NewBuilder(field, opts...)
}

func waitForChanges(t *testing.T, got *counter, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got.value() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d change notifications, got %d", want, got.value())
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestDebouncedSearchCollapsesKeystrokes(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	for _, text := range []string{"a", "ac", "acm", "acme"} {
		b.OnSearchTextChange(text)
	}

	waitForChanges(t, &changes, 1)
	time.Sleep(60 * time.Millisecond)
	if got := changes.value(); got != 1 {
		t.Errorf("4 keystrokes inside the window produced %d requests, want 1", got)
	}

	q := b.Request()
	if q.Filter == nil || q.Filter.Value != "acme" {
		t.Errorf("filter should carry the final keystroke value, got %+v", q.Filter)
	}
}

func TestSearchScenarioA(t *testing.T) {
	// pageIndex=0 pageSize=10, search field "email", type "acme".
	b := newTestBuilder("email")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	b.OnSearchTextChange("acme")
	waitForChanges(t, &changes, 1)

	if b.Mode() != ModeDynamic {
		t.Error("active search should route to the dynamic endpoint")
	}
	q := b.Request()
	if q.PageIndex != 0 || q.PageSize != 10 {
		t.Errorf("pagination = (%d, %d), want (0, 10)", q.PageIndex, q.PageSize)
	}
	if q.Filter == nil {
		t.Fatal("expected a filter descriptor")
	}
	if q.Filter.Field != "email" || q.Filter.Operator != OpContains ||
		q.Filter.Value != "acme" || q.Filter.CaseSensitive {
		t.Errorf("filter = %+v, want contains acme on email, case-insensitive", q.Filter)
	}
}

func TestSortWithActiveFilterKeepsPage(t *testing.T) {
	// Scenario B: sort by timestamp desc while a search filter is active.
	b := newTestBuilder("action")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	b.OnSearchTextChange("login")
	waitForChanges(t, &changes, 1)
	b.OnPageChange(3, 10)
	b.OnSort("timestamp", DirDesc)

	q := b.Request()
	if len(q.Sort) != 1 || q.Sort[0] != (SortDescriptor{Field: "timestamp", Dir: DirDesc}) {
		t.Errorf("sort = %+v, want single timestamp desc", q.Sort)
	}
	if q.Filter == nil || q.Filter.Value != "login" {
		t.Errorf("existing filter must be carried alongside sort, got %+v", q.Filter)
	}
	if q.PageIndex != 3 {
		t.Errorf("sorting reset pageIndex to %d, want it kept at 3", q.PageIndex)
	}
}

func TestSortReplacesPreviousSort(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	b.OnSort("email", DirAsc)
	b.OnSort("createdAt", DirDesc)

	q := b.Request()
	if len(q.Sort) != 1 {
		t.Fatalf("expected exactly one sort descriptor, got %d", len(q.Sort))
	}
	if q.Sort[0].Field != "createdAt" || q.Sort[0].Dir != DirDesc {
		t.Errorf("last sort should win, got %+v", q.Sort[0])
	}
}

func TestClearingSearchFallsBackToPlain(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	b.OnSearchTextChange("acme")
	waitForChanges(t, &changes, 1)
	b.OnSort("email", DirAsc)
	b.OnPageChange(2, 10)

	b.OnSearchTextChange("")
	waitForChanges(t, &changes, 4)

	if b.Mode() != ModePlain {
		t.Error("empty filter and no sort must route to the plain endpoint")
	}
	q := b.Request()
	if q.Filter != nil {
		t.Errorf("cleared search must not send an always-true filter, got %+v", q.Filter)
	}
	if len(q.Sort) != 0 {
		t.Errorf("clearing search should drop the sort, got %+v", q.Sort)
	}
	if q.PageIndex != 0 {
		t.Errorf("clearing search should reset pageIndex, got %d", q.PageIndex)
	}
}

func TestClearSortWithoutFilterFallsBackToPlain(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	b.OnSort("email", DirAsc)
	if b.Mode() != ModeDynamic {
		t.Fatal("sort alone should use the dynamic endpoint")
	}
	b.ClearSort()
	if b.Mode() != ModePlain {
		t.Error("no filter and no sort should use the plain endpoint")
	}
}

func TestPageSizeChangeResetsPageIndex(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	b.OnPageChange(5, 10)
	if idx, _ := b.Page(); idx != 5 {
		t.Fatalf("pageIndex = %d, want 5", idx)
	}

	// The UI may request page 5 together with the new size; the size change
	// wins and the index resets.
	b.OnPageChange(5, 25)
	idx, size := b.Page()
	if idx != 0 {
		t.Errorf("pageIndex after size change = %d, want 0", idx)
	}
	if size != 25 {
		t.Errorf("pageSize = %d, want 25", size)
	}
}

func TestSearchFieldChangeOnlyNotifiesWithActiveSearch(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	b.SetSearchField("lastName")
	time.Sleep(50 * time.Millisecond)
	if got := changes.value(); got != 0 {
		t.Errorf("field change without search text triggered %d requests, want 0", got)
	}

	b.OnSearchTextChange("smith")
	waitForChanges(t, &changes, 1)
	b.SetSearchField("firstName")
	waitForChanges(t, &changes, 2)

	q := b.Request()
	if q.Filter == nil || q.Filter.Field != "firstName" {
		t.Errorf("filter field = %+v, want firstName", q.Filter)
	}
}

func TestExtraFilterCombinesWithSearch(t *testing.T) {
	b := newTestBuilder("email")
	defer b.Close()

	var changes counter
	b.SetOnChange(changes.inc)

	role := &FilterDescriptor{Field: "roleId", Operator: OpContains, Value: "admin"}
	b.SetExtraFilter(role)
	if b.Mode() != ModeDynamic {
		t.Error("extra filter alone should route to the dynamic endpoint")
	}

	b.OnSearchTextChange("acme")
	waitForChanges(t, &changes, 2)

	q := b.Request()
	if q.Filter == nil || q.Filter.Logic != "and" || len(q.Filter.Filters) != 2 {
		t.Fatalf("expected an and-combined filter tree, got %+v", q.Filter)
	}
}
