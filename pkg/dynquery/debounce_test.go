package dynquery

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerFiresOnceWithLastValue(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		fired = append(fired, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Trigger("a")
	d.Trigger("ab")
	d.Trigger("abc")

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 {
		t.Fatalf("fired %d times, want 1", len(fired))
	}
	if fired[0] != "abc" {
		t.Errorf("fired with %q, want %q", fired[0], "abc")
	}
}

func TestDebouncerFlush(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	d := NewDebouncer(time.Hour, func(v string) {
		mu.Lock()
		fired = append(fired, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Trigger("pending")
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != "pending" {
		t.Fatalf("flush should deliver the pending value, got %v", fired)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewDebouncer(10*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	d.Trigger("x")
	d.Stop()

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("stopped debouncer fired %d times", count)
	}
}
