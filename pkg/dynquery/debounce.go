package dynquery

import (
	"sync"
	"time"
)

// Debouncer delays delivery of a string value until input has been quiet for
// the configured window. Rapid successive Trigger calls collapse into a single
// callback carrying the last value.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(string)
	timer *time.Timer
	last  string
}

// NewDebouncer creates a debouncer firing fn after delay of quiescence.
func NewDebouncer(delay time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger records value and (re)starts the quiescence timer.
func (d *Debouncer) Trigger(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		v := d.last
		d.timer = nil
		d.mu.Unlock()
		d.fn(v)
	})
}

// Flush fires the pending value immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	v := d.last
	d.mu.Unlock()
	d.fn(v)
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
