package watcher

import (
	"sync"
	"time"
)

// Debouncer delays processing until file activity settles. Rapid events for
// the same file collapse into one callback after the delay expires.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewDebouncer creates a Debouncer invoking callback per quiesced path.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*time.Timer),
	}
}

// Add schedules a path for processing after the delay, resetting the timer
// if the path is already pending.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.pending[path]; exists {
		timer.Stop()
	}
	d.pending[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.pending, path)
		d.mu.Unlock()
		// Callback runs outside the lock to avoid deadlocks with Add.
		d.callback(path)
	})
}

// CancelAll cancels every pending timer, for shutdown.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, timer := range d.pending {
		timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns how many paths are waiting to be processed.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
