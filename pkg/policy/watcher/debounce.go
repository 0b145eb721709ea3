package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per key. The callback for a key
// fires after the interval elapses with no further triggers for that
// key. Editors commonly write a file several times in quick succession;
// debouncing per path ensures each save results in a single ingestion.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopped  bool
}

// NewDebouncer creates a new per-key debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// Trigger schedules callback for key after the debounce interval.
// A subsequent Trigger for the same key before the interval elapses
// resets the timer and replaces the callback.
func (d *Debouncer) Trigger(key string, callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		callback()
	})
}

// Stop cancels all pending callbacks. The debouncer cannot be reused
// after Stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
