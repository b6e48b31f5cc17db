package schedule

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default quiet period.
const DefaultDebounceDuration = 400 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback. Each Trigger
// replaces the pending callback; only the most recent one runs once the
// quiet period elapses.
type Debouncer struct {
	sched    Scheduler
	duration time.Duration

	mu      sync.Mutex
	handle  Handle
	pending func()
	seq     uint64
}

func NewDebouncer(sched Scheduler, duration time.Duration) *Debouncer {
	if duration <= 0 {
		duration = DefaultDebounceDuration
	}
	if sched == nil {
		sched = Real{}
	}
	return &Debouncer{sched: sched, duration: duration}
}

func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.handle != nil {
		d.handle.Stop()
	}
	d.pending = callback
	d.handle = d.sched.AfterFunc(d.duration, func() {
		fn := d.take(seq)
		if fn != nil {
			fn()
		}
	})
}

// take claims the pending callback if seq is still the latest trigger.
// A stale timer that fired concurrently with a newer Trigger gets nil.
func (d *Debouncer) take(seq uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return nil
	}
	fn := d.pending
	d.pending = nil
	d.handle = nil
	return fn
}

// Flush runs the pending callback now, on the caller's goroutine.
// It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	d.seq++
	if d.handle != nil {
		d.handle.Stop()
		d.handle = nil
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending callback without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.handle != nil {
		d.handle.Stop()
		d.handle = nil
	}
	d.pending = nil
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
