package schedule

import "time"

// Scheduler runs fn once after d. Implementations may run fn on another
// goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Handle
	Now() time.Time
}

// Handle cancels one scheduled callback. Stop reports whether the call
// prevented the callback from running.
type Handle interface {
	Stop() bool
}
