package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic scheduler: callbacks run only when Advance
// moves the clock past their deadline, on the caller's goroutine.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	owner    *Manual
	at       time.Time
	seq      uint64
	fn       func()
	canceled bool
	fired    bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{owner: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and runs every due callback in
// deadline order. Callbacks scheduled while advancing run too if they
// fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		if next.at.After(m.now) {
			m.now = next.at
		}
		next.fired = true
		m.mu.Unlock()
		next.fn()
	}
}

// Pending is the number of scheduled, not yet fired or stopped callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.canceled && !t.fired {
			n++
		}
	}
	return n
}

func (m *Manual) popDue(target time.Time) *manualTimer {
	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.canceled && !t.fired {
			live = append(live, t)
		}
	}
	m.pending = live
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].at.Equal(m.pending[j].at) {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].at.Before(m.pending[j].at)
	})
	if len(m.pending) == 0 || m.pending[0].at.After(target) {
		return nil
	}
	t := m.pending[0]
	m.pending = m.pending[1:]
	return t
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.fired || t.canceled {
		return false
	}
	t.canceled = true
	return true
}
