package schedule

import "sync"

// Batch groups several scheduled callbacks behind one Handle so a fan-out
// can be cancelled as a unit.
type Batch struct {
	mu      sync.Mutex
	handles []Handle
}

func (b *Batch) Add(h Handle) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handles = append(b.handles, h)
}

// Stop cancels every callback that has not run yet.
func (b *Batch) Stop() bool {
	b.mu.Lock()
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()
	stopped := false
	for _, h := range handles {
		if h.Stop() {
			stopped = true
		}
	}
	return stopped
}
