package state

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps state for the life of the process.
type MemoryStore struct {
	mu          sync.Mutex
	progressive map[StateKey]ProgressiveState
	visibility  map[StateKey]LevelVisibility
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		progressive: map[StateKey]ProgressiveState{},
		visibility:  map[StateKey]LevelVisibility{},
	}
}

func (m *MemoryStore) EnsureSchema(context.Context) error { return nil }

func (m *MemoryStore) SaveProgressiveState(_ context.Context, key StateKey, st ProgressiveState) error {
	if !key.Valid() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progressive[key] = st.Clone()
	return nil
}

func (m *MemoryStore) LoadProgressiveState(_ context.Context, key StateKey) (*ProgressiveState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.progressive[key]
	if !ok {
		return nil, nil
	}
	out := st.Clone()
	return &out, nil
}

func (m *MemoryStore) SaveLevelVisibility(_ context.Context, key StateKey, v LevelVisibility) error {
	if !key.Valid() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(LevelVisibility, len(v))
	for l, on := range v {
		cp[l] = on
	}
	m.visibility[key] = cp
	return nil
}

func (m *MemoryStore) LoadLevelVisibility(_ context.Context, key StateKey) (LevelVisibility, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visibility[key]
	if !ok {
		return nil, nil
	}
	cp := make(LevelVisibility, len(v))
	for l, on := range v {
		cp[l] = on
	}
	return cp, nil
}

func (m *MemoryStore) ListKeys(context.Context) ([]StateKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StateKey, 0, len(m.progressive))
	for k := range m.progressive {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
