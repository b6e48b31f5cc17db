package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"headerzoom/internal/grouping"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestProgressiveStateUpsertAndLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := StateKey{DatasetID: "sales-2024", AppContext: "grid"}

	missing, err := store.LoadProgressiveState(ctx, key)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil state before first save, got %+v", missing)
	}

	first := ProgressiveState{
		VisibleLevels: []int{0, 1, 2},
		LevelGroups:   []grouping.LevelGroup{{ID: "time-1", Name: "Time 1", Levels: []int{0, 1, 2}, Type: grouping.Semantic}},
		LoadedLevels:  []int{0, 1, 2, 3},
		LastUpdated:   time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := store.SaveProgressiveState(ctx, key, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := first.Clone()
	second.VisibleLevels = []int{1, 2, 3}
	second.CurrentTab = 1
	second.ZoomLevel = 3
	if err := store.SaveProgressiveState(ctx, key, second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := store.LoadProgressiveState(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || len(got.VisibleLevels) != 3 || got.VisibleLevels[0] != 1 || got.CurrentTab != 1 || got.ZoomLevel != 3 {
		t.Fatalf("unexpected state after upsert: %+v", got)
	}
	if len(got.LevelGroups) != 1 || got.LevelGroups[0].Name != "Time 1" {
		t.Fatalf("level groups not round-tripped: %+v", got.LevelGroups)
	}
	if !got.LastUpdated.Equal(first.LastUpdated) {
		t.Fatalf("expected last updated %v, got %v", first.LastUpdated, got.LastUpdated)
	}

	keys, err := store.ListKeys(ctx)
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("expected one key %v, got %v", key, keys)
	}
}

func TestLevelVisibilityReplacesRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := StateKey{DatasetID: "headcount"}

	if err := store.SaveLevelVisibility(ctx, key, LevelVisibility{0: true, 1: true, 2: false, 3: false}); err != nil {
		t.Fatalf("save visibility: %v", err)
	}
	if err := store.SaveLevelVisibility(ctx, key, LevelVisibility{0: false, 1: true}); err != nil {
		t.Fatalf("save visibility again: %v", err)
	}
	v, err := store.LoadLevelVisibility(ctx, key)
	if err != nil {
		t.Fatalf("load visibility: %v", err)
	}
	if len(v) != 2 || v[0] || !v[1] {
		t.Fatalf("unexpected visibility: %v", v)
	}

	other, err := store.LoadLevelVisibility(ctx, StateKey{DatasetID: "headcount", AppContext: "kanban"})
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if other != nil {
		t.Fatalf("expected no visibility for other app context, got %v", other)
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	mem, err := Open(ctx, "memory", "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}
	sqlStore, err := Open(ctx, "sqlite", t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = sqlStore.Close() }()
	if _, err := Open(ctx, "redis", ""); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
