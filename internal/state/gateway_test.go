package state

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headerzoom/internal/schedule"
	"headerzoom/internal/telemetry"
)

var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func newTestGateway(store *MemoryStore, clock *schedule.Manual) *Gateway {
	return NewGateway(GatewayOptions{
		Progressive: store,
		Visibility:  store,
		Scheduler:   clock,
		Debounce:    400 * time.Millisecond,
	})
}

func TestGatewayRoundTripAfterDebounce(t *testing.T) {
	store := NewMemory()
	clock := schedule.NewManual(epoch)
	g := newTestGateway(store, clock)
	assert.Nil(t, g.SetStateContext("sales-2024", "grid"))

	g.Save(ProgressiveState{VisibleLevels: []int{1, 2, 3}, CurrentTab: 1, ZoomLevel: 3})
	clock.Advance(399 * time.Millisecond)
	assert.Nil(t, g.Restore(), "nothing written inside the quiet period")

	clock.Advance(time.Millisecond)
	got := g.Restore()
	require.NotNil(t, got)
	assert.Equal(t, []int{1, 2, 3}, got.VisibleLevels)
	assert.Equal(t, 1, got.CurrentTab)
	assert.Equal(t, 3, got.ZoomLevel)
}

func TestGatewayCoalescesBursts(t *testing.T) {
	store := NewMemory()
	clock := schedule.NewManual(epoch)
	g := newTestGateway(store, clock)
	g.SetStateContext("sales-2024", "")

	for i := 0; i < 5; i++ {
		g.Save(ProgressiveState{VisibleLevels: []int{i}})
		clock.Advance(100 * time.Millisecond)
	}
	assert.True(t, g.Pending())
	clock.Advance(400 * time.Millisecond)
	assert.False(t, g.Pending())

	got := g.Restore()
	require.NotNil(t, got)
	assert.Equal(t, []int{4}, got.VisibleLevels, "last write wins")
}

func TestSetStateContextFlushesOldKey(t *testing.T) {
	store := NewMemory()
	clock := schedule.NewManual(epoch)
	g := newTestGateway(store, clock)
	g.SetStateContext("a", "grid")
	g.Save(ProgressiveState{VisibleLevels: []int{2, 3, 4}})

	restored := g.SetStateContext("b", "grid")
	assert.Nil(t, restored, "no state leaks into the new context")
	assert.Equal(t, StateKey{DatasetID: "b", AppContext: "grid"}, g.Key())

	saved, err := store.LoadProgressiveState(context.Background(), StateKey{DatasetID: "a", AppContext: "grid"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, []int{2, 3, 4}, saved.VisibleLevels)

	assert.NotNil(t, g.SetStateContext("a", "grid"))
}

func TestRestoreFallsBackToVisibilityChannel(t *testing.T) {
	store := NewMemory()
	key := StateKey{DatasetID: "legacy"}
	require.NoError(t, store.SaveLevelVisibility(context.Background(), key, LevelVisibility{0: false, 1: true, 2: true}))

	g := NewGateway(GatewayOptions{Visibility: store, Scheduler: schedule.NewManual(epoch)})
	got := g.SetStateContext("legacy", "")
	require.NotNil(t, got)
	assert.Equal(t, []int{1, 2}, got.VisibleLevels)
	assert.True(t, got.VisibilityOnly)
}

type failingStore struct{}

func (failingStore) LoadProgressiveState(context.Context, StateKey) (*ProgressiveState, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) SaveProgressiveState(context.Context, StateKey, ProgressiveState) error {
	return errors.New("disk on fire")
}

func TestStoreErrorsAreLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	clock := schedule.NewManual(epoch)
	g := NewGateway(GatewayOptions{
		Progressive: failingStore{},
		Scheduler:   clock,
		Logger:      telemetry.NewWriter(&buf, "debug"),
	})
	assert.Nil(t, g.SetStateContext("sales-2024", ""))
	g.Save(ProgressiveState{VisibleLevels: []int{0}})
	clock.Advance(schedule.DefaultDebounceDuration)

	out := buf.String()
	assert.Contains(t, out, "state.restore_failed")
	assert.Contains(t, out, "state.save_failed")
}

func TestGatewayWithoutStoresIsNoop(t *testing.T) {
	g := NewGateway(GatewayOptions{Scheduler: schedule.NewManual(epoch)})
	assert.False(t, g.Enabled())
	g.SetStateContext("x", "")
	g.Save(ProgressiveState{VisibleLevels: []int{0}})
	assert.False(t, g.Pending())
	assert.Nil(t, g.Restore())
}

func TestSaveWithoutContextIsIgnored(t *testing.T) {
	g := newTestGateway(NewMemory(), schedule.NewManual(epoch))
	g.Save(ProgressiveState{VisibleLevels: []int{0}})
	assert.False(t, g.Pending())
}

func TestMarkLoadedKeepsSortedSet(t *testing.T) {
	var st ProgressiveState
	assert.Equal(t, []int{3, 1}, st.MarkLoaded(3, 1, 3, -1))
	assert.Equal(t, []int{2}, st.MarkLoaded(1, 2))
	assert.Equal(t, []int{1, 2, 3}, st.LoadedLevels)
	assert.True(t, st.IsLoaded(2))
	assert.False(t, st.IsLoaded(0))

	v := VisibilityOf(ProgressiveState{VisibleLevels: []int{1}, LoadedLevels: []int{0, 1, 2}})
	assert.Equal(t, LevelVisibility{0: false, 1: true, 2: false}, v)
}
