package disclosure

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headerzoom/internal/hierarchy"
	"headerzoom/internal/schedule"
	"headerzoom/internal/sorting"
	"headerzoom/internal/state"
	"headerzoom/internal/telemetry"
)

type recordingRenderer struct {
	frames      []Frame
	transitions []Transition
	fallbacks   []string
	settled     int
	failNext    error
	panicNext   bool
}

func (r *recordingRenderer) Render(f Frame) error {
	if r.panicNext {
		r.panicNext = false
		panic("boom")
	}
	if err := r.failNext; err != nil {
		r.failNext = nil
		return err
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingRenderer) Transition(old, new []int) {
	r.transitions = append(r.transitions, Transition{Old: old, New: new})
}

func (r *recordingRenderer) SettleTransition() { r.settled++ }

func (r *recordingRenderer) RenderFallback(reason string) {
	r.fallbacks = append(r.fallbacks, reason)
}

func (r *recordingRenderer) last() Frame { return r.frames[len(r.frames)-1] }

type fixture struct {
	engine   *Engine
	renderer *recordingRenderer
	clock    *schedule.Manual
	store    *state.MemoryStore
	loaded   []int
}

func newFixture(t *testing.T, mutate func(*Settings)) *fixture {
	t.Helper()
	f := &fixture{
		renderer: &recordingRenderer{},
		clock:    schedule.NewManual(time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)),
		store:    state.NewMemory(),
	}
	settings := DefaultSettings()
	settings.TotalWidth = 1600
	if mutate != nil {
		mutate(&settings)
	}
	f.engine = NewEngine(Options{
		Settings:  settings,
		Renderer:  f.renderer,
		Scheduler: f.clock,
		Gateway: state.NewGateway(state.GatewayOptions{
			Progressive: f.store,
			Visibility:  f.store,
			Scheduler:   f.clock,
		}),
		Materializer: MaterializerFunc(func(level int) error {
			f.loaded = append(f.loaded, level)
			return nil
		}),
	})
	t.Cleanup(f.engine.Close)
	return f
}

func loadTime(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	_, h, err := hierarchy.NewLoader().LoadFile(context.Background(), filepath.Join("..", "..", "testdata", "hierarchies", "time.yaml"))
	require.NoError(t, err)
	return h
}

func TestTimeHierarchyStartsOnFirstTimeGroup(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))

	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{0, 1, 2}, st.VisibleLevels)
	assert.Equal(t, 0, st.CurrentTab)
	assert.True(t, f.engine.DisclosureActive())

	tabs := f.engine.LevelPickerTabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, "Time 1", tabs[0].Label)
	assert.Equal(t, "Time 2", tabs[1].Label)
	assert.True(t, tabs[0].IsActive)

	frame := f.renderer.last()
	assert.Equal(t, []int{0, 1, 2}, frame.VisibleLevels)
	assert.Len(t, frame.Nodes, 7)
	assert.Equal(t, 1600.0, frame.TotalWidth)
	assert.Equal(t, "year", frame.LevelLabels[0])
	assert.Equal(t, []Transition{{Old: nil, New: []int{0, 1, 2}}}, f.renderer.transitions)
}

func TestStepDownScenario(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))

	require.True(t, f.engine.StepDown())
	assert.Equal(t, []int{1, 2, 3}, f.engine.ProgressiveState().VisibleLevels)

	zoom := f.engine.ZoomControlState()
	assert.True(t, zoom.CanStepUp)
	assert.True(t, zoom.CanStepDown)
	assert.Equal(t, 3, zoom.MaxLevel)

	require.True(t, f.engine.StepUp())
	assert.Equal(t, []int{0, 1, 2}, f.engine.ProgressiveState().VisibleLevels)
	assert.False(t, f.engine.StepUp(), "already at the root")
}

func TestDensityTabScenario(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(hierarchy.Generate([]string{"a", "b", "c", "d", "e", "f"}, 2))

	tabs := f.engine.LevelPickerTabs()
	require.Len(t, tabs, 2)
	require.True(t, f.engine.SelectLevelTab(1))
	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{3, 4, 5}, st.VisibleLevels)
	assert.Equal(t, 1, st.CurrentTab)
	assert.True(t, f.engine.LevelPickerTabs()[1].IsActive)

	assert.False(t, f.engine.SelectLevelTab(5))
	assert.Equal(t, 1, f.engine.ProgressiveState().CurrentTab)
}

func TestShallowHierarchyShowsEveryLevel(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(hierarchy.Generate([]string{"year", "quarter", "month"}, 3))

	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{0, 1, 2}, st.VisibleLevels)
	assert.False(t, f.engine.DisclosureActive())
	assert.Nil(t, f.engine.LevelPickerTabs())
	assert.False(t, f.engine.StepDown(), "navigation is idle without disclosure")
	assert.False(t, f.engine.ZoomOut())
	assert.Empty(t, f.renderer.last().Tabs)
}

func TestLazyLoadingStaggersAndReplaces(t *testing.T) {
	f := newFixture(t, func(s *Settings) { s.LazyLoadingBuffer = 2 })
	f.engine.UpdateHierarchy(loadTime(t))

	f.clock.Advance(LazyLoadStagger)
	assert.Equal(t, []int{3}, f.loaded)

	// a new window before the second timer fires replaces the batch
	f.engine.StepDown()
	f.clock.Advance(time.Second)
	assert.Equal(t, []int{3, 4, 5}, f.loaded)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, f.engine.ProgressiveState().LoadedLevels)
}

func TestMaterializeFailureLeavesLevelUnloaded(t *testing.T) {
	var buf bytes.Buffer
	clock := schedule.NewManual(time.Unix(0, 0))
	e := NewEngine(Options{
		Settings:     DefaultSettings(),
		Scheduler:    clock,
		Logger:       telemetry.NewWriter(&buf, "debug"),
		Materializer: MaterializerFunc(func(int) error { return errors.New("query timeout") }),
	})
	defer e.Close()
	e.UpdateHierarchy(loadTime(t))
	clock.Advance(time.Second)
	assert.False(t, e.ProgressiveState().IsLoaded(3))
	assert.Contains(t, buf.String(), "lazy.materialize_failed")
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.SetStateContext("sales-2024", "grid")
	f.engine.UpdateHierarchy(loadTime(t))
	f.engine.StepDown()
	f.engine.StepDown()
	f.clock.Advance(time.Second)

	saved, err := f.store.LoadProgressiveState(context.Background(), state.StateKey{DatasetID: "sales-2024", AppContext: "grid"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, []int{2, 3, 4}, saved.VisibleLevels)

	second := NewEngine(Options{
		Settings:  DefaultSettings(),
		Scheduler: f.clock,
		Gateway:   state.NewGateway(state.GatewayOptions{Progressive: f.store, Scheduler: f.clock}),
	})
	defer second.Close()
	second.SetStateContext("sales-2024", "grid")
	second.UpdateHierarchy(loadTime(t))
	st := second.ProgressiveState()
	assert.Equal(t, []int{2, 3, 4}, st.VisibleLevels)
	assert.Equal(t, 1, st.CurrentTab)
}

func TestSetStateContextResetsWithoutSavedState(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.SetStateContext("sales-2024", "grid")
	f.engine.UpdateHierarchy(loadTime(t))
	f.engine.StepDown()

	f.engine.SetStateContext("sales-2024", "kanban")
	assert.Equal(t, []int{0, 1, 2}, f.engine.ProgressiveState().VisibleLevels)

	saved, err := f.store.LoadProgressiveState(context.Background(), state.StateKey{DatasetID: "sales-2024", AppContext: "grid"})
	require.NoError(t, err)
	require.NotNil(t, saved, "pending save for the old context was flushed")
	assert.Equal(t, []int{1, 2, 3}, saved.VisibleLevels)

	f.engine.SetStateContext("sales-2024", "grid")
	assert.Equal(t, []int{1, 2, 3}, f.engine.ProgressiveState().VisibleLevels)
}

func TestRestoredStateIsValidatedAgainstHierarchy(t *testing.T) {
	f := newFixture(t, nil)
	key := state.StateKey{DatasetID: "sales-2024"}
	require.NoError(t, f.store.SaveProgressiveState(context.Background(), key, state.ProgressiveState{
		VisibleLevels: []int{12, 13},
		CurrentTab:    9,
	}))
	f.engine.SetStateContext("sales-2024", "")
	f.engine.UpdateHierarchy(loadTime(t))
	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{0, 1, 2}, st.VisibleLevels)
	assert.Equal(t, 0, st.CurrentTab)
}

func TestVisibilityRestoreDerivesZoomAndTab(t *testing.T) {
	f := newFixture(t, nil)
	key := state.StateKey{DatasetID: "sales-2024"}
	require.NoError(t, f.store.SaveLevelVisibility(context.Background(), key, state.LevelVisibility{3: true, 4: true, 5: true}))

	f.engine.SetStateContext("sales-2024", "")
	f.engine.UpdateHierarchy(loadTime(t))
	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{3, 4, 5}, st.VisibleLevels)
	assert.Equal(t, 3, st.ZoomLevel)
	assert.Equal(t, 1, st.CurrentTab, "[3,4,5] overlaps the second time group")
	assert.True(t, f.engine.ZoomControlState().CanZoomOut)

	// the same window reached by stepping carries the same zoom
	require.True(t, f.engine.StepUp())
	require.True(t, f.engine.StepDown())
	assert.Equal(t, st.ZoomLevel, f.engine.ProgressiveState().ZoomLevel)
}

func TestSnapshotRestoreKeepsTabAndZoom(t *testing.T) {
	f := newFixture(t, nil)
	key := state.StateKey{DatasetID: "sales-2024"}
	require.NoError(t, f.store.SaveProgressiveState(context.Background(), key, state.ProgressiveState{
		VisibleLevels: []int{1, 2, 3},
		CurrentTab:    1,
		ZoomLevel:     1,
	}))
	f.engine.SetStateContext("sales-2024", "")
	f.engine.UpdateHierarchy(loadTime(t))

	st := f.engine.ProgressiveState()
	assert.Equal(t, []int{1, 2, 3}, st.VisibleLevels)
	assert.Equal(t, 1, st.CurrentTab, "saved tab wins over overlap")
	assert.Equal(t, 1, st.ZoomLevel)
	assert.True(t, f.engine.LevelPickerTabs()[1].IsActive)
}

func TestCloseFlushesPendingSave(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.SetStateContext("sales-2024", "")
	f.engine.UpdateHierarchy(loadTime(t))
	f.engine.StepDown()
	f.engine.Close()

	saved, err := f.store.LoadProgressiveState(context.Background(), state.StateKey{DatasetID: "sales-2024"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, []int{1, 2, 3}, saved.VisibleLevels)
	assert.False(t, f.engine.StepDown(), "closed engine ignores navigation")
}

func TestRenderFailuresFallBack(t *testing.T) {
	f := newFixture(t, nil)
	f.renderer.failNext = errors.New("surface lost")
	f.engine.UpdateHierarchy(loadTime(t))
	assert.Equal(t, []string{"surface lost"}, f.renderer.fallbacks)

	f.renderer.panicNext = true
	f.engine.StepDown()
	assert.Equal(t, []string{"surface lost", "boom"}, f.renderer.fallbacks)

	f.engine.StepDown()
	assert.Equal(t, []int{2, 3, 4}, f.renderer.last().VisibleLevels, "next pass heals the view")
}

func TestUpdateHierarchySettlesTransitionFirst(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))
	f.engine.StepDown()
	f.engine.UpdateHierarchy(loadTime(t))
	assert.Equal(t, 2, f.renderer.settled)
	last := f.renderer.transitions[len(f.renderer.transitions)-1]
	assert.Equal(t, Transition{Old: []int{1, 2, 3}, New: []int{0, 1, 2}}, last)
}

func TestClickHeaderCyclesSort(t *testing.T) {
	var events []sorting.Event
	f := newFixture(t, nil)
	f.engine.sorter.SetListener(func(e sorting.Event) { events = append(events, e) })
	f.engine.UpdateHierarchy(loadTime(t))

	f.engine.ClickHeader("q-1-1")
	assert.Equal(t, sorting.Asc, f.engine.SortState().Direction)
	assert.Equal(t, sorting.Asc, f.renderer.last().Sort.Direction)
	f.engine.ClickHeader("q-1-2")
	assert.Equal(t, sorting.Desc, f.engine.SortState().Direction)
	f.engine.ClickHeader("m-1-1-1")
	assert.Equal(t, sorting.State{Facet: "month", Direction: sorting.Asc, NodeID: "m-1-1-1"}, f.engine.SortState())

	_, ok := f.engine.ClickHeader("nope")
	assert.False(t, ok)
	assert.Len(t, events, 3)
}

func TestToggleNodeHidesDescendants(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))
	before := len(f.renderer.last().Nodes)

	require.True(t, f.engine.ToggleNode("q-1-1"))
	after := f.renderer.last()
	assert.Len(t, after.Nodes, before-2)
	assert.False(t, f.engine.ToggleNode("mi-1-1-1-1-1-1-1"), "leaves do not toggle")
	assert.False(t, f.engine.ToggleNode("missing"))
}

func TestResizeThroughEngine(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))
	year := f.renderer.last().NodesAt(0)[0]

	require.True(t, f.engine.StartResize(year.ID, year.Width, 0))
	assert.True(t, f.engine.ResizeState().IsActive)
	require.True(t, f.engine.MoveResize(year.Width+400, 0))
	assert.InDelta(t, year.Width+400, f.renderer.last().NodesAt(0)[0].Width, 0.001)

	final, ok := f.engine.EndResize()
	require.True(t, ok)
	assert.Equal(t, year.ID, final.TargetNodeID)
	assert.False(t, f.engine.MoveResize(0, 0))
	assert.False(t, f.engine.StartResize("missing", 0, 0))
}

func TestSetTotalWidthRelayouts(t *testing.T) {
	f := newFixture(t, nil)
	f.engine.UpdateHierarchy(loadTime(t))
	f.engine.SetTotalWidth(800)
	assert.Equal(t, 800.0, f.renderer.last().TotalWidth)
}
