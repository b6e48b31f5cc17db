package disclosure

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"headerzoom/internal/grouping"
	"headerzoom/internal/hierarchy"
	"headerzoom/internal/layout"
	"headerzoom/internal/schedule"
	"headerzoom/internal/sorting"
	"headerzoom/internal/state"
	"headerzoom/internal/telemetry"
)

// LazyLoadStagger separates materialization of successive buffer levels.
const LazyLoadStagger = 50 * time.Millisecond

type Settings struct {
	AutoGroupThreshold int
	MaxVisibleLevels   int
	SemanticGrouping   bool
	LazyLoading        bool
	LazyLoadingBuffer  int
	TotalWidth         float64
}

func DefaultSettings() Settings {
	return Settings{
		AutoGroupThreshold: grouping.DefaultAutoGroupThreshold,
		MaxVisibleLevels:   grouping.DefaultMaxVisibleLevels,
		SemanticGrouping:   true,
		LazyLoading:        true,
		LazyLoadingBuffer:  1,
		TotalWidth:         1200,
	}
}

type Options struct {
	Settings     Settings
	Calculator   *layout.Calculator
	Renderer     Renderer
	Materializer Materializer
	Gateway      *state.Gateway
	Scheduler    schedule.Scheduler
	Logger       *telemetry.Logger
	SortListener sorting.Listener
}

// Engine owns the hierarchy and the navigational state. Its methods are
// safe to call from any goroutine; timer callbacks share the same lock.
type Engine struct {
	mu sync.Mutex

	settings     Settings
	calc         *layout.Calculator
	renderer     Renderer
	materializer Materializer
	gateway      *state.Gateway
	sched        schedule.Scheduler
	logger       *telemetry.Logger
	groups       *grouping.Manager
	sorter       *sorting.Toggle

	h      *hierarchy.Hierarchy
	st     state.ProgressiveState
	active bool
	labels []string

	lazy    *schedule.Batch
	lazyGen uint64
	resize  *layout.ResizeSession
	closed  bool
}

func NewEngine(opts Options) *Engine {
	s := opts.Settings
	if s.AutoGroupThreshold <= 0 {
		s.AutoGroupThreshold = grouping.DefaultAutoGroupThreshold
	}
	if s.MaxVisibleLevels <= 0 {
		s.MaxVisibleLevels = grouping.DefaultMaxVisibleLevels
	}
	if s.LazyLoadingBuffer < 0 {
		s.LazyLoadingBuffer = 0
	}
	if s.TotalWidth <= 0 {
		s.TotalWidth = DefaultSettings().TotalWidth
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop()
	}
	if opts.Calculator == nil {
		opts.Calculator = layout.New(layout.Options{Logger: opts.Logger})
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Real{}
	}
	return &Engine{
		settings:     s,
		calc:         opts.Calculator,
		renderer:     opts.Renderer,
		materializer: opts.Materializer,
		gateway:      opts.Gateway,
		sched:        opts.Scheduler,
		logger:       opts.Logger,
		groups: grouping.NewManager(grouping.Config{
			AutoGroupThreshold: s.AutoGroupThreshold,
			SemanticGrouping:   s.SemanticGrouping,
			MaxVisibleLevels:   s.MaxVisibleLevels,
		}),
		sorter: sorting.NewToggle(opts.SortListener),
	}
}

// UpdateHierarchy replaces the hierarchy wholesale. Deep hierarchies get
// level groups and a bounded visible window, restored from the store when
// one is saved for the current context; shallow ones show every level.
func (e *Engine) UpdateHierarchy(h *hierarchy.Hierarchy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	defer e.recoverLocked("update_hierarchy")

	if e.renderer != nil {
		e.renderer.SettleTransition()
	}
	e.cancelLazyLocked()
	e.resize = nil
	e.sorter.Clear()

	prev := e.st.VisibleLevels
	e.h = h
	res := e.calc.Calculate(h, e.settings.TotalWidth)
	e.labels = levelLabels(h)
	e.active = e.groups.HasAutoGrouping(h)

	var saved *state.ProgressiveState
	if e.active && e.gateway != nil {
		e.gateway.Flush()
		saved = e.gateway.Restore()
	}
	effects := e.resetLocked(saved)
	effects = retarget(effects, prev)

	e.logger.Info("hierarchy.updated", map[string]any{
		"nodes":       h.Len(),
		"max_depth":   h.MaxDepth(),
		"disclosure":  e.active,
		"visible":     e.st.VisibleLevels,
		"violations":  len(res.Violations),
		"total_width": res.TotalWidth,
	})
	e.applyLocked(effects)
}

// resetLocked rebuilds the navigational state for the current hierarchy,
// starting from saved when it still fits.
func (e *Engine) resetLocked(saved *state.ProgressiveState) []Effect {
	maxDepth := e.h.MaxDepth()
	now := e.sched.Now()
	if !e.active {
		all := prefix(maxDepth)
		e.st = state.ProgressiveState{
			VisibleLevels: all,
			ZoomLevel:     zoomCeiling(maxDepth),
			LastUpdated:   now,
		}
		e.st.MarkLoaded(all...)
		return []Effect{Transition{New: all}}
	}

	base := state.ProgressiveState{LevelGroups: e.groups.Build(e.h)}
	env := e.envLocked()
	if saved != nil {
		// A full snapshot keeps its tab and zoom; a visibility-only one
		// derives both from the window like any other navigation.
		opts := commitOpts{tab: -1}
		if !saved.VisibilityOnly {
			opts.tab = NewPicker(base.LevelGroups, saved.CurrentTab).Current()
			z := min(max(0, saved.ZoomLevel), zoomCeiling(maxDepth))
			opts.zoom = &z
		}
		next, effects := commit(base, saved.VisibleLevels, env, opts)
		if len(next.VisibleLevels) > 0 {
			e.st = next
			e.logger.Info("state.restored", map[string]any{"key": e.gateway.Key().String(), "visible": next.VisibleLevels})
			return effects
		}
	}
	next, effects := Reduce(base, SetVisibleLevels{Levels: prefix(e.settings.MaxVisibleLevels - 1)}, env)
	e.st = next
	return effects
}

// retarget rewrites the transition of a rebuild to start from the window
// shown before it, dropping it when nothing moved.
func retarget(effects []Effect, prev []int) []Effect {
	out := effects[:0]
	for _, eff := range effects {
		if t, ok := eff.(Transition); ok {
			if slices.Equal(prev, t.New) {
				continue
			}
			t.Old = append([]int(nil), prev...)
			eff = t
		}
		out = append(out, eff)
	}
	return out
}

// Dispatch runs a navigation action through the reducer and applies its
// effects. It reports whether the action changed anything. Navigation is
// ignored while disclosure is inactive.
func (e *Engine) Dispatch(a Action) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.active {
		return false
	}
	defer e.recoverLocked("dispatch")
	next, effects := Reduce(e.st, a, e.envLocked())
	if len(effects) == 0 {
		return false
	}
	e.st = next
	e.applyLocked(effects)
	return true
}

func (e *Engine) SelectLevelTab(i int) bool     { return e.Dispatch(SelectTab{Index: i}) }
func (e *Engine) SetVisibleLevels(l []int) bool { return e.Dispatch(SetVisibleLevels{Levels: l}) }
func (e *Engine) StepUp() bool                  { return e.Dispatch(StepUp{}) }
func (e *Engine) StepDown() bool                { return e.Dispatch(StepDown{}) }
func (e *Engine) ZoomIn() bool                  { return e.Dispatch(ZoomIn{}) }
func (e *Engine) ZoomOut() bool                 { return e.Dispatch(ZoomOut{}) }

func (e *Engine) applyLocked(effects []Effect) {
	var lazy []Materialize
	for _, eff := range effects {
		switch eff := eff.(type) {
		case Transition:
			if e.renderer != nil {
				e.renderer.Transition(eff.Old, eff.New)
			}
		case Persist:
			if e.gateway != nil {
				e.gateway.Save(eff.State)
			}
		case Materialize:
			lazy = append(lazy, eff)
		}
	}
	if len(lazy) > 0 {
		e.scheduleLazyLocked(lazy)
	}
	e.renderLocked()
}

// scheduleLazyLocked replaces any pending lazy batch with one timer per
// level, staggered by distance from the window.
func (e *Engine) scheduleLazyLocked(targets []Materialize) {
	e.cancelLazyLocked()
	batch := &schedule.Batch{}
	gen := e.lazyGen
	for _, m := range targets {
		level := m.Level
		batch.Add(e.sched.AfterFunc(time.Duration(m.Distance)*LazyLoadStagger, func() {
			e.materialize(level, gen)
		}))
	}
	e.lazy = batch
}

func (e *Engine) cancelLazyLocked() {
	e.lazyGen++
	if e.lazy != nil {
		e.lazy.Stop()
		e.lazy = nil
	}
}

func (e *Engine) materialize(level int, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.lazyGen || e.st.IsLoaded(level) {
		return
	}
	if e.materializer != nil {
		if err := e.materializer.MaterializeLevel(level); err != nil {
			e.logger.Warn("lazy.materialize_failed", map[string]any{"level": level, "error": err.Error()})
			return
		}
	}
	e.st.MarkLoaded(level)
	e.logger.Debug("lazy.materialized", map[string]any{"level": level})
	if e.gateway != nil {
		e.gateway.Save(e.st)
	}
}

func (e *Engine) renderLocked() {
	if e.renderer == nil {
		return
	}
	if err := e.renderer.Render(e.frameLocked()); err != nil {
		e.logger.Error("render.failed", map[string]any{"error": err.Error()})
		e.renderer.RenderFallback(err.Error())
	}
}

// recoverLocked turns a panic inside a render pass into the fallback
// header. The next successful pass replaces it.
func (e *Engine) recoverLocked(op string) {
	r := recover()
	if r == nil {
		return
	}
	reason := fmt.Sprint(r)
	e.logger.Error("render.panic", map[string]any{"op": op, "panic": reason})
	if e.renderer != nil {
		e.renderer.RenderFallback(reason)
	}
}

func (e *Engine) frameLocked() Frame {
	f := Frame{
		Nodes:         visibleNodes(e.h, e.st.VisibleLevels),
		VisibleLevels: append([]int(nil), e.st.VisibleLevels...),
		LevelLabels:   append([]string(nil), e.labels...),
		TotalWidth:    e.totalWidthLocked(),
		Disclosure:    e.active,
		Zoom:          zoomControl(e.st, e.h.MaxDepth(), e.labels),
		Sort:          e.sorter.State(),
	}
	if e.active {
		f.Tabs = NewPicker(e.st.LevelGroups, e.st.CurrentTab).Tabs()
	}
	return f
}

func (e *Engine) totalWidthLocked() float64 {
	if e.h == nil {
		return 0
	}
	return e.h.TotalWidth
}

func (e *Engine) envLocked() Env {
	return Env{
		MaxDepth:          e.h.MaxDepth(),
		MaxVisibleLevels:  e.settings.MaxVisibleLevels,
		LazyLoading:       e.settings.LazyLoading,
		LazyLoadingBuffer: e.settings.LazyLoadingBuffer,
		Now:               e.sched.Now(),
	}
}

// ProgressiveState returns a copy of the current navigational state.
func (e *Engine) ProgressiveState() state.ProgressiveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Clone()
}

// LevelPickerTabs is nil while disclosure is inactive.
func (e *Engine) LevelPickerTabs() []LevelPickerTab {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return nil
	}
	return NewPicker(e.st.LevelGroups, e.st.CurrentTab).Tabs()
}

func (e *Engine) ZoomControlState() ZoomControlState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return zoomControl(e.st, e.h.MaxDepth(), e.labels)
}

func (e *Engine) DisclosureActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

func (e *Engine) SortState() sorting.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sorter.State()
}

// ClickHeader advances the sort toggle for the node's facet. Unknown ids
// are ignored.
func (e *Engine) ClickHeader(nodeID string) (sorting.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.h.Node(nodeID)
	if e.closed || !ok {
		return sorting.Event{}, false
	}
	defer e.recoverLocked("sort")
	ev, ok := e.sorter.Click(n)
	if ok {
		e.renderLocked()
	}
	return ev, ok
}

// ToggleNode expands or collapses a non-leaf node.
func (e *Engine) ToggleNode(nodeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	defer e.recoverLocked("toggle")
	if _, ok := e.h.ToggleExpanded(nodeID); !ok {
		return false
	}
	e.renderLocked()
	return true
}

// SetTotalWidth lays the hierarchy out again for a new viewport width.
func (e *Engine) SetTotalWidth(w float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || w <= 0 {
		return
	}
	defer e.recoverLocked("resize_viewport")
	e.settings.TotalWidth = w
	if e.h == nil {
		return
	}
	e.resize = nil
	e.calc.Calculate(e.h, w)
	e.renderLocked()
}

func (e *Engine) StartResize(nodeID string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.h == nil {
		return false
	}
	s, ok := e.calc.StartResize(e.h, nodeID, x, y)
	if !ok {
		return false
	}
	e.resize = s
	return true
}

func (e *Engine) MoveResize(x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.resize == nil {
		return false
	}
	defer e.recoverLocked("resize")
	if !e.resize.Move(x, y) {
		return false
	}
	e.renderLocked()
	return true
}

func (e *Engine) EndResize() (layout.ResizeOperationState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resize == nil {
		return layout.ResizeOperationState{}, false
	}
	final := e.resize.End()
	e.resize = nil
	return final, true
}

func (e *Engine) ResizeState() layout.ResizeOperationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resize.State()
}

// SetStateContext switches the persistence key. Pending saves for the old
// key are written first; the view then moves to whatever was saved for
// the new key, or to the initial window.
func (e *Engine) SetStateContext(datasetID, appContext string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.gateway == nil {
		return
	}
	defer e.recoverLocked("state_context")
	saved := e.gateway.SetStateContext(datasetID, appContext)
	if e.h == nil || !e.active {
		return
	}
	e.cancelLazyLocked()
	prev := e.st.VisibleLevels
	effects := retarget(e.resetLocked(saved), prev)
	e.applyLocked(effects)
}

// Close flushes pending saves, cancels lazy loads and drops collaborators.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.gateway != nil {
		e.gateway.Close()
	}
	e.cancelLazyLocked()
	e.resize = nil
	e.renderer = nil
	e.materializer = nil
	e.sorter.SetListener(nil)
}

func levelLabels(h *hierarchy.Hierarchy) []string {
	out := make([]string, 0, h.MaxDepth()+1)
	for l := 0; l <= h.MaxDepth(); l++ {
		facets := h.FacetsAtLevel(l)
		if len(facets) == 0 {
			out = append(out, fmt.Sprintf("Level %d", l))
			continue
		}
		out = append(out, strings.Join(facets, "/"))
	}
	return out
}
