package disclosure

import (
	"slices"
	"time"

	"headerzoom/internal/state"
)

// Action is one navigation request.
type Action interface{ isAction() }

type (
	SelectTab        struct{ Index int }
	SetVisibleLevels struct{ Levels []int }
	StepUp           struct{}
	StepDown         struct{}
	ZoomIn           struct{}
	ZoomOut          struct{}
)

func (SelectTab) isAction()        {}
func (SetVisibleLevels) isAction() {}
func (StepUp) isAction()           {}
func (StepDown) isAction()         {}
func (ZoomIn) isAction()           {}
func (ZoomOut) isAction()          {}

// Effect is work the caller performs after a committed action.
type Effect interface{ isEffect() }

// Transition is the visible window moving from Old to New.
type Transition struct{ Old, New []int }

// Persist asks for State to be saved.
type Persist struct{ State state.ProgressiveState }

// Materialize asks for Level to be prepared; Distance is how far it sits
// outside the visible window, starting at 1.
type Materialize struct {
	Level    int
	Distance int
}

func (Transition) isEffect()  {}
func (Persist) isEffect()     {}
func (Materialize) isEffect() {}

// Env is what the reducer needs to know about the world.
type Env struct {
	MaxDepth          int
	MaxVisibleLevels  int
	LazyLoading       bool
	LazyLoadingBuffer int
	Now               time.Time
}

// Reduce applies a to st. Every change of the visible window goes through
// commit, so the active tab, zoom level and loaded set always agree with
// it. Rejected actions return st unchanged and no effects. st is never
// modified.
func Reduce(st state.ProgressiveState, a Action, env Env) (state.ProgressiveState, []Effect) {
	st = st.Clone()
	switch a := a.(type) {
	case SelectTab:
		p := NewPicker(st.LevelGroups, st.CurrentTab)
		tab, ok := p.SelectTab(a.Index)
		if !ok {
			return st, nil
		}
		return commit(st, tab.Levels, env, commitOpts{tab: a.Index})
	case SetVisibleLevels:
		return commit(st, a.Levels, env, commitOpts{tab: -1})
	case StepUp:
		lo, _, ok := bounds(st.VisibleLevels)
		if !ok || lo-1 < 0 {
			return st, nil
		}
		return commit(st, shift(st.VisibleLevels, -1), env, commitOpts{tab: -1})
	case StepDown:
		_, hi, ok := bounds(st.VisibleLevels)
		if !ok || hi+1 > env.MaxDepth {
			return st, nil
		}
		return commit(st, shift(st.VisibleLevels, 1), env, commitOpts{tab: -1})
	case ZoomIn:
		if env.MaxDepth < 0 || st.ZoomLevel >= zoomCeiling(env.MaxDepth) {
			return st, nil
		}
		z := st.ZoomLevel + 1
		return commit(st, prefix(z), env, commitOpts{tab: -1, zoom: &z})
	case ZoomOut:
		if st.ZoomLevel <= 0 {
			return st, nil
		}
		z := st.ZoomLevel - 1
		return commit(st, prefix(z), env, commitOpts{tab: -1, zoom: &z})
	default:
		return st, nil
	}
}

type commitOpts struct {
	// tab is the explicitly selected tab, or -1 to sync by overlap.
	tab int
	// zoom overrides the derived zoom level.
	zoom *int
}

func commit(st state.ProgressiveState, levels []int, env Env, opts commitOpts) (state.ProgressiveState, []Effect) {
	window := NormalizeLevels(levels, env.MaxDepth, env.MaxVisibleLevels)
	if len(window) == 0 {
		return st, nil
	}
	old := st.VisibleLevels

	p := NewPicker(st.LevelGroups, st.CurrentTab)
	if opts.tab >= 0 {
		p.SelectTab(opts.tab)
	} else {
		p.SyncToLevels(window)
	}
	zoom := derivedZoom(window)
	if opts.zoom != nil {
		zoom = *opts.zoom
	}

	changed := !slices.Equal(old, window)
	if !changed && p.Current() == st.CurrentTab && zoom == st.ZoomLevel {
		return st, nil
	}

	st.VisibleLevels = window
	st.CurrentTab = p.Current()
	st.ZoomLevel = zoom
	st.MarkLoaded(window...)
	st.LastUpdated = env.Now

	var effects []Effect
	if changed {
		effects = append(effects, Transition{Old: slices.Clone(old), New: slices.Clone(window)})
		effects = append(effects, lazyTargets(st, env)...)
	}
	effects = append(effects, Persist{State: st.Clone()})
	return st, effects
}

// NormalizeLevels keeps levels inside [0, maxDepth], drops repeats, sorts
// them and keeps at most maxVisible.
func NormalizeLevels(levels []int, maxDepth, maxVisible int) []int {
	out := make([]int, 0, len(levels))
	for _, l := range levels {
		if l < 0 || l > maxDepth || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	slices.Sort(out)
	if maxVisible > 0 && len(out) > maxVisible {
		out = out[:maxVisible]
	}
	return out
}

// lazyTargets lists the unloaded levels within the buffer on either side
// of the window, nearest first.
func lazyTargets(st state.ProgressiveState, env Env) []Effect {
	if !env.LazyLoading || env.LazyLoadingBuffer <= 0 {
		return nil
	}
	lo, hi, ok := bounds(st.VisibleLevels)
	if !ok {
		return nil
	}
	var out []Effect
	for d := 1; d <= env.LazyLoadingBuffer; d++ {
		for _, l := range []int{lo - d, hi + d} {
			if l < 0 || l > env.MaxDepth || st.IsLoaded(l) {
				continue
			}
			out = append(out, Materialize{Level: l, Distance: d})
		}
	}
	return out
}

// derivedZoom ties the zoom level to the deepest visible level after any
// navigation that is not itself a zoom.
func derivedZoom(window []int) int {
	_, hi, ok := bounds(window)
	if !ok {
		return 0
	}
	return min(hi, MaxZoomLevel)
}

func shift(levels []int, by int) []int {
	out := make([]int, len(levels))
	for i, l := range levels {
		out[i] = l + by
	}
	return out
}

func prefix(z int) []int {
	out := make([]int, 0, z+1)
	for l := 0; l <= z; l++ {
		out = append(out, l)
	}
	return out
}
