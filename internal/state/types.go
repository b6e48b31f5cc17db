package state

import (
	"sort"
	"time"

	"headerzoom/internal/grouping"
)

// StateKey addresses one saved view: a dataset shown inside one app
// context.
type StateKey struct {
	DatasetID  string `json:"datasetId"`
	AppContext string `json:"appContext"`
}

func (k StateKey) Valid() bool { return k.DatasetID != "" }

func (k StateKey) String() string {
	if k.AppContext == "" {
		return k.DatasetID
	}
	return k.DatasetID + "/" + k.AppContext
}

// ProgressiveState is the navigational view-state that survives restarts.
type ProgressiveState struct {
	VisibleLevels []int                 `json:"visibleLevels"`
	CurrentTab    int                   `json:"currentTab"`
	ZoomLevel     int                   `json:"zoomLevel"`
	LevelGroups   []grouping.LevelGroup `json:"levelGroups"`
	LoadedLevels  []int                 `json:"loadedLevels"`
	LastUpdated   time.Time             `json:"lastUpdated"`

	// VisibilityOnly marks a state rebuilt from the level visibility
	// channel: only VisibleLevels is meaningful.
	VisibilityOnly bool `json:"-"`
}

func (s ProgressiveState) Clone() ProgressiveState {
	s.VisibleLevels = cloneInts(s.VisibleLevels)
	s.LoadedLevels = cloneInts(s.LoadedLevels)
	s.LevelGroups = grouping.CloneAll(s.LevelGroups)
	return s
}

func (s ProgressiveState) IsLoaded(level int) bool {
	i := sort.SearchInts(s.LoadedLevels, level)
	return i < len(s.LoadedLevels) && s.LoadedLevels[i] == level
}

// MarkLoaded adds levels to the loaded set, keeping it sorted, and returns
// the ones that were new. The set never shrinks.
func (s *ProgressiveState) MarkLoaded(levels ...int) []int {
	var added []int
	for _, l := range levels {
		if l < 0 || s.IsLoaded(l) {
			continue
		}
		i := sort.SearchInts(s.LoadedLevels, l)
		s.LoadedLevels = append(s.LoadedLevels, 0)
		copy(s.LoadedLevels[i+1:], s.LoadedLevels[i:])
		s.LoadedLevels[i] = l
		added = append(added, l)
	}
	return added
}

// LevelVisibility is the legacy per-level on/off map.
type LevelVisibility map[int]bool

// VisibilityOf expands a visible window into a per-level map covering
// every level up to the highest visible or loaded one.
func VisibilityOf(s ProgressiveState) LevelVisibility {
	top := -1
	for _, l := range s.VisibleLevels {
		top = max(top, l)
	}
	for _, l := range s.LoadedLevels {
		top = max(top, l)
	}
	out := LevelVisibility{}
	for l := 0; l <= top; l++ {
		out[l] = false
	}
	for _, l := range s.VisibleLevels {
		out[l] = true
	}
	return out
}

// Levels returns the visible levels in ascending order.
func (v LevelVisibility) Levels() []int {
	out := make([]int, 0, len(v))
	for l, on := range v {
		if on {
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append([]int(nil), in...)
}
