package disclosure

import "headerzoom/internal/state"

// MaxZoomLevel bounds prefix zoom: at most levels [0..MaxZoomLevel].
const MaxZoomLevel = 3

type ZoomControlState struct {
	CurrentLevel int      `json:"currentLevel"`
	MaxLevel     int      `json:"maxLevel"`
	CanZoomIn    bool     `json:"canZoomIn"`
	CanZoomOut   bool     `json:"canZoomOut"`
	CanStepUp    bool     `json:"canStepUp"`
	CanStepDown  bool     `json:"canStepDown"`
	LevelLabels  []string `json:"levelLabels"`
}

// zoomCeiling is the highest reachable zoom level for a hierarchy.
func zoomCeiling(maxDepth int) int {
	return max(0, min(MaxZoomLevel, maxDepth))
}

func zoomControl(st state.ProgressiveState, maxDepth int, labels []string) ZoomControlState {
	ceil := zoomCeiling(maxDepth)
	lo, hi, ok := bounds(st.VisibleLevels)
	return ZoomControlState{
		CurrentLevel: st.ZoomLevel,
		MaxLevel:     ceil,
		CanZoomIn:    maxDepth >= 0 && st.ZoomLevel < ceil,
		CanZoomOut:   st.ZoomLevel > 0,
		CanStepUp:    ok && lo > 0,
		CanStepDown:  ok && hi < maxDepth,
		LevelLabels:  append([]string(nil), labels...),
	}
}

func bounds(levels []int) (lo, hi int, ok bool) {
	if len(levels) == 0 {
		return 0, 0, false
	}
	lo, hi = levels[0], levels[0]
	for _, l := range levels[1:] {
		lo = min(lo, l)
		hi = max(hi, l)
	}
	return lo, hi, true
}
