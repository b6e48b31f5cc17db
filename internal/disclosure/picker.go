package disclosure

import "headerzoom/internal/grouping"

// LevelPickerTab is the navigational projection of one level group.
type LevelPickerTab struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Levels    []int  `json:"levels"`
	IsActive  bool   `json:"isActive"`
	NodeCount int    `json:"nodeCount"`
}

// Picker tracks which group tab is active. It holds no state beyond the
// groups and the active index, both owned by ProgressiveState.
type Picker struct {
	groups  []grouping.LevelGroup
	current int
}

// NewPicker builds tabs for groups. An out-of-range current resets to 0.
func NewPicker(groups []grouping.LevelGroup, current int) Picker {
	if current < 0 || current >= len(groups) {
		current = 0
	}
	return Picker{groups: groups, current: current}
}

func (p Picker) Current() int { return p.current }

func (p Picker) Len() int { return len(p.groups) }

func (p Picker) Tabs() []LevelPickerTab {
	if len(p.groups) == 0 {
		return nil
	}
	out := make([]LevelPickerTab, len(p.groups))
	for i, g := range p.groups {
		out[i] = LevelPickerTab{
			ID:        g.ID,
			Label:     g.Name,
			Levels:    append([]int(nil), g.Levels...),
			IsActive:  i == p.current,
			NodeCount: g.NodeCount,
		}
	}
	return out
}

// SelectTab activates tab i and returns it. Out-of-range indexes are
// ignored.
func (p *Picker) SelectTab(i int) (LevelPickerTab, bool) {
	if i < 0 || i >= len(p.groups) {
		return LevelPickerTab{}, false
	}
	p.current = i
	return p.Tabs()[i], true
}

// SyncToLevels activates the tab sharing the most levels with window,
// the first one on a tie. With no overlap the active tab stays put.
func (p *Picker) SyncToLevels(window []int) {
	in := make(map[int]bool, len(window))
	for _, l := range window {
		in[l] = true
	}
	best, bestOverlap := -1, 0
	for i, g := range p.groups {
		n := 0
		for _, l := range g.Levels {
			if in[l] {
				n++
			}
		}
		if n > bestOverlap {
			best, bestOverlap = i, n
		}
	}
	if best >= 0 {
		p.current = best
	}
}
