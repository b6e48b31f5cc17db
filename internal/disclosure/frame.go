package disclosure

import (
	"headerzoom/internal/hierarchy"
	"headerzoom/internal/sorting"
)

// FrameNode is the geometry of one visible header box.
type FrameNode struct {
	ID         string               `json:"id"`
	Label      string               `json:"label"`
	Facet      string               `json:"facet"`
	Level      int                  `json:"level"`
	Width      float64              `json:"width"`
	X          float64              `json:"x"`
	IsLeaf     bool                 `json:"isLeaf"`
	IsExpanded bool                 `json:"isExpanded"`
	ClickZones hierarchy.ClickZones `json:"clickZones"`
}

// Frame is everything a renderer needs for one paint.
type Frame struct {
	Nodes         []FrameNode      `json:"nodes"`
	VisibleLevels []int            `json:"visibleLevels"`
	LevelLabels   []string         `json:"levelLabels"`
	TotalWidth    float64          `json:"totalWidth"`
	Disclosure    bool             `json:"disclosure"`
	Tabs          []LevelPickerTab `json:"tabs,omitempty"`
	Zoom          ZoomControlState `json:"zoom"`
	Sort          sorting.State    `json:"sort"`
}

// NodesAt returns the frame's nodes on level, left to right.
func (f Frame) NodesAt(level int) []FrameNode {
	var out []FrameNode
	for _, n := range f.Nodes {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// visibleNodes collects nodes on the visible levels whose ancestors are
// all expanded.
func visibleNodes(h *hierarchy.Hierarchy, levels []int) []FrameNode {
	var out []FrameNode
	for _, level := range levels {
		for _, n := range h.Level(level) {
			if collapsedAbove(h, n.ID) {
				continue
			}
			out = append(out, FrameNode{
				ID:         n.ID,
				Label:      n.Label,
				Facet:      n.Facet,
				Level:      n.Level,
				Width:      n.Width,
				X:          n.X,
				IsLeaf:     n.IsLeaf,
				IsExpanded: n.IsExpanded,
				ClickZones: n.ClickZones,
			})
		}
	}
	return out
}

func collapsedAbove(h *hierarchy.Hierarchy, id string) bool {
	for _, a := range h.Ancestors(id) {
		if !a.IsExpanded {
			return true
		}
	}
	return false
}
