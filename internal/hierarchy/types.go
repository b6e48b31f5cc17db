package hierarchy

import "errors"

var ErrDuplicateID = errors.New("duplicate node id")

// Rect is a click target in layout units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rect covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether (x, y) falls inside the rect.
func (r Rect) Contains(x, y float64) bool {
	if r.Empty() {
		return false
	}
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

type ClickZones struct {
	Expand Rect `json:"expand"`
	Resize Rect `json:"resize"`
	Select Rect `json:"select"`
}

// Node is one header box. Children are referenced by id; the owning
// Hierarchy resolves them, so nodes never point back at their parents.
type Node struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Facet      string     `json:"facet"`
	Level      int        `json:"level"`
	Width      float64    `json:"width"`
	X          float64    `json:"x"`
	IsLeaf     bool       `json:"isLeaf"`
	IsExpanded bool       `json:"isExpanded"`
	Weight     float64    `json:"weight,omitempty"`
	Children   []string   `json:"children,omitempty"`
	ClickZones ClickZones `json:"clickZones"`
}

// NodeSpec is the nested input form of a node, as produced by the
// upstream hierarchy generator or read from a fixture file.
type NodeSpec struct {
	ID       string     `yaml:"id"`
	Label    string     `yaml:"label"`
	Facet    string     `yaml:"facet"`
	Weight   float64    `yaml:"weight"`
	Expanded *bool      `yaml:"expanded"`
	Children []NodeSpec `yaml:"children"`
}
