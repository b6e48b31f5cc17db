package layout

import (
	"fmt"
	"math"

	"headerzoom/internal/hierarchy"
)

type ViolationKind string

const (
	InvalidWidth  ViolationKind = "invalid_width"
	WidthMismatch ViolationKind = "width_mismatch"
)

// WidthTolerance is how far a parent may drift from the sum of its
// children before it is reported.
const WidthTolerance = 1.0

type Violation struct {
	NodeID string
	Kind   ViolationKind
	Detail string
}

// Validate reports non-positive or NaN widths and parents whose width
// differs from the sum of their children by more than WidthTolerance.
func Validate(h *hierarchy.Hierarchy) []Violation {
	var out []Violation
	for _, n := range h.AllNodes() {
		if math.IsNaN(n.Width) || n.Width <= 0 {
			out = append(out, Violation{NodeID: n.ID, Kind: InvalidWidth, Detail: fmt.Sprintf("width=%v", n.Width)})
			continue
		}
		if n.IsLeaf {
			continue
		}
		sum := 0.0
		for _, child := range h.Children(n) {
			sum += child.Width
		}
		if math.IsNaN(sum) || math.Abs(n.Width-sum) > WidthTolerance {
			out = append(out, Violation{NodeID: n.ID, Kind: WidthMismatch, Detail: fmt.Sprintf("width=%v children=%v", n.Width, sum)})
		}
	}
	return out
}
