package layout

import (
	"math"

	"headerzoom/internal/hierarchy"
)

// ResizeOperationState describes one column-resize drag in progress.
type ResizeOperationState struct {
	IsActive      bool
	TargetNodeID  string
	StartX        float64
	StartY        float64
	StartWidth    float64
	AffectedNodes []string
}

// ResizeSession holds the mutable record of a drag between its start,
// move and end events.
type ResizeSession struct {
	calc  *Calculator
	h     *hierarchy.Hierarchy
	state ResizeOperationState

	// leaf widths under the target at drag start, for proportional scaling
	baseLeaves map[string]float64
}

// StartResize opens a drag on nodeID. Unknown ids return false.
func (c *Calculator) StartResize(h *hierarchy.Hierarchy, nodeID string, x, y float64) (*ResizeSession, bool) {
	target, ok := h.Node(nodeID)
	if !ok {
		return nil, false
	}
	s := &ResizeSession{
		calc: c,
		h:    h,
		state: ResizeOperationState{
			IsActive:     true,
			TargetNodeID: nodeID,
			StartX:       x,
			StartY:       y,
			StartWidth:   target.Width,
		},
		baseLeaves: map[string]float64{},
	}
	affected := []string{nodeID}
	for _, leaf := range subtreeLeaves(h, target) {
		s.baseLeaves[leaf.ID] = leaf.Width
		if leaf.ID != nodeID {
			affected = append(affected, leaf.ID)
		}
	}
	for _, a := range h.Ancestors(nodeID) {
		affected = append(affected, a.ID)
	}
	s.state.AffectedNodes = affected
	return s, true
}

// Move applies the pointer position: the target takes
// max(MinNodeWidth, startWidth+dx), leaves beneath it scale in proportion,
// and ancestors are re-aggregated.
func (s *ResizeSession) Move(x, _ float64) bool {
	if s == nil || !s.state.IsActive {
		return false
	}
	target, ok := s.h.Node(s.state.TargetNodeID)
	if !ok {
		return false
	}
	width := math.Max(MinNodeWidth, s.state.StartWidth+(x-s.state.StartX))
	if target.IsLeaf {
		target.Width = width
	} else {
		baseSum := 0.0
		for _, w := range s.baseLeaves {
			baseSum += w
		}
		if baseSum <= 0 {
			return false
		}
		factor := width / baseSum
		for id, w := range s.baseLeaves {
			if leaf, ok := s.h.Node(id); ok {
				leaf.Width = w * factor
			}
		}
	}
	s.calc.Relayout(s.h)
	return true
}

// End closes the drag and returns its final state.
func (s *ResizeSession) End() ResizeOperationState {
	if s == nil {
		return ResizeOperationState{}
	}
	final := s.State()
	s.state = ResizeOperationState{}
	s.baseLeaves = nil
	return final
}

func (s *ResizeSession) State() ResizeOperationState {
	if s == nil {
		return ResizeOperationState{}
	}
	out := s.state
	out.AffectedNodes = append([]string(nil), s.state.AffectedNodes...)
	return out
}

func subtreeLeaves(h *hierarchy.Hierarchy, n *hierarchy.Node) []*hierarchy.Node {
	if n.IsLeaf {
		return []*hierarchy.Node{n}
	}
	var out []*hierarchy.Node
	for _, child := range h.Children(n) {
		out = append(out, subtreeLeaves(h, child)...)
	}
	return out
}
