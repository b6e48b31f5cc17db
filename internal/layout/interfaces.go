package layout

import "headerzoom/internal/hierarchy"

// SpanAllocator decides leaf widths. Leaves missing from the returned map
// get DefaultLeafWidth.
type SpanAllocator interface {
	Allocate(leaves []*hierarchy.Node, totalWidth float64) map[string]float64
}
