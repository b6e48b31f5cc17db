package layout

import (
	"math"

	"headerzoom/internal/hierarchy"
)

// EqualSpans splits the budget evenly in whole units; the remainder goes
// one unit at a time to the leftmost leaves.
type EqualSpans struct{}

func (EqualSpans) Allocate(leaves []*hierarchy.Node, totalWidth float64) map[string]float64 {
	out := make(map[string]float64, len(leaves))
	if len(leaves) == 0 || totalWidth <= 0 || math.IsNaN(totalWidth) {
		return out
	}
	units := math.Floor(totalWidth)
	base := math.Floor(units / float64(len(leaves)))
	rem := int(units) - int(base)*len(leaves)
	for i, n := range leaves {
		w := base
		if i < rem {
			w++
		}
		out[n.ID] = w
	}
	return out
}

// WeightedSpans splits the budget proportionally to node weight. A weight
// of zero counts as one; when no leaf carries a weight it behaves like
// EqualSpans.
type WeightedSpans struct{}

func (WeightedSpans) Allocate(leaves []*hierarchy.Node, totalWidth float64) map[string]float64 {
	weighted := false
	for _, n := range leaves {
		if n.Weight > 0 {
			weighted = true
			break
		}
	}
	if !weighted {
		return EqualSpans{}.Allocate(leaves, totalWidth)
	}
	out := make(map[string]float64, len(leaves))
	if len(leaves) == 0 || totalWidth <= 0 || math.IsNaN(totalWidth) {
		return out
	}
	sum := 0.0
	for _, n := range leaves {
		sum += leafWeight(n)
	}
	units := math.Floor(totalWidth)
	used := 0.0
	for _, n := range leaves {
		w := math.Floor(units * leafWeight(n) / sum)
		out[n.ID] = w
		used += w
	}
	for i := 0; used < units && len(leaves) > 0; i++ {
		out[leaves[i%len(leaves)].ID]++
		used++
	}
	return out
}

func leafWeight(n *hierarchy.Node) float64 {
	if n.Weight > 0 {
		return n.Weight
	}
	return 1
}

// AllocatorByName maps a config value to an allocator.
func AllocatorByName(name string) SpanAllocator {
	switch name {
	case "weighted":
		return WeightedSpans{}
	default:
		return EqualSpans{}
	}
}
