package layout

import (
	"math"

	"headerzoom/internal/hierarchy"
	"headerzoom/internal/telemetry"
)

const (
	DefaultLeafWidth = 100.0
	MinNodeWidth     = 50.0
	ExpandZoneWidth  = 16.0
	ResizeZoneWidth  = 4.0
)

type Options struct {
	Allocator  SpanAllocator
	BandHeight float64
	Logger     *telemetry.Logger
}

// Calculator assigns widths, offsets and click zones to every node.
type Calculator struct {
	alloc      SpanAllocator
	bandHeight float64
	logger     *telemetry.Logger
}

type Result struct {
	TotalWidth float64
	Violations []Violation
}

func New(opts Options) *Calculator {
	if opts.Allocator == nil {
		opts.Allocator = EqualSpans{}
	}
	if opts.BandHeight <= 0 {
		opts.BandHeight = 1
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop()
	}
	return &Calculator{alloc: opts.Allocator, bandHeight: opts.BandHeight, logger: opts.Logger}
}

// Calculate lays out h inside totalWidth. Leaf spans come from the
// allocator; parents are sized bottom-up, then positioned top-down.
// Validation problems are logged and returned but never abort the layout.
func (c *Calculator) Calculate(h *hierarchy.Hierarchy, totalWidth float64) Result {
	if h == nil || h.Len() == 0 {
		return Result{}
	}
	leaves := h.Leaves()
	spans := c.alloc.Allocate(leaves, totalWidth)
	for _, leaf := range leaves {
		w, ok := spans[leaf.ID]
		if !ok {
			w = DefaultLeafWidth
		}
		leaf.Width = w
	}
	return c.Relayout(h)
}

// Relayout recomputes parent widths, offsets and zones from the current
// leaf widths without consulting the allocator.
func (c *Calculator) Relayout(h *hierarchy.Hierarchy) Result {
	if h == nil || h.Len() == 0 {
		return Result{}
	}
	aggregate(h)
	total := position(h)
	h.TotalWidth = total
	c.assignZones(h)
	violations := Validate(h)
	for _, v := range violations {
		c.logger.Warn("layout.violation", map[string]any{
			"node":   v.NodeID,
			"kind":   string(v.Kind),
			"detail": v.Detail,
		})
	}
	return Result{TotalWidth: total, Violations: violations}
}

// aggregate sizes every non-leaf as max(MinNodeWidth, sum of children),
// deepest level first.
func aggregate(h *hierarchy.Hierarchy) {
	for level := h.MaxDepth(); level >= 0; level-- {
		for _, n := range h.Level(level) {
			if n.IsLeaf {
				continue
			}
			sum := 0.0
			for _, child := range h.Children(n) {
				sum += child.Width
			}
			n.Width = math.Max(MinNodeWidth, sum)
		}
	}
}

// position lays roots out left to right from zero, then each node's
// children left to right from the node's own offset.
func position(h *hierarchy.Hierarchy) float64 {
	x := 0.0
	for _, root := range h.RootNodes() {
		root.X = x
		x += root.Width
	}
	for level := 0; level <= h.MaxDepth(); level++ {
		for _, n := range h.Level(level) {
			cx := n.X
			for _, child := range h.Children(n) {
				child.X = cx
				cx += child.Width
			}
		}
	}
	return x
}

func (c *Calculator) assignZones(h *hierarchy.Hierarchy) {
	for _, n := range h.AllNodes() {
		n.ClickZones = Zones(n, c.bandHeight)
	}
}

// Zones derives the expand, resize and select targets for n.
func Zones(n *hierarchy.Node, bandHeight float64) hierarchy.ClickZones {
	y := float64(n.Level) * bandHeight
	width := math.Max(0, n.Width)
	var z hierarchy.ClickZones
	left := n.X
	if !n.IsLeaf {
		ew := math.Min(ExpandZoneWidth, width)
		z.Expand = hierarchy.Rect{X: n.X, Y: y, Width: ew, Height: bandHeight}
		left += ew
	}
	rw := math.Min(ResizeZoneWidth, width)
	z.Resize = hierarchy.Rect{X: n.X + width - rw, Y: y, Width: rw, Height: bandHeight}
	right := n.X + width - rw
	z.Select = hierarchy.Rect{X: left, Y: y, Width: math.Max(0, right-left), Height: bandHeight}
	return z
}
