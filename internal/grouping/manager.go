package grouping

import (
	"fmt"
	"strings"

	"headerzoom/internal/hierarchy"
)

const (
	lightBelow  = 5.0
	mediumBelow = 15.0
)

// Manager derives level groups from a hierarchy. It keeps the last result
// so consumers can ask for either flavour without recomputing.
type Manager struct {
	cfg      Config
	maxDepth int
	semantic []LevelGroup
	density  []LevelGroup
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg.normalized(), maxDepth: -1}
}

func (m *Manager) Config() Config { return m.cfg }

// HasAutoGrouping reports whether h is deep enough to need grouping.
func (m *Manager) HasAutoGrouping(h *hierarchy.Hierarchy) bool {
	return h.MaxDepth() >= 0 && h.MaxDepth() >= m.cfg.AutoGroupThreshold
}

// Build recomputes semantic and density groups for h and returns the
// preferred set.
func (m *Manager) Build(h *hierarchy.Hierarchy) []LevelGroup {
	m.maxDepth = h.MaxDepth()
	m.semantic = nil
	if m.cfg.SemanticGrouping {
		m.semantic = SemanticGroups(h)
	}
	m.density = DensityGroups(h, m.cfg.MaxVisibleLevels)
	return m.Preferred()
}

func (m *Manager) SemanticGroups() []LevelGroup { return CloneAll(m.semantic) }

func (m *Manager) DensityGroups() []LevelGroup { return CloneAll(m.density) }

// Preferred returns semantic groups when any matched, then density groups,
// then a plain contiguous chunking.
func (m *Manager) Preferred() []LevelGroup {
	switch {
	case len(m.semantic) > 0:
		return CloneAll(m.semantic)
	case len(m.density) > 0:
		return CloneAll(m.density)
	default:
		return ContiguousGroups(m.maxDepth, m.cfg.MaxVisibleLevels)
	}
}

// SemanticGroups matches the pattern catalog against the facets at each
// level. A pattern needs two distinct levels to match; its levels are
// chunked by the pattern's limit.
func SemanticGroups(h *hierarchy.Hierarchy) []LevelGroup {
	facets := make([][]string, h.MaxDepth()+1)
	for level := range facets {
		facets[level] = h.FacetsAtLevel(level)
	}
	var out []LevelGroup
	for _, p := range Catalog {
		levels := p.matchLevels(facets)
		if len(levels) < 2 {
			continue
		}
		chunks := chunk(levels, p.MaxPerGroup)
		for i, c := range chunks {
			name := p.Name
			if len(chunks) > 1 {
				name = fmt.Sprintf("%s %d", p.Name, i+1)
			}
			out = append(out, LevelGroup{
				ID:        fmt.Sprintf("%s-%d", strings.ToLower(p.Name), i+1),
				Name:      name,
				Levels:    c,
				Type:      Semantic,
				NodeCount: nodeCount(h, c),
			})
		}
	}
	return out
}

// DensityGroups chunks every level into runs of size and labels each run
// by its average node count.
func DensityGroups(h *hierarchy.Hierarchy, size int) []LevelGroup {
	levels := allLevels(h.MaxDepth())
	var out []LevelGroup
	for i, c := range chunk(levels, size) {
		count := nodeCount(h, c)
		out = append(out, LevelGroup{
			ID:        fmt.Sprintf("density-%d", i+1),
			Name:      fmt.Sprintf("%s: %s", DensityLabel(float64(count)/float64(len(c))), span(c)),
			Levels:    c,
			Type:      Density,
			Expanded:  i == 0,
			NodeCount: count,
		})
	}
	return out
}

// ContiguousGroups splits [0..maxDepth] into runs of size with no
// labelling heuristics.
func ContiguousGroups(maxDepth, size int) []LevelGroup {
	var out []LevelGroup
	for i, c := range chunk(allLevels(maxDepth), size) {
		out = append(out, LevelGroup{
			ID:       fmt.Sprintf("levels-%d", i+1),
			Name:     "Levels " + span(c),
			Levels:   c,
			Type:     Contiguous,
			Expanded: i == 0,
		})
	}
	return out
}

func DensityLabel(avg float64) string {
	switch {
	case avg < lightBelow:
		return "Light"
	case avg < mediumBelow:
		return "Medium"
	default:
		return "Dense"
	}
}

func allLevels(maxDepth int) []int {
	out := make([]int, 0, maxDepth+1)
	for l := 0; l <= maxDepth; l++ {
		out = append(out, l)
	}
	return out
}

func chunk(levels []int, size int) [][]int {
	if size <= 0 {
		size = DefaultMaxVisibleLevels
	}
	var out [][]int
	for start := 0; start < len(levels); start += size {
		end := min(start+size, len(levels))
		out = append(out, append([]int(nil), levels[start:end]...))
	}
	return out
}

func nodeCount(h *hierarchy.Hierarchy, levels []int) int {
	n := 0
	for _, l := range levels {
		n += h.LevelSize(l)
	}
	return n
}

func span(levels []int) string {
	if len(levels) == 1 {
		return fmt.Sprintf("L%d", levels[0])
	}
	return fmt.Sprintf("L%d-L%d", levels[0], levels[len(levels)-1])
}
