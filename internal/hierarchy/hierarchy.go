package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Hierarchy is an arena of header nodes indexed by id, with a per-level
// index for level iteration and a parent index for upward walks.
type Hierarchy struct {
	nodes  map[string]*Node
	order  []string
	roots  []string
	levels [][]string
	parent map[string]string

	TotalWidth float64
}

func newHierarchy() *Hierarchy {
	return &Hierarchy{
		nodes:  map[string]*Node{},
		parent: map[string]string{},
	}
}

// Build turns nested specs into an arena. Blank ids get a generated id;
// a repeated id is rejected.
func Build(roots []NodeSpec) (*Hierarchy, error) {
	h := newHierarchy()
	for i := range roots {
		if _, err := h.add("", roots[i], 0); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hierarchy) add(parentID string, spec NodeSpec, level int) (string, error) {
	id := strings.TrimSpace(spec.ID)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := h.nodes[id]; exists {
		return "", fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	expanded := true
	if spec.Expanded != nil {
		expanded = *spec.Expanded
	}
	label := spec.Label
	if label == "" {
		label = id
	}
	n := &Node{
		ID:         id,
		Label:      label,
		Facet:      spec.Facet,
		Level:      level,
		Weight:     spec.Weight,
		IsLeaf:     len(spec.Children) == 0,
		IsExpanded: expanded,
	}
	h.insert(parentID, n)
	for i := range spec.Children {
		childID, err := h.add(id, spec.Children[i], level+1)
		if err != nil {
			return "", err
		}
		n.Children = append(n.Children, childID)
	}
	return id, nil
}

func (h *Hierarchy) insert(parentID string, n *Node) {
	h.nodes[n.ID] = n
	h.order = append(h.order, n.ID)
	for len(h.levels) <= n.Level {
		h.levels = append(h.levels, nil)
	}
	h.levels[n.Level] = append(h.levels[n.Level], n.ID)
	if parentID == "" {
		h.roots = append(h.roots, n.ID)
		return
	}
	h.parent[n.ID] = parentID
}

// Node returns the node with the given id.
func (h *Hierarchy) Node(id string) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	n, ok := h.nodes[id]
	return n, ok
}

// Len is the number of nodes.
func (h *Hierarchy) Len() int {
	if h == nil {
		return 0
	}
	return len(h.order)
}

// MaxDepth is the deepest level index, or -1 for an empty hierarchy.
func (h *Hierarchy) MaxDepth() int {
	if h == nil {
		return -1
	}
	return len(h.levels) - 1
}

func (h *Hierarchy) AllNodes() []*Node {
	return h.resolve(h.order)
}

func (h *Hierarchy) RootNodes() []*Node {
	return h.resolve(h.roots)
}

// Level returns the nodes at depth level in document order.
func (h *Hierarchy) Level(level int) []*Node {
	if h == nil || level < 0 || level >= len(h.levels) {
		return nil
	}
	return h.resolve(h.levels[level])
}

// LevelSize is the node count at depth level.
func (h *Hierarchy) LevelSize(level int) int {
	if h == nil || level < 0 || level >= len(h.levels) {
		return 0
	}
	return len(h.levels[level])
}

func (h *Hierarchy) Children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	return h.resolve(n.Children)
}

// Parent returns the parent of id; roots have none.
func (h *Hierarchy) Parent(id string) (*Node, bool) {
	if h == nil {
		return nil, false
	}
	pid, ok := h.parent[id]
	if !ok {
		return nil, false
	}
	return h.Node(pid)
}

// Ancestors walks from the parent of id up to its root.
func (h *Hierarchy) Ancestors(id string) []*Node {
	var out []*Node
	for {
		p, ok := h.Parent(id)
		if !ok {
			return out
		}
		out = append(out, p)
		id = p.ID
	}
}

// Leaves returns every node without children, in document order.
func (h *Hierarchy) Leaves() []*Node {
	out := make([]*Node, 0)
	for _, n := range h.AllNodes() {
		if n.IsLeaf {
			out = append(out, n)
		}
	}
	return out
}

// FacetsAtLevel returns the distinct, sorted facet names used at level.
func (h *Hierarchy) FacetsAtLevel(level int) []string {
	seen := map[string]struct{}{}
	for _, n := range h.Level(level) {
		if n.Facet == "" {
			continue
		}
		seen[n.Facet] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ToggleExpanded flips the expanded flag of a non-leaf node. Unknown ids
// and leaves are ignored.
func (h *Hierarchy) ToggleExpanded(id string) (*Node, bool) {
	n, ok := h.Node(id)
	if !ok || n.IsLeaf {
		return nil, false
	}
	n.IsExpanded = !n.IsExpanded
	return n, true
}

func (h *Hierarchy) resolve(ids []string) []*Node {
	if h == nil {
		return nil
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := h.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}
