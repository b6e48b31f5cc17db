package hierarchy

import (
	"fmt"
	"strings"
)

// Generate builds a balanced hierarchy with one level per facet, each
// non-leaf node having fanout children. Ids are the dotted path of child
// indexes prefixed by the facet, e.g. "month:0.2.1".
func Generate(facets []string, fanout int) *Hierarchy {
	if fanout < 1 {
		fanout = 1
	}
	h := newHierarchy()
	var walk func(parentID string, path []int, level int)
	walk = func(parentID string, path []int, level int) {
		count := fanout
		if level == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			p := append(append([]int(nil), path...), i)
			n := &Node{
				ID:         generatedID(facets[level], p),
				Label:      fmt.Sprintf("%s %d", facets[level], i+1),
				Facet:      facets[level],
				Level:      level,
				IsLeaf:     level == len(facets)-1,
				IsExpanded: true,
			}
			h.insert(parentID, n)
			if parent, ok := h.Node(parentID); ok {
				parent.Children = append(parent.Children, n.ID)
			}
			if level+1 < len(facets) {
				walk(n.ID, p, level+1)
			}
		}
	}
	if len(facets) > 0 {
		walk("", nil, 0)
	}
	return h
}

func generatedID(facet string, path []int) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = fmt.Sprint(v)
	}
	return facet + ":" + strings.Join(parts, ".")
}
