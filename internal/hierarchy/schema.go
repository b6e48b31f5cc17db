package hierarchy

import (
	"fmt"
	"regexp"
)

const (
	DocumentKind           = "hierarchy"
	SupportedSchemaVersion = 1
)

var datasetPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// Document is a hierarchy fixture: the output of the upstream generator
// captured as YAML.
type Document struct {
	Kind          string     `yaml:"kind"`
	SchemaVersion int        `yaml:"schema_version"`
	DatasetID     string     `yaml:"dataset_id"`
	Name          string     `yaml:"name"`
	Facets        []string   `yaml:"facets"`
	Roots         []NodeSpec `yaml:"roots"`

	Path string `yaml:"-"`
}

func (d Document) Validate() error {
	if d.Kind != DocumentKind {
		return fmt.Errorf("kind must be %q", DocumentKind)
	}
	if d.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if d.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported hierarchy schema_version %d (max supported %d)", d.SchemaVersion, SupportedSchemaVersion)
	}
	if !datasetPattern.MatchString(d.DatasetID) {
		return fmt.Errorf("invalid dataset_id %q", d.DatasetID)
	}
	if len(d.Roots) == 0 {
		return fmt.Errorf("roots must contain at least one node")
	}
	for i := range d.Roots {
		if err := validateSpec(d.Roots[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func validateSpec(s NodeSpec, depth int) error {
	if s.Weight < 0 {
		return fmt.Errorf("node %q weight must be >= 0", s.ID)
	}
	if depth > 64 {
		return fmt.Errorf("node %q nested deeper than 64 levels", s.ID)
	}
	for i := range s.Children {
		if err := validateSpec(s.Children[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// applyFacetDefaults fills blank node facets from the document's ordered
// facet list, one facet per level.
func applyFacetDefaults(specs []NodeSpec, facets []string, level int) {
	for i := range specs {
		if specs[i].Facet == "" && level < len(facets) {
			specs[i].Facet = facets[level]
		}
		applyFacetDefaults(specs[i].Children, facets, level+1)
	}
}
