package hierarchy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type FSLoader struct{}

func NewLoader() *FSLoader { return &FSLoader{} }

// LoadFile reads a fixture document and builds its hierarchy.
func (l *FSLoader) LoadFile(ctx context.Context, path string) (Document, *Hierarchy, error) {
	doc, err := readDocument(path)
	if err != nil {
		return Document{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, nil, err
	}
	h, err := Build(doc.Roots)
	if err != nil {
		return Document{}, nil, fmt.Errorf("build %s: %w", path, err)
	}
	return doc, h, nil
}

// LoadDir reads every *.yaml fixture in dir, sorted by dataset id.
func (l *FSLoader) LoadDir(ctx context.Context, dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := readDocument(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].DatasetID < docs[j].DatasetID })
	return docs, nil
}

func readDocument(path string) (Document, error) {
	var doc Document
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return doc, fmt.Errorf("validate %s: %w", path, err)
	}
	doc.Path = path
	applyFacetDefaults(doc.Roots, doc.Facets, 0)
	return doc, nil
}
