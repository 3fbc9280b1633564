package parser

import (
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Document is one parsed spec document together with its path declaration
// order. The typed document exposes paths as a map, so the order is recovered
// from the raw YAML before parsing.
type Document struct {
	Name      string
	Doc       *openapi3.T
	PathOrder []string
}

// LoadFile reads and parses a locally stored spec document
func LoadFile(name, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file %s: %v", path, err)
	}
	doc, err := Load(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load parses a spec document from raw YAML or JSON bytes
func Load(name string, data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI doc: %v", err)
	}

	// An empty paths mapping is a valid document yielding zero records; only
	// a missing paths object disqualifies the file.
	if doc.Paths == nil {
		return nil, fmt.Errorf("not an OpenAPI document: no paths")
	}

	order, err := pathOrder(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read path order: %v", err)
	}

	return &Document{
		Name:      name,
		Doc:       doc,
		PathOrder: order,
	}, nil
}

// pathOrder returns the keys of the top-level paths object in declaration
// order
func pathOrder(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not a mapping")
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "paths" {
			continue
		}
		paths := top.Content[i+1]
		if paths.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("paths is not a mapping")
		}
		order := make([]string, 0, len(paths.Content)/2)
		for j := 0; j+1 < len(paths.Content); j += 2 {
			order = append(order, paths.Content[j].Value)
		}
		return order, nil
	}

	return nil, fmt.Errorf("no paths object")
}
