package graph

import (
	"sort"
	"time"

	"api-graph/internal/dataset"
	"api-graph/internal/types"
)

// EdgeType classifies what two endpoints share
type EdgeType string

const (
	EdgeTypeTag    EdgeType = "tag"    // shared tag
	EdgeTypeSchema EdgeType = "schema" // shared response schema ref
)

// Node is one endpoint in the viewer graph
type Node struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

// Edge relates two endpoints that share a tag or a response schema ref
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Key    string   `json:"key"`
}

// DocInfo carries a source document's own declared metadata
type DocInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Graph is the viewer artifact derived from a built dataset. It is a separate
// file: the dataset itself stays a plain record array, so run metadata and
// the source documents' info blocks ride here.
type Graph struct {
	BuildID     string             `json:"buildID"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Info        map[string]DocInfo `json:"info,omitempty"`
	Nodes       []Node             `json:"nodes"`
	Edges       []Edge             `json:"edges"`
}

// Build derives the graph from endpoint records. Endpoints in a shared-tag or
// shared-schema group are linked in a chain over their sorted ids rather than
// pairwise, which keeps large groups from exploding the edge count. The info
// map keys source document names to their declared title and version; nil is
// allowed.
func Build(records []types.EndpointRecord, buildID string, info map[string]DocInfo) *Graph {
	g := &Graph{
		BuildID:     buildID,
		GeneratedAt: time.Now().UTC(),
		Info:        info,
		Nodes:       make([]Node, 0, len(records)),
		Edges:       []Edge{},
	}

	tagGroups := make(map[string][]string)
	schemaGroups := make(map[string][]string)

	for _, rec := range records {
		id := rec.NodeID()
		g.Nodes = append(g.Nodes, Node{
			ID:     id,
			Label:  rec.Method + " " + rec.Path,
			Source: rec.Source,
			Tags:   rec.Tags,
		})
		for _, tag := range rec.Tags {
			tagGroups[tag] = append(tagGroups[tag], id)
		}
		for _, ref := range rec.ResponseRefs {
			schemaGroups[ref] = append(schemaGroups[ref], id)
		}
	}

	g.addGroupEdges(tagGroups, EdgeTypeTag)
	g.addGroupEdges(schemaGroups, EdgeTypeSchema)
	return g
}

func (g *Graph) addGroupEdges(groups map[string][]string, edgeType EdgeType) {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sorted := append([]string{}, groups[key]...)
		sort.Strings(sorted)

		// A node can land in the same group more than once when two records
		// share an id; without dedup that becomes a self-edge.
		ids := sorted[:0]
		for _, id := range sorted {
			if len(ids) == 0 || ids[len(ids)-1] != id {
				ids = append(ids, id)
			}
		}

		for i := 1; i < len(ids); i++ {
			g.Edges = append(g.Edges, Edge{
				Source: ids[i-1],
				Target: ids[i],
				Type:   edgeType,
				Key:    key,
			})
		}
	}
}

// Write serializes the graph artifact atomically next to the dataset
func (g *Graph) Write(path string) error {
	return dataset.WriteJSON(path, g)
}
