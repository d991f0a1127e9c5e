package graph

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/prefectures.yaml
var defaultTopology []byte

// topologyDoc is the on-disk topology format: an adjacency map whose
// entries double as the node declarations. Every adjacency must be present
// from both sides; Build rejects asymmetric source data.
type topologyDoc struct {
	Adjacency map[string][]string `yaml:"adjacency"`
}

// LoadTopology builds the graph from a YAML topology file, or from the
// embedded 47-prefecture default when path is empty.
func LoadTopology(path string) (*Graph, error) {
	data := defaultTopology
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // G304: operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read topology %s: %w", path, err)
		}
	}
	return ParseTopology(data)
}

// ParseTopology builds the graph from YAML topology data.
func ParseTopology(data []byte) (*Graph, error) {
	var doc topologyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if len(doc.Adjacency) == 0 {
		return nil, fmt.Errorf("topology declares no nodes: %w", ErrBadTopology)
	}

	nodes := make([]string, 0, len(doc.Adjacency))
	for id := range doc.Adjacency {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)

	var edges []Edge
	for _, id := range nodes {
		for _, n := range doc.Adjacency[id] {
			edges = append(edges, Edge{Actor: id, Neighbor: n})
		}
	}

	g, err := Build(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	return g, nil
}
