// Package graph provides the static actor adjacency graph and the staged
// evaluation plan derived from it.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadTopology indicates the topology source data is invalid. Fatal at
// startup: a run never starts on a bad graph.
var ErrBadTopology = errors.New("bad topology")

// Edge is one directed half of an adjacency declaration in the source data.
// The full edge set must be symmetric.
type Edge struct {
	Actor    string `yaml:"actor" json:"actor"`
	Neighbor string `yaml:"neighbor" json:"neighbor"`
}

// Graph is an immutable undirected adjacency graph over actor identifiers.
// Safe for unsynchronized concurrent reads after Build.
type Graph struct {
	neighbors map[string][]string
}

// Build constructs a graph from declared nodes and adjacency pairs.
// It fails when a pair references an undeclared node, declares a self-loop,
// or is not mirrored by its reverse pair.
func Build(nodes []string, edges []Edge) (*Graph, error) {
	adj := make(map[string]map[string]bool, len(nodes))
	for _, id := range nodes {
		if id == "" {
			return nil, fmt.Errorf("empty node id: %w", ErrBadTopology)
		}
		if _, dup := adj[id]; dup {
			return nil, fmt.Errorf("duplicate node %s: %w", id, ErrBadTopology)
		}
		adj[id] = make(map[string]bool)
	}

	declared := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if e.Actor == e.Neighbor {
			return nil, fmt.Errorf("self-loop on %s: %w", e.Actor, ErrBadTopology)
		}
		if _, ok := adj[e.Actor]; !ok {
			return nil, fmt.Errorf("edge references undeclared node %s: %w", e.Actor, ErrBadTopology)
		}
		if _, ok := adj[e.Neighbor]; !ok {
			return nil, fmt.Errorf("edge references undeclared node %s: %w", e.Neighbor, ErrBadTopology)
		}
		declared[e] = true
		adj[e.Actor][e.Neighbor] = true
	}

	// Every declared pair must have its mirror in the source data.
	for e := range declared {
		if !declared[Edge{Actor: e.Neighbor, Neighbor: e.Actor}] {
			return nil, fmt.Errorf("asymmetric edge %s-%s: %w", e.Actor, e.Neighbor, ErrBadTopology)
		}
	}

	g := &Graph{neighbors: make(map[string][]string, len(adj))}
	for id, set := range adj {
		ns := make([]string, 0, len(set))
		for n := range set {
			ns = append(ns, n)
		}
		sort.Strings(ns)
		g.neighbors[id] = ns
	}
	return g, nil
}

// Neighbors returns the sorted neighbor set of the given actor.
// Unknown actors have no neighbors.
func (g *Graph) Neighbors(id string) []string {
	return g.neighbors[id]
}

// Degree returns the number of neighbors of the given actor.
func (g *Graph) Degree(id string) int {
	return len(g.neighbors[id])
}

// Nodes returns all node identifiers in lexicographic order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.neighbors))
	for id := range g.neighbors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.neighbors)
}
