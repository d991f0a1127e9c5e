// Package actor defines the regional actor entity and its persona registry.
package actor

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Cluster groups actors by regional character. Clusters drive the
// per-cluster breakdown in run reports.
type Cluster string

const (
	ClusterUrban      Cluster = "urban"
	ClusterRural      Cluster = "rural"
	ClusterBalanced   Cluster = "balanced"
	ClusterTourism    Cluster = "tourism-oriented"
	ClusterIndustrial Cluster = "industrial"
)

// Actor is a regional entity that evaluates advertisements. Profiles are
// static: loaded once before a run and never mutated during one.
type Actor struct {
	ID          string   `json:"id" yaml:"id"`
	Region      string   `json:"region" yaml:"region"`
	Cluster     Cluster  `json:"cluster" yaml:"cluster"`
	Population  int      `json:"population" yaml:"population"`
	Preferences []string `json:"preferences" yaml:"preferences"`
}

// Validate checks the profile fields required by the scorer prompt.
func (a *Actor) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("actor id is required")
	}
	if a.Cluster == "" {
		return fmt.Errorf("actor %s: cluster is required", a.ID)
	}
	return nil
}

// Registry holds the full set of actor profiles, keyed by ID.
type Registry struct {
	actors map[string]Actor
}

// NewRegistry builds a registry from a profile list. Duplicate IDs and
// invalid profiles fail construction.
func NewRegistry(profiles []Actor) (*Registry, error) {
	actors := make(map[string]Actor, len(profiles))
	for i := range profiles {
		if err := profiles[i].Validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if _, dup := actors[profiles[i].ID]; dup {
			return nil, fmt.Errorf("duplicate actor id %s", profiles[i].ID)
		}
		actors[profiles[i].ID] = profiles[i]
	}
	return &Registry{actors: actors}, nil
}

// ParseRegistry builds a registry from YAML profile data.
func ParseRegistry(data []byte) (*Registry, error) {
	var doc struct {
		Actors []Actor `yaml:"actors"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse actor profiles: %w", err)
	}
	return NewRegistry(doc.Actors)
}

// Get returns the profile for the given actor ID.
func (r *Registry) Get(id string) (Actor, bool) {
	a, ok := r.actors[id]
	return a, ok
}

// IDs returns all actor IDs in lexicographic order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.actors))
	for id := range r.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered actors.
func (r *Registry) Len() int {
	return len(r.actors)
}
