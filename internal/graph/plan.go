package graph

import "sort"

// Stage is a set of actors sharing the same degree, dispatched concurrently
// within one scheduling round.
type Stage struct {
	Degree int
	Actors []string
}

// Plan is the staged processing order for a graph: stages of non-decreasing
// degree, actors within a stage in lexicographic order. Low-degree actors
// seed the propagation; high-degree actors evaluate later, when more of
// their neighbors already hold scores.
type Plan struct {
	Stages []Stage
}

// NewPlan computes the plan for a graph. The result is deterministic:
// ascending degree, ties broken by identifier order.
func NewPlan(g *Graph) *Plan {
	ids := g.Nodes()
	sort.SliceStable(ids, func(i, j int) bool {
		di, dj := g.Degree(ids[i]), g.Degree(ids[j])
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})

	p := &Plan{}
	for _, id := range ids {
		d := g.Degree(id)
		if n := len(p.Stages); n == 0 || p.Stages[n-1].Degree != d {
			p.Stages = append(p.Stages, Stage{Degree: d})
		}
		last := &p.Stages[len(p.Stages)-1]
		last.Actors = append(last.Actors, id)
	}
	return p
}

// Order returns the flat actor order across all stages.
func (p *Plan) Order() []string {
	var order []string
	for _, st := range p.Stages {
		order = append(order, st.Actors...)
	}
	return order
}

// StageOf returns the stage index of the given actor, or -1 if absent.
func (p *Plan) StageOf(id string) int {
	for i, st := range p.Stages {
		for _, a := range st.Actors {
			if a == id {
				return i
			}
		}
	}
	return -1
}
