// Package scorer defines the port interface for the external scoring
// function. Every scoring capability is a variant of this single contract;
// the scheduler and tasks never depend on a concrete backend.
package scorer

import (
	"context"
	"sort"

	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/domain/score"
)

// NeighborScore is the slice of a neighbor's record exposed to the scorer.
type NeighborScore struct {
	ActorID        string  `json:"actor_id"`
	Liking         float64 `json:"liking"`
	PurchaseIntent float64 `json:"purchase_intent"`
}

// Request is the input to one scoring invocation.
type Request struct {
	Actor     actor.Actor     `json:"actor"`
	AdID      string          `json:"ad_id"`
	AdContent string          `json:"ad_content"`
	Neighbors []NeighborScore `json:"neighbors,omitempty"`
}

// Result is the raw scoring payload before contract validation.
type Result struct {
	Liking         float64 `json:"liking"`
	PurchaseIntent float64 `json:"purchase_intent"`
	Commentary     string  `json:"commentary"`
}

// Scorer scores one advertisement from one actor's perspective.
// Failures carry their classification as wrapped domain sentinels
// (ErrRateLimited, ErrCredentialExpired, ErrMalformedOutput).
type Scorer interface {
	Score(ctx context.Context, req Request) (*Result, error)
}

// Func adapts a plain function to the Scorer interface.
type Func func(ctx context.Context, req Request) (*Result, error)

// Score implements Scorer.
func (f Func) Score(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// SnapshotToNeighbors converts a store snapshot into the scorer's neighbor
// slice, ordered by actor ID for prompt determinism.
func SnapshotToNeighbors(snapshot map[string]score.Record) []NeighborScore {
	if len(snapshot) == 0 {
		return nil
	}
	out := make([]NeighborScore, 0, len(snapshot))
	for _, rec := range snapshot {
		out = append(out, NeighborScore{
			ActorID:        rec.ActorID,
			Liking:         rec.Liking,
			PurchaseIntent: rec.PurchaseIntent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}
