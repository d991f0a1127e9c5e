// Package scorestore defines the port interface for the shared score store.
package scorestore

import (
	"context"

	"github.com/Strob0t/AdForge/internal/domain/score"
)

// Store is the concurrency-safe repository of per-actor score records.
//
// Put is atomic per (actor, ad) key: a concurrent Get never observes a
// partial record. SnapshotNeighbors is a point-in-time read: a neighbor
// without a record is simply absent, not an error. Ordering between a Put
// by one actor and a snapshot by another is only guaranteed across a
// scheduler stage boundary.
type Store interface {
	// Put creates or overwrites the record for its (actor, ad) key.
	// Returns domain.ErrRunExpired when the record's run token has been
	// expired; the write is discarded.
	Put(ctx context.Context, rec score.Record) error

	// Get returns the record for the key, or domain.ErrNotFound.
	Get(ctx context.Context, actorID, adID string) (*score.Record, error)

	// SnapshotNeighbors returns the status-ok records currently present for
	// the given neighbor IDs, keyed by actor ID.
	SnapshotNeighbors(ctx context.Context, adID string, neighborIDs []string) (map[string]score.Record, error)

	// ListByRun returns all records carrying the given run token.
	ListByRun(ctx context.Context, runID string) ([]score.Record, error)

	// ExpireRun marks a run token expired: subsequent Puts carrying it
	// are rejected.
	ExpireRun(runID string)
}
