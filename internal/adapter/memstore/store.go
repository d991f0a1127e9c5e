// Package memstore implements the score store port with an in-memory map.
// It is the reference implementation of the store's atomicity contract;
// durable backends sit behind the archive port instead.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/score"
)

// Store is a mutex-guarded map of (actor, ad) → record. Put replaces the
// whole record under the lock, so readers never observe a partial write.
type Store struct {
	mu      sync.RWMutex
	records map[string]score.Record
	expired map[string]bool // run tokens that no longer accept writes
}

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make(map[string]score.Record),
		expired: make(map[string]bool),
	}
}

// Put creates or overwrites the record for its key. A record carrying an
// expired run token is rejected: late results past the run deadline are
// discarded, not written.
func (s *Store) Put(_ context.Context, rec score.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RunID != "" && s.expired[rec.RunID] {
		return fmt.Errorf("put %s: %w", rec.Key(), domain.ErrRunExpired)
	}
	s.records[rec.Key()] = rec
	return nil
}

// Get returns the record for the key, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, actorID, adID string) (*score.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[actorID+"/"+adID]
	if !ok {
		return nil, fmt.Errorf("get %s/%s: %w", actorID, adID, domain.ErrNotFound)
	}
	return &rec, nil
}

// SnapshotNeighbors returns the status-ok records currently present for the
// given neighbor IDs. A neighbor without a record is simply absent.
func (s *Store) SnapshotNeighbors(_ context.Context, adID string, neighborIDs []string) (map[string]score.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]score.Record)
	for _, id := range neighborIDs {
		rec, ok := s.records[id+"/"+adID]
		if !ok || rec.Status != score.StatusOK {
			continue
		}
		snap[id] = rec
	}
	return snap, nil
}

// ListByRun returns all records carrying the given run token.
func (s *Store) ListByRun(_ context.Context, runID string) ([]score.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []score.Record
	for _, rec := range s.records {
		if rec.RunID == runID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ExpireRun marks a run token expired. Idempotent.
func (s *Store) ExpireRun(runID string) {
	s.mu.Lock()
	s.expired[runID] = true
	s.mu.Unlock()
}
