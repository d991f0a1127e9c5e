package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	adotel "github.com/Strob0t/AdForge/internal/adapter/otel"
	"github.com/Strob0t/AdForge/internal/adapter/ws"
	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/ad"
	"github.com/Strob0t/AdForge/internal/domain/score"
	"github.com/Strob0t/AdForge/internal/port/scorer"
)

// scoreActor runs one actor scoring task: snapshot the neighbors already in
// the store, invoke the scoring backend through the resilient wrapper,
// validate the contract, and record the terminal outcome. A failed attempt
// is recorded, not dropped, so downstream readers can see the actor consulted
// no valid neighbor data.
func (s *EvaluationService) scoreActor(ctx context.Context, runID string, adv ad.Advertisement, actorID string) {
	ctx, span := adotel.StartTaskSpan(ctx, runID, actorID)
	defer span.End()

	prof, ok := s.registry.Get(actorID)
	if !ok {
		// Registry and graph are cross-checked at construction.
		slog.Error("actor missing from registry", "run_id", runID, "actor", actorID)
		return
	}

	snap, err := s.store.SnapshotNeighbors(ctx, adv.ID, s.graph.Neighbors(actorID))
	if err != nil {
		s.recordFailure(ctx, runID, adv.ID, actorID, nil, fmt.Errorf("snapshot neighbors: %w", err))
		return
	}
	consulted := snapshotKeys(snap)

	req := scorer.Request{
		Actor:     prof,
		AdID:      adv.ID,
		AdContent: adv.Content,
		Neighbors: scorer.SnapshotToNeighbors(snap),
	}

	res, err := s.backend.Score(ctx, req)
	if err != nil {
		s.recordFailure(ctx, runID, adv.ID, actorID, consulted, err)
		return
	}

	rec := score.Record{
		ActorID:        actorID,
		AdID:           adv.ID,
		RunID:          runID,
		Status:         score.StatusOK,
		Liking:         res.Liking,
		PurchaseIntent: res.PurchaseIntent,
		Commentary:     res.Commentary,
		NeighborsUsed:  consulted,
		RecordedAt:     time.Now().UTC(),
	}
	if verr := rec.ValidateScores(); verr != nil {
		// Contract violation by the scoring backend, not retried here.
		s.recordFailure(ctx, runID, adv.ID, actorID, consulted,
			fmt.Errorf("%w: %s", domain.ErrMalformedOutput, verr))
		return
	}

	s.put(ctx, rec)
}

// recordFailure writes a failed record carrying the error description as
// commentary and the failure classification derived from the error chain.
func (s *EvaluationService) recordFailure(ctx context.Context, runID, adID, actorID string, consulted []string, cause error) {
	slog.Warn("actor scoring failed",
		"run_id", runID,
		"actor", actorID,
		"ad_id", adID,
		"kind", classify(cause),
		"error", cause,
	)

	s.put(ctx, score.Record{
		ActorID:       actorID,
		AdID:          adID,
		RunID:         runID,
		Status:        score.StatusFailed,
		Commentary:    cause.Error(),
		NeighborsUsed: consulted,
		FailureKind:   classify(cause),
		RecordedAt:    time.Now().UTC(),
	})
}

// put stores a terminal record and broadcasts it. A write rejected by an
// expired run token is the normal fate of a straggler after the run
// deadline; any other store error is logged.
func (s *EvaluationService) put(ctx context.Context, rec score.Record) {
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrRunExpired) {
			slog.Info("late result discarded", "run_id", rec.RunID, "actor", rec.ActorID)
			return
		}
		slog.Error("store put failed", "run_id", rec.RunID, "actor", rec.ActorID, "error", err)
		return
	}

	s.hub.BroadcastEvent(ctx, ws.EventScoreRecorded, ws.ScoreRecordedEvent{
		RunID:          rec.RunID,
		ActorID:        rec.ActorID,
		AdID:           rec.AdID,
		Status:         string(rec.Status),
		Liking:         rec.Liking,
		PurchaseIntent: rec.PurchaseIntent,
	})
}

// classify maps an error chain onto the report's failure taxonomy.
func classify(err error) score.FailureKind {
	switch {
	case errors.Is(err, domain.ErrMalformedOutput):
		return score.FailureMalformed
	case errors.Is(err, domain.ErrRateLimited):
		return score.FailureRateLimit
	case errors.Is(err, domain.ErrCredentialExpired):
		return score.FailureCredential
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return score.FailureTimeout
	default:
		return score.FailureUnclassified
	}
}

func snapshotKeys(snap map[string]score.Record) []string {
	if len(snap) == 0 {
		return nil
	}
	keys := make([]string, 0, len(snap))
	for id := range snap {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
