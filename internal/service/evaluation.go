package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	adotel "github.com/Strob0t/AdForge/internal/adapter/otel"
	"github.com/Strob0t/AdForge/internal/adapter/ws"
	"github.com/Strob0t/AdForge/internal/config"
	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/domain/ad"
	"github.com/Strob0t/AdForge/internal/domain/run"
	"github.com/Strob0t/AdForge/internal/domain/score"
	"github.com/Strob0t/AdForge/internal/graph"
	"github.com/Strob0t/AdForge/internal/port/archive"
	"github.com/Strob0t/AdForge/internal/port/broadcast"
	"github.com/Strob0t/AdForge/internal/port/scorer"
	"github.com/Strob0t/AdForge/internal/port/scorestore"
	"github.com/Strob0t/AdForge/internal/workpool"
)

// EvaluationService schedules advertisement evaluations across the actor
// graph. It owns the run state machine: a plan is computed from graph
// topology, stages are dispatched with bounded concurrency, and a stage
// barrier guarantees every earlier actor holds a terminal record before the
// next stage reads its neighbors.
type EvaluationService struct {
	registry *actor.Registry
	graph    *graph.Graph
	store    scorestore.Store
	backend  scorer.Scorer
	pool     *workpool.Pool
	hub      broadcast.Broadcaster
	archive  archive.Archive // optional
	cfg      config.Scheduler

	mu      sync.RWMutex
	runs    map[string]*run.Run
	reports map[string]*score.Report
}

// NewEvaluationService creates an EvaluationService. backend is expected to
// already be wrapped in the resilient invoker; archive may be nil.
func NewEvaluationService(
	registry *actor.Registry,
	g *graph.Graph,
	store scorestore.Store,
	backend scorer.Scorer,
	hub broadcast.Broadcaster,
	arch archive.Archive,
	cfg config.Scheduler,
) (*EvaluationService, error) {
	for _, id := range g.Nodes() {
		if _, ok := registry.Get(id); !ok {
			return nil, fmt.Errorf("graph node %s has no actor profile", id)
		}
	}
	if hub == nil {
		hub = broadcast.Noop{}
	}
	return &EvaluationService{
		registry: registry,
		graph:    g,
		store:    store,
		backend:  backend,
		pool:     workpool.New(cfg.WorkerBudget),
		hub:      hub,
		archive:  arch,
		cfg:      cfg,
		runs:     make(map[string]*run.Run),
		reports:  make(map[string]*score.Report),
	}, nil
}

// StartRun validates the advertisement, computes the plan, and launches the
// run in the background. The returned Run is a snapshot; poll GetRun for
// progress.
func (s *EvaluationService) StartRun(ctx context.Context, adv ad.Advertisement) (*run.Run, error) {
	if err := adv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	plan := graph.NewPlan(s.graph)

	r := &run.Run{
		ID:           uuid.NewString(),
		AdID:         adv.ID,
		Status:       run.StatusPlanning,
		Stages:       len(plan.Stages),
		WorkerBudget: s.cfg.WorkerBudget,
		StartedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.runs[r.ID] = r
	s.mu.Unlock()

	slog.Info("run planned",
		"run_id", r.ID,
		"ad_id", adv.ID,
		"actors", s.graph.Len(),
		"stages", len(plan.Stages),
	)
	s.broadcastRunStatus(ctx, r)

	snapshot := *r
	go s.executeRun(r.ID, adv, plan)

	return &snapshot, nil
}

// GetRun returns a snapshot of the run state.
func (s *EvaluationService) GetRun(id string) (*run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	snapshot := *r
	return &snapshot, nil
}

// GetReport returns the assembled report of a completed run.
func (s *EvaluationService) GetReport(id string) (*score.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("report for run %s: %w", id, domain.ErrNotFound)
	}
	return rep, nil
}

// Plan exposes the current staged processing order, for the graph API.
func (s *EvaluationService) Plan() *graph.Plan {
	return graph.NewPlan(s.graph)
}

// executeRun drives one run through dispatching, draining, and completion.
// It never returns an error: every task failure degrades to a failed record
// and the report always says which actors never produced an ok record.
func (s *EvaluationService) executeRun(runID string, adv ad.Advertisement, plan *graph.Plan) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	ctx, span := adotel.StartRunSpan(ctx, runID, adv.ID)
	defer span.End()

	for i, stage := range plan.Stages {
		if ctx.Err() != nil {
			break // run deadline: stop dispatching further stages
		}

		s.setStage(ctx, runID, i)
		s.hub.BroadcastEvent(ctx, ws.EventStageStarted, ws.StageStartedEvent{
			RunID:  runID,
			Stage:  i,
			Degree: stage.Degree,
			Actors: stage.Actors,
		})
		slog.Info("stage dispatching",
			"run_id", runID,
			"stage", i,
			"degree", stage.Degree,
			"actors", len(stage.Actors),
		)

		stageCtx, stageSpan := adotel.StartStageSpan(ctx, runID, i, stage.Degree, len(stage.Actors))

		// Stage barrier: every task reaches a terminal state before the
		// next stage is dispatched. This is the store's only cross-actor
		// ordering guarantee.
		var wg sync.WaitGroup
		for _, actorID := range stage.Actors {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := s.pool.Run(stageCtx, func() error {
					s.scoreActor(stageCtx, runID, adv, id)
					return nil
				}); err != nil {
					slog.Warn("task not dispatched", "run_id", runID, "actor", id, "error", err)
				}
			}(actorID)
		}
		wg.Wait()
		stageSpan.End()
	}

	// Draining must outlive the run deadline: the report, archive writes,
	// and the final status broadcast happen even for a timed-out run.
	s.drain(context.WithoutCancel(ctx), runID, adv, plan)
}

// drain closes the run: the store stops accepting its writes, missing
// records are marked failed with a timeout classification, and the report
// is assembled and published.
func (s *EvaluationService) drain(ctx context.Context, runID string, adv ad.Advertisement, plan *graph.Plan) {
	s.setStatus(ctx, runID, run.StatusDraining, "")
	s.store.ExpireRun(runID)

	recorded, err := s.store.ListByRun(ctx, runID)
	if err != nil {
		slog.Error("list run records", "run_id", runID, "error", err)
	}
	byActor := make(map[string]score.Record, len(recorded))
	for _, rec := range recorded {
		byActor[rec.ActorID] = rec
	}

	// Report rows follow plan order. An actor the deadline cut off before
	// its record landed is reported failed/timeout; its late result, if it
	// ever arrives, is rejected by the expired run token.
	records := make([]score.Record, 0, s.graph.Len())
	for _, actorID := range plan.Order() {
		rec, ok := byActor[actorID]
		if !ok {
			rec = score.Record{
				ActorID:     actorID,
				AdID:        adv.ID,
				RunID:       runID,
				Status:      score.StatusFailed,
				FailureKind: score.FailureTimeout,
				Commentary:  "run deadline exceeded before evaluation finished",
				RecordedAt:  time.Now().UTC(),
			}
		}
		records = append(records, rec)
	}

	rep := score.BuildReport(runID, adv.ID, records, func(actorID string) string {
		prof, ok := s.registry.Get(actorID)
		if !ok {
			return ""
		}
		return string(prof.Cluster)
	})

	s.mu.Lock()
	s.reports[runID] = rep
	s.mu.Unlock()

	if s.archive != nil {
		// Archive writes are best effort; analytics lag never fails a run.
		actx, acancel := context.WithTimeout(ctx, 30*time.Second)
		defer acancel()
		for i := range records {
			if err := s.archive.SaveRecord(actx, records[i]); err != nil {
				slog.Error("archive record", "run_id", runID, "actor", records[i].ActorID, "error", err)
			}
		}
		if err := s.archive.SaveReport(actx, rep); err != nil {
			slog.Error("archive report", "run_id", runID, "error", err)
		}
	}

	s.setStatus(ctx, runID, run.StatusCompleted, "")
	slog.Info("run completed",
		"run_id", runID,
		"ad_id", adv.ID,
		"ok", len(records)-len(rep.FailedActors),
		"failed", len(rep.FailedActors),
		"mean_liking", rep.MeanLiking,
		"mean_purchase_intent", rep.MeanPurchaseIntent,
	)
}

func (s *EvaluationService) setStage(ctx context.Context, runID string, stage int) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	var snapshot run.Run
	if ok {
		r.Status = run.StatusDispatching
		r.CurrentStage = stage
		snapshot = *r
	}
	s.mu.Unlock()
	if ok {
		s.broadcastRunStatus(ctx, &snapshot)
	}
}

func (s *EvaluationService) setStatus(ctx context.Context, runID string, status run.Status, errMsg string) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	var snapshot run.Run
	if ok {
		r.Status = status
		r.Error = errMsg
		if r.Terminal() {
			now := time.Now().UTC()
			r.CompletedAt = &now
		}
		snapshot = *r
	}
	s.mu.Unlock()
	if ok {
		s.broadcastRunStatus(ctx, &snapshot)
	}
}

func (s *EvaluationService) broadcastRunStatus(ctx context.Context, r *run.Run) {
	s.hub.BroadcastEvent(ctx, ws.EventRunStatus, ws.RunStatusEvent{
		RunID:  r.ID,
		AdID:   r.AdID,
		Status: string(r.Status),
		Stage:  r.CurrentStage,
		Stages: r.Stages,
	})
}
