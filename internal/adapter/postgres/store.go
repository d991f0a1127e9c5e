package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/score"
)

// Store implements archive.Archive using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveRecord upserts a terminal record. A retry within the same run
// overwrites the previous attempt for the (run, actor, ad) triple.
func (s *Store) SaveRecord(ctx context.Context, rec score.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO score_records (actor_id, ad_id, run_id, status, liking, purchase_intent, commentary, neighbors_used, failure_kind, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (run_id, actor_id, ad_id) DO UPDATE SET
		   status = EXCLUDED.status,
		   liking = EXCLUDED.liking,
		   purchase_intent = EXCLUDED.purchase_intent,
		   commentary = EXCLUDED.commentary,
		   neighbors_used = EXCLUDED.neighbors_used,
		   failure_kind = EXCLUDED.failure_kind,
		   recorded_at = EXCLUDED.recorded_at`,
		rec.ActorID, rec.AdID, rec.RunID, string(rec.Status), rec.Liking, rec.PurchaseIntent,
		rec.Commentary, rec.NeighborsUsed, string(rec.FailureKind), rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.Key(), err)
	}
	return nil
}

// SaveReport stores the assembled report as a JSONB document keyed by run.
func (s *Store) SaveReport(ctx context.Context, rep *score.Report) error {
	doc, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO run_reports (run_id, ad_id, report, completed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id) DO UPDATE SET report = EXCLUDED.report, completed_at = EXCLUDED.completed_at`,
		rep.RunID, rep.AdID, doc, rep.CompletedAt)
	if err != nil {
		return fmt.Errorf("save report %s: %w", rep.RunID, err)
	}
	return nil
}

// ListRecordsByAd returns all archived records for an advertisement,
// most recent first.
func (s *Store) ListRecordsByAd(ctx context.Context, adID string) ([]score.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT actor_id, ad_id, run_id, status, liking, purchase_intent, commentary, neighbors_used, failure_kind, recorded_at
		 FROM score_records WHERE ad_id = $1 ORDER BY recorded_at DESC`, adID)
	if err != nil {
		return nil, fmt.Errorf("list records by ad: %w", err)
	}
	defer rows.Close()

	var records []score.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetReport returns the archived report for a run.
func (s *Store) GetReport(ctx context.Context, runID string) (*score.Report, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM run_reports WHERE run_id = $1`, runID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get report %s: %w", runID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get report %s: %w", runID, err)
	}

	var rep score.Report
	if err := json.Unmarshal(doc, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", runID, err)
	}
	return &rep, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (score.Record, error) {
	var r score.Record
	var status, failure string
	err := row.Scan(&r.ActorID, &r.AdID, &r.RunID, &status, &r.Liking, &r.PurchaseIntent,
		&r.Commentary, &r.NeighborsUsed, &failure, &r.RecordedAt)
	if err != nil {
		return r, fmt.Errorf("scan record: %w", err)
	}
	r.Status = score.Status(status)
	r.FailureKind = score.FailureKind(failure)
	return r, nil
}
