package memstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/AdForge/internal/adapter/memstore"
	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/score"
)

func okRecord(actorID, adID, runID string) score.Record {
	return score.Record{
		ActorID:        actorID,
		AdID:           adID,
		RunID:          runID,
		Status:         score.StatusOK,
		Liking:         3,
		PurchaseIntent: 2,
		Commentary:     "fine",
		RecordedAt:     time.Now().UTC(),
	}
}

func TestPutAndGet(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.Put(ctx, okRecord("kyoto", "ad-1", "run-1")); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "kyoto", "ad-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Liking != 3 || rec.Status != score.StatusOK {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := s.Get(ctx, "kyoto", "ad-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutOverwritesSameKey(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	failed := okRecord("kyoto", "ad-1", "run-1")
	failed.Status = score.StatusFailed
	failed.FailureKind = score.FailureRateLimit
	if err := s.Put(ctx, failed); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, okRecord("kyoto", "ad-1", "run-1")); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "kyoto", "ad-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != score.StatusOK {
		t.Fatalf("retry should replace the failed record, got %+v", rec)
	}
}

func TestSnapshotNeighborsSkipsAbsentAndFailed(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.Put(ctx, okRecord("osaka", "ad-1", "run-1")); err != nil {
		t.Fatal(err)
	}
	failed := okRecord("nara", "ad-1", "run-1")
	failed.Status = score.StatusFailed
	if err := s.Put(ctx, failed); err != nil {
		t.Fatal(err)
	}

	snap, err := s.SnapshotNeighbors(ctx, "ad-1", []string{"osaka", "nara", "shiga"})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 1 {
		t.Fatalf("expected only the ok neighbor, got %v", snap)
	}
	if _, ok := snap["osaka"]; !ok {
		t.Fatal("expected osaka in snapshot")
	}
}

func TestExpireRunRejectsLateWrites(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.Put(ctx, okRecord("kyoto", "ad-1", "run-1")); err != nil {
		t.Fatal(err)
	}

	s.ExpireRun("run-1")
	s.ExpireRun("run-1") // idempotent

	err := s.Put(ctx, okRecord("osaka", "ad-1", "run-1"))
	if !errors.Is(err, domain.ErrRunExpired) {
		t.Fatalf("expected ErrRunExpired, got %v", err)
	}

	// Records written before expiry stay readable.
	if _, err := s.Get(ctx, "kyoto", "ad-1"); err != nil {
		t.Fatal(err)
	}

	// A fresh run token still writes.
	if err := s.Put(ctx, okRecord("osaka", "ad-1", "run-2")); err != nil {
		t.Fatal(err)
	}
}

func TestListByRun(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, okRecord(fmt.Sprintf("actor-%d", i), "ad-1", "run-1")); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Put(ctx, okRecord("actor-x", "ad-1", "run-2")); err != nil {
		t.Fatal(err)
	}

	recs, err := s.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records for run-1, got %d", len(recs))
	}
}

func TestConcurrentWritersDistinctKeys(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rec := okRecord(fmt.Sprintf("actor-%d", n), "ad-1", "run-1")
			if err := s.Put(ctx, rec); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	recs, err := s.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 32 {
		t.Fatalf("expected 32 records, got %d", len(recs))
	}
}
