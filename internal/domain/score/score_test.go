package score_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Strob0t/AdForge/internal/domain/score"
)

func rec(actorID string, status score.Status, liking, intent float64) score.Record {
	return score.Record{
		ActorID:        actorID,
		AdID:           "ad-1",
		RunID:          "run-1",
		Status:         status,
		Liking:         liking,
		PurchaseIntent: intent,
		Commentary:     "c",
		RecordedAt:     time.Now().UTC(),
	}
}

func TestValidateScores(t *testing.T) {
	good := rec("a", score.StatusOK, 0, 5)
	if err := good.ValidateScores(); err != nil {
		t.Fatalf("bounds are inclusive, got %v", err)
	}

	cases := []score.Record{
		rec("a", score.StatusOK, -0.1, 3),
		rec("a", score.StatusOK, 5.1, 3),
		rec("a", score.StatusOK, 3, 6),
	}
	for _, c := range cases {
		if err := c.ValidateScores(); err == nil {
			t.Fatalf("expected out-of-range error for %+v", c)
		}
	}

	empty := rec("a", score.StatusOK, 3, 3)
	empty.Commentary = ""
	if err := empty.ValidateScores(); err == nil {
		t.Fatal("expected error for empty commentary")
	}
}

func TestRecordKey(t *testing.T) {
	r := rec("kyoto", score.StatusOK, 1, 1)
	if r.Key() != "kyoto/ad-1" {
		t.Fatalf("unexpected key %s", r.Key())
	}
}

func TestBuildReportMeansOverOKOnly(t *testing.T) {
	records := []score.Record{
		rec("a", score.StatusOK, 4, 2),
		rec("b", score.StatusFailed, 0, 0),
		rec("c", score.StatusOK, 2, 4),
	}

	rep := score.BuildReport("run-1", "ad-1", records, nil)

	if !reflect.DeepEqual(rep.FailedActors, []string{"b"}) {
		t.Fatalf("expected failed [b], got %v", rep.FailedActors)
	}
	if rep.MeanLiking != 3 || rep.MeanPurchaseIntent != 3 {
		t.Fatalf("unexpected means: %f / %f", rep.MeanLiking, rep.MeanPurchaseIntent)
	}
	if len(rep.Records) != 3 {
		t.Fatalf("report must keep all records, got %d", len(rep.Records))
	}
}

func TestBuildReportAllFailed(t *testing.T) {
	records := []score.Record{
		rec("a", score.StatusFailed, 0, 0),
		rec("b", score.StatusFailed, 0, 0),
	}

	rep := score.BuildReport("run-1", "ad-1", records, nil)

	if len(rep.FailedActors) != 2 {
		t.Fatalf("expected 2 failed actors, got %v", rep.FailedActors)
	}
	if rep.MeanLiking != 0 || math.IsNaN(rep.MeanLiking) {
		t.Fatalf("means must stay zero without ok records, got %f", rep.MeanLiking)
	}
}

func TestBuildReportClusterBreakdown(t *testing.T) {
	records := []score.Record{
		rec("a", score.StatusOK, 4, 4),
		rec("b", score.StatusOK, 2, 2),
		rec("c", score.StatusOK, 3, 1),
	}
	clusterOf := func(id string) string {
		if id == "c" {
			return "urban"
		}
		return "rural"
	}

	rep := score.BuildReport("run-1", "ad-1", records, clusterOf)

	rural := rep.Clusters["rural"]
	if rural.Actors != 2 || rural.MeanLiking != 3 || rural.MeanPurchaseIntent != 3 {
		t.Fatalf("unexpected rural stats: %+v", rural)
	}
	urban := rep.Clusters["urban"]
	if urban.Actors != 1 || urban.MeanLiking != 3 || urban.MeanPurchaseIntent != 1 {
		t.Fatalf("unexpected urban stats: %+v", urban)
	}
}
