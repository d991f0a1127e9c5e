// Package score defines the score record and run report entities.
package score

import (
	"fmt"
	"time"
)

// ScoreMin and ScoreMax bound both numeric score fields.
const (
	ScoreMin = 0.0
	ScoreMax = 5.0
)

// Status is the terminal state of a record. A record never leaves a
// terminal state within its run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// FailureKind classifies why a failed record failed.
type FailureKind string

const (
	FailureRateLimit    FailureKind = "rate_limit"
	FailureCredential   FailureKind = "credential"
	FailureMalformed    FailureKind = "malformed_output"
	FailureTimeout      FailureKind = "timeout"
	FailureUnclassified FailureKind = "unclassified"
)

// Record is one actor's evaluation attempt for one advertisement.
// Identity key is (ActorID, AdID); a retry overwrites, never appends.
type Record struct {
	ActorID        string      `json:"actor_id"`
	AdID           string      `json:"ad_id"`
	RunID          string      `json:"run_id"`
	Status         Status      `json:"status"`
	Liking         float64     `json:"liking"`
	PurchaseIntent float64     `json:"purchase_intent"`
	Commentary     string      `json:"commentary"`
	NeighborsUsed  []string    `json:"neighbors_used,omitempty"`
	FailureKind    FailureKind `json:"failure_kind,omitempty"`
	RecordedAt     time.Time   `json:"recorded_at"`
}

// Key returns the store key for this record.
func (r *Record) Key() string {
	return r.ActorID + "/" + r.AdID
}

// ValidateScores checks the scoring contract on an ok record: both scores
// in bounds and non-empty commentary.
func (r *Record) ValidateScores() error {
	if r.Liking < ScoreMin || r.Liking > ScoreMax {
		return fmt.Errorf("liking %.2f out of range [%.1f, %.1f]", r.Liking, ScoreMin, ScoreMax)
	}
	if r.PurchaseIntent < ScoreMin || r.PurchaseIntent > ScoreMax {
		return fmt.Errorf("purchase_intent %.2f out of range [%.1f, %.1f]", r.PurchaseIntent, ScoreMin, ScoreMax)
	}
	if r.Commentary == "" {
		return fmt.Errorf("commentary is empty")
	}
	return nil
}
