// Package run defines the evaluation run entity and its state machine.
package run

import "time"

// Status represents the current phase of an evaluation run.
// Transitions are linear: planning → dispatching → draining → completed.
// A run that fails before dispatch goes straight to failed.
type Status string

const (
	StatusPlanning    Status = "planning"
	StatusDispatching Status = "dispatching"
	StatusDraining    Status = "draining"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Run represents a single evaluation of one advertisement across all actors.
type Run struct {
	ID           string     `json:"id"`
	AdID         string     `json:"ad_id"`
	Status       Status     `json:"status"`
	Stages       int        `json:"stages"`
	CurrentStage int        `json:"current_stage"`
	WorkerBudget int        `json:"worker_budget"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the run has reached a final state.
func (r *Run) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
