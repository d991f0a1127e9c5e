package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventRunStatus     = "run.status"
	EventStageStarted  = "stage.started"
	EventScoreRecorded = "score.recorded"
)

// RunStatusEvent is broadcast when a run changes phase.
type RunStatusEvent struct {
	RunID  string `json:"run_id"`
	AdID   string `json:"ad_id"`
	Status string `json:"status"`
	Stage  int    `json:"stage,omitempty"`
	Stages int    `json:"stages,omitempty"`
}

// StageStartedEvent is broadcast when a scheduling stage begins dispatch.
type StageStartedEvent struct {
	RunID  string   `json:"run_id"`
	Stage  int      `json:"stage"`
	Degree int      `json:"degree"`
	Actors []string `json:"actors"`
}

// ScoreRecordedEvent is broadcast when an actor's record reaches a terminal
// state.
type ScoreRecordedEvent struct {
	RunID          string  `json:"run_id"`
	ActorID        string  `json:"actor_id"`
	AdID           string  `json:"ad_id"`
	Status         string  `json:"status"`
	Liking         float64 `json:"liking,omitempty"`
	PurchaseIntent float64 `json:"purchase_intent,omitempty"`
}

// BroadcastEvent marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
