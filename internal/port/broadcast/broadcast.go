// Package broadcast defines the port interface for pushing events to
// connected clients.
package broadcast

import "context"

// Broadcaster fans a typed event out to every connected client.
// Delivery is best effort; a slow or gone client never blocks a run.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}

// Noop is a Broadcaster that drops every event. Used when no hub is wired.
type Noop struct{}

// BroadcastEvent implements Broadcaster.
func (Noop) BroadcastEvent(context.Context, string, any) {}
