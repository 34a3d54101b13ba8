// Package history journals backend lifecycle transitions so the console
// window can show what the supervisor did and when.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventSpawned          EventType = "spawned"
	EventSpawnedFallback  EventType = "spawned_fallback"
	EventHealthy          EventType = "healthy"
	EventProbeTimedOut    EventType = "probe_timed_out"
	EventProbeUnreachable EventType = "probe_unreachable"
	EventStopped          EventType = "stopped"
	EventExited           EventType = "exited"
)

// Event is one backend lifecycle transition.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	PID        int       `json:"pid"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for lifecycle events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	// Recent returns up to limit most recent events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
	Close() error
}

// Nop discards events; used when the journal is disabled.
type Nop struct{}

func (Nop) Send(context.Context, Event) error            { return nil }
func (Nop) Recent(context.Context, int) ([]Event, error) { return nil, nil }
func (Nop) Close() error                                 { return nil }
