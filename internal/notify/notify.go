// Package notify delivers the non-blocking completion signal the engine fires
// after each successful generation. Delivery failures are never allowed to
// affect engine correctness; implementations log and move on.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// EventKind distinguishes what finished generating.
type EventKind string

const (
	EventRetouchCompleted EventKind = "retouch.completed"
	EventVideoCompleted   EventKind = "video.completed"
)

// Event describes one completed generation.
type Event struct {
	Kind       EventKind `json:"kind"`
	RunID      string    `json:"run_id,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier receives completion events.
type Notifier interface {
	GenerationCompleted(ctx context.Context, evt Event) error
}

// LogNotifier writes completion events to the structured log. It stands in
// for the original studio's completion chime.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) GenerationCompleted(_ context.Context, evt Event) error {
	n.Logger.Info().
		Str("kind", string(evt.Kind)).
		Str("run_id", evt.RunID).
		Str("item_id", evt.ItemID).
		Msg("notify: generation completed")
	return nil
}

// Noop discards all events.
type Noop struct{}

func (Noop) GenerationCompleted(context.Context, Event) error { return nil }

// Multi fans an event out to several notifiers; the first error is returned
// after every notifier has been given the event.
type Multi []Notifier

func (m Multi) GenerationCompleted(ctx context.Context, evt Event) error {
	var first error
	for _, n := range m {
		if err := n.GenerationCompleted(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}
