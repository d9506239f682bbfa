package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) GenerationCompleted(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestMultiDeliversToAllNotifiers(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: errors.New("broker down")}
	c := &recordingNotifier{}

	evt := Event{Kind: EventRetouchCompleted, RunID: "run-1", ItemID: "item-1", OccurredAt: time.Now()}
	err := Multi{a, b, c}.GenerationCompleted(context.Background(), evt)

	if err == nil || err.Error() != "broker down" {
		t.Fatalf("Multi error = %v, want first failure", err)
	}
	for i, n := range []*recordingNotifier{a, b, c} {
		if len(n.events) != 1 {
			t.Fatalf("notifier %d received %d events, want 1", i, len(n.events))
		}
		if n.events[0].RunID != "run-1" {
			t.Fatalf("notifier %d got event %+v", i, n.events[0])
		}
	}
}

func TestNoopAcceptsEvents(t *testing.T) {
	if err := (Noop{}).GenerationCompleted(context.Background(), Event{Kind: EventVideoCompleted}); err != nil {
		t.Fatalf("Noop returned error: %v", err)
	}
}
