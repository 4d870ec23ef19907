package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
)

// Kind is the classification of a check.
type Kind string

const (
	KindUp   Kind = "up"
	KindDown Kind = "down"
)

// Event describes one classified check of the watched target.
type Event struct {
	Kind       Kind          `json:"kind"`
	Target     string        `json:"target"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	Error      string        `json:"error,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Notifier delivers events to a downstream channel.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// NotifierFunc adapts a function to the [Notifier] interface.
type NotifierFunc func(ctx context.Context, evt Event) error

// Notify calls f(ctx, evt).
func (f NotifierFunc) Notify(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// Multi sends every event to each notifier in order. Nil entries are skipped.
// All notifiers run even when some fail; their errors are combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, evt Event) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Notify(ctx, evt))
	}
	return err
}

// Transitions forwards only events whose kind differs from the previous one.
// The first event is always forwarded.
type Transitions struct {
	next Notifier

	mu   sync.Mutex
	last Kind
}

// NewTransitions wraps next so repeated up or down events are dropped.
func NewTransitions(next Notifier) *Transitions {
	return &Transitions{next: next}
}

func (t *Transitions) Notify(ctx context.Context, evt Event) error {
	t.mu.Lock()
	if t.last == evt.Kind {
		t.mu.Unlock()
		return nil
	}
	t.last = evt.Kind
	t.mu.Unlock()

	return t.next.Notify(ctx, evt)
}
