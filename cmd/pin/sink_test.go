package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jpalmerr/pin"
	"github.com/jpalmerr/pin/internal/metrics"
	"github.com/jpalmerr/pin/internal/notify"
	"github.com/jpalmerr/pin/internal/store"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, evt notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return c.err
}

func (c *captureNotifier) snapshot() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Event(nil), c.events...)
}

func TestSink_UpUpdatesStoreAndNotifies(t *testing.T) {
	st := store.NewMemoryStore()
	n := &captureNotifier{}
	s := newSink("https://example.com", st, n, zap.NewNop())
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.up(&pin.Response{StatusCode: 200, Status: "200 OK", Header: http.Header{}}, pin.Info{Duration: 1500 * time.Microsecond})
	s.close()

	snap, ok := st.Latest()
	if !ok {
		t.Fatal("store should have a record")
	}
	rec := snap.Latest
	if rec.Status != store.StatusUp || rec.StatusCode != 200 || rec.DurationMs != 1.5 {
		t.Errorf("record = %+v", rec)
	}
	if !rec.CheckedAt.Equal(fixed) || rec.Error != nil {
		t.Errorf("record = %+v", rec)
	}

	events := n.snapshot()
	if len(events) != 1 {
		t.Fatalf("notified %d events, want 1", len(events))
	}
	if events[0].Kind != notify.KindUp || events[0].Target != "https://example.com" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestSink_DownCarriesError(t *testing.T) {
	st := store.NewMemoryStore()
	n := &captureNotifier{}
	s := newSink("https://example.com", st, n, zap.NewNop())

	s.down(errors.New("connection refused"), nil, pin.Info{Duration: time.Millisecond})
	s.close()

	snap, _ := st.Latest()
	if snap.Latest.Status != store.StatusDown {
		t.Errorf("Status = %q, want down", snap.Latest.Status)
	}
	if snap.Latest.Error == nil || *snap.Latest.Error != "connection refused" {
		t.Errorf("Error = %v", snap.Latest.Error)
	}
	if snap.Latest.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 without a response", snap.Latest.StatusCode)
	}

	events := n.snapshot()
	if len(events) != 1 || events[0].Error != "connection refused" {
		t.Errorf("events = %+v", events)
	}
}

func TestSink_NotifyFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	n := &captureNotifier{err: errors.New("webhook down")}
	s := newSink("https://example.com", store.NewMemoryStore(), n, zap.New(core))

	s.down(nil, &pin.Response{StatusCode: 500}, pin.Info{})
	s.close()

	if got := logs.FilterMessage("notify_failed").Len(); got != 1 {
		t.Errorf("notify_failed logged %d times, want 1", got)
	}
}

func TestSink_NilNotifier(t *testing.T) {
	st := store.NewMemoryStore()
	s := newSink("https://example.com", st, nil, zap.NewNop())

	s.up(&pin.Response{StatusCode: 204}, pin.Info{})
	s.close()

	if snap, ok := st.Latest(); !ok || snap.Checks != 1 {
		t.Errorf("store snapshot = %+v, %v", snap, ok)
	}
}

func TestSink_ObservesMetrics(t *testing.T) {
	s := newSink("https://example.com", store.NewMemoryStore(), nil, zap.NewNop())
	s.metrics = metrics.New("https://example.com")

	s.up(&pin.Response{StatusCode: 200}, pin.Info{Duration: 10 * time.Millisecond})
	s.down(nil, &pin.Response{StatusCode: 503}, pin.Info{Duration: 20 * time.Millisecond})
	s.close()

	rec := httptest.NewRecorder()
	s.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`pin_checks_total{result="up",target="https://example.com"} 1`,
		`pin_checks_total{result="down",target="https://example.com"} 1`,
		`pin_target_up{target="https://example.com"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
