package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/pin"
	"github.com/jpalmerr/pin/internal/metrics"
	"github.com/jpalmerr/pin/internal/notify"
	"github.com/jpalmerr/pin/internal/store"
)

const (
	notifyQueueSize = 64
	notifyTimeout   = 10 * time.Second
)

// sink turns monitor notifications into log lines, store records and
// notifier events. Notifier delivery runs on its own goroutine so a slow
// webhook never holds up the monitor's completion callback.
type sink struct {
	target   string
	store    store.Store
	notifier notify.Notifier
	metrics  *metrics.Collector
	logger   *zap.Logger
	now      func() time.Time

	queue chan notify.Event
	wg    sync.WaitGroup
}

func newSink(target string, st store.Store, n notify.Notifier, logger *zap.Logger) *sink {
	s := &sink{
		target:   target,
		store:    st,
		notifier: n,
		logger:   logger,
		now:      time.Now,
		queue:    make(chan notify.Event, notifyQueueSize),
	}
	s.wg.Add(1)
	go s.deliver()
	return s
}

func (s *sink) up(resp *pin.Response, info pin.Info) {
	evt := s.event(notify.KindUp, nil, resp, info)
	s.logger.Info("target_up",
		zap.Int("status_code", evt.StatusCode),
		zap.Float64("duration_ms", info.DurationMillis()),
	)
	s.record(evt)
}

func (s *sink) down(err error, resp *pin.Response, info pin.Info) {
	evt := s.event(notify.KindDown, err, resp, info)
	s.logger.Warn("target_down",
		zap.Int("status_code", evt.StatusCode),
		zap.Float64("duration_ms", info.DurationMillis()),
		zap.Error(err),
	)
	s.record(evt)
}

func (s *sink) event(kind notify.Kind, err error, resp *pin.Response, info pin.Info) notify.Event {
	evt := notify.Event{
		Kind:      kind,
		Target:    s.target,
		Duration:  info.Duration,
		CheckedAt: s.now().UTC(),
	}
	if resp != nil {
		evt.StatusCode = resp.StatusCode
	}
	if err != nil {
		evt.Error = err.Error()
	}
	return evt
}

func (s *sink) record(evt notify.Event) {
	rec := store.Record{
		Target:     evt.Target,
		Status:     string(evt.Kind),
		StatusCode: evt.StatusCode,
		DurationMs: float64(evt.Duration.Microseconds()) / 1000,
		CheckedAt:  evt.CheckedAt,
	}
	if evt.Error != "" {
		msg := evt.Error
		rec.Error = &msg
	}
	s.store.Update(rec)
	if s.metrics != nil {
		s.metrics.Observe(evt.Kind == notify.KindUp, evt.Duration, evt.CheckedAt)
	}

	if s.notifier == nil {
		return
	}
	select {
	case s.queue <- evt:
	default:
		s.logger.Warn("notify_queue_full", zap.String("kind", string(evt.Kind)))
	}
}

func (s *sink) deliver() {
	defer s.wg.Done()
	for evt := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := s.notifier.Notify(ctx, evt); err != nil {
			s.logger.Error("notify_failed", zap.String("kind", string(evt.Kind)), zap.Error(err))
		}
		cancel()
	}
}

// close flushes queued events. It must only be called once the monitor has
// stopped emitting.
func (s *sink) close() {
	close(s.queue)
	s.wg.Wait()
}
