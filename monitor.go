package pin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jpalmerr/pin/internal/poller"
)

// Monitor periodically checks a single URL and reports every check as up or
// down to its observers.
//
// A Monitor is created with [New] and configured through options or the
// chainable setters. Subscribing with [Monitor.Up] or [Monitor.Down] starts
// polling automatically:
//
//	m, err := pin.New("https://example.com/health")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m.Interval(5 * time.Second).
//	    Text("Awesome").
//	    MaxDuration(500 * time.Millisecond).
//	    Up(func(resp *pin.Response, info pin.Info) {
//	        log.Printf("up: %d in %.1fms", resp.StatusCode, info.DurationMillis())
//	    }).
//	    Down(func(err error, resp *pin.Response, info pin.Info) {
//	        log.Printf("down: %v", err)
//	    })
//
// Polling continues until [Monitor.Stop] is called, the context given to
// [Monitor.Start] is cancelled, or the process exits.
//
// All methods are safe for concurrent use. Observers and validators must not
// call Stop synchronously; cancel the Start context or call Stop from another
// goroutine instead.
type Monitor struct {
	url         string
	driver      Driver
	ownedDriver *HTTPDriver
	logger      *zap.Logger
	pipeline    *Pipeline
	events      *emitter
	immediate   bool
	skipOverlap bool

	inflight atomic.Int32

	mu          sync.Mutex
	interval    time.Duration
	text        string
	maxDuration time.Duration
	headers     map[string]string
	cfgErr      error
	state       State
	scheduler   *poller.Scheduler

	// completions hold the read lock while reporting; Stop takes the write
	// lock so nothing is emitted once it returns
	emitMu sync.RWMutex
	halted bool
}

// Result is the outcome of a single [Monitor.Probe].
type Result struct {
	Outcome

	// Up reports whether every validator passed.
	Up bool
}

// New creates a [Monitor] for rawURL with the given options.
//
// The URL must use the http or https scheme and name a host. Defaults:
//   - Interval: [DefaultInterval]
//   - Driver: [HTTPDriver] with [DefaultTimeout]
//   - Validators: [BuiltinValidators]
//
// New does not start polling. Returns an error if the URL or any option is
// invalid.
//
// Example:
//
//	m, err := pin.New("https://api.example.com/health",
//	    pin.WithInterval(30 * time.Second),
//	    pin.WithText("ok"),
//	    pin.WithLogger(logger),
//	)
func New(rawURL string, opts ...Option) (*Monitor, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	cfg := &monitorConfig{
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		headers:  make(map[string]string),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("url", rawURL))

	m := &Monitor{
		url:         rawURL,
		driver:      cfg.driver,
		logger:      logger,
		pipeline:    NewPipeline(logger, BuiltinValidators()...),
		events:      newEmitter(logger),
		immediate:   cfg.immediate,
		skipOverlap: cfg.skipOverlap,
		interval:    cfg.interval,
		text:        cfg.text,
		maxDuration: cfg.maxDuration,
		headers:     cfg.headers,
	}
	if m.driver == nil {
		m.ownedDriver = NewHTTPDriver(cfg.timeout)
		m.driver = m.ownedDriver
	}
	m.pipeline.Register(cfg.validators...)

	return m, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// URL returns the monitored URL.
func (m *Monitor) URL() string {
	return m.url
}

// Err returns the configuration errors recorded by the chainable setters,
// combined into one error, or nil.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfgErr
}

// Settings returns a snapshot of the settings validators currently see.
func (m *Monitor) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsLocked()
}

func (m *Monitor) settingsLocked() Settings {
	return Settings{
		Text:           m.text,
		HasText:        m.text != "",
		MaxDuration:    m.maxDuration,
		HasMaxDuration: m.maxDuration > 0,
	}
}

// State returns the lifecycle state. A monitor whose Start context was
// cancelled reports [StateStopped].
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Monitor) stateLocked() State {
	if m.state == StateRunning {
		select {
		case <-m.scheduler.Done():
			return StateStopped
		default:
		}
	}
	return m.state
}

// Interval sets the time between checks.
//
// The interval is read when polling starts; changing it on a running monitor
// does not reschedule the timer. A non-positive interval is recorded as a
// configuration error and the previous value is kept.
func (m *Monitor) Interval(d time.Duration) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d <= 0 {
		m.cfgErr = multierr.Append(m.cfgErr, fmt.Errorf("%w, got %v", ErrInvalidInterval, d))
		return m
	}
	if m.stateLocked() == StateRunning {
		m.logger.Debug("interval_change_ignored",
			zap.Duration("interval", m.interval),
			zap.Duration("requested", d),
		)
	}
	m.interval = d
	return m
}

// Text requires the response body to contain text (case-sensitive).
// An empty string removes the requirement. Takes effect from the next
// completed check.
func (m *Monitor) Text(text string) *Monitor {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return m
}

// MaxDuration fails checks that take longer than d. Zero removes the limit.
// A negative value is recorded as a configuration error and the previous
// value is kept.
func (m *Monitor) MaxDuration(d time.Duration) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		m.cfgErr = multierr.Append(m.cfgErr, fmt.Errorf("%w, got %v", ErrInvalidMaxDuration, d))
		return m
	}
	m.maxDuration = d
	return m
}

// Header sets a request header sent with every subsequent check.
// An empty key is recorded as a configuration error.
func (m *Monitor) Header(key, value string) *Monitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key == "" {
		m.cfgErr = multierr.Append(m.cfgErr, fmt.Errorf("%w: header name cannot be empty", ErrInvalidHeader))
		return m
	}
	m.headers[key] = value
	return m
}

// Register appends custom validators to the pipeline. Nil validators are
// ignored. Validators registered while polling apply from the next check.
//
// Example:
//
//	m.Register(func(o pin.Outcome, s pin.Settings) bool {
//	    return o.Response != nil && o.Response.Header.Get("X-Ready") == "1"
//	})
func (m *Monitor) Register(validators ...Validator) *Monitor {
	m.pipeline.Register(validators...)
	return m
}

// Up subscribes fn to checks that pass every validator and starts polling if
// the monitor is idle. Nil observers are ignored.
//
// Observers run synchronously, in registration order, on the goroutine that
// completed the check. They must be non-blocking. Panics are recovered and
// logged; they affect neither other observers nor the polling loop.
func (m *Monitor) Up(fn UpFunc) *Monitor {
	if fn == nil {
		return m
	}
	m.events.onUp(fn)
	m.startIfNotRunning()
	return m
}

// Down subscribes fn to checks that fail at least one validator and starts
// polling if the monitor is idle. Nil observers are ignored.
//
// See [Monitor.Up] for the observer contract.
func (m *Monitor) Down(fn DownFunc) *Monitor {
	if fn == nil {
		return m
	}
	m.events.onDown(fn)
	m.startIfNotRunning()
	return m
}

// startIfNotRunning starts polling with a background context. Configuration
// errors are logged and leave the monitor idle.
func (m *Monitor) startIfNotRunning() {
	err := m.Start(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, ErrStopped):
		m.logger.Debug("implicit_start_skipped", zap.String("state", StateStopped.String()))
	default:
		m.logger.Error("implicit_start_failed", zap.Error(err))
	}
}

// Start begins polling in the background and returns immediately.
//
// The first check runs one interval after Start, or right away when
// [WithImmediateCheck] is set. Cancelling ctx stops polling. If ctx is nil,
// context.Background() is used.
//
// Start is idempotent: calling it on a running monitor is a no-op that returns
// nil. It returns [ErrStopped] once the monitor has stopped, and the recorded
// configuration errors (see [Monitor.Err]) if there are any.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.stateLocked() {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrStopped
	}
	if m.cfgErr != nil {
		return m.cfgErr
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []poller.SchedulerOption
	if m.immediate {
		opts = append(opts, poller.RunImmediately())
	}
	m.scheduler = poller.NewScheduler(m.interval, m.tick, m.logger, opts...)
	m.scheduler.Start(ctx)
	m.state = StateRunning

	ups, downs := m.events.counts()
	m.logger.Info("monitor_started",
		zap.Duration("interval", m.interval),
		zap.Bool("immediate", m.immediate),
		zap.Int("validators", m.pipeline.Len()),
		zap.Int("up_observers", ups),
		zap.Int("down_observers", downs),
	)
	return nil
}

// Stop halts polling.
//
// Stop waits for the timer loop to exit. Checks still in flight are
// abandoned: their results are discarded, and no observer is called after
// Stop returns. Stop is idempotent, and calling it before Start leaves the
// monitor permanently stopped.
func (m *Monitor) Stop() {
	m.mu.Lock()
	sched := m.scheduler
	first := m.state != StateStopped
	m.state = StateStopped
	m.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}

	m.emitMu.Lock()
	m.halted = true
	m.emitMu.Unlock()

	if first {
		if m.ownedDriver != nil {
			m.ownedDriver.Close()
		}
		m.logger.Info("monitor_stopped")
	}
}

// Probe runs one check synchronously and returns its result without notifying
// observers. It works in any state and does not start polling.
//
// If ctx is cancelled before the driver reports back, the result carries the
// context error and is down.
func (m *Monitor) Probe(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make(chan Result, 1)
	m.check(ctx, func(o Outcome, up bool) {
		results <- Result{Outcome: o, Up: up}
	})

	select {
	case r := <-results:
		return r
	case <-ctx.Done():
		return Result{Outcome: Outcome{Err: ctx.Err()}}
	}
}

// tick is the scheduler task: one check per timer tick.
func (m *Monitor) tick(ctx context.Context) {
	if n := m.inflight.Add(1); m.skipOverlap && n > 1 {
		m.inflight.Add(-1)
		m.logger.Debug("check_skipped", zap.Int32("in_flight", n-1))
		return
	}
	m.check(ctx, func(o Outcome, up bool) {
		defer m.inflight.Add(-1)
		m.report(ctx, o, up)
	})
}

// check issues one request through the driver and calls finish exactly once
// with the evaluated outcome. Settings are read when the driver completes.
func (m *Monitor) check(ctx context.Context, finish func(o Outcome, up bool)) {
	req := m.request()
	start := time.Now()

	var called atomic.Bool
	done := func(err error, resp *Response, body string) {
		if !called.CompareAndSwap(false, true) {
			m.logger.Warn("driver_callback_repeated")
			return
		}
		o := Outcome{
			Err:      err,
			Response: resp,
			Body:     body,
			Info:     Info{Duration: time.Since(start)},
		}
		finish(o, m.pipeline.Evaluate(o, m.Settings()))
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("driver_panicked", zap.String("panic", fmt.Sprintf("%v", r)))
			done(fmt.Errorf("pin: driver panicked: %v", r), nil, "")
		}
	}()
	m.driver.Get(ctx, req, done)
}

// request snapshots the request descriptor for one check.
func (m *Monitor) request() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Request{
		URL:    m.url,
		Header: copyMap(m.headers),
	}
}

// report emits the outcome of a polled check to the matching observers.
func (m *Monitor) report(ctx context.Context, o Outcome, up bool) {
	m.emitMu.RLock()
	defer m.emitMu.RUnlock()

	if m.halted || ctx.Err() != nil {
		m.logger.Debug("check_result_discarded", zap.Bool("up", up))
		return
	}

	m.logger.Debug("check_completed",
		zap.Bool("up", up),
		zap.Int("status_code", o.StatusCode()),
		zap.Float64("duration_ms", o.Info.DurationMillis()),
		zap.Error(o.Err),
	)
	if up {
		m.events.emitUp(o.Response, o.Info)
	} else {
		m.events.emitDown(o.Err, o.Response, o.Info)
	}
}
