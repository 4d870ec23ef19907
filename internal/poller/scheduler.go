package poller

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is the unit of work run by a [Scheduler] on every tick.
//
// The context is cancelled when the scheduler stops. Tasks that start
// asynchronous work are expected to honour it.
type Task func(ctx context.Context)

// SchedulerOption configures a [Scheduler].
type SchedulerOption func(*Scheduler)

// RunImmediately makes the scheduler run its task once as soon as it starts,
// before waiting for the first interval to elapse.
func RunImmediately() SchedulerOption {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

// Scheduler runs a single [Task] at a fixed interval.
//
// By default the first run happens one full interval after [Scheduler.Start],
// matching the behaviour of a plain repeating timer. Ticks that fire while the
// task is still running on the loop goroutine are dropped by the underlying
// [time.Ticker].
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	interval  time.Duration
	task      Task
	immediate bool
	logger    *zap.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once
}

// NewScheduler creates a new [Scheduler].
//
// Parameters:
//   - interval: Time between task runs, must be positive
//   - task: Work to run on each tick
//   - logger: Logger for scheduler events (panic recovery, etc.); nil disables logging
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop] or by cancelling the context given to Start.
func NewScheduler(interval time.Duration, task Task, logger *zap.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the interval the scheduler ticks at.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Done returns a channel that is closed once the scheduling loop has exited,
// either because [Scheduler.Stop] was called or because the context passed to
// [Scheduler.Start] was cancelled. Stopping a scheduler that never started
// also closes it.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Start begins the scheduling loop in a background goroutine.
//
// Start is non-blocking and reports whether this call started the loop.
// It is idempotent: calls after the first, and calls after Stop, are no-ops
// that return false. If ctx is nil, context.Background() is used.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return false
	}
	if s.interval <= 0 {
		s.mu.Unlock()
		s.logger.Error("scheduler_invalid_interval", zap.Duration("interval", s.interval))
		return false
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(loopCtx)
	return true
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	defer s.closeDone()

	if s.immediate {
		s.runSafe(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// a tick and a cancellation can be ready together
			if ctx.Err() != nil {
				return
			}
			s.runSafe(ctx)
		}
	}
}

// Stop halts the scheduler and waits for the loop goroutine to exit.
//
// When Stop returns the task is not running on the loop goroutine and will
// not be invoked again. Work the task handed off to other goroutines is the
// caller's responsibility.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op that prevents any later Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.closeDone()
}

func (s *Scheduler) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// runSafe calls the task with panic recovery.
// A panicking task is logged with a correlation ID and the full stack trace;
// the loop keeps ticking.
func (s *Scheduler) runSafe(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler_task_panic",
				zap.String("correlation_id", uuid.NewString()),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	s.task(ctx)
}
