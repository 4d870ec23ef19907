package pin

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// UpFunc observes checks that passed every validator.
//
// resp is the response of the check and info its timing metadata.
type UpFunc func(resp *Response, info Info)

// DownFunc observes checks that failed at least one validator.
//
// err is the transport error reported by the driver, nil when the request
// itself succeeded but a validator rejected it. resp is nil when no response
// was received.
type DownFunc func(err error, resp *Response, info Info)

// emitter holds the two observer lists of a monitor.
//
// Observers are invoked synchronously, in registration order. A panicking
// observer is logged and skipped; the rest still run.
type emitter struct {
	mu     sync.RWMutex
	ups    []UpFunc
	downs  []DownFunc
	logger *zap.Logger
}

func newEmitter(logger *zap.Logger) *emitter {
	return &emitter{logger: logger}
}

func (e *emitter) onUp(fn UpFunc) {
	e.mu.Lock()
	e.ups = append(e.ups, fn)
	e.mu.Unlock()
}

func (e *emitter) onDown(fn DownFunc) {
	e.mu.Lock()
	e.downs = append(e.downs, fn)
	e.mu.Unlock()
}

func (e *emitter) counts() (ups, downs int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.ups), len(e.downs)
}

func (e *emitter) emitUp(resp *Response, info Info) {
	e.mu.RLock()
	ups := e.ups[:len(e.ups):len(e.ups)]
	e.mu.RUnlock()

	for _, fn := range ups {
		e.invokeSafe("up", func() { fn(resp, info) })
	}
}

func (e *emitter) emitDown(err error, resp *Response, info Info) {
	e.mu.RLock()
	downs := e.downs[:len(e.downs):len(e.downs)]
	e.mu.RUnlock()

	for _, fn := range downs {
		e.invokeSafe("down", func() { fn(err, resp, info) })
	}
}

// invokeSafe calls an observer with panic recovery.
// Panics are logged but do not propagate.
func (e *emitter) invokeSafe(event string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("observer_panicked",
				zap.String("event", event),
				zap.String("panic", fmt.Sprintf("%v", r)),
			)
		}
	}()
	call()
}
