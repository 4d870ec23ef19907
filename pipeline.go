package pin

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline is an ordered list of [Validator] values combined with logical AND.
//
// Validators can be appended at any time, including while a monitor is
// polling; each evaluation works on the list as it was when the evaluation
// began. Pipeline is safe for concurrent use.
type Pipeline struct {
	mu         sync.RWMutex
	validators []Validator
	logger     *zap.Logger
}

// NewPipeline creates a [Pipeline] holding the given validators, in order.
// Nil validators are ignored. A nil logger disables panic logging.
func NewPipeline(logger *zap.Logger, validators ...Validator) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{logger: logger}
	p.Register(validators...)
	return p
}

// Register appends validators to the end of the pipeline. Nil validators are
// ignored. Returns the number of validators actually added.
func (p *Pipeline) Register(validators ...Validator) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for _, v := range validators {
		if v == nil {
			continue
		}
		p.validators = append(p.validators, v)
		added++
	}
	return added
}

// Len returns the number of registered validators.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.validators)
}

// Evaluate runs every validator against o and s and reports whether all of
// them passed. Evaluation stops at the first failure. An empty pipeline
// passes.
func (p *Pipeline) Evaluate(o Outcome, s Settings) bool {
	p.mu.RLock()
	validators := p.validators[:len(p.validators):len(p.validators)]
	p.mu.RUnlock()

	for i, v := range validators {
		if !p.runSafe(i, v, o, s) {
			return false
		}
	}
	return true
}

// runSafe calls a validator with panic recovery.
// A panicking validator is logged with a correlation ID and counts as failed.
func (p *Pipeline) runSafe(index int, v Validator, o Outcome, s Settings) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("validator_panic",
				zap.String("correlation_id", uuid.NewString()),
				zap.Int("validator_index", index),
				zap.String("panic", fmt.Sprintf("%v", r)),
				zap.ByteString("stack", debug.Stack()),
			)
			ok = false
		}
	}()
	return v(o, s)
}
