package pin

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the time between checks when no interval is configured.
const DefaultInterval = 15 * time.Second

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	driver      Driver
	logger      *zap.Logger
	interval    time.Duration
	timeout     time.Duration
	text        string
	maxDuration time.Duration
	headers     map[string]string
	validators  []Validator
	immediate   bool
	skipOverlap bool
}

// Option is a function that configures a [Monitor] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithDriver replaces the default [HTTPDriver] with a custom [Driver].
//
// This is the dependency injection seam for tests and for non-HTTP
// transports.
//
// Example:
//
//	m, err := pin.New("http://example.com",
//	    pin.WithDriver(pin.DriverFunc(func(ctx context.Context, req pin.Request, done pin.Callback) {
//	        done(nil, &pin.Response{StatusCode: 200}, "ok")
//	    })),
//	)
//
// Returns an error if the driver is nil.
func WithDriver(d Driver) Option {
	return func(cfg *monitorConfig) error {
		if d == nil {
			return ErrNilDriver
		}
		cfg.driver = d
		return nil
	}
}

// WithLogger sets a custom [zap.Logger] for the monitor.
//
// If not specified, logging is disabled ([zap.NewNop]).
//
// Returns an error if the logger is nil.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithInterval sets how often the target is checked.
// Defaults to [DefaultInterval] if not specified.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("%w, got %v", ErrInvalidInterval, d)
		}
		cfg.interval = d
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default [HTTPDriver].
// Defaults to [DefaultTimeout]. Has no effect when [WithDriver] is used.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return fmt.Errorf("%w, got %v", ErrInvalidTimeout, d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithText requires the response body to contain text (case-sensitive).
// An empty string disables the check.
func WithText(text string) Option {
	return func(cfg *monitorConfig) error {
		cfg.text = text
		return nil
	}
}

// WithMaxDuration fails checks that take longer than d.
// Zero disables the check.
//
// Returns an error if the duration is negative.
func WithMaxDuration(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return fmt.Errorf("%w, got %v", ErrInvalidMaxDuration, d)
		}
		cfg.maxDuration = d
		return nil
	}
}

// WithHeaders adds custom HTTP headers to every check request.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	m, err := pin.New(url,
//	    pin.WithHeaders("Authorization", "Bearer token123"),
//	)
//
// Returns an error if an odd number of arguments is provided or a key is empty.
func WithHeaders(keyValues ...string) Option {
	return func(cfg *monitorConfig) error {
		if len(keyValues)%2 != 0 {
			return fmt.Errorf("%w: WithHeaders requires an even number of arguments (key-value pairs)", ErrInvalidHeader)
		}
		for i := 0; i < len(keyValues); i += 2 {
			if keyValues[i] == "" {
				return fmt.Errorf("%w: header name cannot be empty", ErrInvalidHeader)
			}
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithValidators appends custom validators after the built-in ones.
// Nil validators are ignored.
func WithValidators(validators ...Validator) Option {
	return func(cfg *monitorConfig) error {
		cfg.validators = append(cfg.validators, validators...)
		return nil
	}
}

// WithImmediateCheck runs the first check as soon as the monitor starts
// instead of waiting one full interval.
func WithImmediateCheck() Option {
	return func(cfg *monitorConfig) error {
		cfg.immediate = true
		return nil
	}
}

// WithSkipOverlap skips a tick while the previous check is still in flight.
//
// By default ticks are not serialized: a slow target can have several
// checks outstanding, and their results are reported in completion order.
func WithSkipOverlap() Option {
	return func(cfg *monitorConfig) error {
		cfg.skipOverlap = true
		return nil
	}
}
