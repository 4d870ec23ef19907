// Package pin provides a lightweight, embeddable availability monitor for a
// single HTTP endpoint.
//
// pin is designed as an SDK-first library: a [Monitor] checks one URL on a
// fixed interval, classifies every check as up or down through a composable
// validator pipeline, and notifies observers. The cmd/pin binary is a thin
// YAML and CLI wrapper around the same API.
//
// # Quick Start
//
// Subscribing an observer starts polling:
//
//	m, _ := pin.New("https://api.example.com/health")
//
//	m.Interval(5 * time.Second).
//	    Text("Awesome").
//	    Up(func(resp *pin.Response, info pin.Info) {
//	        log.Printf("up in %.1fms", info.DurationMillis())
//	    }).
//	    Down(func(err error, resp *pin.Response, info pin.Info) {
//	        log.Printf("down: %v", err)
//	    })
//
// To control the lifecycle explicitly, start with a context and stop when done:
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	<-ctx.Done()
//	m.Stop()
//
// # Configuration
//
// Settings can be passed to [New] as functional options or changed later with
// the chainable setters:
//
//	m, err := pin.New("https://api.example.com/health",
//	    pin.WithInterval(30 * time.Second),
//	    pin.WithHeaders("Authorization", "Bearer token"),
//	    pin.WithMaxDuration(time.Second),
//	    pin.WithValidators(pin.JSONFieldValidator("data.status")),
//	)
//
// Options fail fast with an error. Invalid values passed to the chainable
// setters are collected and reported by [Monitor.Err] and [Monitor.Start].
//
// # Validators
//
// A check is up only when every validator passes. Every monitor starts with
// [BuiltinValidators]:
//
//   - [ErrorValidator]: the driver reported no error
//   - [StatusValidator]: a response exists and its status is in [SuccessCodes]
//   - [TextValidator]: the body contains the configured text, if any
//   - [DurationValidator]: the check finished within the configured maximum, if any
//
// Custom rules are plain functions of type [Validator]; [JSONFieldValidator],
// [RegexValidator], [HeaderValidator], [StatusRangeValidator] and the
// [All], [Any] and [Not] combinators cover common cases.
//
// # Drivers
//
// Requests go through a [Driver]. The default [HTTPDriver] issues GET
// requests asynchronously; [WithDriver] substitutes any implementation,
// which is how tests run without a network.
//
// # Architecture
//
// pin consists of several internal packages (under internal/):
//
//   - internal/poller: HTTP client and the repeating timer behind a monitor
//   - internal/store: Latest-status store with pub/sub for the status API
//   - internal/server: Status API with Server-Sent Events
//   - internal/notify: Up/down notifications to NATS and Slack
//   - internal/logging: zap logger construction with file rotation
//
// The internal packages are not part of the public API and may change
// without notice.
package pin
