package pin

import (
	"context"
	"net/http"
	"time"

	"github.com/jpalmerr/pin/internal/poller"
)

// DefaultTimeout is the per-request timeout used by [HTTPDriver] when no
// timeout is configured via [WithTimeout].
const DefaultTimeout = 10 * time.Second

// Request describes the request a [Driver] should issue for one check.
//
// A fresh Request is built for every check, so a Driver may keep or mutate
// the value it receives without affecting later checks.
type Request struct {
	// URL is the target URL of the monitor.
	URL string

	// Header contains custom HTTP headers to send with the request.
	Header map[string]string
}

// Clone returns a copy of the request that shares no mutable state with r.
func (r Request) Clone() Request {
	return Request{
		URL:    r.URL,
		Header: copyMap(r.Header),
	}
}

// Response is the response-shaped value a [Driver] hands back to the monitor.
//
// A nil *Response means no usable response was obtained; the built-in
// [StatusValidator] treats that as a failure.
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	StatusCode int

	// Status is the status line text, e.g. "200 OK". May be empty for
	// drivers that only know the code.
	Status string

	// Header holds the response headers. May be nil.
	Header http.Header
}

// Callback receives the result of a single [Driver.Get] call.
//
// err is non-nil when the request failed. resp is nil when no response was
// received at all, and may be non-nil alongside err when a response arrived
// but its body could not be read. body is the response body as text.
type Callback func(err error, resp *Response, body string)

// Driver is the pluggable transport behind a [Monitor].
//
// Get issues the request described by req and must invoke done exactly once,
// either synchronously or from another goroutine. Implementations should
// abandon the request when ctx is cancelled and still call done with the
// resulting error.
//
// The monitor never inspects a Driver beyond calling Get, which makes it the
// seam for substituting fakes in tests:
//
//	fake := pin.DriverFunc(func(ctx context.Context, req pin.Request, done pin.Callback) {
//	    done(nil, &pin.Response{StatusCode: 200}, "Awesome")
//	})
//	m, err := pin.New("http://example.com", pin.WithDriver(fake))
type Driver interface {
	Get(ctx context.Context, req Request, done Callback)
}

// DriverFunc adapts an ordinary function to the [Driver] interface.
type DriverFunc func(ctx context.Context, req Request, done Callback)

// Get calls f(ctx, req, done).
func (f DriverFunc) Get(ctx context.Context, req Request, done Callback) {
	f(ctx, req, done)
}

// HTTPDriver is the default [Driver]. It issues GET requests over a pooled
// HTTP transport and reports back asynchronously.
//
// Response bodies are limited to 1MB. The per-request timeout is applied via
// context, so cancelling the context passed to Get aborts the request.
type HTTPDriver struct {
	client  *poller.Client
	timeout time.Duration
}

// NewHTTPDriver creates an [HTTPDriver] with the given per-request timeout.
// A timeout of zero or less falls back to [DefaultTimeout].
func NewHTTPDriver(timeout time.Duration) *HTTPDriver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPDriver{
		client:  poller.NewClient(),
		timeout: timeout,
	}
}

// Timeout returns the per-request timeout.
func (d *HTTPDriver) Timeout() time.Duration {
	return d.timeout
}

// Get issues the request on a new goroutine and invokes done with the result.
func (d *HTTPDriver) Get(ctx context.Context, req Request, done Callback) {
	go func() {
		r := d.client.Fetch(ctx, http.MethodGet, req.URL, req.Header, d.timeout)

		var resp *Response
		if r.StatusCode != 0 {
			resp = &Response{
				StatusCode: r.StatusCode,
				Status:     r.Status,
				Header:     r.Header,
			}
		}
		done(r.Error, resp, string(r.Body))
	}()
}

// Close releases idle connections held by the driver.
// The driver remains usable afterwards.
func (d *HTTPDriver) Close() {
	if d == nil {
		return
	}
	d.client.Close()
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
