package pin

import "time"

// Info carries timing metadata for a single check.
type Info struct {
	// Duration is the elapsed time from issuing the check to receiving the
	// driver's completion callback.
	Duration time.Duration
}

// DurationMillis returns Duration in (fractional) milliseconds.
func (i Info) DurationMillis() float64 {
	return float64(i.Duration) / float64(time.Millisecond)
}

// Outcome is the raw result of one check, as seen by validators.
//
// An Outcome is built fresh for every check and is not retained by the
// monitor once the check has been reported.
type Outcome struct {
	// Err is the transport error reported by the driver, if any.
	Err error

	// Response is nil when no response was received.
	Response *Response

	// Body is the response body as text.
	Body string

	// Info holds timing metadata.
	Info Info
}

// StatusCode returns the response status code, or 0 when there is no response.
func (o Outcome) StatusCode() int {
	if o.Response == nil {
		return 0
	}
	return o.Response.StatusCode
}

// Settings is the snapshot of monitor configuration handed to validators.
//
// A new snapshot is taken for every evaluation, so changes made through the
// fluent setters are visible from the next completed check onwards.
type Settings struct {
	// Text is the fragment the body must contain when HasText is true.
	Text    string
	HasText bool

	// MaxDuration is the upper bound on check duration when HasMaxDuration is true.
	MaxDuration    time.Duration
	HasMaxDuration bool
}
