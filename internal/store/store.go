package store

import "time"

// Check status values stored in [Record.Status].
const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Record represents the result of one check in storage.
//
// Record is optimized for JSON serialization (used by the REST API and SSE).
// It is decoupled from the pin package types to allow independent evolution.
type Record struct {
	// Target is the monitored URL.
	Target string `json:"target"`

	// Status is "up" or "down".
	Status string `json:"status"`

	// StatusCode is the HTTP status code, 0 when no response was received.
	StatusCode int `json:"status_code"`

	// DurationMs is the check duration in milliseconds.
	DurationMs float64 `json:"duration_ms"`

	// CheckedAt is the time the check completed.
	CheckedAt time.Time `json:"checked_at"`

	// Error contains the transport error message, if any.
	// nil indicates no error (though status may still be "down").
	Error *string `json:"error"`
}

// Snapshot is the current state of the store.
type Snapshot struct {
	// Latest is the most recent record.
	Latest Record `json:"latest"`

	// StatusSince is when Latest.Status was first observed in the current run
	// of identical statuses.
	StatusSince time.Time `json:"status_since"`

	Checks int64 `json:"checks"`
	Ups    int64 `json:"ups"`
	Downs  int64 `json:"downs"`
}

// Store defines the interface for storing and subscribing to check results.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update stores a new record, updates the counters and notifies all
	// subscribers.
	Update(record Record)

	// Latest returns the current snapshot. ok is false until the first Update.
	Latest() (snapshot Snapshot, ok bool)

	// Subscribe returns a channel that receives records.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Record

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Record)
}
