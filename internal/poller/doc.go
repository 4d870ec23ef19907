// Package poller provides the transport and timing primitives behind a pin
// monitor.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeouts and size limits
//   - [Scheduler]: Runs a single task on a fixed interval until stopped
//   - [Response]: Result of one HTTP request, including partial responses
//
// Users of the pin library should not need to interact with this package
// directly. Configuration is done through the main pin package.
package poller
