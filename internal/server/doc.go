// Package server provides the optional status API served by `pin watch`.
//
// The server handles:
//
//   - Liveness: "/healthz" for the pin process itself
//   - REST API: JSON endpoint at "/api/status" for the latest check snapshot
//   - Server-Sent Events: Real-time check results at "/api/sse"
//
// Routing uses chi with permissive CORS so browser dashboards on other
// origins can consume the API. The server supports graceful shutdown via
// context cancellation, with a 5-second timeout for in-flight requests.
package server
