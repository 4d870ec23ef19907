package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// mockStatuses is the cycle the mock target walks through.
var mockStatuses = []struct {
	name string
	code int
}{
	{"ok", http.StatusOK},
	{"degraded", http.StatusOK},
	{"down", http.StatusServiceUnavailable},
}

// mockTarget is a health endpoint whose status changes every 10-30 seconds.
type mockTarget struct {
	logger *zap.Logger

	mu           sync.Mutex
	idx          int
	nextChangeAt time.Time
}

func newMockTarget(logger *zap.Logger) *mockTarget {
	return &mockTarget{
		logger:       logger,
		nextChangeAt: time.Now().Add(nextDelay()),
	}
}

func nextDelay() time.Duration {
	return time.Duration(10+rand.Intn(21)) * time.Second
}

func (m *mockTarget) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// simulate small latency variance
	time.Sleep(time.Duration(20+rand.Intn(100)) * time.Millisecond)

	m.mu.Lock()
	if time.Now().After(m.nextChangeAt) {
		from := mockStatuses[m.idx].name
		m.idx = (m.idx + 1) % len(mockStatuses)
		m.nextChangeAt = time.Now().Add(nextDelay())
		m.logger.Info("mock_status_change", zap.String("from", from), zap.String("to", mockStatuses[m.idx].name))
	}
	status := mockStatuses[m.idx]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status.code)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  status.name,
		"message": "Awesome",
	}); err != nil {
		m.logger.Error("mock_write_failed", zap.Error(err))
	}
}

// StartMockHealthServer serves the mock target on addr until the process exits.
func StartMockHealthServer(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/health", newMockTarget(logger))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("mock_server_error", zap.Error(err))
	}
}
