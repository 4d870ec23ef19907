// Standalone mock server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/pin watch -c example/pin.yaml
package main

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	fmt.Println("Mock health server starting on :9999")
	fmt.Println("GET /health flips between 200 and 503 every 20 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var down atomic.Bool
	go func() {
		for range time.Tick(20 * time.Second) {
			now := !down.Load()
			down.Store(now)
			logger.Info("status_change", zap.Bool("down", now))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","message":"Awesome"}`))
	})

	if err := http.ListenAndServe(":9999", mux); err != nil {
		logger.Error("server_error", zap.Error(err))
		os.Exit(1)
	}
}
