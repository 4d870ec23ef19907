package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jpalmerr/pin"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	// start mock server (see mock_server.go)
	go StartMockHealthServer(":9999", logger.Named("mock"))
	time.Sleep(100 * time.Millisecond)

	m, err := pin.New("http://localhost:9999/health",
		pin.WithLogger(logger.Named("pin")),
		pin.WithInterval(2*time.Second),
		pin.WithImmediateCheck(),
	)
	if err != nil {
		logger.Fatal("failed to create monitor", zap.Error(err))
	}

	fmt.Println()
	fmt.Println("  pin demo: checking http://localhost:9999/health every 2s")
	fmt.Println("  the mock cycles ok -> degraded -> down every 10-30s")
	fmt.Println("  press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// "degraded" still answers 200, so the JSON rule is what flags it.
	// Subscribing starts polling.
	m.Text("Awesome").
		MaxDuration(200 * time.Millisecond).
		Register(pin.JSONFieldValidator("status", "ok")).
		Up(func(resp *pin.Response, info pin.Info) {
			fmt.Printf("  UP    %s in %.0fms\n", resp.Status, info.DurationMillis())
		}).
		Down(func(err error, resp *pin.Response, info pin.Info) {
			switch {
			case err != nil:
				fmt.Printf("  DOWN  %v\n", err)
			case resp != nil:
				fmt.Printf("  DOWN  %s in %.0fms\n", resp.Status, info.DurationMillis())
			default:
				fmt.Printf("  DOWN  no response\n")
			}
		})

	if err := m.Err(); err != nil {
		logger.Error("monitor did not start", zap.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	m.Stop()
}
