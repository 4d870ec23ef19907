package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpalmerr/pin"
	"github.com/jpalmerr/pin/config"
	"github.com/jpalmerr/pin/internal/logging"
	"github.com/jpalmerr/pin/internal/metrics"
	"github.com/jpalmerr/pin/internal/notify"
	"github.com/jpalmerr/pin/internal/server"
	"github.com/jpalmerr/pin/internal/store"
)

// watchCmd runs the monitor until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the configured URL",
	Long: `Monitor the URL from a pin configuration file.

The command will:
  - Load configuration from the specified YAML file
  - Check the URL on every interval and log each up/down result
  - Serve the latest status on the configured port, if any
  - Forward results to the configured notifiers

It runs until interrupted (Ctrl+C) or it receives SIGTERM.

Example:
  pin watch -c pin.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Dir:    cfg.Log.Dir,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cfg, logger)
}

// watch wires the monitor to the store, status API and notifiers and blocks
// until ctx is cancelled.
func watch(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	m, err := config.BuildMonitor(cfg, pin.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create monitor: %w", err)
	}

	notifier, closeNotifier, err := buildNotifier(cfg.Notify, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	st := store.NewMemoryStore()
	collector := metrics.New(m.URL())
	if cfg.Server.Port != 0 {
		srv := server.NewServer(st, cfg.Server.Port, logger)
		srv.Mount("/metrics", collector.Handler())
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start status API: %w", err)
		}
	}

	s := newSink(m.URL(), st, notifier, logger.With(zap.String("url", m.URL())))
	s.metrics = collector
	defer s.close()

	logger.Info("watch_started",
		zap.String("url", m.URL()),
		zap.Duration("interval", cfg.Interval.Duration()),
	)

	// subscribing starts polling
	m.Up(s.up).Down(s.down)
	defer m.Stop()

	if m.State() != pin.StateRunning {
		if err := m.Err(); err != nil {
			return fmt.Errorf("monitor did not start: %w", err)
		}
		return errors.New("monitor did not start")
	}

	<-ctx.Done()
	logger.Info("shutdown_requested")
	return nil
}

// buildNotifier assembles the configured notifiers. The returned close
// function releases their connections and is never nil.
func buildNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notify.Notifier, func(), error) {
	var multi notify.Multi
	closers := []func(){}

	if cfg.NATS != nil {
		nc, err := connectNATS(cfg.NATS.URL, logger)
		if err != nil {
			return nil, func() {}, err
		}
		closers = append(closers, func() {
			if err := nc.FlushTimeout(2 * time.Second); err != nil {
				logger.Warn("nats_flush_failed", zap.Error(err))
			}
			nc.Close()
		})
		multi = append(multi, notify.NewNATS(nc, cfg.NATS.Prefix))
	}
	if cfg.Slack != nil {
		multi = append(multi, notify.NewSlack(cfg.Slack.Webhook))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(multi) == 0 {
		return nil, closeAll, nil
	}
	var n notify.Notifier = multi
	if cfg.TransitionsOnly {
		n = notify.NewTransitions(n)
	}
	return n, closeAll, nil
}

func connectNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("pin"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats_disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats_reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}
