package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pin/config"
)

// validateCmd validates a config file without starting the monitor.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a pin configuration file without starting the monitor.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  pin validate -c pin.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	// validators that parse can still fail to build, e.g. a bad regex
	if _, err := config.BuildOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  URL:          %s\n", cfg.URL)
	fmt.Fprintf(out, "  Interval:     %s\n", cfg.Interval.Duration())
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.Timeout.Duration())
	fmt.Fprintf(out, "  Validators:   4 built-in + %d custom\n", len(cfg.Validators))
	if cfg.Server.Port != 0 {
		fmt.Fprintf(out, "  Status API:   :%d\n", cfg.Server.Port)
	}
	fmt.Fprintf(out, "  Notifiers:    %d\n", countNotifiers(cfg.Notify))

	return nil
}

func countNotifiers(n config.NotifyConfig) int {
	count := 0
	if n.NATS != nil {
		count++
	}
	if n.Slack != nil {
		count++
	}
	return count
}
