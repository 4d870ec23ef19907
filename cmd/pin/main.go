// Package main is the entry point for the pin CLI.
//
// pin can be used either as a library (SDK) or as a standalone binary with
// YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	pin watch -c config.yaml       # Monitor the configured URL
//	pin probe https://example.com  # Run a single check
//	pin validate -c config.yaml    # Validate configuration
//	pin version                    # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "pin",
	Short: "A small recurring HTTP availability monitor",
	Long: `pin periodically requests a URL and classifies each response as up or down.

A response is up when the request succeeded, the status is one of
200, 201, 202, 204, 302 or 304, the body contains the configured text
and the response arrived within the configured max duration.

Quick start:
  1. Create a config file (pin.yaml)
  2. Run: pin watch -c pin.yaml

Example config:
  url: https://example.com/health
  interval: 10s
  text: ok
  max_duration: 500ms`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pin binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pin %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
