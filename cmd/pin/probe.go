package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpalmerr/pin"
)

// errTargetDown makes the process exit non-zero when a probe fails.
var errTargetDown = errors.New("target is down")

// probeCmd runs a single check against a URL.
var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Check a URL once",
	Long: `Check a URL once with the same rules the monitor applies on every tick.

Exit codes:
  0 - The URL is up
  1 - The URL is down or the arguments are invalid

Example:
  pin probe https://example.com --text Awesome --max-duration 500ms`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().String("text", "", "text the response body must contain")
	probeCmd.Flags().Duration("max-duration", 0, "slowest acceptable response (0 disables)")
	probeCmd.Flags().Duration("timeout", pin.DefaultTimeout, "request timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	maxDuration, _ := cmd.Flags().GetDuration("max-duration")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	opts := []pin.Option{
		pin.WithTimeout(timeout),
		pin.WithMaxDuration(maxDuration),
		pin.WithLogger(zap.NewNop()),
	}
	if text != "" {
		opts = append(opts, pin.WithText(text))
	}

	m, err := pin.New(args[0], opts...)
	if err != nil {
		return err
	}
	defer m.Stop()

	// the driver timeout bounds the request; the extra second covers evaluation
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout+time.Second)
	defer cancel()

	res := m.Probe(ctx)
	printResult(cmd.OutOrStdout(), m.URL(), res)
	if !res.Up {
		return errTargetDown
	}
	return nil
}

var (
	upLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	downLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

// printResult writes a short report. Colors are dropped automatically when
// stdout is not a terminal.
func printResult(w io.Writer, url string, res pin.Result) {
	verdict := downLabel("DOWN")
	if res.Up {
		verdict = upLabel("UP")
	}
	fmt.Fprintf(w, "%s %s\n", verdict, url)
	if res.Response != nil {
		fmt.Fprintf(w, "  status:   %s\n", res.Response.Status)
	}
	fmt.Fprintf(w, "  duration: %.1fms\n", res.Info.DurationMillis())
	if res.Err != nil {
		fmt.Fprintf(w, "  error:    %v\n", res.Err)
	}
}
