package logging

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// RunFunc is the signature of a cobra RunE handler.
type RunFunc func(cmd *cobra.Command, args []string) error

// quiet lists commands that are not worth a log line.
var quiet = map[string]bool{
	"version": true,
	"hours":   true,
	"help":    true,
}

// CommandLogger is middleware that logs each run of a command with its
// duration and outcome.
func CommandLogger(next RunFunc) RunFunc {
	return func(cmd *cobra.Command, args []string) error {
		if quiet[cmd.Name()] {
			return next(cmd, args)
		}

		start := time.Now()
		err := next(cmd, args)

		attrs := []any{
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			slog.Debug("command failed", append(attrs, "error", err)...)
			return err
		}
		slog.Debug("command", attrs...)
		return nil
	}
}

// Instrument wraps the RunE of root and every command below it with
// CommandLogger.
func Instrument(root *cobra.Command) {
	if root.RunE != nil {
		root.RunE = CommandLogger(root.RunE)
	}
	for _, c := range root.Commands() {
		Instrument(c)
	}
}
