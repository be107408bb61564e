// Package logging configures the process-wide logger. The CLI logs to
// stderr so command output on stdout stays parseable; --verbose raises
// the level to debug, which includes API request/response lines.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logging configuration.
type Config struct {
	Verbose bool
	Output  io.Writer
}

// Setup configures and installs the global logger.
func Setup(cfg Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSecrets,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// redactSecrets keeps tokens out of verbose output no matter what gets
// logged.
func redactSecrets(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case "authorization", "token", "secret_key":
		return slog.String(a.Key, "<redacted>")
	}
	return a
}
