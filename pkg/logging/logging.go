// Package logging configures the process-wide slog logger. Provisioning
// decisions are logged through slog handlers configured here: a colorized
// console handler for interactive use and a JSON handler for captured runs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Default returns the configured logger.
func Default() *slog.Logger {
	return defaultLogger
}

// Configure sets up the default logger with the given format ("console" or
// "json") and level ("debug", "info", "warn", "error").
func Configure(format, level string) error {
	return ConfigureWriter(format, level, os.Stderr)
}

// ConfigureWriter is Configure with an explicit output writer.
func ConfigureWriter(format, level string, w io.Writer) error {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	logLevel, ok := levels[level]
	if !ok {
		return fmt.Errorf("invalid log level %q, must be one of debug, info, warn, error", level)
	}

	var handler slog.Handler
	switch format {
	case "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(logLevel),
			clog.WithColorMap(&clog.ColorMap{
				Level: map[slog.Level]*color.Color{
					slog.LevelDebug: color.New(color.FgGreen, color.Bold),
					slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
					slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
					slog.LevelError: color.New(color.FgRed, color.Bold),
				},
				LevelDefault: color.New(color.FgBlue, color.Bold),
				Time:         color.New(color.FgWhite),
				Message:      color.New(color.FgHiWhite),
				AttrKey:      color.New(color.FgHiCyan),
				AttrValue:    color.New(color.FgHiWhite),
			}),
		)

	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})

	default:
		return fmt.Errorf("invalid log format %q, must be 'console' or 'json'", format)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)

	return nil
}
