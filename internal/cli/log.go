// Package cli implements the callout command-line interface.
//
// # Commands
//
//   - place: compute one placement from rectangles given as flags
//   - render: resolve a scene file and write SVG, JSON, PNG or DOT
//   - tui: drive a scene live in the terminal
//   - browse: attach a callout to an element of a web page
//   - serve: run the HTTP API
//   - cache: inspect or clear the local artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command context; see loggerFromContext.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Resolved scene (12ms)".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
