// Package cli implements the bnbsearch command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Every
// command loads the TOML configuration (see pkg/config), lets flags
// override it, and runs searches through a runner.Runner so results are
// cached and recorded in the run history.
//
// # Commands
//
// The main commands are:
//   - solve: Solve a knapsack instance and print the packing
//   - bench: Compare node orderers on one instance
//   - trace: Render the explored search tree
//   - history: List recorded runs
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Timestamps carry hundredths of a
// second since most searches finish in well under one.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command-level operation such as a solve.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed wall time, e.g. "Solved camping (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// Commands retrieve it with loggerFor.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFor is the logger a command hands to its runner: the one the root
// command attached to ctx, else the CLI's own.
func (c *CLI) loggerFor(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return c.Logger
}
