// Package obslog provides the run's structured event log, following the
// teacher's dual-logger pattern (apps/rtcmlogger/main.go's eventLogger):
// a daily-rotated file written with log/slog, falling back to stderr when
// no log directory is configured.
package obslog

import (
	"log/slog"
	"os"

	"github.com/goblimey/go-tools/dailylogger"
)

// Logger wraps a *slog.Logger and a run identifier that is attached to
// every log line, the way the teacher's rtcmlogger tags lines with a
// datestamped file name.
type Logger struct {
	*slog.Logger
	RunID string
}

// New creates a Logger. If dir is empty, events go to stderr; otherwise a
// daily-rotated file named prefix.<date>.log is used.
func New(dir, prefix, runID string) *Logger {
	var handler slog.Handler
	if dir == "" {
		handler = slog.NewTextHandler(os.Stderr, nil)
	} else {
		rotating := dailylogger.New(dir, prefix, ".log")
		handler = slog.NewTextHandler(rotating, nil)
	}
	base := slog.New(handler).With("run_id", runID)
	return &Logger{Logger: base, RunID: runID}
}

// OrbitalDataMissing logs a disabled-system event; non-fatal per spec.md §7.
func (l *Logger) OrbitalDataMissing(system string) {
	l.Warn("orbital data missing, disabling system", "system", system)
}

// UnsupportedSignal logs a disabled-signal event; non-fatal per spec.md §7.
func (l *Logger) UnsupportedSignal(system, signal string) {
	l.Warn("unsupported signal, disabling", "system", system, "signal", signal)
}

// MalformedFrame logs a frame-generation failure; the channel zero-fills
// instead of aborting, per spec.md §7.
func (l *Logger) MalformedFrame(svid int, reason string) {
	l.Warn("malformed frame, zero-filling", "svid", svid, "reason", reason)
}
