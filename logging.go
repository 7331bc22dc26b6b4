// logging.go - structured logging for the zone package.
//
// Package-level configuration, mirroring the teacher's approach of a single
// global logging sink shared by every zone in the process (lifecycle
// events are inherently cross-cutting and have no natural per-zone
// destination). Backed by github.com/joeycumines/logiface, a zero-cost
// structured logging library from the same example pack, with
// github.com/joeycumines/stumpy as the default writer — see DESIGN.md for
// why this replaces the teacher's hand-rolled Logger interface.
package zone

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logging interface used for zone lifecycle
// events: fork, task schedule/run/cancel, hasTask counter transitions, and
// microtask-drain errors. Satisfied by [LogifaceLogger] wrapping either the
// default stumpy-backed logger or any other logiface Logger.
type Logger interface {
	// Debug logs a low-level lifecycle trace (fork, schedule, run, cancel).
	Debug(category, message string, fields map[string]any)
	// Info logs a notable lifecycle signal (hasTask 0<->1 transitions).
	Info(category, message string, fields map[string]any)
	// Warn logs a recoverable anomaly (duplicate patch name rejected).
	Warn(category, message string, fields map[string]any)
	// Error logs an error routed through onUnhandledError.
	Error(category, message string, err error, fields map[string]any)
}

// LogifaceLogger adapts a github.com/joeycumines/logiface Logger of any
// Event type to the [Logger] interface used internally by this package.
type LogifaceLogger[E logiface.Event] struct {
	L *logiface.Logger[E]
}

func (l LogifaceLogger[E]) build(b *logiface.Builder[E], category string, fields map[string]any) *logiface.Builder[E] {
	b = b.Str("category", category)
	for k, v := range fields {
		b = b.Any(k, v)
	}
	return b
}

// Debug implements [Logger].
func (l LogifaceLogger[E]) Debug(category, message string, fields map[string]any) {
	l.build(l.L.Debug(), category, fields).Log(message)
}

// Info implements [Logger].
func (l LogifaceLogger[E]) Info(category, message string, fields map[string]any) {
	l.build(l.L.Info(), category, fields).Log(message)
}

// Warn implements [Logger].
func (l LogifaceLogger[E]) Warn(category, message string, fields map[string]any) {
	l.build(l.L.Notice(), category, fields).Log(message)
}

// Error implements [Logger].
func (l LogifaceLogger[E]) Error(category, message string, err error, fields map[string]any) {
	l.build(l.L.Err().Err(err), category, fields).Log(message)
}

// NewStumpyLogger builds the package's default [Logger]: logiface backed
// by stumpy's compact JSON writer.
func NewStumpyLogger(opts ...stumpy.Option) Logger {
	return LogifaceLogger[*stumpy.Event]{
		L: stumpy.L.New(append([]logiface.Option[*stumpy.Event]{stumpy.L.WithStumpy()}, opts...)...),
	}
}

// noopLogger discards every event; it is the default until [WithLogger] is
// used, keeping the core's logging overhead at zero for callers who never
// opt in.
type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]any)        {}
func (noopLogger) Info(string, string, map[string]any)         {}
func (noopLogger) Warn(string, string, map[string]any)         {}
func (noopLogger) Error(string, string, error, map[string]any) {}

var (
	globalLoggerMu sync.RWMutex
	globalLogger   Logger = noopLogger{}
)

// SetLogger installs the process-wide [Logger] used by every zone. Safe to
// call at any point; takes effect for subsequent log calls only.
func SetLogger(logger Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	globalLogger = logger
}

func currentLogger() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func logTaskTransition(t *Task, from, to TaskState) {
	zoneName := "<unbound>"
	if t.zone != nil {
		zoneName = t.zone.name
	}
	currentLogger().Debug("task", "state transition", map[string]any{
		"type":   t.Type.String(),
		"source": t.Source,
		"zone":   zoneName,
		"from":   from.String(),
		"to":     to.String(),
	})
}

func logHasTask(z *Zone, counts TaskCounts) {
	currentLogger().Info("hasTask", "task-set emptiness changed", map[string]any{
		"zone":      z.name,
		"microTask": counts.MicroTask,
		"macroTask": counts.MacroTask,
		"eventTask": counts.EventTask,
		"change":    counts.Change.String(),
	})
}

func logUnhandledError(task *Task, err error) {
	currentLogger().Error("microtask", "unhandled error during drain", err, map[string]any{
		"source": task.Source,
	})
}
