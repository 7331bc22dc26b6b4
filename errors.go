package zone

import (
	"errors"
	"fmt"
)

// TypeError represents an argument-validation failure, similar to
// JavaScript's TypeError. Used when a value is not of the expected type
// (e.g. a non-function argument to [Zone.Wrap]).
type TypeError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Message == "" {
		return "type error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TypeError) Unwrap() error {
	return e.Cause
}

// RangeError represents a range/argument-validation failure, similar to
// JavaScript's RangeError. Used when a required argument is missing or a
// value falls outside its legal domain (e.g. a nil [ZoneSpec] passed to
// [Zone.Fork]; an empty Name is not an error and defaults to "unnamed").
type RangeError struct {
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Message == "" {
		return "range error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *RangeError) Unwrap() error {
	return e.Cause
}

// WrapError wraps an error with a message and optional cause chain.
//
// The result satisfies errors.Is(result, cause) == true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}

// InvariantCode classifies the kind of invariant violation carried by an
// [InvariantError]. Codes exist for programmatic matching (errors.As plus
// a switch on Code) without parsing Message text.
type InvariantCode int

const (
	// InvariantUnknown is the zero value; never produced by this package.
	InvariantUnknown InvariantCode = iota
	// InvariantIllegalTransition: a Task's state machine was driven through
	// a transition not listed in its legal-transition table (spec §3, §4.C2).
	InvariantIllegalTransition
	// InvariantNegativeTaskCount: a Delegate's per-type task counter would
	// have gone negative (spec §4.C3).
	InvariantNegativeTaskCount
	// InvariantWrongZone: a Task was run or canceled in a zone other than
	// the one that owns it (spec §4.C4 runTask/cancelTask preconditions).
	InvariantWrongZone
	// InvariantRescheduleIntoDescendant: ScheduleTask was called on a zone
	// that is a proper descendant of the task's current owning zone
	// (spec §4.C4 scheduleTask precondition, §8 invariant 5).
	InvariantRescheduleIntoDescendant
	// InvariantMissingScheduleFn: the default scheduleTask action had no
	// ScheduleFn to call and the task was not a microTask (spec §4.C3).
	InvariantMissingScheduleFn
	// InvariantNotCancelable: the default cancelTask action had no CancelFn
	// to call (spec §4.C3).
	InvariantNotCancelable
	// InvariantDuplicatePatch: [LoadPatch] was called twice with the same
	// name (spec §6).
	InvariantDuplicatePatch
	// InvariantDuplicateSingleton: [ConfigureRoot] was called more than
	// once (spec §4.C5 "Singleton enforcement").
	InvariantDuplicateSingleton
	// InvariantNotAFunction: a nil callback where a function is required
	// (spec §4.C4, §7). No function in this package raises it: [Zone.Wrap]
	// reports a nil callback as a returned [TypeError] and does not panic.
	InvariantNotAFunction
	// InvariantNotPatched: [AssertZonePatched] was called before a
	// "ZoneAwarePromise" patch was loaded via [LoadPatch] (spec §6).
	InvariantNotPatched
)

// String returns a short, stable label for the code.
func (c InvariantCode) String() string {
	switch c {
	case InvariantIllegalTransition:
		return "illegal-transition"
	case InvariantNegativeTaskCount:
		return "negative-task-count"
	case InvariantWrongZone:
		return "wrong-zone"
	case InvariantRescheduleIntoDescendant:
		return "reschedule-into-descendant"
	case InvariantMissingScheduleFn:
		return "missing-schedule-fn"
	case InvariantNotCancelable:
		return "not-cancelable"
	case InvariantDuplicatePatch:
		return "duplicate-patch"
	case InvariantDuplicateSingleton:
		return "duplicate-singleton"
	case InvariantNotAFunction:
		return "not-a-function"
	case InvariantNotPatched:
		return "not-patched"
	default:
		return "unknown"
	}
}

// InvariantError represents a fatal, synchronous invariant violation per
// spec §7. These are programmer-misuse conditions (illegal state
// transitions, negative counters, scheduling across an illegal zone
// boundary) rather than recoverable data errors, so the core raises them
// with panic rather than returning them — see DESIGN.md for the rationale.
//
// Use [AsInvariantError] or errors.As to recover one from a recovered
// panic value.
type InvariantError struct {
	Code    InvariantCode
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return e.Message
}

// fatal panics with a freshly constructed [InvariantError]. Centralizing
// construction here keeps the message format consistent across call sites.
func fatal(code InvariantCode, format string, args ...any) {
	panic(&InvariantError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// AsInvariantError reports whether err (or, via errors.As, anything it
// wraps) is an [InvariantError], returning it if so.
func AsInvariantError(err error) (*InvariantError, bool) {
	var ie *InvariantError
	ok := errors.As(err, &ie)
	return ie, ok
}

// asError adapts an arbitrary recovered panic value to the error
// interface, for call sites (logging, onUnhandledError) that need one.
// A Callback may panic with any value, mirroring the host's "throw
// anything" contract (spec §7).
func asError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
