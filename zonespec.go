package zone

// Callback is the shape every user-supplied unit of work takes when it
// crosses the zone boundary: an apply-style invocation carrying its own
// `this` receiver and positional arguments, mirroring the JavaScript
// `Function.prototype.apply(this, args)` convention the delegate hooks are
// modeled on (spec §3, §4.C3). A Callback panics to signal a user-code
// error; it never returns one, so it composes uniformly with [Zone.Run],
// [Zone.RunGuarded] and [Zone.RunTask] regardless of whether the callback
// in question is a plain closure or a task's own body.
type Callback func(this any, args []any) any

// ForkHook intercepts Zone.Fork. parent is the delegate of the zone whose
// ZoneSpec defines this hook; current is that zone; target is the zone the
// caller actually invoked Fork on (spec §4.C3).
type ForkHook func(parent *Delegate, current, target *Zone, spec *ZoneSpec) *Zone

// InterceptHook intercepts Zone.Wrap, given the chance to replace the
// callback entirely before it is ever invoked.
type InterceptHook func(parent *Delegate, current, target *Zone, cb Callback, source string) Callback

// InvokeHook intercepts every Zone.Run / Zone.RunGuarded call.
type InvokeHook func(parent *Delegate, current, target *Zone, cb Callback, this any, args []any, source string) any

// HandleErrorHook intercepts error propagation out of RunGuarded/RunTask
// and out of Schedule/CancelTask (Run installs no recover, so its errors
// never reach this hook). err is the recovered panic value exactly as
// caught — not necessarily an error, matching the host's "throw anything"
// contract. Returning true rethrows (or, for schedule/cancel, this return
// value is ignored and the error always rethrows — spec §7); returning
// false from RunGuarded/RunTask suppresses it.
type HandleErrorHook func(parent *Delegate, current, target *Zone, err any) bool

// ScheduleTaskHook intercepts Zone.ScheduleTask. It must return a *Task —
// ordinarily task itself, unmodified, but a hook may substitute a different
// task object (spec §4.C4 step 4's "same object" check exists precisely
// because of this allowance).
type ScheduleTaskHook func(parent *Delegate, current, target *Zone, task *Task) *Task

// InvokeTaskHook intercepts Zone.RunTask's dispatch of the task body.
type InvokeTaskHook func(parent *Delegate, current, target *Zone, task *Task, this any, args []any) any

// CancelTaskHook intercepts Zone.CancelTask.
type CancelTaskHook func(parent *Delegate, current, target *Zone, task *Task) any

// HasTaskHook is notified whenever a Delegate's per-type task counter
// crosses the 0↔1 boundary anywhere in its subtree (spec §4.C3). counts is
// the full snapshot of all three counters at the owning delegate plus
// Change, the task type that actually crossed the boundary and triggered
// this call.
type HasTaskHook func(parent *Delegate, current, target *Zone, counts TaskCounts)

// ZoneSpec is the user-supplied, immutable configuration consumed once
// during delegate construction (spec §3). None of its fields are ever
// mutated by the core after [Zone.Fork] returns; a nil hook field means
// "this zone does not participate in that hook" and causes delegate
// construction to fall through to the nearest ancestor that does (or to
// the built-in default action, if none do).
type ZoneSpec struct {
	// Name identifies the zone for diagnostics and logging. Zones
	// constructed with an empty Name are logged and reported as "unnamed".
	Name string
	// Properties seeds the zone's property map, consulted by [Zone.Get] and
	// [Zone.GetZoneWith]. May be nil.
	Properties map[string]any

	OnFork        ForkHook
	OnIntercept   InterceptHook
	OnInvoke      InvokeHook
	OnHandleError HandleErrorHook

	OnScheduleTask ScheduleTaskHook
	OnInvokeTask   InvokeTaskHook
	OnCancelTask   CancelTaskHook
	OnHasTask      HasTaskHook
}
