package zone

import "time"

// TaskType distinguishes the three kinds of deferred work a [Task] can
// represent (spec §3).
type TaskType int

const (
	// MicroTask is drained in FIFO order on the trailing edge of the
	// outermost task invocation, ahead of any further host I/O (spec §5).
	MicroTask TaskType = iota
	// MacroTask is host-scheduled work with an explicit ScheduleFn/CancelFn
	// (a timer, an I/O completion) that may be periodic.
	MacroTask
	// EventTask is host-scheduled, typically-periodic work bound to a
	// listener registration (e.g. an event-target callback) rather than a
	// single firing.
	EventTask
)

// String returns a human-readable representation of the task type.
func (t TaskType) String() string {
	switch t {
	case MicroTask:
		return "microTask"
	case MacroTask:
		return "macroTask"
	case EventTask:
		return "eventTask"
	default:
		return "unknown"
	}
}

// TaskCounts is the snapshot of a [Delegate]'s three per-type task counters
// passed to [HasTaskHook], expressed as "is the count for this type
// nonzero" rather than the raw counter value, plus Change, the task type
// whose counter just crossed the 0<->1 boundary and triggered this
// notification (spec §4.C3's "full {microTask, macroTask, eventTask,
// change: type} snapshot").
type TaskCounts struct {
	MicroTask bool
	MacroTask bool
	EventTask bool
	Change    TaskType
}

// TaskData carries the scheduling metadata a [ScheduleTaskHook] or a
// ScheduleFn/CancelFn pair may need: whether the task recurs, its delay,
// and an opaque host handle (e.g. a timer ID) for CancelFn to act on.
type TaskData struct {
	// Periodic marks a macroTask that reschedules itself (returns to
	// scheduled, not notScheduled, after each run) rather than completing
	// after a single invocation. An eventTask returns to scheduled after
	// each run whether or not Periodic is set.
	Periodic bool
	// Delay is the requested delay/interval, meaningful for macroTasks
	// backed by a timer.
	Delay time.Duration
	// Handle is an opaque host-assigned identifier (a timer ID, a listener
	// token) that ScheduleFn stashes and CancelFn consumes.
	Handle any
}

// TaskHookFn is the shape of a [Task]'s ScheduleFn and CancelFn: the
// caller-supplied glue that actually asks the host to schedule or cancel
// the underlying work. A CancelFn's return value becomes the result of
// [Zone.CancelTask]'s default action; a ScheduleFn's return value is
// discarded, and the default scheduleTask action returns the task itself.
type TaskHookFn func(task *Task) any

// Task is the first-class handle for a single unit of deferred work (spec
// §3, §4.C2). A Task is created unbound (Zone is nil) and becomes bound to
// exactly one owning zone the first time it is passed to [Zone.ScheduleTask].
type Task struct {
	// Type is fixed at construction; never changes over the task's life.
	Type TaskType
	// Source is a short, human-readable label (e.g. "setTimeout",
	// "promise.then") used in diagnostics and logging.
	Source string
	// Callback is the task's body, invoked by the default invokeTask
	// action (or replaced/wrapped entirely by an OnInvokeTask hook).
	Callback Callback
	// Data carries scheduling metadata; may be nil for a plain microTask.
	Data *TaskData
	// ScheduleFn is called by the default scheduleTask action whenever it
	// is set, whatever the task type; required for macroTasks and
	// eventTasks. A microTask without one is enqueued directly onto the
	// microtask queue instead.
	ScheduleFn TaskHookFn
	// CancelFn is called by the default cancelTask action; a nil CancelFn
	// makes the task uncancelable via the default action (spec §4.C3).
	CancelFn TaskHookFn
	// RunCount is the number of times this task's body has run since it
	// was last (re)scheduled; reset to zero when it returns to
	// notScheduled.
	RunCount int

	state TaskState
	zone  *Zone

	// zoneDelegates is the list of delegates whose per-type counters this
	// task currently contributes to — populated only while task-count
	// forwarding is forced somewhere along the owning zone's ancestor
	// chain (spec §4.C3's hasTask amplification). Empty when nobody in
	// that chain has registered OnHasTask.
	zoneDelegates []*Delegate

	// invokeShared marks that this Task was constructed with the
	// "shared static entry point" calling convention (spec §9's
	// useG / Data.Periodic eventTask discussion): such tasks are expected
	// to be invoked via the package-level [InvokeTask] directly rather
	// than through a per-task closure, to avoid an allocation per
	// scheduled listener. It carries no behavioral difference here — Go
	// method values always close over their receiver — but the flag is
	// preserved so both invocation conventions used by the examples this
	// core was modeled on remain representable and testable.
	invokeShared bool
}

// NewTask constructs a [Task] in its initial notScheduled state, unbound to
// any zone. useSharedEntryPoint selects between the two invocation
// conventions described on the invokeShared field; ordinary callers should
// pass false.
func NewTask(typ TaskType, source string, callback Callback, data *TaskData, scheduleFn, cancelFn TaskHookFn, useSharedEntryPoint bool) *Task {
	return &Task{
		Type:         typ,
		Source:       source,
		Callback:     callback,
		Data:         data,
		ScheduleFn:   scheduleFn,
		CancelFn:     cancelFn,
		state:        NotScheduled,
		invokeShared: useSharedEntryPoint,
	}
}

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState { return t.state }

// Zone returns the zone this task is bound to, or nil if it has never been
// scheduled.
func (t *Task) Zone() *Zone { return t.zone }

// Periodic reports whether Data marks this task as periodic. For a
// macroTask this decides whether it returns to scheduled after each run;
// an eventTask does so regardless.
func (t *Task) Periodic() bool { return t.Data != nil && t.Data.Periodic }

// Invoke is the thunk the host calls to run this task's body. For tasks
// constructed with useSharedEntryPoint it is equivalent to calling
// [InvokeTask](t, this, args) directly — callers that already hold a *Task
// are encouraged to do exactly that instead of going through Invoke.
func (t *Task) Invoke(this any, args []any) any {
	return InvokeTask(t, this, args)
}

// cancelScheduleRequest moves a task that is still in the scheduling state
// back to notScheduled (the `scheduling -> notScheduled` edge of spec
// §4.C2); any other current state is a fatal illegal transition.
// Zone.ScheduleTask never calls it: a hook that panics mid-schedule leaves
// the task in unknown instead.
func (t *Task) cancelScheduleRequest() {
	t.transitionTo(NotScheduled, Scheduling, -1)
}

// InvokeTask is the static, zone-independent entry point a host uses to
// run a task (spec §4.C2): it maintains the nested-task-frame counter and
// triggers a microtask-queue drain on the trailing edge of the outermost
// frame, then delegates the actual invocation to the owning zone's
// [Zone.RunTask].
func InvokeTask(task *Task, this any, args []any) any {
	nestedTaskFrameCount++
	defer func() {
		if nestedTaskFrameCount == 1 {
			drainMicroTaskQueue()
		}
		nestedTaskFrameCount--
	}()
	return task.zone.RunTask(task, this, args)
}
