package zone

// TaskState represents the current state of a [Task] in its lifecycle.
//
// State Machine (spec §3):
//
//	notScheduled → scheduling → scheduled → running → scheduled   (periodic macro / event)
//	                                              ↘ notScheduled  (one-shot)
//	scheduled|running → canceling → notScheduled
//	any scheduling-or-canceling error → unknown (terminal-for-this-attempt)
//
// Unlike the teacher's lock-free [LoopState]/[FastState] (a single-writer,
// multi-reader state owned by a concurrent event loop), TaskState is plain
// process-wide, single-threaded state: the zone core never runs two tasks
// concurrently (spec §5), so transitions are validated synchronously and an
// illegal one is a fatal, unconditional panic rather than a CAS failure.
type TaskState int

const (
	// NotScheduled is a task's initial state, and the state a completed
	// one-shot task or a successfully canceled task returns to.
	NotScheduled TaskState = iota
	// Scheduling is entered the instant Zone.ScheduleTask begins; it is a
	// transient state present only for the duration of the onScheduleTask
	// hook dispatch.
	Scheduling
	// Scheduled means the task is queued with the host (or the microtask
	// queue) and has not yet started running.
	Scheduled
	// Running means the task's callback is currently executing.
	Running
	// Canceling is entered the instant Zone.CancelTask begins; transient,
	// present only for the duration of the onCancelTask hook dispatch.
	Canceling
	// Unknown is a terminal-for-this-attempt state reached when a
	// scheduling or canceling hook errors; the task cannot be scheduled,
	// run, or canceled again without external intervention.
	Unknown
)

// String returns a human-readable representation of the state.
func (s TaskState) String() string {
	switch s {
	case NotScheduled:
		return "notScheduled"
	case Scheduling:
		return "scheduling"
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	case Canceling:
		return "canceling"
	case Unknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// transitionTo validates and performs a state transition, matching the
// `_transitionTo(to, from1, from2?)` contract of spec §3/§4.C2: it fails
// fatally (via [InvariantError]) if the current state matches neither
// from1 nor from2. from2 may be passed as -1 to mean "no second legal
// source state".
func (t *Task) transitionTo(to TaskState, from1 TaskState, from2 TaskState) {
	const noFrom2 = TaskState(-1)
	if t.state != from1 && !(from2 != noFrom2 && t.state == from2) {
		expecting := from1.String()
		if from2 != noFrom2 {
			expecting = expecting + "' or '" + from2.String()
		}
		fatal(
			InvariantIllegalTransition,
			"zone: can not transition to '%s', expecting state '%s', was '%s' (task: %s)",
			to, expecting, t.state, t.Source,
		)
	}
	logTaskTransition(t, t.state, to)
	t.state = to
}
