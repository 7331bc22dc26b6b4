package zone

// Zone is an immutable execution context: a name, a fixed properties map,
// a parent pointer, and exactly one [Delegate] (spec §4.C4). Zones form a
// tree rooted at [Root]; forking never mutates an existing zone.
type Zone struct {
	parent     *Zone
	name       string
	properties map[string]any
	delegate   *Delegate
}

// newZone constructs a zone as a child of parent, applying spec's Name
// default ("unnamed") and building its delegate. spec must be non-nil;
// callers (Fork) are responsible for rejecting a nil spec before reaching
// here.
func newZone(parent *Zone, spec *ZoneSpec) *Zone {
	name := spec.Name
	if name == "" {
		name = "unnamed"
	}
	z := &Zone{
		parent:     parent,
		name:       name,
		properties: spec.Properties,
	}
	var parentDelegate *Delegate
	if parent != nil {
		parentDelegate = parent.delegate
	}
	z.delegate = newDelegate(z, spec, parentDelegate)
	currentLogger().Debug("zone", "forked", map[string]any{
		"name":   name,
		"parent": parentName(parent),
	})
	return z
}

func parentName(z *Zone) string {
	if z == nil {
		return ""
	}
	return z.name
}

// Name returns the zone's name, "unnamed" if it was forked with an empty
// one.
func (z *Zone) Name() string { return z.name }

// Parent returns the zone's parent, or nil for the root zone.
func (z *Zone) Parent() *Zone { return z.parent }

// Fork creates a child zone configured by spec, dispatched through
// OnFork (spec §4.C4). Returns a [RangeError] if spec is nil.
func (z *Zone) Fork(spec *ZoneSpec) (*Zone, error) {
	if spec == nil {
		return nil, &RangeError{Message: "zone: Fork requires a non-nil ZoneSpec"}
	}
	return z.delegate.Fork(z, spec), nil
}

// Get looks up key on z, falling back to each ancestor in turn (spec
// §4.C4).
func (z *Zone) Get(key string) (any, bool) {
	owner := z.GetZoneWith(key)
	if owner == nil {
		return nil, false
	}
	v, _ := owner.properties[key]
	return v, true
}

// GetZoneWith returns the nearest zone (z or an ancestor) whose own
// Properties defines key, or nil if none does.
func (z *Zone) GetZoneWith(key string) *Zone {
	for cur := z; cur != nil; cur = cur.parent {
		if _, ok := cur.properties[key]; ok {
			return cur
		}
	}
	return nil
}

// Wrap intercepts cb once (via OnIntercept) and returns a new Callback
// that, each time it is called, re-enters z via RunGuarded and invokes the
// intercepted callback (spec §4.C4). Returns a [TypeError] if cb is nil.
func (z *Zone) Wrap(cb Callback, source string) (Callback, error) {
	if cb == nil {
		return nil, &TypeError{Message: "zone: Wrap requires a non-nil Callback"}
	}
	intercepted := z.delegate.Intercept(z, cb, source)
	return func(this any, args []any) any {
		return z.RunGuarded(intercepted, this, args, source)
	}, nil
}

// Run enters z for the duration of cb, dispatched through OnInvoke (spec
// §4.C4). Errors from cb propagate to the caller unchanged; Run installs
// no recover.
func (z *Zone) Run(cb Callback, this any, args []any, source string) any {
	pushZoneFrame(z)
	defer popZoneFrame()
	return z.delegate.Invoke(z, cb, this, args, source)
}

// RunGuarded is Run plus a recover: a panicking cb is routed through
// OnHandleError, which decides (by its boolean return) whether to rethrow
// or suppress the error (spec §4.C4, §7).
func (z *Zone) RunGuarded(cb Callback, this any, args []any, source string) (result any) {
	pushZoneFrame(z)
	defer popZoneFrame()
	defer func() {
		if r := recover(); r != nil {
			if z.delegate.HandleError(z, r) {
				panic(r)
			}
		}
	}()
	return z.delegate.Invoke(z, cb, this, args, source)
}

// ScheduleTask hands task to z, dispatched through OnScheduleTask (spec
// §4.C4). task must be either unbound (never scheduled) or owned by a zone
// that z does not descend from — rescheduling into a proper descendant of
// the task's current owning zone is a fatal invariant violation. The task
// counters are bumped only when the hook chain returns task itself; a hook
// that returns a different *Task leaves the counters of task untouched.
func (z *Zone) ScheduleTask(task *Task) *Task {
	if task.zone != nil && task.zone != z {
		for cur := z.parent; cur != nil; cur = cur.parent {
			if cur == task.zone {
				fatal(
					InvariantRescheduleIntoDescendant,
					"zone: %q can not reschedule %s (%s) task originally scheduled in %q into a descendant zone",
					z.name, task.Type, task.Source, task.zone.name,
				)
			}
		}
	}

	task.transitionTo(Scheduling, NotScheduled, -1)
	task.zone = z
	task.zoneDelegates = nil

	returned := func() (t *Task) {
		defer func() {
			if r := recover(); r != nil {
				task.transitionTo(Unknown, Scheduling, -1)
				z.delegate.HandleError(z, r)
				panic(r)
			}
		}()
		return z.delegate.ScheduleTask(z, task)
	}()

	if returned == task {
		for _, d := range task.zoneDelegates {
			d.updateTaskCount(task.Type, 1)
		}
	}
	if task.state == Scheduling {
		task.transitionTo(Scheduled, Scheduling, -1)
	}
	return returned
}

// ScheduleMicroTask constructs and schedules a microTask in z.
func (z *Zone) ScheduleMicroTask(source string, callback Callback) *Task {
	return z.ScheduleTask(NewTask(MicroTask, source, callback, nil, nil, nil, false))
}

// ScheduleMacroTask constructs and schedules a macroTask in z.
func (z *Zone) ScheduleMacroTask(source string, callback Callback, data *TaskData, scheduleFn, cancelFn TaskHookFn) *Task {
	return z.ScheduleTask(NewTask(MacroTask, source, callback, data, scheduleFn, cancelFn, false))
}

// ScheduleEventTask constructs and schedules an eventTask in z.
func (z *Zone) ScheduleEventTask(source string, callback Callback, data *TaskData, scheduleFn, cancelFn TaskHookFn) *Task {
	return z.ScheduleTask(NewTask(EventTask, source, callback, data, scheduleFn, cancelFn, false))
}

// RunTask invokes task's body, dispatched through OnInvokeTask (spec
// §4.C4). task must currently be owned by z. A microTask, or a macroTask
// not marked Periodic, returns to notScheduled on completion; an eventTask
// (periodic or not) or a periodic macroTask returns to scheduled instead. A user-code error is routed through OnHandleError,
// whose boolean return decides whether it rethrows.
func (z *Zone) RunTask(task *Task, this any, args []any) (result any) {
	if task.zone != z {
		ownerName := "<unbound>"
		if task.zone != nil {
			ownerName = task.zone.name
		}
		fatal(InvariantWrongZone, "zone: %s (%s) task can only run in its owning zone (%q), not %q", task.Type, task.Source, ownerName, z.name)
	}
	if task.state == NotScheduled && task.Type == EventTask {
		return nil
	}

	reentry := task.state != Running
	if reentry {
		task.transitionTo(Running, Scheduled, -1)
	}
	task.RunCount++
	prevTask := currentTask
	currentTask = task
	pushZoneFrame(z)

	if task.Type == MacroTask && !task.Periodic() {
		task.CancelFn = nil
	}

	defer func() {
		currentTask = prevTask
		popZoneFrame()
	}()

	defer func() {
		if task.state == NotScheduled || task.state == Unknown {
			return
		}
		if task.Type == EventTask || (task.Type == MacroTask && task.Periodic()) {
			if reentry {
				task.transitionTo(Scheduled, Running, -1)
			}
			return
		}
		task.RunCount = 0
		for _, d := range task.zoneDelegates {
			d.updateTaskCount(task.Type, -1)
		}
		task.zoneDelegates = nil
		task.transitionTo(NotScheduled, Running, -1)
	}()

	defer func() {
		if r := recover(); r != nil {
			if z.delegate.HandleError(z, r) {
				panic(r)
			}
		}
	}()

	return z.delegate.InvokeTask(z, task, this, args)
}

// CancelTask cancels task, dispatched through OnCancelTask (spec §4.C4).
// task must currently be owned by z.
func (z *Zone) CancelTask(task *Task) any {
	if task.zone != z {
		fatal(InvariantWrongZone, "zone: %s (%s) task can only be canceled in its owning zone, not %q", task.Type, task.Source, z.name)
	}
	task.transitionTo(Canceling, Scheduled, Running)

	result := func() (res any) {
		defer func() {
			if r := recover(); r != nil {
				task.transitionTo(Unknown, Canceling, -1)
				z.delegate.HandleError(z, r)
				panic(r)
			}
		}()
		return z.delegate.CancelTask(z, task)
	}()

	for _, d := range task.zoneDelegates {
		d.updateTaskCount(task.Type, -1)
	}
	task.zoneDelegates = nil
	task.RunCount = 0
	task.transitionTo(NotScheduled, Canceling, -1)
	return result
}

// --- default actions (spec §4.C3 "no ancestor defines this hook") ---

func defaultScheduleTask(target *Zone, task *Task) *Task {
	if task.ScheduleFn != nil {
		task.ScheduleFn(task)
		return task
	}
	if task.Type == MicroTask {
		scheduleMicroTaskInternal(task)
		return task
	}
	fatal(InvariantMissingScheduleFn, "zone: %q has no ScheduleFn for %s (%s)", target.name, task.Type, task.Source)
	return nil
}

func defaultInvokeTask(task *Task, this any, args []any) any {
	return task.Callback(this, args)
}

func defaultCancelTask(target *Zone, task *Task) any {
	if task.CancelFn != nil {
		return task.CancelFn(task)
	}
	fatal(InvariantNotCancelable, "zone: %q has no CancelFn for %s (%s)", target.name, task.Type, task.Source)
	return nil
}
