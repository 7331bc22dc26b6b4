package zone

// hookSlot caches one hook's resolved dispatch target: the nearest
// ancestor spec implementing it (ok, hook, delegate, zone) or the zero
// value if no ancestor does, meaning the default action applies. Resolved
// once, at delegate construction, so dispatch is O(1) regardless of tree
// depth (spec §4.C3).
type hookSlot[F any] struct {
	ok       bool
	hook     F
	delegate *Delegate
	zone     *Zone
}

// resolveSlot implements the short-circuit construction rule shared by all
// eight hooks: if this zone's own spec defines the hook, the slot points
// at this zone; otherwise it is copied verbatim from the parent delegate's
// already-resolved slot (which may itself point many levels further up, or
// be empty).
func resolveSlot[F any](ownHook F, ownOK bool, parentSlot hookSlot[F], parentDelegate *Delegate, ownZone *Zone) hookSlot[F] {
	if ownOK {
		return hookSlot[F]{ok: true, hook: ownHook, delegate: parentDelegate, zone: ownZone}
	}
	return parentSlot
}

// Delegate is a zone's cached view of its ancestor chain's hooks (spec
// §4.C3). Every [Zone] owns exactly one, built once at Fork time and never
// mutated afterward.
type Delegate struct {
	zone    *Zone
	parent  *Delegate // delegate of zone's parent; nil for the root
	ownSpec *ZoneSpec // the ZoneSpec this zone itself was forked with; nil for the root

	forkSlot        hookSlot[ForkHook]
	interceptSlot   hookSlot[InterceptHook]
	invokeSlot      hookSlot[InvokeHook]
	handleErrorSlot hookSlot[HandleErrorHook]
	scheduleSlot    hookSlot[ScheduleTaskHook]
	invokeTaskSlot  hookSlot[InvokeTaskHook]
	cancelTaskSlot  hookSlot[CancelTaskHook]
	hasTaskSlot     hookSlot[HasTaskHook]

	// hasTaskDelegateOwner is a self-reference set iff this zone or any
	// ancestor registers OnHasTask, forcing scheduleTask/invokeTask/
	// cancelTask dispatch to walk the delegate chain one zone at a time
	// (via [Delegate.ScheduleTask] etc.) instead of short-circuiting
	// straight to the cached slot, so every delegate in the subtree gets a
	// chance to observe and count the task (spec §4.C3).
	hasTaskDelegateOwner *Delegate

	microTaskCount int
	macroTaskCount int
	eventTaskCount int
}

// newDelegate constructs the delegate for zone, given the ZoneSpec it was
// forked with (nil for the root) and its parent's already-constructed
// delegate (nil for the root).
func newDelegate(zone *Zone, spec *ZoneSpec, parent *Delegate) *Delegate {
	d := &Delegate{zone: zone, parent: parent, ownSpec: spec}

	var pFork hookSlot[ForkHook]
	var pIntercept hookSlot[InterceptHook]
	var pInvoke hookSlot[InvokeHook]
	var pHandleError hookSlot[HandleErrorHook]
	var pSchedule hookSlot[ScheduleTaskHook]
	var pInvokeTask hookSlot[InvokeTaskHook]
	var pCancelTask hookSlot[CancelTaskHook]
	var pHasTask hookSlot[HasTaskHook]
	var parentWantsHasTask bool
	if parent != nil {
		pFork = parent.forkSlot
		pIntercept = parent.interceptSlot
		pInvoke = parent.invokeSlot
		pHandleError = parent.handleErrorSlot
		pSchedule = parent.scheduleSlot
		pInvokeTask = parent.invokeTaskSlot
		pCancelTask = parent.cancelTaskSlot
		pHasTask = parent.hasTaskSlot
		parentWantsHasTask = parent.hasTaskDelegateOwner != nil
	}

	ownHasTask := spec != nil && spec.OnHasTask != nil
	if ownHasTask || parentWantsHasTask {
		d.hasTaskDelegateOwner = d
	}

	if spec == nil {
		d.forkSlot, d.interceptSlot, d.invokeSlot, d.handleErrorSlot = pFork, pIntercept, pInvoke, pHandleError
		d.scheduleSlot, d.invokeTaskSlot, d.cancelTaskSlot, d.hasTaskSlot = pSchedule, pInvokeTask, pCancelTask, pHasTask
		return d
	}

	d.forkSlot = resolveSlot(spec.OnFork, spec.OnFork != nil, pFork, parent, zone)
	d.interceptSlot = resolveSlot(spec.OnIntercept, spec.OnIntercept != nil, pIntercept, parent, zone)
	d.invokeSlot = resolveSlot(spec.OnInvoke, spec.OnInvoke != nil, pInvoke, parent, zone)
	d.handleErrorSlot = resolveSlot(spec.OnHandleError, spec.OnHandleError != nil, pHandleError, parent, zone)
	d.hasTaskSlot = resolveSlot(spec.OnHasTask, ownHasTask, pHasTask, parent, zone)

	// The three task hooks still get a resolved slot (used whenever
	// hasTaskDelegateOwner is nil, i.e. task counting isn't forced
	// anywhere in this chain); when it is forced, dispatch bypasses these
	// slots entirely in favor of the recursive walk below.
	d.scheduleSlot = resolveSlot(spec.OnScheduleTask, spec.OnScheduleTask != nil, pSchedule, parent, zone)
	d.invokeTaskSlot = resolveSlot(spec.OnInvokeTask, spec.OnInvokeTask != nil, pInvokeTask, parent, zone)
	d.cancelTaskSlot = resolveSlot(spec.OnCancelTask, spec.OnCancelTask != nil, pCancelTask, parent, zone)

	return d
}

// Fork dispatches Zone.Fork through the delegate chain.
func (d *Delegate) Fork(target *Zone, spec *ZoneSpec) *Zone {
	if d.forkSlot.ok {
		return d.forkSlot.hook(d.forkSlot.delegate, d.forkSlot.zone, target, spec)
	}
	return newZone(target, spec)
}

// Intercept dispatches Zone.Wrap through the delegate chain.
func (d *Delegate) Intercept(target *Zone, cb Callback, source string) Callback {
	if d.interceptSlot.ok {
		return d.interceptSlot.hook(d.interceptSlot.delegate, d.interceptSlot.zone, target, cb, source)
	}
	return cb
}

// Invoke dispatches Zone.Run/Zone.RunGuarded through the delegate chain.
func (d *Delegate) Invoke(target *Zone, cb Callback, this any, args []any, source string) any {
	if d.invokeSlot.ok {
		return d.invokeSlot.hook(d.invokeSlot.delegate, d.invokeSlot.zone, target, cb, this, args, source)
	}
	return cb(this, args)
}

// HandleError dispatches error propagation through the delegate chain. The
// default action propagates (returns true).
func (d *Delegate) HandleError(target *Zone, err any) bool {
	if d.handleErrorSlot.ok {
		return d.handleErrorSlot.hook(d.handleErrorSlot.delegate, d.handleErrorSlot.zone, target, err)
	}
	return true
}

// ScheduleTask dispatches Zone.ScheduleTask through the delegate chain,
// forcing a zone-by-zone walk (rather than the cached short-circuit slot)
// whenever hasTask counting is active anywhere in the chain, so every
// delegate along the way registers itself on task.zoneDelegates (spec
// §4.C3).
func (d *Delegate) ScheduleTask(target *Zone, task *Task) *Task {
	if d.hasTaskDelegateOwner != nil {
		task.zoneDelegates = append(task.zoneDelegates, d)
		if d.ownSpec != nil && d.ownSpec.OnScheduleTask != nil {
			return d.ownSpec.OnScheduleTask(d.parent, d.zone, target, task)
		}
		if d.parent != nil {
			return d.parent.ScheduleTask(target, task)
		}
		return defaultScheduleTask(target, task)
	}
	if d.scheduleSlot.ok {
		return d.scheduleSlot.hook(d.scheduleSlot.delegate, d.scheduleSlot.zone, target, task)
	}
	return defaultScheduleTask(target, task)
}

// InvokeTask dispatches Zone.RunTask's body invocation through the
// delegate chain, with the same forced-routing rule as ScheduleTask.
func (d *Delegate) InvokeTask(target *Zone, task *Task, this any, args []any) any {
	if d.hasTaskDelegateOwner != nil {
		if d.ownSpec != nil && d.ownSpec.OnInvokeTask != nil {
			return d.ownSpec.OnInvokeTask(d.parent, d.zone, target, task, this, args)
		}
		if d.parent != nil {
			return d.parent.InvokeTask(target, task, this, args)
		}
		return defaultInvokeTask(task, this, args)
	}
	if d.invokeTaskSlot.ok {
		return d.invokeTaskSlot.hook(d.invokeTaskSlot.delegate, d.invokeTaskSlot.zone, target, task, this, args)
	}
	return defaultInvokeTask(task, this, args)
}

// CancelTask dispatches Zone.CancelTask through the delegate chain, with
// the same forced-routing rule as ScheduleTask.
func (d *Delegate) CancelTask(target *Zone, task *Task) any {
	if d.hasTaskDelegateOwner != nil {
		if d.ownSpec != nil && d.ownSpec.OnCancelTask != nil {
			return d.ownSpec.OnCancelTask(d.parent, d.zone, target, task)
		}
		if d.parent != nil {
			return d.parent.CancelTask(target, task)
		}
		return defaultCancelTask(target, task)
	}
	if d.cancelTaskSlot.ok {
		return d.cancelTaskSlot.hook(d.cancelTaskSlot.delegate, d.cancelTaskSlot.zone, target, task)
	}
	return defaultCancelTask(target, task)
}

// hasTask dispatches a counter-crossing notification through the delegate
// chain's cached slot (never forced — there is only ever one hook kind
// below this one). Errors from a misbehaving OnHasTask hook are caught and
// routed through handleError rather than propagated, since hasTask fires
// from deep inside counter bookkeeping with no natural caller to rethrow
// to.
func (d *Delegate) hasTask(target *Zone, counts TaskCounts) {
	defer func() {
		if r := recover(); r != nil {
			d.HandleError(target, r)
		}
	}()
	if d.hasTaskSlot.ok {
		d.hasTaskSlot.hook(d.hasTaskSlot.delegate, d.hasTaskSlot.zone, target, counts)
	}
}

// updateTaskCount adjusts this delegate's counter for t by delta, fires
// hasTask on this delegate's own zone whenever the counter crosses the
// 0↔1 boundary, and fatally panics if it would go negative (spec §4.C3,
// §8 invariant 3).
func (d *Delegate) updateTaskCount(t TaskType, delta int) {
	var counter *int
	switch t {
	case MicroTask:
		counter = &d.microTaskCount
	case MacroTask:
		counter = &d.macroTaskCount
	default:
		counter = &d.eventTaskCount
	}
	prev := *counter
	next := prev + delta
	if next < 0 {
		fatal(InvariantNegativeTaskCount, "zone: %q task count for %s would go negative (delta %d, was %d)", d.zone.name, t, delta, prev)
	}
	*counter = next
	if prev == 0 || next == 0 {
		counts := TaskCounts{
			MicroTask: d.microTaskCount > 0,
			MacroTask: d.macroTaskCount > 0,
			EventTask: d.eventTaskCount > 0,
			Change:    t,
		}
		logHasTask(d.zone, counts)
		d.hasTask(d.zone, counts)
	}
}
