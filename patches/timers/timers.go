// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package timers is a minimal example of a host-integration patch (spec
// §6): it wires JavaScript-style setTimeout/setInterval/queueMicrotask
// semantics onto the zone core via [zone.LoadPatch], [zone.Zone.ScheduleMacroTask],
// [zone.Zone.ScheduleEventTask] and [zone.Zone.CancelTask].
//
// It is deliberately host-agnostic: the actual "ask the OS for a timer"
// primitive is abstracted behind [Scheduler], so this package contains no
// event-loop or I/O-polling code of its own — that lives entirely outside
// the zone core's scope (see the core package's doc comment). Grounded on
// the teacher's JS/SetTimeout/SetInterval adapter (eventloop's js.go),
// reworked to schedule through a Zone instead of a concrete Loop.
package timers

import (
	"sync"
	"sync/atomic"
	"time"

	zone "github.com/joeycumines/go-zone"
)

// Scheduler is the one host primitive this patch depends on: "call fn
// once, after d, unless canceled first". A real host might implement it
// with a wheel timer, a heap of deadlines polled each tick, or
// time.AfterFunc directly.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Callback is a timer/microtask body; it takes no arguments and returns
// nothing, matching JavaScript's zero-argument setTimeout/setInterval
// convention.
type Callback func()

// Timers is the patch's installed state, bound to a single [zone.Zone] and,
// since [Install] registers the "timers" patch name, created at most once
// per process. It holds the live id -> *zone.Task mapping needed to cancel
// a timer or interval by the id handed back to the caller.
type Timers struct {
	zone      *zone.Zone
	scheduler Scheduler
	nextID    atomic.Uint64

	mu    sync.Mutex
	tasks map[uint64]*zone.Task
}

// Install loads the "timers" patch into the process (spec §6) and
// returns the [Timers] handle bound to z and scheduler. Calling Install
// twice is a fatal invariant violation, per [zone.LoadPatch]'s
// duplicate-name rule.
func Install(z *zone.Zone, scheduler Scheduler) *Timers {
	t := &Timers{
		zone:      z,
		scheduler: scheduler,
		tasks:     map[uint64]*zone.Task{},
	}
	zone.LoadPatch("timers", func(api *zone.PrivateAPI) any {
		return t
	})
	return t
}

// SetTimeout schedules fn to run once, after delay, as a macroTask in the
// bound zone. A nil fn is a no-op returning id 0.
func (t *Timers) SetTimeout(fn Callback, delay time.Duration) uint64 {
	if fn == nil {
		return 0
	}
	id := t.nextID.Add(1)

	var cancel func()
	task := t.zone.ScheduleMacroTask(
		"setTimeout",
		func(this any, args []any) any {
			fn()
			return nil
		},
		&zone.TaskData{Delay: delay},
		func(tk *zone.Task) any {
			cancel = t.scheduler.After(delay, func() {
				tk.Invoke(nil, nil)
				t.mu.Lock()
				delete(t.tasks, id)
				t.mu.Unlock()
			})
			return nil
		},
		func(tk *zone.Task) any {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	)

	t.mu.Lock()
	t.tasks[id] = task
	t.mu.Unlock()
	return id
}

// ClearTimeout cancels a pending timeout scheduled by [Timers.SetTimeout].
// Safe to call with an unknown or already-fired id; it is then a no-op.
func (t *Timers) ClearTimeout(id uint64) {
	t.mu.Lock()
	task, ok := t.tasks[id]
	delete(t.tasks, id)
	t.mu.Unlock()
	if !ok {
		return
	}
	t.zone.CancelTask(task)
}

// SetInterval schedules fn to run repeatedly, every delay, as a periodic
// eventTask in the bound zone. Each firing re-arms the underlying
// [Scheduler] itself, since Scheduler only models a one-shot primitive.
func (t *Timers) SetInterval(fn Callback, delay time.Duration) uint64 {
	if fn == nil {
		return 0
	}
	id := t.nextID.Add(1)

	var (
		armMu   sync.Mutex
		cancel  func()
		task    *zone.Task
		rearmed bool
	)
	var arm func()
	arm = func() {
		armMu.Lock()
		defer armMu.Unlock()
		if rearmed {
			return
		}
		cancel = t.scheduler.After(delay, func() {
			task.Invoke(nil, nil)
			arm()
		})
	}

	task = t.zone.ScheduleEventTask(
		"setInterval",
		func(this any, args []any) any {
			fn()
			return nil
		},
		&zone.TaskData{Delay: delay, Periodic: true},
		func(tk *zone.Task) any {
			arm()
			return nil
		},
		func(tk *zone.Task) any {
			armMu.Lock()
			rearmed = true
			if cancel != nil {
				cancel()
			}
			armMu.Unlock()
			return nil
		},
	)

	t.mu.Lock()
	t.tasks[id] = task
	t.mu.Unlock()
	return id
}

// ClearInterval cancels a repeating interval scheduled by
// [Timers.SetInterval].
func (t *Timers) ClearInterval(id uint64) {
	t.ClearTimeout(id)
}

// QueueMicrotask schedules fn as a microTask in the bound zone, ahead of
// any further macroTask/eventTask firing (spec §5).
func (t *Timers) QueueMicrotask(fn Callback) {
	if fn == nil {
		return
	}
	t.zone.ScheduleMicroTask("queueMicrotask", func(this any, args []any) any {
		fn()
		return nil
	})
}
