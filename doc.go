// Package zone provides a hierarchical execution-context core for
// single-threaded, event-loop-driven Go programs: a tree of named zones
// that persist across asynchronous boundaries, intercept the scheduling,
// invocation and cancellation of asynchronous work, and expose lifecycle
// hooks so ambient concerns (error capture, profiling, change detection,
// test synchronization) can be layered on without touching business code.
//
// # Architecture
//
// A [Zone] is an immutable tree node: a name, a fixed properties map, a
// parent pointer, and exactly one [Delegate]. The delegate caches, for
// each of eight hook points, the nearest ancestor [ZoneSpec] that
// implements it, so hook dispatch cost is O(1) regardless of tree depth
// (see [Delegate] for the short-circuit construction rule). [Task] is the
// first-class handle for a unit of deferred work — a microTask, macroTask,
// or eventTask — owning its own six-state lifecycle ([TaskState]).
//
// This package does not implement, and is never meant to implement, an
// actual event loop, a patched set of host timer/XHR/Promise APIs, or a
// zone-aware Promise: those are external collaborators that call back
// into the core via [Task.ScheduleFn]/[Task.CancelFn] and the
// [LoadPatch] extension point. See zone/patches/timers for a minimal
// example of such a collaborator.
//
// # Concurrency Model
//
// The zone tree and its process-wide ambient state (the current-zone
// frame stack, the current task, the microtask queue) are single-threaded,
// cooperative, non-preemptive state — none of it is guarded by a lock, by
// design (see [Zone.Run], [Zone.RunTask]). The only synchronized state is
// the logger, the patch registry and the one-time [ConfigureRoot] guard.
// Suspension points
// are only the moments control returns to the host event loop: after the
// outermost task invocation unwinds and the microtask queue has drained.
//
// # Execution Model
//
// Within any call to [Zone.Run], [Zone.RunGuarded], or [Zone.RunTask],
// everything is synchronous. Microtasks enqueued inside a task are
// drained, in FIFO order, on the trailing edge of the outermost
// [InvokeTask] frame — before control returns to the host (spec §4.C2,
// §5); Run and RunGuarded do not drain the queue themselves. A microtask
// scheduled outside of any task frame onto an empty queue instead arms a
// drain lazily, via a host-provided deferred-resolution primitive (a
// resolved promise's then, installed with [SetNativePromiseThen]) or,
// failing that, a host-provided zero-delay timer ([SetNativeTimer]).
//
// # Usage
//
//	spec := &zone.ZoneSpec{
//	    Name: "my-zone",
//	    OnHandleError: func(d *zone.Delegate, cur, target *zone.Zone, err any) bool {
//	        log.Println("uncaught:", err)
//	        return false // suppress
//	    },
//	}
//	z, _ := zone.Root().Fork(spec)
//	z.RunGuarded(func(this any, args []any) any {
//	    z.ScheduleMicroTask("demo", func(this any, args []any) any {
//	        fmt.Println("ran as a microtask inside z")
//	        return nil
//	    })
//	    return nil
//	}, nil, nil, "")
//
// # Error Types
//
// The package distinguishes two error families (spec §7):
//   - [InvariantError]: a fatal, synchronous, unconditional panic for
//     programmer-misuse conditions (illegal task-state transition, a
//     negative task counter, scheduling across an illegal zone boundary).
//   - [TypeError] / [RangeError]: ordinary returned errors for
//     argument-validation failures at construction time.
package zone
