package zone

import "sync"

// zoneFrame is one entry in the process-wide current-zone stack: a simple
// linked list, pushed on entry to Run/RunGuarded/RunTask and popped on
// exit, so nested re-entrant calls (a microtask scheduled from within a
// task, a task invoked from within another) unwind correctly without any
// locking (spec §4.C5). This package assumes a single-threaded,
// cooperative host — there is deliberately no synchronization here.
type zoneFrame struct {
	parent *zoneFrame
	zone   *Zone
}

var (
	rootZone             *Zone
	currentZoneFrame     *zoneFrame
	currentTask          *Task
	nestedTaskFrameCount int
)

func init() {
	rootZone = &Zone{name: "<root>"}
	rootZone.delegate = newDelegate(rootZone, nil, nil)
	currentZoneFrame = &zoneFrame{zone: rootZone}
}

// Root returns the process-wide root zone: the ancestor of every other
// zone, with no parent and no ZoneSpec of its own (spec §4.C4, §4.C5).
func Root() *Zone { return rootZone }

// Current returns the innermost zone of the current call (spec §4.C5):
// the zone most recently pushed by Run/RunGuarded/RunTask and not yet
// popped, or [Root] if none is active.
func Current() *Zone { return currentZoneFrame.zone }

// CurrentTask returns the task currently being invoked via
// [Zone.RunTask], or nil if none is (e.g. during a plain Run/RunGuarded,
// or between tasks).
func CurrentTask() *Task { return currentTask }

func pushZoneFrame(z *Zone) {
	currentZoneFrame = &zoneFrame{parent: currentZoneFrame, zone: z}
}

func popZoneFrame() {
	currentZoneFrame = currentZoneFrame.parent
}

var rootConfigureOnce sync.Once

// ConfigureRoot applies opts to the process-wide singleton's ambient
// state (logger, onUnhandledError, microtaskDrainDone). It may be called
// exactly once per process; a second call is a fatal invariant violation
// (spec §4.C5 "Singleton enforcement" — there is no host global to guard
// against reconstruction in Go, so this package instead guards its own
// one-time ambient configuration with the same unconditional-panic
// semantics).
func ConfigureRoot(opts ...RootOption) {
	configured := false
	rootConfigureOnce.Do(func() {
		configured = true
		cfg := resolveRootOptions(opts)
		SetLogger(cfg.logger)
		if cfg.onUnhandledError != nil {
			SetOnUnhandledError(cfg.onUnhandledError)
		}
		if cfg.microtaskDrainDone != nil {
			SetMicrotaskDrainDone(cfg.microtaskDrainDone)
		}
	})
	if !configured {
		fatal(InvariantDuplicateSingleton, "zone: ConfigureRoot called more than once")
	}
}
