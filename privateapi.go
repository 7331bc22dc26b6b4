package zone

// PrivateAPI is the bundle of core collaborators handed to every patch
// loaded via [LoadPatch] (spec §6): the primitives a patch needs to
// integrate host APIs (timers, event targets, Promise) with the zone core,
// without reaching into the core's internals directly. Fields that cover
// concerns out of this package's scope (DOM-style event-target and
// property patching) default to conservative no-ops; a patch that needs
// real behavior for those provides its own.
type PrivateAPI struct {
	// Symbol mints a namespaced key for stashing an original host
	// reference (spec §4.C1).
	Symbol func(name string) string
	// ScheduleMicroTask is the low-level microtask enqueue primitive,
	// exposed for patches that need to schedule one outside of a
	// [Zone.ScheduleTask] call (e.g. a promise-then patch).
	ScheduleMicroTask func(task *Task)
	// ShowUncaughtError reports whether the host should surface an
	// unhandled task error to its own top-level error reporting (console,
	// process-level handler), independent of onUnhandledError.
	ShowUncaughtError func() bool
	// SetNativePromiseThen installs the host's deferred-resolution
	// primitive used to arm the microtask drain.
	SetNativePromiseThen func(then NativePromiseThen)
	// SetNativeTimer installs the host's zero-delay-timer fallback
	// primitive used to arm the microtask drain.
	SetNativeTimer func(timer NativeTimer)
	// PatchEventTarget and PatchOnProperties are out of scope for this
	// core (there is no DOM / EventTarget concept in a generic Go host);
	// both default to no-ops returning an empty result, so patches that
	// don't need them can ignore them safely. Every patch receives the same
	// *PrivateAPI, so a patch for a host that does have an event-target
	// analogue can overwrite them, and patches loaded after it see the
	// replacement.
	PatchEventTarget  func(target any, names ...string) []any
	PatchOnProperties func(target any, allowed []string)
	// PatchMethod and BindArguments are the remaining host-integration
	// primitives from the same family; see PatchEventTarget.
	PatchMethod   func(target any, name string, patchFn func(delegate any) any) any
	BindArguments func(args []any, source string) []any
}

var ignoreUncaughtError bool

// SetIgnoreUncaughtError controls the default ShowUncaughtError
// implementation's return value.
func SetIgnoreUncaughtError(v bool) { ignoreUncaughtError = v }

var privateAPISingleton = &PrivateAPI{
	Symbol:               Symbol,
	ScheduleMicroTask:    scheduleMicroTaskInternal,
	ShowUncaughtError:    func() bool { return !ignoreUncaughtError },
	SetNativePromiseThen: SetNativePromiseThen,
	SetNativeTimer:       SetNativeTimer,
	PatchEventTarget:     func(any, ...string) []any { return nil },
	PatchOnProperties:    func(any, []string) {},
	PatchMethod:          func(any, string, func(any) any) any { return nil },
	BindArguments:        func(args []any, _ string) []any { return args },
}
