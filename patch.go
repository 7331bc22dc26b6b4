package zone

import "sync"

// PatchFunc is a host-integration extension point (spec §6): given the
// core's [PrivateAPI], it patches whatever host surface it targets and
// returns an arbitrary descriptor value made available via [Patch].
type PatchFunc func(api *PrivateAPI) any

var (
	patchesMu       sync.Mutex
	patches         = map[string]any{}
	disabledPatches = map[string]bool{}
)

// DisablePatch gates a not-yet-loaded patch name: a subsequent LoadPatch
// call for that name is skipped silently instead of running (spec §6,
// mirroring the host-global `__Zone_disable_<name>` boolean flag
// convention — realized here as an explicit call since Go has no
// equivalent ambient global namespace).
func DisablePatch(name string) {
	patchesMu.Lock()
	defer patchesMu.Unlock()
	disabledPatches[name] = true
}

// LoadPatch runs fn, under name, exactly once per process. A second call
// with the same name is a fatal invariant violation (spec §6, §7), logged
// at Warn before the panic — patches are meant to be idempotently loaded exactly once
// at host bootstrap, and a duplicate almost always indicates two
// incompatible host integrations fighting over the same API.
func LoadPatch(name string, fn PatchFunc) {
	patchesMu.Lock()
	defer patchesMu.Unlock()
	if _, exists := patches[name]; exists {
		currentLogger().Warn("patch", "rejected duplicate patch", map[string]any{"name": name})
		fatal(InvariantDuplicatePatch, "zone: patch %q already loaded", name)
	}
	if disabledPatches[name] {
		currentLogger().Debug("patch", "skipped disabled patch", map[string]any{"name": name})
		return
	}
	currentLogger().Debug("patch", "loading patch", map[string]any{"name": name})
	patches[name] = fn(privateAPISingleton)
}

// Patch returns the descriptor value a previously loaded patch returned,
// and whether one by that name has been loaded at all.
func Patch(name string) (any, bool) {
	patchesMu.Lock()
	defer patchesMu.Unlock()
	v, ok := patches[name]
	return v, ok
}

// AssertZonePatched verifies that the zone-aware Promise patch has been
// loaded (spec §6): it requires patches["ZoneAwarePromise"] to be present,
// i.e. that some external patch has already installed itself as the host's
// active Promise via [LoadPatch]("ZoneAwarePromise", ...). The Promise
// implementation itself is out of scope for this core (spec §1); this
// function only checks that one has registered. A missing patch is a
// fatal invariant violation, matching every other precondition check in
// this package.
func AssertZonePatched() {
	if _, ok := Patch("ZoneAwarePromise"); !ok {
		fatal(InvariantNotPatched, "zone: Zone doesn't appear to be patched, could not find 'ZoneAwarePromise' installed via LoadPatch")
	}
}
