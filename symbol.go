package zone

// symbolPrefix namespaces every key minted by [Symbol], so stashed
// original host references can never collide with an ordinary object
// property (spec §4.C1).
const symbolPrefix = "__zone_symbol__"

// Symbol maps any name to a namespaced string key, used to stash original
// host API references (the unpatched setTimeout, the native Promise, its
// original then) so the microtask engine can reach them even after a
// patch has replaced the public name. Pure function: same name always
// yields the same key.
func Symbol(name string) string {
	return symbolPrefix + name
}
