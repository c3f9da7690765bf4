// Package mangle implements Chigraph's name mangling: a bijective encoding
// of a (module_path, symbol) pair into a single linker-legal identifier,
// per spec §4.1.
//
// Mapping:
//   - In the module path: '.' → "_d", '/' → "_s", '_' → "__".
//   - Path and symbol are joined with "_m".
//   - Special case: path == "" and symbol == "main" mangles to the literal
//     "main", so the host runtime's entry point works unmodified. Unmangle
//     maps "main" to ("main", "main"), so this one pair does not round-trip.
//
// Unmangle reverses the mapping deterministically. Both directions are
// property-tested in mangle_test.go: for any (path, symbol) where path has
// no embedded "_m" substring (impossible to produce from mangle's own
// escaping, but constructible by a malicious caller), round-tripping
// recovers the pair byte-exact.
package mangle
