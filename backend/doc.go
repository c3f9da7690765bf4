// Package backend defines the narrow facade Chigraph's core requires of
// any LLVM-like code-generation library, per spec §6.
//
// The core never imports a concrete backend library directly; every
// compiler package (nodecompile, funccompile, modcompile) depends only on
// the interfaces declared here. This is the "external collaborator"
// boundary spec.md §1 draws around the real LLVM-equivalent: the core is
// out of scope for bitcode generation, optimization, and JIT execution,
// and only needs enough of a contract to drive them.
//
// Handle types (Type, Value, Block, DebugType, DebugLocation) are opaque —
// each concrete backend defines what they actually are. Core code only
// ever receives a handle back from this package and passes it to another
// method on this package; it never inspects one. Function, by contrast,
// is an interface whose methods (Name, Param, AppendBlock,
// SetSubroutineType) core code calls directly.
//
// refbackend provides the one concrete implementation shipped with this
// module: a small standard-library interpreter sufficient to run every
// scenario in spec §8 end to end without a real LLVM dependency. See
// DESIGN.md for why a third-party LLVM binding could not be wired here
// instead (none of the retrieved example repos uses one).
package backend
