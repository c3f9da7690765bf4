// Package refbackend is Chigraph's reference implementation of the
// backend.Context/Module/Function/Builder/Engine facade (spec §6).
//
// It is a small tree-walking interpreter, not a real code generator: a
// Module is a set of Functions, each a graph of in-memory Block values
// holding a slice of typed instruction records (one per emitted
// instruction, tagged by op code) plus a terminator record. JIT
// "execution" interprets the first block's instructions, follows its
// terminator, and repeats until a Ret. This is enough to
// make every scenario in spec §8 behave exactly as a real LLVM backend
// would (same control flow, same values), without requiring a cgo LLVM
// binding that no retrieved example repo supplies.
//
// Bitcode is a gob encoding of a flat, acyclic mirror of the Module
// (the bc* types), since the in-memory graph of functions and blocks is
// cyclic and unexported — see bitcode.go.
//
// refbackend is written in the teacher's idiom: sentinel errors in
// errors.go, a functional-options-free straightforward constructor, and
// table-driven tests, matching katalvlaran/lvlath's core package style.
package refbackend
