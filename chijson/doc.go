// SPDX-License-Identifier: MIT

// Package chijson implements Chigraph's stable graph JSON schema (spec
// C12, §6): encoding a GraphModule's structs and functions to the
// textual form the CLI's "get"/editor tooling persists, and decoding it
// back into ir types.
//
// Decoding cannot fully resolve every NodeType's Codegen hook on its
// own: entry, exit, and local _get_/_set_ node types need concrete
// backend values (out-parameters, stack cells) that only exist once
// funccompile.Initialize runs for the function that owns them
// (funccompile.go's "late rebinding" — see its package doc). Decode
// therefore installs placeholder NodeTypes for those four families,
// shaped correctly (same ports, same Payload) but never invoked before
// Initialize replaces them; every other node type (If, arithmetic
// intrinsics, const-*, strliteral, struct make/break) is fully resolved
// at decode time since nothing else ever rebinds them.
//
// Grounded on liuprestin-relurpify/persistence/code_index.go's
// load/save shape: a plain encoding/json struct mirroring the
// persisted schema, read whole, decoded into the package's own richer
// in-memory types.
package chijson
