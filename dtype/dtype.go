// Package dtype implements Chigraph's DataType (spec C3): a reference to
// the module that owns a type, its unqualified name, and the backend/
// debug-info handles a compiled use of it needs.
//
// A DataType's identity is (ModulePath, Name): Equal and AsKey compare
// only those two fields, so two DataTypes naming the same module-qualified
// type are equal regardless of which compile pass produced their backend
// handles. Key, not DataType itself, is the map key (as lvlath's
// core.Vertex/Edge IDs are used as map keys throughout the teacher repo).
package dtype

import "github.com/chigraph/chigraph/backend"

// DataType names a type and carries the backend handles needed to use it
// in codegen. Use Equal, not ==, to compare two DataTypes — the struct
// embeds interface-typed handle fields that may differ between two
// lookups of the same named type produced by different compile passes;
// Equal only compares ModulePath and Name, which is the identity that
// matters. Use AsKey for map keys for the same reason.
type DataType struct {
	// ModulePath is the full path of the module that declares this
	// type ("" for LangModule primitives).
	ModulePath string
	// Name is the type's unqualified name ("i32", "MyStruct", "i32*").
	Name string

	// BackendType is the backend.Type handle, resolved by the module
	// compiler the first time this DataType is used during a compile.
	BackendType backend.Type
	// DebugType is the backend debug-info type handle, lazily resolved
	// the same way.
	DebugType backend.DebugType
}

// Key is the comparable identity of a DataType, usable as a map key
// regardless of whether BackendType/DebugType have been resolved yet.
type Key struct {
	ModulePath string
	Name       string
}

// AsKey returns d's comparable identity.
func (d DataType) AsKey() Key {
	return Key{ModulePath: d.ModulePath, Name: d.Name}
}

// Equal reports whether d and other name the same type, ignoring any
// resolved backend/debug handles.
func (d DataType) Equal(other DataType) bool {
	return d.AsKey() == other.AsKey()
}

// String renders "module:name", the wire form used by the JSON schema
// (spec §6) for field and port type references.
func (d DataType) String() string {
	if d.ModulePath == "" {
		return d.Name
	}
	return d.ModulePath + ":" + d.Name
}

// PointerTo returns the DataType for a pointer to d, named by the
// syntactic suffix rule in spec §3 ("pointer forms derived by syntactic
// suffix").
func (d DataType) PointerTo() DataType {
	return DataType{ModulePath: d.ModulePath, Name: d.Name + "*"}
}

// IsPointer reports whether d's name ends in the pointer suffix.
func (d DataType) IsPointer() bool {
	return len(d.Name) > 0 && d.Name[len(d.Name)-1] == '*'
}

// Elem returns the pointee DataType, or d itself if d is not a pointer.
func (d DataType) Elem() DataType {
	if !d.IsPointer() {
		return d
	}
	return DataType{ModulePath: d.ModulePath, Name: d.Name[:len(d.Name)-1]}
}
