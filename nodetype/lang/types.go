// SPDX-License-Identifier: MIT
package lang

import (
	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
)

// ModulePath is LangModule's reserved module path. It is the empty
// string: dtype.DataType.String already special-cases "" (rendering a
// bare name for the built-in, always-imported module), so LangModule
// reuses that convention rather than inventing a second one.
const ModulePath = ""

// Primitive DataTypes, named exactly as spec §3 lists them. Struct and
// pointer types are built from these at graph-construction time; there
// is no separate "type" node type, only these values.
var (
	Bool   = dtype.DataType{ModulePath: ModulePath, Name: "i1"}
	I8     = dtype.DataType{ModulePath: ModulePath, Name: "i8"}
	I32    = dtype.DataType{ModulePath: ModulePath, Name: "i32"}
	I64    = dtype.DataType{ModulePath: ModulePath, Name: "i64"}
	Float  = dtype.DataType{ModulePath: ModulePath, Name: "float"}
	Double = dtype.DataType{ModulePath: ModulePath, Name: "double"}
	String = dtype.DataType{ModulePath: ModulePath, Name: "i8*"}
)

// Primitives lists every LangModule primitive, in the order the JSON
// schema (spec §6) enumerates a module's "types" for LangModule.
func Primitives() []dtype.DataType {
	return []dtype.DataType{Bool, I8, I32, I64, Float, Double, String}
}

// ResolveBackendType fills in t's BackendType handle from ctx, returning
// the updated value. It is the one place that knows how LangModule's
// primitive names map onto backend.Context's primitive constructors;
// funccompile calls it (via dtype lookups) whenever it needs a concrete
// backend.Type for a port or local variable.
func ResolveBackendType(ctx backend.Context, t dtype.DataType) dtype.DataType {
	if t.IsPointer() {
		elem := ResolveBackendType(ctx, t.Elem())
		t.BackendType = ctx.PointerType(elem.BackendType)
		return t
	}
	switch t.Name {
	case "i1":
		t.BackendType = ctx.BoolType()
	case "i8":
		t.BackendType = ctx.IntType(8)
	case "i32":
		t.BackendType = ctx.IntType(32)
	case "i64":
		t.BackendType = ctx.IntType(64)
	case "float":
		t.BackendType = ctx.FloatType()
	case "double":
		t.BackendType = ctx.DoubleType()
	}
	return t
}
