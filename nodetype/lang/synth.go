// SPDX-License-Identifier: MIT
package lang

import (
	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/result"
)

// MakeStructNodeType builds the "_make_<Name>" node type every
// GraphStruct synthesizes automatically (spec §3): a pure node with one
// data input per field and a single data output carrying the assembled
// struct value, built with Undef+InsertField rather than Alloca/Store
// since GraphStruct values are passed by value through the IR, not by
// pointer. structTy must already carry its resolved BackendType — the
// owning GraphStruct resolves it once, when the struct's layout is
// fixed, before synthesizing either generator node type.
func MakeStructNodeType(structTy dtype.DataType, fields []nodetype.Port) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  structTy.ModulePath,
		Name:        "_make_" + structTy.Name,
		DataInputs:  fields,
		DataOutputs: []nodetype.Port{{Name: "value", Type: structTy}},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			agg := a.Ctx.Undef(structTy.BackendType)
			for i := range fields {
				agg = b.InsertField(agg, i, a.IO[i])
			}
			b.Store(agg, a.IO[len(fields)])
			return r
		},
	}
}

// BreakStructNodeType builds the "_break_<Name>" node type: the inverse
// of MakeStructNodeType, a pure node taking the struct value and
// producing one data output per field. Like MakeStructNodeType, it
// requires structTy's BackendType to already be resolved.
func BreakStructNodeType(structTy dtype.DataType, fields []nodetype.Port) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  structTy.ModulePath,
		Name:        "_break_" + structTy.Name,
		DataInputs:  []nodetype.Port{{Name: "value", Type: structTy}},
		DataOutputs: fields,
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			agg := a.IO[0]
			for i := range fields {
				b.Store(b.ExtractField(agg, i), a.IO[1+i])
			}
			return r
		},
	}
}

// GetLocalNodeType builds the "_get_<var>" node type a GraphFunction
// synthesizes for each of its local variables (spec §3): a pure node
// with a single data output of the local's type, loading it from the
// per-activation stack cell funccompile.initialize allocates. ty must
// already carry its resolved BackendType.
func GetLocalNodeType(name string, ty dtype.DataType, cell backend.Value) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "_get_" + name,
		DataOutputs: []nodetype.Port{{Name: "value", Type: ty}},
		Payload:     map[string]any{"variable": name},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			b.Store(b.Load(ty.BackendType, cell), a.IO[0])
			return r
		},
	}
}

// SetLocalNodeType builds the impure "_set_<var>" node type: one exec
// input/output pair and one data input, storing into the same cell
// GetLocalNodeType reads from.
func SetLocalNodeType(name string, ty dtype.DataType, cell backend.Value) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "_set_" + name,
		DataInputs:  []nodetype.Port{{Name: "value", Type: ty}},
		ExecInputs:  []string{"exec"},
		ExecOutputs: []string{"exec"},
		Payload:     map[string]any{"variable": name},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			b.Store(a.IO[0], cell)
			b.Br(a.ExitBlocks[0])
			return r
		},
	}
}
