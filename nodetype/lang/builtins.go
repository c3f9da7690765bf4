// SPDX-License-Identifier: MIT
package lang

import (
	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/result"
)

// If is the single control-flow node type LangModule contributes beyond
// entry/exit (spec §4.2, scenario S1): one exec input, one bool data
// input, two exec outputs named "true" and "false".
func If() nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "if",
		DataInputs:  []nodetype.Port{{Name: "condition", Type: Bool}},
		ExecInputs:  []string{"exec"},
		ExecOutputs: []string{"true", "false"},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			b.CondBr(a.IO[0], a.ExitBlocks[0], a.ExitBlocks[1])
			return r
		},
	}
}

// ConstInt returns a pure node type with one i32/i64 data output whose
// value is fixed by payload["value"] at graph-construction time (spec
// §4.2: "const-int ... instance data carries the literal").
func ConstInt(width int, value int64) nodetype.NodeType {
	ty := I32
	if width == 64 {
		ty = I64
	}
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "const-int",
		DataOutputs: []nodetype.Port{{Name: "value", Type: ty}},
		Payload:     map[string]any{"value": value, "width": width},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			resolved := ResolveBackendType(a.Ctx, ty)
			b.Store(a.Ctx.ConstInt(resolved.BackendType, value), a.IO[0])
			return r
		},
	}
}

// ConstBool is ConstInt's boolean counterpart.
func ConstBool(value bool) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "const-bool",
		DataOutputs: []nodetype.Port{{Name: "value", Type: Bool}},
		Payload:     map[string]any{"value": value},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			b.Store(a.Ctx.ConstBool(value), a.IO[0])
			return r
		},
	}
}

// ConstFloat mirrors ConstInt for float/double instance constants.
func ConstFloat(double bool, value float64) nodetype.NodeType {
	ty := Float
	if double {
		ty = Double
	}
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "const-float",
		DataOutputs: []nodetype.Port{{Name: "value", Type: ty}},
		Payload:     map[string]any{"value": value, "double": double},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			resolved := ResolveBackendType(a.Ctx, ty)
			b.Store(a.Ctx.ConstFloat(resolved.BackendType, value), a.IO[0])
			return r
		},
	}
}

// StrLiteral is a pure node type producing a pointer to a constant
// string (spec §4.2's strliteral), the data-side equivalent of ConstInt
// for the i8* primitive.
func StrLiteral(value string) nodetype.NodeType {
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "strliteral",
		DataOutputs: []nodetype.Port{{Name: "value", Type: String}},
		Payload:     map[string]any{"value": value},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			b.Store(a.Ctx.ConstString(value), a.IO[0])
			return r
		},
	}
}

// EntryNodeType synthesizes the single entry node type for a
// GraphFunction with the given signature (spec §3: "entry and exit, two
// node types per function, parameterized by its signature"). Entry has
// no exec inputs, one exec output per named function exec input (or the
// single implicit "exec" when the function declares none), and a data
// output per function data-input.
//
// funccompile's backend signature convention (spec §4.5 step 1) appends
// one trailing i32 "exec selector" parameter after dataInputs and the
// dataOutputs out-pointers; when entry has more than one exec output,
// its Codegen switches on that parameter to choose which one fires —
// this is how a GraphFunction with more than one named exec input picks
// its starting point at a call site.
func EntryNodeType(sig nodetype.Signature) nodetype.NodeType {
	execOutputs := sig.ExecInputs
	if len(execOutputs) == 0 {
		execOutputs = []string{"exec"}
	}
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        "entry",
		DataOutputs: sig.DataInputs,
		ExecOutputs: execOutputs,
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			for i := range sig.DataInputs {
				b.Store(a.Func.Param(i), a.IO[i])
			}
			if len(a.ExitBlocks) <= 1 {
				b.Br(a.ExitBlocks[0])
				return r
			}
			selIdx := len(sig.DataInputs) + len(sig.DataOutputs)
			sel := a.Func.Param(selIdx)
			cases := make(map[int64]backend.Block, len(a.ExitBlocks)-1)
			for i := 1; i < len(a.ExitBlocks); i++ {
				cases[int64(i)] = a.ExitBlocks[i]
			}
			b.Switch(sel, a.ExitBlocks[0], cases)
			return r
		},
	}
}

// ExitNodeType is entry's dual: a single exec input named execInputName
// (multi-return-path functions get one exit node type instance per
// declared ExecOutputs name on sig), a data input per function data-output.
// Its Codegen writes the function's out-parameters and returns the
// index of execInputName within sig.ExecOutputs (spec §6's backend
// signature: "... -> exec-output index"), so a caller can tell which
// return path fired.
func ExitNodeType(sig nodetype.Signature, execInputName string, outParams []backend.Value) nodetype.NodeType {
	index := 0
	for i, name := range sig.ExecOutputs {
		if name == execInputName {
			index = i
			break
		}
	}
	return nodetype.NodeType{
		ModulePath: ModulePath,
		Name:       "exit",
		DataInputs: sig.DataOutputs,
		ExecInputs: []string{execInputName},
		Payload:    map[string]any{"exec_output": execInputName},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			for i := range sig.DataOutputs {
				if i < len(outParams) {
					b.Store(a.IO[i], outParams[i])
				}
			}
			b.Ret(a.Ctx.ConstInt(a.Ctx.IntType(32), int64(index)))
			return r
		},
	}
}

// Builtins returns the fixed, always-registered LangModule node types
// that do not depend on a particular function's signature (spec §4.2).
// entry/exit are produced per function by EntryNodeType/ExitNodeType
// instead, since their shape varies with the signature.
func Builtins() []nodetype.NodeType {
	return []nodetype.NodeType{
		If(),
	}
}
