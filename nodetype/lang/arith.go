// SPDX-License-Identifier: MIT
package lang

import (
	"fmt"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/result"
)

// IntrinsicName builds the "rt.<op>.<type>" linkage name refbackend's
// interpreter (and, ultimately, a real compiler-rt) dispatches natively
// (spec scenario S3: the "add" node has no instruction of its own and
// must call out). It is exported so funccompile/modcompile can declare
// the same extern once per module without duplicating the naming rule.
func IntrinsicName(op string, t dtype.DataType) string {
	return fmt.Sprintf("rt.%s.%s", op, t.Name)
}

// binaryIntrinsic builds a pure two-input, one-output node type whose
// Codegen declares (or reuses) an extern "rt.<op>.<type>" function and
// calls it. add/sub/mul/lt/eq for every arithmetic primitive all share
// this shape; only op and ty vary.
func binaryIntrinsic(op string, ty dtype.DataType, resultTy dtype.DataType) nodetype.NodeType {
	name := IntrinsicName(op, ty)
	return nodetype.NodeType{
		ModulePath: ModulePath,
		Name:       op + "." + ty.Name,
		DataInputs: []nodetype.Port{
			{Name: "lhs", Type: ty},
			{Name: "rhs", Type: ty},
		},
		DataOutputs: []nodetype.Port{{Name: "result", Type: resultTy}},
		Payload:     map[string]any{"type": ty.Name},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			rty := ResolveBackendType(a.Ctx, ty)
			rres := ResolveBackendType(a.Ctx, resultTy)
			fn := a.Module.DeclareFunction(name, []backend.Type{rty.BackendType, rty.BackendType}, rres.BackendType)
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			out := b.Call(fn, []backend.Value{a.IO[0], a.IO[1]})
			b.Store(out, a.IO[2])
			return r
		},
	}
}

// unaryIntrinsic is binaryIntrinsic's one-operand counterpart (neg).
func unaryIntrinsic(op string, ty dtype.DataType) nodetype.NodeType {
	name := IntrinsicName(op, ty)
	return nodetype.NodeType{
		ModulePath:  ModulePath,
		Name:        op + "." + ty.Name,
		DataInputs:  []nodetype.Port{{Name: "value", Type: ty}},
		DataOutputs: []nodetype.Port{{Name: "result", Type: ty}},
		Payload:     map[string]any{"type": ty.Name},
		Codegen: func(a nodetype.CodegenArgs) *result.Result {
			r := result.New()
			rty := ResolveBackendType(a.Ctx, ty)
			fn := a.Module.DeclareFunction(name, []backend.Type{rty.BackendType}, rty.BackendType)
			b := a.Ctx.Builder(a.EntryBlock)
			b.SetDebugLocation(a.Loc)
			out := b.Call(fn, []backend.Value{a.IO[0]})
			b.Store(out, a.IO[1])
			return r
		},
	}
}

// arithmeticTypes lists the primitives the rt.* intrinsics are
// instantiated over. Bool is not among them; it appears only as the
// result type of lt and eq.
var arithmeticTypes = []dtype.DataType{I32, I64, Float, Double}

// Arithmetic returns every rt.* intrinsic node type LangModule
// contributes: add/sub/mul/neg for each numeric primitive, and lt/eq
// (returning Bool) for each, giving the "if" node type something to
// branch on beyond a literal (spec scenario S3 supplemented to a full
// arithmetic set, since the distilled spec names only "add" by
// example).
func Arithmetic() []nodetype.NodeType {
	var out []nodetype.NodeType
	for _, ty := range arithmeticTypes {
		out = append(out,
			binaryIntrinsic("add", ty, ty),
			binaryIntrinsic("sub", ty, ty),
			binaryIntrinsic("mul", ty, ty),
			unaryIntrinsic("neg", ty),
			binaryIntrinsic("lt", ty, Bool),
			binaryIntrinsic("eq", ty, Bool),
		)
	}
	return out
}
