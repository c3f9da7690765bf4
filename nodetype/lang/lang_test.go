// SPDX-License-Identifier: MIT
package lang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

func findNodeType(t *testing.T, types []nodetype.NodeType, name string) nodetype.NodeType {
	t.Helper()
	for _, nt := range types {
		if nt.Name == name {
			return nt
		}
	}
	t.Fatalf("node type %q not found among %d types", name, len(types))
	return nodetype.NodeType{}
}

// TestArithmetic_AddI32_ComputesSum wires const-int(3), const-int(4) and
// the add.i32 intrinsic node type together by hand (spec scenario S3)
// and checks the JIT result matches 3+4.
func TestArithmetic_AddI32_ComputesSum(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/main")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	sel := ctx.IntType(32)

	fn := mod.DeclareFunction("main", []backend.Type{outPtr, sel}, sel)
	entry := fn.AppendBlock("entry")
	b := ctx.Builder(entry)

	lhsCell := b.Alloca(i32, "lhs")
	rhsCell := b.Alloca(i32, "rhs")

	three := lang.ConstInt(32, 3)
	res := three.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		IO: []backend.Value{lhsCell},
	})
	require.True(t, res.Success())

	four := lang.ConstInt(32, 4)
	res = four.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		IO: []backend.Value{rhsCell},
	})
	require.True(t, res.Success())

	lhsVal := b.Load(i32, lhsCell)
	rhsVal := b.Load(i32, rhsCell)

	add := findNodeType(t, lang.Arithmetic(), "add.i32")
	require.True(t, add.Pure())
	res = add.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		IO: []backend.Value{lhsVal, rhsVal, fn.Param(0)},
	})
	require.True(t, res.Success())

	b.Ret(ctx.ConstInt(sel, 0))

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	code, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 7, code)
}

// TestIf_BranchesOnConstBool exercises the "if" node type's Codegen
// directly (spec §4.2), confirming it terminates entry_block with a
// CondBr into the two supplied exit blocks.
func TestIf_BranchesOnConstBool(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/main")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	sel := ctx.IntType(32)

	fn := mod.DeclareFunction("main", []backend.Type{outPtr, sel}, sel)
	entry := fn.AppendBlock("entry")
	trueBlk := fn.AppendBlock("if.true")
	falseBlk := fn.AppendBlock("if.false")

	cond := ctx.ConstBool(true)
	ifType := lang.If()
	res := ifType.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		ExitBlocks: []backend.Block{trueBlk, falseBlk},
		IO:         []backend.Value{cond},
	})
	require.True(t, res.Success())

	bt := ctx.Builder(trueBlk)
	bt.Store(ctx.ConstInt(i32, 0), fn.Param(0))
	bt.Ret(ctx.ConstInt(sel, 0))

	bf := ctx.Builder(falseBlk)
	bf.Store(ctx.ConstInt(i32, 1), fn.Param(0))
	bf.Ret(ctx.ConstInt(sel, 1))

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	code, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)
}

// TestMakeBreakStruct_RoundTrips builds a two-field struct value with
// _make_Point, reads its fields back with _break_Point, and checks the
// JIT result reflects the second field (spec §3's GraphStruct support).
func TestMakeBreakStruct_RoundTrips(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/main")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	sel := ctx.IntType(32)

	pointTy := dtype.DataType{ModulePath: "geometry", Name: "Point"}
	pointTy.BackendType = ctx.StructType([]backend.Type{i32, i32})

	fields := []nodetype.Port{
		{Name: "x", Type: dtype.DataType{Name: "i32"}},
		{Name: "y", Type: dtype.DataType{Name: "i32"}},
	}

	fn := mod.DeclareFunction("main", []backend.Type{outPtr, sel}, sel)
	entry := fn.AppendBlock("entry")
	b := ctx.Builder(entry)

	structCell := b.Alloca(pointTy.BackendType, "point")

	makeType := lang.MakeStructNodeType(pointTy, fields)
	res := makeType.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		IO: []backend.Value{ctx.ConstInt(i32, 10), ctx.ConstInt(i32, 32), structCell},
	})
	require.True(t, res.Success())

	loaded := b.Load(pointTy.BackendType, structCell)

	xCell := b.Alloca(i32, "x")
	yCell := b.Alloca(i32, "y")
	breakType := lang.BreakStructNodeType(pointTy, fields)
	res = breakType.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		IO: []backend.Value{loaded, xCell, yCell},
	})
	require.True(t, res.Success())

	y := b.Load(i32, yCell)
	b.Store(y, fn.Param(0))
	b.Ret(ctx.ConstInt(sel, 0))

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	code, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 32, code)
}

// TestGetSetLocal_RoundTrips exercises the synthesized local-variable
// node types against a shared stack cell.
func TestGetSetLocal_RoundTrips(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/main")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	sel := ctx.IntType(32)

	fn := mod.DeclareFunction("main", []backend.Type{outPtr, sel}, sel)
	entry := fn.AppendBlock("entry")
	afterSet := fn.AppendBlock("after_set")
	b := ctx.Builder(entry)

	localCell := b.Alloca(i32, "counter")

	setType := lang.SetLocalNodeType("counter", dtype.DataType{Name: "i32", BackendType: i32}, localCell)
	require.False(t, setType.Pure())
	res := setType.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: entry,
		ExitBlocks: []backend.Block{afterSet},
		IO:         []backend.Value{ctx.ConstInt(i32, 99)},
	})
	require.True(t, res.Success())

	ab := ctx.Builder(afterSet)
	getCell := ab.Alloca(i32, "readback")
	getType := lang.GetLocalNodeType("counter", dtype.DataType{Name: "i32", BackendType: i32}, localCell)
	require.True(t, getType.Pure())
	res = getType.Codegen(nodetype.CodegenArgs{
		Ctx: ctx, Module: mod, Func: fn, EntryBlock: afterSet,
		IO: []backend.Value{getCell},
	})
	require.True(t, res.Success())

	v := ab.Load(i32, getCell)
	ab.Store(v, fn.Param(0))
	ab.Ret(ctx.ConstInt(sel, 0))

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	code, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 99, code)
}
