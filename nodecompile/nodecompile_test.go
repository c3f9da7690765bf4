// SPDX-License-Identifier: MIT
package nodecompile_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodecompile"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

func findArith(t *testing.T, name string) nodetype.NodeType {
	t.Helper()
	for _, nt := range lang.Arithmetic() {
		if nt.Name == name {
			return nt
		}
	}
	t.Fatalf("arithmetic node type %q not found", name)
	return nodetype.NodeType{}
}

func TestIf_SelectsTrueBranch(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/if")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	selType := ctx.IntType(32)
	sig := nodetype.Signature{
		DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}},
		ExecOutputs: []string{"true", "false"},
	}
	backendFn := mod.DeclareFunction("main", []backend.Type{outPtr, selType}, selType)

	gf := ir.NewGraphFunction("test", "f", sig)
	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	ifNode := ir.NewNodeInstance(lang.If(), 0, 0)
	constTrue := ir.NewNodeInstance(lang.ConstBool(true), 0, 0)
	exitTrue := ir.NewNodeInstance(lang.ExitNodeType(sig, "true", []backend.Value{backendFn.Param(0)}), 0, 0)
	exitFalse := ir.NewNodeInstance(lang.ExitNodeType(sig, "false", []backend.Value{backendFn.Param(0)}), 0, 0)
	constSeven := ir.NewNodeInstance(lang.ConstInt(32, 7), 0, 0)
	constNine := ir.NewNodeInstance(lang.ConstInt(32, 9), 0, 0)

	for _, n := range []*ir.NodeInstance{entry, ifNode, constTrue, exitTrue, exitFalse, constSeven, constNine} {
		gf.AddNode(n)
	}

	require.NoError(t, gf.ConnectExec(entry.ID, 0, ifNode.ID, 0))
	require.NoError(t, gf.ConnectData(constTrue.ID, 0, ifNode.ID, 0))
	require.NoError(t, gf.ConnectExec(ifNode.ID, 0, exitTrue.ID, 0))
	require.NoError(t, gf.ConnectExec(ifNode.ID, 1, exitFalse.ID, 0))
	require.NoError(t, gf.ConnectData(constSeven.ID, 0, exitTrue.ID, 0))
	require.NoError(t, gf.ConnectData(constNine.ID, 0, exitFalse.ID, 0))

	allocBlock := backendFn.AppendBlock("alloc")
	ab := ctx.Builder(allocBlock)
	cells := make(map[uuid.UUID][]backend.Value)
	lines := make(map[uuid.UUID]int)
	for i, n := range gf.Nodes() {
		lines[n.ID] = i + 1
		outs := make([]backend.Value, len(n.Type.DataOutputs))
		for j, port := range n.Type.DataOutputs {
			outs[j] = ab.Alloca(port.Type.BackendType, "")
		}
		cells[n.ID] = outs
	}

	compiler := nodecompile.New(gf, ctx, mod, backendFn, cells, nil, lines, nil, nil)
	head, r := compiler.CompileFromEntry(entry)
	require.True(t, r.Success(), "%+v", r.Entries())
	ab.Br(head)

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	out, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 7, out) // true branch stores constSeven into the out-param
}

// TestSharedPureDependency_ComputesCorrectSum exercises the jumpBackInst
// path: const-int(7) feeds two distinct add nodes, so it is a shared pure
// dependency (spec §4.4, scenario S3), and the function must return 17.
func TestSharedPureDependency_ComputesCorrectSum(t *testing.T) {
	ctx := refbackend.NewContext()
	mod := ctx.NewModule("test/shared")
	i32 := ctx.IntType(32)
	outPtr := ctx.PointerType(i32)
	selType := ctx.IntType(32)
	sig := nodetype.Signature{DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}}}
	backendFn := mod.DeclareFunction("main", []backend.Type{outPtr, selType}, selType)

	gf := ir.NewGraphFunction("test", "f", sig)
	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	exit := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", []backend.Value{backendFn.Param(0)}), 0, 0)
	seven := ir.NewNodeInstance(lang.ConstInt(32, 7), 0, 0)
	three := ir.NewNodeInstance(lang.ConstInt(32, 3), 0, 0)
	addType := findArith(t, "add.i32")
	add1 := ir.NewNodeInstance(addType, 0, 0)
	add2 := ir.NewNodeInstance(addType, 0, 0)

	for _, n := range []*ir.NodeInstance{entry, exit, seven, three, add1, add2} {
		gf.AddNode(n)
	}

	require.NoError(t, gf.ConnectExec(entry.ID, 0, exit.ID, 0))
	require.NoError(t, gf.ConnectData(seven.ID, 0, add1.ID, 0))
	require.NoError(t, gf.ConnectData(three.ID, 0, add1.ID, 1))
	require.NoError(t, gf.ConnectData(seven.ID, 0, add2.ID, 0))
	require.NoError(t, gf.ConnectData(add1.ID, 0, add2.ID, 1))
	require.NoError(t, gf.ConnectData(add2.ID, 0, exit.ID, 0))

	counts := nodecompile.PureConsumerCounts(gf)
	require.Equal(t, 2, counts[seven.ID])

	allocBlock := backendFn.AppendBlock("alloc")
	ab := ctx.Builder(allocBlock)
	cells := make(map[uuid.UUID][]backend.Value)
	retAddr := make(map[uuid.UUID]backend.Value)
	lines := make(map[uuid.UUID]int)
	for i, n := range gf.Nodes() {
		lines[n.ID] = i + 1
		outs := make([]backend.Value, len(n.Type.DataOutputs))
		for j, port := range n.Type.DataOutputs {
			outs[j] = ab.Alloca(port.Type.BackendType, "")
		}
		cells[n.ID] = outs
		if counts[n.ID] > 1 {
			retAddr[n.ID] = ab.Alloca(nodecompile.BlockAddressType(ctx), "")
		}
	}

	compiler := nodecompile.New(gf, ctx, mod, backendFn, cells, retAddr, lines, nil, nil)
	head, r := compiler.CompileFromEntry(entry)
	require.True(t, r.Success(), "%+v", r.Entries())
	ab.Br(head)

	require.NoError(t, mod.Verify())
	eng, err := mod.JIT()
	require.NoError(t, err)
	out, err := eng.RunMain("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 17, out) // (7+3) then (7+10)
}

func TestDependentPures_OrdersTransitiveChain(t *testing.T) {
	sig := nodetype.Signature{}
	gf := ir.NewGraphFunction("test", "f", sig)
	seven := ir.NewNodeInstance(lang.ConstInt(32, 7), 0, 0)
	three := ir.NewNodeInstance(lang.ConstInt(32, 3), 0, 0)
	addType := findArith(t, "add.i32")
	add1 := ir.NewNodeInstance(addType, 0, 0)
	consumer := ir.NewNodeInstance(addType, 0, 0)
	gf.AddNode(seven)
	gf.AddNode(three)
	gf.AddNode(add1)
	gf.AddNode(consumer)

	require.NoError(t, gf.ConnectData(seven.ID, 0, add1.ID, 0))
	require.NoError(t, gf.ConnectData(three.ID, 0, add1.ID, 1))
	require.NoError(t, gf.ConnectData(add1.ID, 0, consumer.ID, 0))
	require.NoError(t, gf.ConnectData(seven.ID, 0, consumer.ID, 1))

	deps := nodecompile.DependentPures(gf, consumer)
	require.Len(t, deps, 3)
	// add1 must follow both of its own inputs (seven, three) in the order.
	var idxSeven, idxThree, idxAdd1 int
	for i, n := range deps {
		switch n.ID {
		case seven.ID:
			idxSeven = i
		case three.ID:
			idxThree = i
		case add1.ID:
			idxAdd1 = i
		}
	}
	require.Less(t, idxSeven, idxAdd1)
	require.Less(t, idxThree, idxAdd1)
}
