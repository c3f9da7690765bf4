// SPDX-License-Identifier: MIT
package funccompile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/funccompile"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/mangle"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// TestFunctionCompiler_LocalVariableRoundTrip builds a small function
// entirely through placeholder NodeTypes (the shape a JSON-loaded graph
// would arrive in: entry/exit/_get_/_set_ instances whose Codegen is not
// yet bound to this activation's concrete cells) and drives it through
// FunctionCompiler end to end, verifying the entry/exit/local rebinding
// described in spec §4.5 actually produces a runnable function.
func TestFunctionCompiler_LocalVariableRoundTrip(t *testing.T) {
	sig := nodetype.Signature{
		DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}},
		ExecInputs:  []string{"exec"},
		ExecOutputs: []string{"exec"},
	}

	gf := ir.NewGraphFunction("example.com/app", "main", sig)
	gf.AddLocal("x", lang.I32)

	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	setX := ir.NewNodeInstance(lang.SetLocalNodeType("x", lang.I32, nil), 0, 0)
	getX := ir.NewNodeInstance(lang.GetLocalNodeType("x", lang.I32, nil), 0, 0)
	const10 := ir.NewNodeInstance(lang.ConstInt(32, 10), 0, 0)
	exit := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)

	for _, n := range []*ir.NodeInstance{entry, setX, getX, const10, exit} {
		gf.AddNode(n)
	}

	require.NoError(t, gf.ConnectExec(entry.ID, 0, setX.ID, 0))
	require.NoError(t, gf.ConnectExec(setX.ID, 0, exit.ID, 0))
	require.NoError(t, gf.ConnectData(const10.ID, 0, setX.ID, 0))
	require.NoError(t, gf.ConnectData(getX.ID, 0, exit.ID, 0))

	ctx := ir.NewContext(refbackend.NewContext())
	mod := ir.NewGraphModule("example.com/app")
	mod.AddFunction(gf)
	require.NoError(t, ctx.AddModule(mod))

	backendMod := ctx.Backend().NewModule("test")
	fc := funccompile.NewFunctionCompiler(ctx, backendMod, gf)
	fc.Validate = true

	r := fc.Initialize()
	require.True(t, r.Success(), "%+v", r.Entries())
	r = fc.Compile()
	require.True(t, r.Success(), "%+v", r.Entries())

	require.NoError(t, backendMod.Verify())
	eng, err := backendMod.JIT()
	require.NoError(t, err)

	symbol := mangle.Mangle("example.com/app", "main")
	out, err := eng.RunMain(symbol, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 10, out)
}

// TestFunctionCompiler_SharedPureDependency drives the same shared
// const-int scenario as nodecompile's own test, but through the full
// FunctionCompiler path so the cell/retaddr allocation it owns is
// exercised too.
func TestFunctionCompiler_SharedPureDependency(t *testing.T) {
	sig := nodetype.Signature{DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}}}
	gf := ir.NewGraphFunction("example.com/app", "compute", sig)

	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	exit := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)
	seven := ir.NewNodeInstance(lang.ConstInt(32, 7), 0, 0)
	three := ir.NewNodeInstance(lang.ConstInt(32, 3), 0, 0)

	var addType nodetype.NodeType
	for _, nt := range lang.Arithmetic() {
		if nt.Name == "add.i32" {
			addType = nt
		}
	}
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

	ctx := ir.NewContext(refbackend.NewContext())
	mod := ir.NewGraphModule("example.com/app")
	mod.AddFunction(gf)
	require.NoError(t, ctx.AddModule(mod))

	backendMod := ctx.Backend().NewModule("test")
	fc := funccompile.NewFunctionCompiler(ctx, backendMod, gf)
	r := fc.Initialize()
	require.True(t, r.Success(), "%+v", r.Entries())
	r = fc.Compile()
	require.True(t, r.Success(), "%+v", r.Entries())

	require.NoError(t, backendMod.Verify())
	eng, err := backendMod.JIT()
	require.NoError(t, err)
	out, err := eng.RunMain(mangle.Mangle("example.com/app", "compute"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 17, out)
}
