// SPDX-License-Identifier: MIT
package chijson_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/chijson"
	"github.com/chigraph/chigraph/funccompile"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/mangle"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// buildIfModule constructs scenario S1 (spec §8): main() -> i32, entry
// feeding an "if" branching on a constant true, each branch exiting with
// a different literal.
func buildIfModule(t *testing.T) *ir.GraphModule {
	t.Helper()
	sig := nodetype.Signature{DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}}}
	gf := ir.NewGraphFunction("example.com/main", "main", sig)

	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	cond := ir.NewNodeInstance(lang.ConstBool(true), 0, 0)
	branch := ir.NewNodeInstance(lang.If(), 0, 0)
	exitTrue := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)
	exitFalse := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)
	constTrue := ir.NewNodeInstance(lang.ConstInt(32, 0), 0, 0)
	constFalse := ir.NewNodeInstance(lang.ConstInt(32, 1), 0, 0)

	for _, n := range []*ir.NodeInstance{entry, cond, branch, exitTrue, exitFalse, constTrue, constFalse} {
		gf.AddNode(n)
	}

	require.NoError(t, gf.ConnectExec(entry.ID, 0, branch.ID, 0))
	require.NoError(t, gf.ConnectExec(branch.ID, 0, exitTrue.ID, 0))
	require.NoError(t, gf.ConnectExec(branch.ID, 1, exitFalse.ID, 0))
	require.NoError(t, gf.ConnectData(cond.ID, 0, branch.ID, 0))
	require.NoError(t, gf.ConnectData(constTrue.ID, 0, exitTrue.ID, 0))
	require.NoError(t, gf.ConnectData(constFalse.ID, 0, exitFalse.ID, 0))

	mod := ir.NewGraphModule("example.com/main")
	mod.AddFunction(gf)
	return mod
}

func TestEncodeDecode_RoundTripShape(t *testing.T) {
	mod := buildIfModule(t)
	ctx := ir.NewContext(refbackend.NewContext())

	raw, r := chijson.Encode(mod)
	require.True(t, r.Success(), "%+v", r.Entries())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	graphs := doc["graphs"].([]any)
	require.Len(t, graphs, 1)
	fn := graphs[0].(map[string]any)
	require.Equal(t, "function", fn["type"])
	require.Equal(t, "main", fn["name"])
	nodes := fn["nodes"].(map[string]any)
	require.Len(t, nodes, 7)
	conns := fn["connections"].([]any)
	require.Len(t, conns, 6)

	decoded, r := chijson.Decode(ctx, "example.com/main", raw)
	require.True(t, r.Success(), "%+v", r.Entries())
	require.Equal(t, "example.com/main", decoded.Path())
	require.Len(t, decoded.Functions(), 1)
	require.Len(t, decoded.Functions()[0].Nodes(), 7)
}

// TestEncodeDecode_CompilesAndRuns re-runs scenario S1 through a full
// encode -> decode -> compile -> JIT round trip, proving chijson's
// placeholder entry/exit NodeTypes are fully rebound by
// funccompile.Initialize before codegen ever touches them.
func TestEncodeDecode_CompilesAndRuns(t *testing.T) {
	original := buildIfModule(t)
	raw, r := chijson.Encode(original)
	require.True(t, r.Success(), "%+v", r.Entries())

	ctx := ir.NewContext(refbackend.NewContext())
	decoded, r := chijson.Decode(ctx, "example.com/main", raw)
	require.True(t, r.Success(), "%+v", r.Entries())
	require.NoError(t, ctx.AddModule(decoded))

	backendMod := ctx.Backend().NewModule("test")
	fn, ok := decoded.Function("main")
	require.True(t, ok)

	fc := funccompile.NewFunctionCompiler(ctx, backendMod, fn)
	fc.Validate = true
	r = fc.Initialize()
	require.True(t, r.Success(), "%+v", r.Entries())
	r = fc.Compile()
	require.True(t, r.Success(), "%+v", r.Entries())

	require.NoError(t, backendMod.Verify())
	eng, err := backendMod.JIT()
	require.NoError(t, err)

	symbol := mangle.Mangle("example.com/main", "main")
	out, err := eng.RunMain(symbol, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0, out)
}

func TestDecode_UnknownNodeType(t *testing.T) {
	ctx := ir.NewContext(refbackend.NewContext())
	raw := []byte(`{
		"dependencies": [],
		"types": {},
		"graphs": [
			{"type":"function","name":"main",
			 "inputs":[], "outputs":[], "exec_inputs":[], "exec_outputs":[],
			 "local_variables":{},
			 "nodes": {"11111111-1111-1111-1111-111111111111": {"type":"bogus-thing","location":[0,0],"data":{}}},
			 "connections": []}
		]
	}`)
	_, r := chijson.Decode(ctx, "test/bad", raw)
	require.False(t, r.Success())
}

func TestDecode_RejectsNonFunctionGraph(t *testing.T) {
	ctx := ir.NewContext(refbackend.NewContext())
	raw := []byte(`{"dependencies":[],"types":{},"graphs":[{"type":"widget","name":"x"}]}`)
	_, r := chijson.Decode(ctx, "test/bad", raw)
	require.False(t, r.Success())
}
