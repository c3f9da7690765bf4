// SPDX-License-Identifier: MIT
package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

func trivialFunction(modulePath, name string) *ir.GraphFunction {
	sig := nodetype.Signature{DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}}}
	gf := ir.NewGraphFunction(modulePath, name, sig)
	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	exit := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)
	c5 := ir.NewNodeInstance(lang.ConstInt(32, 7), 0, 0)
	gf.AddNode(entry)
	gf.AddNode(exit)
	gf.AddNode(c5)
	if err := gf.ConnectExec(entry.ID, 0, exit.ID, 0); err != nil {
		panic(err)
	}
	if err := gf.ConnectData(c5.ID, 0, exit.ID, 0); err != nil {
		panic(err)
	}
	return gf
}

func TestLoadModule_DecodesDependenciesRecursively(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	util := ir.NewGraphModule("example.com/util")
	util.AddFunction(trivialFunction("example.com/util", "seven"))
	require.NoError(t, workspace.SaveModule(w, util))

	app := ir.NewGraphModule("example.com/app", ir.WithDependency("example.com/util"))
	app.AddFunction(trivialFunction("example.com/app", "main"))
	require.NoError(t, workspace.SaveModule(w, app))

	ctx := ir.NewContext(refbackend.NewContext())
	gm, r := workspace.LoadModule(ctx, w, "example.com/app")
	require.True(t, r.Success(), "%+v", r.Entries())
	require.NotNil(t, gm)
	require.Equal(t, "example.com/app", gm.Path())

	loadedUtil, err := ctx.Module("example.com/util")
	require.NoError(t, err)
	require.Equal(t, "example.com/util", loadedUtil.Path())
}

func TestLoadModule_MissingSourceReportsFileNotFound(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	ctx := ir.NewContext(refbackend.NewContext())
	gm, r := workspace.LoadModule(ctx, w, "example.com/missing")
	require.False(t, r.Success())
	require.Nil(t, gm)
}

func TestSaveModule_WritesReadableChimodFile(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	app := ir.NewGraphModule("example.com/app")
	app.AddFunction(trivialFunction("example.com/app", "main"))
	require.NoError(t, workspace.SaveModule(w, app))

	path := filepath.Join(root, workspace.SrcDir, "example.com/app.chimod")
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
