// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// trivialFunction builds the same entry->const->exit shape
// modcompile's and workspace's tests use, kept local since package main
// cannot import an internal test helper from another package.
func trivialFunction(modulePath, name string) *ir.GraphFunction {
	sig := nodetype.Signature{DataOutputs: []nodetype.Port{{Name: "r", Type: lang.I32}}}
	gf := ir.NewGraphFunction(modulePath, name, sig)
	entry := ir.NewNodeInstance(lang.EntryNodeType(sig), 0, 0)
	exit := ir.NewNodeInstance(lang.ExitNodeType(sig, "exec", nil), 0, 0)
	c5 := ir.NewNodeInstance(lang.ConstInt(32, 0), 0, 0)
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

func runCLI(t *testing.T, args ...string) (stdout, stderr *bytes.Buffer, err error) {
	t.Helper()
	cmd := newRootCmd()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return stdout, stderr, err
}

func TestInitCmd_CreatesWorkspace(t *testing.T) {
	root := t.TempDir()
	_, _, err := runCLI(t, "--workspace", root, "init")
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(root, workspace.MarkerDir))
}

func TestCompileCmd_EmitIRPrintsBackendText(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	gm := ir.NewGraphModule("example.com/app")
	gm.AddFunction(trivialFunction("example.com/app", "main"))
	require.NoError(t, workspace.SaveModule(w, gm))

	stdout, stderr, err := runCLI(t, "--workspace", root, "compile", "example.com/app", "--emit-ir", "--no-cache")
	require.NoError(t, err, "stderr: %s", stderr.String())
	require.NotEmpty(t, stdout.String())
}

func TestCompileCmd_UnknownModuleReportsDiagnostic(t *testing.T) {
	root := t.TempDir()
	_, err := workspace.Init(root)
	require.NoError(t, err)

	_, stderr, err := runCLI(t, "--workspace", root, "compile", "example.com/missing", "--no-cache")
	require.Error(t, err)
	require.Contains(t, stderr.String(), "E01")
}

func TestRunCmd_ExecutesEntryFunction(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	gm := ir.NewGraphModule("example.com/app")
	gm.AddFunction(trivialFunction("example.com/app", "main"))
	require.NoError(t, workspace.SaveModule(w, gm))

	_, stderr, err := runCLI(t, "--workspace", root, "run", "example.com/app", "--no-cache")
	require.NoError(t, err, "stderr: %s", stderr.String())
}

func TestGetCmd_RejectsMismatchedModulePath(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	gm := ir.NewGraphModule("example.com/util")
	gm.AddFunction(trivialFunction("example.com/util", "seven"))
	require.NoError(t, workspace.SaveModule(w, gm))

	_, _, err = runCLI(t, "--workspace", root, "get", "example.com/wrong-name", w.SourcePath("example.com/util"))
	require.Error(t, err)
}
