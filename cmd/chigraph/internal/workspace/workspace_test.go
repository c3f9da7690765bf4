// SPDX-License-Identifier: MIT
package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/cmd/chigraph/internal/workspace"
)

func TestInit_CreatesMarkerAndDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := workspace.Init(root)
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(root, workspace.MarkerDir))
	require.DirExists(t, filepath.Join(root, workspace.SrcDir))
	require.DirExists(t, filepath.Join(root, workspace.LibDir))
	require.FileExists(t, filepath.Join(root, workspace.MarkerDir, workspace.ConfigFile))

	_, err = workspace.Init(root)
	require.ErrorIs(t, err, workspace.ErrAlreadyAWorkspace)

	loaded, err := workspace.Load(root)
	require.NoError(t, err)
	require.Equal(t, w.Root, loaded.Root)
}

func TestFind_WalksUpToMarker(t *testing.T) {
	root := t.TempDir()
	_, err := workspace.Init(root)
	require.NoError(t, err)

	nested := filepath.Join(root, "src", "nested", "deeper")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := workspace.Find(nested)
	require.NoError(t, err)
	require.Equal(t, root, found)
}

func TestFind_NoMarkerReturnsError(t *testing.T) {
	root := t.TempDir()
	_, err := workspace.Find(root)
	require.ErrorIs(t, err, workspace.ErrNotAWorkspace)
}

func TestSaveConfig_RoundTrips(t *testing.T) {
	root := t.TempDir()
	w, err := workspace.Init(root)
	require.NoError(t, err)

	w.Config.Dependencies["example.com/util"] = "../util.chimod"
	w.Config.DebugInfo = true
	require.NoError(t, w.Save())

	reloaded, err := workspace.Load(root)
	require.NoError(t, err)
	require.Equal(t, "../util.chimod", reloaded.Config.Dependencies["example.com/util"])
	require.True(t, reloaded.Config.DebugInfo)
}

func TestSourcePath_JoinsModulePathUnderSrc(t *testing.T) {
	w := &workspace.Workspace{Root: "/ws"}
	require.Equal(t, filepath.Join("/ws", "src", "example.com/app.chimod"), w.SourcePath("example.com/app"))
}
