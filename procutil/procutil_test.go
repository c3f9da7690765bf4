// SPDX-License-Identifier: MIT
package procutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_CapturesStdout(t *testing.T) {
	stdout, _, err := Run(context.Background(), Request{Args: []string{"sh", "-c", "echo hello"}})
	require.NoError(t, err)
	require.Equal(t, "hello\n", stdout)
}

func TestRun_NonZeroExitIsError(t *testing.T) {
	_, stderr, err := Run(context.Background(), Request{Args: []string{"sh", "-c", "echo boom >&2; exit 3"}})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSubprocessFailed)
	require.Equal(t, "boom\n", stderr)
}

func TestRun_PassesStdin(t *testing.T) {
	stdout, _, err := Run(context.Background(), Request{Args: []string{"cat"}, Input: "piped text"})
	require.NoError(t, err)
	require.Equal(t, "piped text", stdout)
}

func TestRun_RequiresArgs(t *testing.T) {
	_, _, err := Run(context.Background(), Request{})
	require.Error(t, err)
}

func TestScratchFile_ReadAndCloseRemovesFile(t *testing.T) {
	sf, err := NewScratchFile(t.TempDir(), "scratch-*.bin")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(sf.Path, []byte{1, 2, 3}, 0o644))

	data, err := sf.ReadAndClose()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	_, statErr := os.Stat(sf.Path)
	require.True(t, os.IsNotExist(statErr))
}

func TestScratchDir_CleanupRemovesDirectory(t *testing.T) {
	parent := t.TempDir()
	dir, cleanup, err := ScratchDir(parent, "work-*")
	require.NoError(t, err)
	require.DirExists(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0o644))
	cleanup()

	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr))
}

func TestLocateCompiler_NoCandidatesFound(t *testing.T) {
	saved := compilerCandidates
	compilerCandidates = []string{"chigraph-nonexistent-compiler-xyz"}
	defer func() { compilerCandidates = saved }()

	_, err := LocateCompiler()
	require.ErrorIs(t, err, ErrNoCompiler)
}

func TestLocateLibc_NoCandidatesFound(t *testing.T) {
	saved := libcHeaderCandidates
	libcHeaderCandidates = []string{"/no/such/path/stdlib.h"}
	defer func() { libcHeaderCandidates = saved }()

	_, err := LocateLibc()
	require.ErrorIs(t, err, ErrNoLibc)
}
