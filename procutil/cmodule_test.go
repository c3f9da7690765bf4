// SPDX-License-Identifier: MIT
package procutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/procutil"
)

func TestCompileCSource_ProducesNonEmptyBitcode(t *testing.T) {
	if _, err := procutil.LocateCompiler(); err != nil {
		t.Skip("no C compiler available in this environment")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "empty.c")
	require.NoError(t, os.WriteFile(src, []byte("int chigraph_test_symbol(void) { return 0; }\n"), 0o644))

	bc, err := procutil.CompileCSource(context.Background(), []string{src}, procutil.CompileCSourceOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, bc)
}

func TestCompileCSource_RequiresSourceFiles(t *testing.T) {
	_, err := procutil.CompileCSource(context.Background(), nil, procutil.CompileCSourceOptions{})
	require.Error(t, err)
}

func TestCompileCModule_SetsBitcode(t *testing.T) {
	if _, err := procutil.LocateCompiler(); err != nil {
		t.Skip("no C compiler available in this environment")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "lib.c")
	require.NoError(t, os.WriteFile(src, []byte("int chigraph_test_symbol(void) { return 1; }\n"), 0o644))

	cmod := ir.NewCModule("test/clib", "", src)
	require.NoError(t, procutil.CompileCModule(context.Background(), cmod))
	require.NotEmpty(t, cmod.Bitcode())
}

func TestCompileCModule_RequiresSourceFiles(t *testing.T) {
	cmod := ir.NewCModule("test/clib", "")
	err := procutil.CompileCModule(context.Background(), cmod)
	require.Error(t, err)
}
