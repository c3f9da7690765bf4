// SPDX-License-Identifier: MIT
package result_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/result"
)

func TestResult_EmptyIsSuccess(t *testing.T) {
	r := result.New()
	require.True(t, r.Success())
	require.Empty(t, r.Entries())
}

func TestResult_ErrorFlipsSuccess(t *testing.T) {
	r := result.New()
	r.Warnf(result.CodeUnusedLocal, "local %q never read", "n")
	require.True(t, r.Success())

	r.Errorf(result.CodeUnknownModule, "no such module %q", "foo/bar")
	require.False(t, r.Success())
	require.Len(t, r.Entries(), 2)
	require.Equal(t, result.CodeUnknownModule, r.Entries()[1].Code)
}

func TestResult_ScopeAttachesFields(t *testing.T) {
	r := result.New()
	sc := r.OpenScope(map[string]any{"module": "test/main"})
	r.Errorf(result.CodeUnknownNode, "missing node %s", "n1")
	sc.Close()
	r.Errorf(result.CodeUnknownNodeType, "missing type %s", "t1")

	entries := r.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "test/main", entries[0].Fields["module"])
	require.Nil(t, entries[1].Fields)
}

func TestResult_NestedScopesLayerFields(t *testing.T) {
	r := result.New()
	outer := r.OpenScope(map[string]any{"module": "m"})
	inner := r.OpenScope(map[string]any{"function": "f"})
	r.Errorf(result.CodeUnknownNode, "x")
	inner.Close()
	outer.Close()

	f := r.Entries()[0].Fields
	require.Equal(t, "m", f["module"])
	require.Equal(t, "f", f["function"])
}

func TestResult_CloseOutOfOrderTruncates(t *testing.T) {
	r := result.New()
	outer := r.OpenScope(map[string]any{"a": 1})
	_ = r.OpenScope(map[string]any{"b": 2})
	outer.Close() // closing the outer scope first should drop both
	r.Errorf(result.CodeUnknownNode, "x")
	require.Nil(t, r.Entries()[0].Fields)
}

func TestResult_MergeConcatenatesEntries(t *testing.T) {
	a := result.New()
	a.Infof(result.CodeCacheHit, "cached")
	b := result.New()
	b.Errorf(result.CodeBackendFailure, "boom")

	a.Merge(b)
	require.False(t, a.Success())
	require.Len(t, a.Entries(), 2)
}

func TestCombine(t *testing.T) {
	a := result.New()
	a.Warnf(result.CodeDeadNode, "n1 unreachable")
	b := result.New()
	b.Warnf(result.CodeDeadNode, "n2 unreachable")

	c := result.Combine(a, b)
	require.True(t, c.Success())
	require.Len(t, c.Entries(), 2)
}
