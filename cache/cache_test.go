// SPDX-License-Identifier: MIT
package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/backend/refbackend"
	"github.com/chigraph/chigraph/cache"
)

func buildModule(bctx backend.Context, name string) backend.Module {
	mod := bctx.NewModule(name)
	fn := mod.DeclareFunction(name+".f", nil, bctx.IntType(32))
	b := bctx.Builder(fn.AppendBlock("entry"))
	b.Ret(bctx.ConstInt(bctx.IntType(32), 42))
	return mod
}

func TestModuleCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "bc"))
	require.NoError(t, err)
	defer c.Close()

	bctx := refbackend.NewContext()
	mod := buildModule(bctx, "orig")

	sourceTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.CacheModule("example.com/pkg/util", mod, sourceTime))

	got, ok, err := c.RetrieveFromCache(bctx, "example.com/pkg/util", sourceTime)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, got)

	ut, ok := c.CacheUpdateTime("example.com/pkg/util")
	require.True(t, ok)
	require.True(t, ut.Equal(sourceTime) || ut.Equal(sourceTime.Truncate(time.Second)))
}

func TestModuleCache_StaleMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "bc"))
	require.NoError(t, err)
	defer c.Close()

	bctx := refbackend.NewContext()
	mod := buildModule(bctx, "orig")

	sourceTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.CacheModule("example.com/pkg/util", mod, sourceTime))

	newer := sourceTime.Add(time.Hour)
	_, ok, err := c.RetrieveFromCache(bctx, "example.com/pkg/util", newer)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestModuleCache_UnknownPathMisses(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "bc"))
	require.NoError(t, err)
	defer c.Close()

	bctx := refbackend.NewContext()
	_, ok, err := c.RetrieveFromCache(bctx, "example.com/nope", time.Time{})
	require.NoError(t, err)
	require.False(t, ok)

	_, ok = c.CacheUpdateTime("example.com/nope")
	require.False(t, ok)
}

func TestModuleCache_Invalidate(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "cache.db"), filepath.Join(dir, "bc"))
	require.NoError(t, err)
	defer c.Close()

	bctx := refbackend.NewContext()
	mod := buildModule(bctx, "orig")
	sourceTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.CacheModule("example.com/pkg/util", mod, sourceTime))

	require.NoError(t, c.InvalidateCache("example.com/pkg/util"))

	_, ok, err := c.RetrieveFromCache(bctx, "example.com/pkg/util", time.Time{})
	require.NoError(t, err)
	require.False(t, ok)
	_, ok = c.CacheUpdateTime("example.com/pkg/util")
	require.False(t, ok)
}
