// SPDX-License-Identifier: MIT

// Package cache implements Chigraph's module cache (spec C10): a
// SQLite-backed index mapping a module path to the on-disk bitcode file
// holding its last compiled backend module, keyed by source edit time
// (spec §4.8).
//
// Grounded on liuprestin-relurpify/framework/ast/sqlite_store.go's
// SQLiteStore: a database/sql handle over github.com/mattn/go-sqlite3,
// one init-schema statement, upsert-by-primary-key writes. The blob
// itself (there, AST summaries; here, bitcode) stays out of the row and
// on disk, addressed by a path column — the same split SQLiteStore uses
// for file content versus file metadata.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/mangle"
)

// ModuleCache persists compiled backend modules as bitcode files,
// indexed by module path in a SQLite database (spec C10).
type ModuleCache struct {
	db  *sql.DB
	dir string
}

// Open creates or opens a ModuleCache whose index lives at dbPath and
// whose bitcode files live under dir.
func Open(dbPath, dir string) (*ModuleCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dbPath, err)
	}
	c := &ModuleCache{db: db, dir: dir}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *ModuleCache) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS modules (
		module_path TEXT PRIMARY KEY,
		file_path   TEXT NOT NULL,
		source_time INTEGER NOT NULL,
		content_hash TEXT NOT NULL
	);`
	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("cache: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *ModuleCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// filePath deterministically derives a filesystem-safe name for path,
// reusing mangle's escaping rules (the same guarantee Mangle gives
// linker symbols — no unescaped '/', '.', or '_' collisions between two
// distinct module paths — applies equally well to filenames).
func (c *ModuleCache) filePath(modulePath string) string {
	return filepath.Join(c.dir, mangle.Mangle(modulePath, "bc")+".bc")
}

// CacheModule writes mod's bitcode to disk and records it in the index,
// with the file's mtime set to sourceTime (spec §4.8's on-disk policy:
// "the file's mtime is set to source_time so that subsequent compares
// use only the filesystem clock"). The write is atomic: bitcode is
// written to a temp file in dir, then renamed into place.
func (c *ModuleCache) CacheModule(modulePath string, mod backend.Module, sourceTime time.Time) error {
	bc, err := mod.WriteBitcode()
	if err != nil {
		return fmt.Errorf("cache: write bitcode for %s: %w", modulePath, err)
	}

	dest := c.filePath(modulePath)
	tmp, err := os.CreateTemp(c.dir, "tmp-*.bc")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(bc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: rename into place: %w", err)
	}
	if err := os.Chtimes(dest, sourceTime, sourceTime); err != nil {
		return fmt.Errorf("cache: set mtime: %w", err)
	}

	sum := sha256.Sum256(bc)
	_, err = c.db.Exec(`
		INSERT INTO modules (module_path, file_path, source_time, content_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(module_path) DO UPDATE SET
			file_path=excluded.file_path,
			source_time=excluded.source_time,
			content_hash=excluded.content_hash
	`, modulePath, dest, sourceTime.Unix(), hex.EncodeToString(sum[:]))
	if err != nil {
		return fmt.Errorf("cache: index %s: %w", modulePath, err)
	}
	return nil
}

// RetrieveFromCache loads modulePath's cached backend module, parsed
// against bctx, provided the cached file's mtime is not older than
// atLeastThisNew. Returns ok=false (with a nil error) on a clean cache
// miss — unknown path, stale file, or a file that no longer exists.
func (c *ModuleCache) RetrieveFromCache(bctx backend.Context, modulePath string, atLeastThisNew time.Time) (mod backend.Module, ok bool, err error) {
	var file string
	row := c.db.QueryRow(`SELECT file_path FROM modules WHERE module_path = ?`, modulePath)
	if err := row.Scan(&file); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: lookup %s: %w", modulePath, err)
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, false, nil
	}
	if info.ModTime().Before(atLeastThisNew) {
		return nil, false, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, false, nil
	}
	m, err := bctx.ParseBitcode(data)
	if err != nil {
		return nil, false, nil
	}
	return m, true, nil
}

// CacheUpdateTime returns the mtime of modulePath's cached file (spec
// §4.8's cacheUpdateTime). ok is false if nothing is cached for
// modulePath.
func (c *ModuleCache) CacheUpdateTime(modulePath string) (t time.Time, ok bool) {
	var file string
	row := c.db.QueryRow(`SELECT file_path FROM modules WHERE module_path = ?`, modulePath)
	if err := row.Scan(&file); err != nil {
		return time.Time{}, false
	}
	info, err := os.Stat(file)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// InvalidateCache removes any cached entry for modulePath, tolerating a
// missing file or a missing row (invalidating something not cached is a
// no-op, not an error).
func (c *ModuleCache) InvalidateCache(modulePath string) error {
	var file string
	row := c.db.QueryRow(`SELECT file_path FROM modules WHERE module_path = ?`, modulePath)
	if err := row.Scan(&file); err == nil {
		os.Remove(file)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("cache: lookup %s: %w", modulePath, err)
	}
	if _, err := c.db.Exec(`DELETE FROM modules WHERE module_path = ?`, modulePath); err != nil {
		return fmt.Errorf("cache: delete %s: %w", modulePath, err)
	}
	return nil
}
