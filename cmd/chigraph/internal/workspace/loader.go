// SPDX-License-Identifier: MIT
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chigraph/chigraph/chijson"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/result"
)

// LoadModule reads modulePath's .chimod file from w, decodes it with
// chijson, registers it (and every transitive dependency it names) into
// ctx, and stamps its LastEditTime from the source file's mtime (spec
// §4.8's cache-freshness comparison). Already-registered modules are
// reused rather than re-read, so a dependency shared by two modules is
// decoded once per Context.
func LoadModule(ctx *ir.Context, w *Workspace, modulePath string) (*ir.GraphModule, *result.Result) {
	r := result.New()
	gm := loadRecursive(ctx, w, modulePath, r)
	return gm, r
}

func loadRecursive(ctx *ir.Context, w *Workspace, modulePath string, r *result.Result) *ir.GraphModule {
	if existing, err := ctx.Module(modulePath); err == nil {
		gm, ok := existing.(*ir.GraphModule)
		if !ok {
			r.Errorf(result.CodeUnknownModule, "module %s is already registered as a non-graph module", modulePath)
			return nil
		}
		return gm
	}

	path := w.SourcePath(modulePath)
	info, err := os.Stat(path)
	if err != nil {
		r.Errorf(result.CodeFileNotFound, "locating module %s: %v", modulePath, err)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.Errorf(result.CodeFileNotFound, "reading %s: %v", path, err)
		return nil
	}

	gm, decodeResult := chijson.Decode(ctx, modulePath, data)
	r.Merge(decodeResult)
	if gm == nil {
		return nil
	}
	gm.Touch(info.ModTime())

	if err := ctx.AddModule(gm); err != nil {
		r.Errorf(result.CodeUnknownModule, "registering module %s: %v", modulePath, err)
		return nil
	}

	for _, dep := range gm.Dependencies() {
		if dep == "" {
			continue
		}
		loadRecursive(ctx, w, dep, r)
		if !r.Success() {
			return nil
		}
	}
	return gm
}

// SaveModule encodes mod with chijson and writes it to its .chimod
// location under w.
func SaveModule(w *Workspace, mod *ir.GraphModule) error {
	data, r := chijson.Encode(mod)
	if !r.Success() {
		return fmt.Errorf("workspace: encoding module %s: %v", mod.Path(), r.Entries())
	}
	path := w.SourcePath(mod.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("workspace: mkdir %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}
