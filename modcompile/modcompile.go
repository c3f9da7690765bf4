// SPDX-License-Identifier: MIT

// Package modcompile implements Chigraph's module compiler (spec C9):
// it topologically sorts a module's transitive dependency graph,
// recursively compiles (or loads from cache) each dependency, forward-
// declares their functions into a fresh backend module, drives
// funccompile over the target module's own functions, links in any
// CModule dependency's bitcode, and caches the result (spec §4.6).
//
// Grounded on dfs's three-color DFS cycle detector
// (_examples/katalvlaran-lvlath/dfs, DetectCycles/dfsVisit): the same
// White/Gray/Black state machine, generalized from "graph vertex" to
// "module path" and from "record the cycle" to "report it as a
// result.Result entry and abort", walking Module.Dependencies() instead
// of core.Graph edges.
package modcompile

import (
	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/cache"
	"github.com/chigraph/chigraph/funccompile"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/logx"
	"github.com/chigraph/chigraph/result"
)

const (
	gray  = 1
	black = 2
)

// Compiler compiles GraphModules into backend modules, honoring a
// dependency graph and an optional ModuleCache (spec C9).
type Compiler struct {
	Ctx   *ir.Context
	Cache *cache.ModuleCache

	// Debug and Validate are forwarded to every funccompile.FunctionCompiler
	// this Compiler drives.
	Debug    bool
	Validate bool

	Log logx.Logger

	color map[string]int
	built map[string]backend.Module
}

// New prepares a Compiler. c may be nil to disable caching entirely
// (every module is always recompiled).
func New(ctx *ir.Context, c *cache.ModuleCache) *Compiler {
	return &Compiler{Ctx: ctx, Cache: c, Log: logx.Default}
}

// Compile runs spec §4.6's algorithm for modulePath: topologically sort
// its transitive dependency graph, compile (or load from cache) every
// dependency, forward-declare their functions, compile modulePath's own
// functions, link in any CModule dependency's bitcode, and cache the
// result.
func (c *Compiler) Compile(modulePath string) (backend.Module, *result.Result) {
	c.color = make(map[string]int)
	c.built = make(map[string]backend.Module)
	r := result.New()
	mod := c.compileOne(modulePath, r)
	return mod, r
}

// compileOne compiles modulePath, memoizing within this Compiler's
// lifetime (c.built) so a dependency shared by two modules is compiled
// or loaded exactly once. Returns nil once r has accumulated any
// E-severity entry.
func (c *Compiler) compileOne(modulePath string, r *result.Result) backend.Module {
	if mod, ok := c.built[modulePath]; ok {
		return mod
	}
	if c.color[modulePath] == gray {
		r.Errorf(result.CodeDanglingDependency, "module dependency cycle detected at %s", modulePath)
		return nil
	}
	c.color[modulePath] = gray
	defer func() { c.color[modulePath] = black }()

	m, err := c.Ctx.Module(modulePath)
	if err != nil {
		r.Errorf(result.CodeDanglingDependency, "unresolved module dependency %s: %v", modulePath, err)
		return nil
	}

	if cmod, ok := m.(*ir.CModule); ok {
		return c.loadCModule(cmod, r)
	}

	gm, ok := m.(*ir.GraphModule)
	if !ok {
		r.Errorf(result.CodeUnknownModule, "module %s is neither a GraphModule nor a CModule", modulePath)
		return nil
	}

	if c.Cache != nil {
		if cached, hit, err := c.Cache.RetrieveFromCache(c.Ctx.Backend(), modulePath, gm.LastEditTime()); err == nil && hit {
			c.Log.Infof("modcompile: cache hit for %s", modulePath)
			c.built[modulePath] = cached
			return cached
		}
	}

	for _, depPath := range gm.Dependencies() {
		c.compileOne(depPath, r)
		if !r.Success() {
			return nil
		}
	}

	backendMod := c.Ctx.Backend().NewModule(modulePath)
	for _, depPath := range gm.Dependencies() {
		if depGM, ok := c.mustGraphModule(depPath); ok {
			for _, fn := range depGM.Functions() {
				funccompile.DeclareSignature(c.Ctx, backendMod, fn)
			}
		}
	}

	for _, fn := range gm.Functions() {
		fc := funccompile.NewFunctionCompiler(c.Ctx, backendMod, fn)
		fc.Debug = c.Debug
		fc.Validate = c.Validate
		r.Merge(fc.Initialize())
		if !r.Success() {
			return nil
		}
		r.Merge(fc.Compile())
		if !r.Success() {
			return nil
		}
	}

	for _, depPath := range gm.Dependencies() {
		dep, err := c.Ctx.Module(depPath)
		if err != nil {
			continue
		}
		cmod, ok := dep.(*ir.CModule)
		if !ok {
			continue
		}
		bc := cmod.Bitcode()
		if bc == nil {
			r.Errorf(result.CodeDanglingDependency, "CModule %s has not been compiled to bitcode", depPath)
			return nil
		}
		cBackendMod, err := c.Ctx.Backend().ParseBitcode(bc)
		if err != nil {
			r.Errorf(result.CodeBackendFailure, "parsing CModule %s bitcode: %v", depPath, err)
			return nil
		}
		if err := backendMod.Link(cBackendMod); err != nil {
			r.Errorf(result.CodeBackendFailure, "linking CModule %s: %v", depPath, err)
			return nil
		}
	}

	if c.Cache != nil {
		if err := c.Cache.CacheModule(modulePath, backendMod, gm.LastEditTime()); err != nil {
			c.Log.Warnf("modcompile: caching %s: %v", modulePath, err)
		}
	}

	c.built[modulePath] = backendMod
	return backendMod
}

// mustGraphModule looks up path as a GraphModule, for the forward-
// declaration step (only GraphModule dependencies contribute
// GraphFunctions to forward-declare; a CModule's symbols are linked in
// wholesale instead, see compileOne's CModule loop).
func (c *Compiler) mustGraphModule(path string) (*ir.GraphModule, bool) {
	m, err := c.Ctx.Module(path)
	if err != nil {
		return nil, false
	}
	gm, ok := m.(*ir.GraphModule)
	return gm, ok
}

// loadCModule parses a CModule's previously compiled bitcode (procutil's
// job, spec C13) into a standalone backend module, for when a CModule
// is the direct compile target rather than a dependency.
func (c *Compiler) loadCModule(cmod *ir.CModule, r *result.Result) backend.Module {
	bc := cmod.Bitcode()
	if bc == nil {
		r.Errorf(result.CodeDanglingDependency, "CModule %s has not been compiled to bitcode", cmod.Path())
		return nil
	}
	mod, err := c.Ctx.Backend().ParseBitcode(bc)
	if err != nil {
		r.Errorf(result.CodeBackendFailure, "parsing CModule %s bitcode: %v", cmod.Path(), err)
		return nil
	}
	return mod
}
