// SPDX-License-Identifier: MIT

// Package funccompile implements Chigraph's function compiler (spec C8):
// it orchestrates a nodecompile.Compiler over one GraphFunction, owning
// everything a single function activation needs that nodecompile itself
// doesn't allocate — the backend function declaration, the alloc block,
// every node's output-value cell, the debug-line bijection, and the
// late rebinding of entry/exit/local-accessor NodeTypes that can only be
// given concrete backend values once a function is actually being
// compiled (spec §4.5).
//
// Grounded on lvlath/builder's staged construction idiom
// (_examples/katalvlaran-lvlath/builder): a builder-like object that
// accumulates state across an ordered sequence of steps (initialize,
// then compile) before handing back a finished artifact.
package funccompile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/mangle"
	"github.com/chigraph/chigraph/nodecompile"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
	"github.com/chigraph/chigraph/result"
	"github.com/chigraph/chigraph/validate"
)

// FunctionCompiler compiles one GraphFunction into a defined backend
// function (spec C8). Use NewFunctionCompiler, then Initialize, then
// Compile; a FunctionCompiler is single-use.
type FunctionCompiler struct {
	Ctx *ir.Context
	Mod backend.Module
	Fn  *ir.GraphFunction

	// Debug, when true, attaches a debug-info compile unit and
	// per-node line locations (spec §4.5 step 3). FileName/Dir name the
	// synthesized source file the debug info is anchored to.
	Debug    bool
	FileName string
	Dir      string

	// Validate, when true, runs the full C6 validator during Initialize
	// and aborts before any codegen if it reports an E-severity entry
	// (spec §4.5 step 4).
	Validate bool

	backendFn  backend.Function
	allocBlock backend.Block
	cells      map[uuid.UUID][]backend.Value
	retAddr    map[uuid.UUID]backend.Value
	lines      map[uuid.UUID]int
	dcu        backend.DebugCompileUnit
	subroutine backend.DebugType
}

// NewFunctionCompiler prepares a FunctionCompiler for fn, compiling
// against mod within ctx.
func NewFunctionCompiler(ctx *ir.Context, mod backend.Module, fn *ir.GraphFunction) *FunctionCompiler {
	return &FunctionCompiler{Ctx: ctx, Mod: mod, Fn: fn}
}

// resolveType fills in t's BackendType, resolving through t's owning
// module when t is not a LangModule primitive (a struct field or local
// variable typed by a user-declared GraphStruct).
func resolveType(ctx *ir.Context, t dtype.DataType) dtype.DataType {
	if t.IsPointer() {
		elem := resolveType(ctx, t.Elem())
		t.BackendType = ctx.Backend().PointerType(elem.BackendType)
		return t
	}
	if t.ModulePath == lang.ModulePath {
		return lang.ResolveBackendType(ctx.Backend(), t)
	}
	mod, err := ctx.Module(t.ModulePath)
	if err != nil {
		return t
	}
	gm, ok := mod.(*ir.GraphModule)
	if !ok {
		return t
	}
	s, ok := gm.Struct(t.Name)
	if !ok {
		return t
	}
	return s.DataType(ctx)
}

// DeclareSignature declares fn's backend function signature in mod
// without building any blocks: dataInputs by value, dataOutputs as
// out-pointers, a trailing i32 exec-selector parameter, returning the
// selector type (spec §4.2's calling convention). Used both by
// Initialize (the function being actively compiled) and by modcompile
// (forward-declaring a dependency's functions, spec §4.6 step 3) so
// both see an identical signature for the same GraphFunction.
func DeclareSignature(ctx *ir.Context, mod backend.Module, fn *ir.GraphFunction) backend.Function {
	sig := fn.Signature
	paramTypes := make([]backend.Type, 0, len(sig.DataInputs)+len(sig.DataOutputs)+1)
	for _, p := range sig.DataInputs {
		paramTypes = append(paramTypes, resolveType(ctx, p.Type).BackendType)
	}
	for _, p := range sig.DataOutputs {
		out := resolveType(ctx, p.Type)
		paramTypes = append(paramTypes, ctx.Backend().PointerType(out.BackendType))
	}
	selType := ctx.Backend().IntType(32)
	paramTypes = append(paramTypes, selType)

	name := mangle.Mangle(fn.ModulePath, fn.Name)
	return mod.DeclareFunction(name, paramTypes, selType)
}

// Initialize runs spec §4.5's initialize steps: declares the backend
// function, allocates the alloc block and every cell it needs, assigns
// debug line numbers, rebinds entry/exit/local-accessor NodeTypes to
// this activation's concrete backend values, and optionally validates.
func (fc *FunctionCompiler) Initialize() *result.Result {
	r := result.New()
	sig := fc.Fn.Signature

	if fc.Validate {
		r.Merge(validate.CheckConnectionSymmetry(fc.Fn))
		r.Merge(validate.CheckExecutionOrder(fc.Fn))
		if !r.Success() {
			return r
		}
	}

	fc.backendFn = DeclareSignature(fc.Ctx, fc.Mod, fc.Fn)
	fc.allocBlock = fc.backendFn.AppendBlock("alloc")
	ab := fc.Ctx.Backend().Builder(fc.allocBlock)

	entry, err := fc.Fn.EntryNode()
	if err != nil {
		r.Errorf(result.CodeNoEntryNode, "%v", err)
		return r
	}
	entry.Type = lang.EntryNodeType(sig)

	outParams := make([]backend.Value, len(sig.DataOutputs))
	for i := range sig.DataOutputs {
		outParams[i] = fc.backendFn.Param(len(sig.DataInputs) + i)
	}
	for _, exit := range fc.Fn.ExitNodes() {
		execOutputName := "exec"
		if len(exit.Type.ExecInputs) == 1 {
			execOutputName = exit.Type.ExecInputs[0]
		}
		exit.Type = lang.ExitNodeType(sig, execOutputName, outParams)
	}

	for _, loc := range fc.Fn.Locals {
		ty := resolveType(fc.Ctx, loc.Type)
		cell := ab.Alloca(ty.BackendType, "local."+loc.Name)
		for _, n := range fc.Fn.Nodes() {
			switch n.Type.Name {
			case "_get_" + loc.Name:
				n.Type = lang.GetLocalNodeType(loc.Name, ty, cell)
			case "_set_" + loc.Name:
				n.Type = lang.SetLocalNodeType(loc.Name, ty, cell)
			}
		}
	}

	counts := nodecompile.PureConsumerCounts(fc.Fn)
	fc.cells = make(map[uuid.UUID][]backend.Value, len(fc.Fn.Nodes()))
	fc.retAddr = make(map[uuid.UUID]backend.Value)
	fc.lines = make(map[uuid.UUID]int, len(fc.Fn.Nodes()))

	for i, n := range fc.Fn.Nodes() {
		fc.lines[n.ID] = i + 1
		outs := make([]backend.Value, len(n.Type.DataOutputs))
		for j, p := range n.Type.DataOutputs {
			ty := resolveType(fc.Ctx, p.Type)
			outs[j] = ab.Alloca(ty.BackendType, fmt.Sprintf("n%d.%s", i, p.Name))
		}
		fc.cells[n.ID] = outs
		if counts[n.ID] > 1 {
			fc.retAddr[n.ID] = ab.Alloca(nodecompile.BlockAddressType(fc.Ctx.Backend()), fmt.Sprintf("n%d.retaddr", i))
		}
	}

	if fc.Debug {
		fc.dcu = fc.Mod.NewDebugCompileUnit(fc.FileName)
		file := fc.dcu.NewFile(fc.FileName, fc.Dir)
		paramCount := len(sig.DataInputs) + len(sig.DataOutputs) + 1
		params := make([]backend.DebugType, paramCount)
		for i := range params {
			params[i] = file
		}
		fc.subroutine = fc.dcu.NewSubroutineType(params)
	}

	return r
}

// Compile runs spec §4.5's compile steps: locate the entry node, drive
// nodecompile.Compiler from it, wire the alloc block into the result,
// and attach subroutine debug metadata.
func (fc *FunctionCompiler) Compile() *result.Result {
	r := result.New()
	entry, err := fc.Fn.EntryNode()
	if err != nil {
		r.Errorf(result.CodeNoEntryNode, "%v", err)
		return r
	}

	nc := nodecompile.New(fc.Fn, fc.Ctx.Backend(), fc.Mod, fc.backendFn, fc.cells, fc.retAddr, fc.lines, fc.dcu, fc.subroutine)
	head, cr := nc.CompileFromEntry(entry)
	r.Merge(cr)
	if !r.Success() {
		return r
	}

	ab := fc.Ctx.Backend().Builder(fc.allocBlock)
	ab.Br(head)

	if fc.subroutine != nil {
		fc.backendFn.SetSubroutineType(fc.subroutine)
	}
	return r
}

// Function returns the backend function this compiler declared.
// Initialize must have been called first.
func (fc *FunctionCompiler) Function() backend.Function { return fc.backendFn }

// NodeType returns a copy of nt whose port types have their BackendType
// resolved against ctx's backend, by the same rule Initialize and
// DeclareSignature use for ports and locals. No package in this module
// calls it.
func NodeType(ctx *ir.Context, nt nodetype.NodeType) nodetype.NodeType {
	out := nt.Clone()
	for i := range out.DataInputs {
		out.DataInputs[i].Type = resolveType(ctx, out.DataInputs[i].Type)
	}
	for i := range out.DataOutputs {
		out.DataOutputs[i].Type = resolveType(ctx, out.DataOutputs[i].Type)
	}
	return out
}
