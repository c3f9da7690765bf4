// SPDX-License-Identifier: MIT
package nodecompile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/result"
)

// DependentPures returns the ordered sequence of pure NodeInstances that
// n transitively reads through its data inputs (spec §4.3): every pure
// ancestor reachable backward through InputData, each appearing once
// (first-seen during the walk) and after all of its own pure data
// dependencies. Non-pure ancestors are not walked past — their outputs
// are already available by execution order, not by pure chaining.
func DependentPures(fn *ir.GraphFunction, n *ir.NodeInstance) []*ir.NodeInstance {
	var order []*ir.NodeInstance
	seen := make(map[uuid.UUID]bool)
	var visit func(node *ir.NodeInstance)
	visit = func(node *ir.NodeInstance) {
		for _, in := range node.InputData {
			if in == nil {
				continue
			}
			src, ok := fn.Node(in.NodeID)
			if !ok || !src.Type.Pure() {
				continue
			}
			if seen[src.ID] {
				continue
			}
			seen[src.ID] = true
			visit(src)
			order = append(order, src)
		}
	}
	visit(n)
	return order
}

// PureConsumerCounts counts, for every pure NodeInstance in fn, how many
// distinct other NodeInstances consume one of its data outputs. A count
// greater than one marks the node as shared (spec §4.4's "shared pure
// dependency"), the trigger for jumpBackInst/IndirectBr handling instead
// of a plain chained Br.
func PureConsumerCounts(fn *ir.GraphFunction) map[uuid.UUID]int {
	consumers := make(map[uuid.UUID]map[uuid.UUID]bool)
	for _, n := range fn.Nodes() {
		for _, src := range n.InputData {
			if src == nil {
				continue
			}
			s, ok := fn.Node(src.NodeID)
			if !ok || !s.Type.Pure() {
				continue
			}
			set, exists := consumers[s.ID]
			if !exists {
				set = make(map[uuid.UUID]bool)
				consumers[s.ID] = set
			}
			set[n.ID] = true
		}
	}
	counts := make(map[uuid.UUID]int, len(consumers))
	for id, set := range consumers {
		counts[id] = len(set)
	}
	return counts
}

// execUnit tracks the per-execID compilation state of one NodeInstance
// (spec §4.4's UNBUILT/BLOCKS_READY/COMPILED machine collapsed to two
// idempotence flags: structure built, codegen invoked).
type execUnit struct {
	codeBlock   map[int]backend.Block
	head        map[int]backend.Block
	structBuilt map[int]bool
	codegenDone map[int]bool
}

// pureUnit tracks a pure NodeInstance's single (execID-0) compiled unit,
// built at most once regardless of how many chains reference it.
type pureUnit struct {
	built        bool
	codeBlock    backend.Block
	retAddrValue backend.Value // cached Load of the retaddr cell, shared nodes only
	possible     []backend.Block
}

// Compiler lowers one GraphFunction's NodeInstance graph, node by node,
// into fnv's basic blocks. A Compiler is used for exactly one
// FunctionCompiler.compile call and discarded afterward (spec §5:
// "FunctionCompiler owns a transient map of NodeCompilers ... nothing
// outside holds references into it").
type Compiler struct {
	Fn  *ir.GraphFunction
	Ctx backend.Context
	Mod backend.Module
	Fun backend.Function

	// Cells holds one pre-allocated storage cell per NodeInstance data
	// output, keyed by node ID then output index. Allocated up front by
	// funccompile's initialize step (spec §4.5 step 2), since every
	// node's outputs need a stable address regardless of whether the
	// node turns out to be a shared pure dependency.
	Cells map[uuid.UUID][]backend.Value
	// RetAddrCells holds one return-address cell per shared pure
	// NodeInstance (only populated for nodes PureConsumerCounts reports
	// as shared), also pre-allocated by funccompile.
	RetAddrCells map[uuid.UUID]backend.Value
	// Lines maps every NodeInstance to its assigned debug line number
	// (spec §4.5 step 3).
	Lines map[uuid.UUID]int
	// DebugScope is the function's subroutine debug type, used to build
	// each node's DebugLocation. Nil disables debug-location attachment.
	DebugScope backend.DebugType
	DCU        backend.DebugCompileUnit

	pureConsumers map[uuid.UUID]int
	units         map[uuid.UUID]*execUnit
	pures         map[uuid.UUID]*pureUnit
	fallback      backend.Block
}

// New builds a Compiler for fn, ready to compile from its entry node.
// cells and retAddrCells must already be populated (funccompile's job);
// PureConsumerCounts is computed once, internally, from fn's current
// connection state.
func New(fn *ir.GraphFunction, ctx backend.Context, mod backend.Module, fnv backend.Function,
	cells map[uuid.UUID][]backend.Value, retAddrCells map[uuid.UUID]backend.Value,
	lines map[uuid.UUID]int, dcu backend.DebugCompileUnit, scope backend.DebugType) *Compiler {
	return &Compiler{
		Fn: fn, Ctx: ctx, Mod: mod, Fun: fnv,
		Cells: cells, RetAddrCells: retAddrCells, Lines: lines,
		DebugScope:    scope,
		DCU:           dcu,
		pureConsumers: PureConsumerCounts(fn),
		units:         make(map[uuid.UUID]*execUnit),
		pures:         make(map[uuid.UUID]*pureUnit),
	}
}

// CompileFromEntry lowers the whole function reachable from entry (spec
// §4.5's compile step 2): stage-1/stage-2 entry, then recursively every
// exec successor. It returns the block funccompile's alloc block should
// branch to in order to begin running entry (entry's own pure-chain head,
// which may not be entry's own code block — spec §4.4 stage1).
func (c *Compiler) CompileFromEntry(entry *ir.NodeInstance) (backend.Block, *result.Result) {
	head, r := c.ensureStructure(entry, 0)
	r.Merge(c.compileExec(entry, 0))
	return head, r
}

func (c *Compiler) execUnitFor(id uuid.UUID) *execUnit {
	u, ok := c.units[id]
	if !ok {
		u = &execUnit{
			codeBlock:   make(map[int]backend.Block),
			head:        make(map[int]backend.Block),
			structBuilt: make(map[int]bool),
			codegenDone: make(map[int]bool),
		}
		c.units[id] = u
	}
	return u
}

func (c *Compiler) pureUnitFor(id uuid.UUID) *pureUnit {
	p, ok := c.pures[id]
	if !ok {
		p = &pureUnit{}
		c.pures[id] = p
	}
	return p
}

// BlockAddressType is the backend type used to store a block address in
// a retaddr cell (spec §4.4's jumpBackInst): a pointer to void, mirroring
// LLVM's blockaddress result type. funccompile allocates every shared
// pure node's retaddr cell with this same type.
func BlockAddressType(ctx backend.Context) backend.Type {
	return ctx.PointerType(ctx.VoidType())
}

func blockName(n *ir.NodeInstance, execID int, suffix string) string {
	return fmt.Sprintf("n_%s_%d_%s", n.ID.String()[:8], execID, suffix)
}

// codeBlockFor returns (creating once) the block n's own codegen for
// execID writes into.
func (c *Compiler) codeBlockFor(n *ir.NodeInstance, execID int) backend.Block {
	u := c.execUnitFor(n.ID)
	if b, ok := u.codeBlock[execID]; ok {
		return b
	}
	b := c.Fun.AppendBlock(blockName(n, execID, "code"))
	u.codeBlock[execID] = b
	return b
}

// ensureStructure is compile_stage1 (spec §4.4): idempotent per
// (n, execID). It allocates n's code block and chains in its pure data
// dependencies, returning the block a predecessor should branch to in
// order to eventually reach n's own code block.
func (c *Compiler) ensureStructure(n *ir.NodeInstance, execID int) (backend.Block, *result.Result) {
	u := c.execUnitFor(n.ID)
	if u.structBuilt[execID] {
		return u.head[execID], result.New()
	}
	u.structBuilt[execID] = true

	code := c.codeBlockFor(n, execID)
	deps := DependentPures(c.Fn, n)
	head, r := c.buildPureChain(deps, code)
	if head == nil {
		head = code
	}
	u.head[execID] = head
	return head, r
}

// buildPureChain wires deps (already in topological order) so that
// executing deps[0] eventually falls through to finalNext, each element
// running after all of its own pure dependencies (spec §4.4 stage1:
// "chained so each pure block's terminator jumps to the next"). Builds
// the chain back-to-front so each element's "next" is known before it is
// wired.
func (c *Compiler) buildPureChain(deps []*ir.NodeInstance, finalNext backend.Block) (backend.Block, *result.Result) {
	r := result.New()
	next := finalNext
	for i := len(deps) - 1; i >= 0; i-- {
		invoke, pr := c.wirePure(deps[i], next)
		r.Merge(pr)
		next = invoke
	}
	if len(deps) == 0 {
		return nil, r
	}
	return next, r
}

// wirePure ensures p's own code block exists and has run its codegen
// exactly once (idempotent), then returns the block a caller wanting
// "invoke p, then reach next" should branch to.
//
// Non-shared p (PureConsumerCounts == 1) is wired with a single static
// Br(next) on its code block, since it is only ever invoked from one
// place. Shared p is wired uniformly with jumpBackInst (spec §4.4 +
// §9's "applied uniformly" resolution of the source's inconsistency):
// the caller gets a private trampoline block that stores next's address
// into p's return-address cell before branching into p's code block,
// whose own terminator is an IndirectBr reloaded from that cell.
func (c *Compiler) wirePure(p *ir.NodeInstance, next backend.Block) (backend.Block, *result.Result) {
	r := result.New()
	pu := c.pureUnitFor(p.ID)
	shared := c.pureConsumers[p.ID] > 1

	if !pu.built {
		pu.built = true
		pu.codeBlock = c.Fun.AppendBlock(blockName(p, 0, "pure"))
		io, ioErr := c.buildIO(p, pu.codeBlock)
		r.Merge(ioErr)
		args := nodetype.CodegenArgs{
			ExecInputID: 0,
			Line:        c.Lines[p.ID],
			Loc:         c.lineLocation(p.ID),
			IO:          io,
			EntryBlock:  pu.codeBlock,
			Ctx:         c.Ctx,
			Module:      c.Mod,
			Func:        c.Fun,
		}
		r.Merge(p.Type.Codegen(args))
	}

	if !shared {
		b := c.Ctx.Builder(pu.codeBlock)
		b.Br(next)
		return pu.codeBlock, r
	}

	cell, ok := c.RetAddrCells[p.ID]
	if !ok {
		r.Errorf(result.CodeBackendFailure, "node %s is a shared pure dependency but has no return-address cell allocated", p.ID)
		return pu.codeBlock, r
	}
	if pu.retAddrValue == nil {
		lb := c.Ctx.Builder(pu.codeBlock)
		pu.retAddrValue = lb.Load(BlockAddressType(c.Ctx), cell)
	}
	pu.possible = append(pu.possible, next)
	tb := c.Ctx.Builder(pu.codeBlock)
	// Every caller re-issues IndirectBr against the growing pu.possible
	// list. This replaces pu.codeBlock's terminator rather than adding a
	// second one: refbackend.Builder (like LLVM's own IRBuilder) treats
	// appending a terminator to a block that already has one as a
	// replace, so the block always carries exactly one, reflecting the
	// full set of callers discovered so far.
	tb.IndirectBr(pu.retAddrValue, pu.possible)

	tramp := c.Fun.AppendBlock(blockName(p, 0, "call"))
	cb := c.Ctx.Builder(tramp)
	cb.Store(cb.BlockAddress(next), cell)
	cb.Br(pu.codeBlock)
	return tramp, r
}

// compileExec is compile_stage2 driven recursively along exec edges
// (spec §4.5 step 2's traversal): idempotent per (n, execID), it fills
// n's code block by invoking its Codegen with the already-built
// structure, then recurses into each exec successor.
func (c *Compiler) compileExec(n *ir.NodeInstance, execID int) *result.Result {
	r := result.New()
	u := c.execUnitFor(n.ID)
	if u.codegenDone[execID] {
		return r
	}
	u.codegenDone[execID] = true

	_, sr := c.ensureStructure(n, execID)
	r.Merge(sr)
	code := c.codeBlockFor(n, execID)

	trailing := make([]backend.Block, len(n.Type.ExecOutputs))
	succ := make([]*ir.NodeInstance, len(n.Type.ExecOutputs))
	succExecID := make([]int, len(n.Type.ExecOutputs))
	for i := range n.Type.ExecOutputs {
		if i >= len(n.OutputExec) || n.OutputExec[i] == (ir.ConnRef{}) {
			trailing[i] = c.defaultExitBlock()
			continue
		}
		target := n.OutputExec[i]
		s, ok := c.Fn.Node(target.NodeID)
		if !ok {
			r.Errorf(result.CodeUnknownNode, "node %s exec output %d targets unknown node %s", n.ID, i, target.NodeID)
			trailing[i] = c.defaultExitBlock()
			continue
		}
		succ[i] = s
		succExecID[i] = target.Port
		head, hr := c.ensureStructure(s, target.Port)
		r.Merge(hr)
		trailing[i] = head
	}

	io, ioErr := c.buildIO(n, code)
	r.Merge(ioErr)

	args := nodetype.CodegenArgs{
		ExecInputID: execID,
		Line:        c.Lines[n.ID],
		Loc:         c.lineLocation(n.ID),
		IO:          io,
		EntryBlock:  code,
		ExitBlocks:  trailing,
		Ctx:         c.Ctx,
		Module:      c.Mod,
		Func:        c.Fun,
	}
	r.Merge(n.Type.Codegen(args))

	for i, s := range succ {
		if s != nil {
			r.Merge(c.compileExec(s, succExecID[i]))
		}
	}
	return r
}

// buildIO assembles a node's CodegenArgs.IO slice: one already-loaded
// value per data input (deduplicating repeat loads of the same source
// slot within this one call, spec scenario S3's "exactly one load of 7"
// when two input slots share a source), followed by the node's own
// output cells.
func (c *Compiler) buildIO(n *ir.NodeInstance, block backend.Block) ([]backend.Value, *result.Result) {
	r := result.New()
	io := make([]backend.Value, 0, len(n.Type.DataInputs)+len(n.Type.DataOutputs))
	b := c.Ctx.Builder(block)
	loaded := make(map[ir.ConnRef]backend.Value)
	for i, port := range n.Type.DataInputs {
		src := n.InputData[i]
		if src == nil {
			r.Errorf(result.CodeMissingDataInput, "node %s data input %d (%s) is unconnected", n.ID, i, port.Name)
			io = append(io, nil)
			continue
		}
		if v, ok := loaded[*src]; ok {
			io = append(io, v)
			continue
		}
		cell := c.cellFor(src.NodeID, src.Port)
		if cell == nil {
			r.Errorf(result.CodeUnknownNode, "node %s data input %d sources an unresolved cell on %s[%d]", n.ID, i, src.NodeID, src.Port)
			io = append(io, nil)
			continue
		}
		v := b.Load(port.Type.BackendType, cell)
		loaded[*src] = v
		io = append(io, v)
	}
	for i := range n.Type.DataOutputs {
		io = append(io, c.cellFor(n.ID, i))
	}
	return io, r
}

func (c *Compiler) cellFor(id uuid.UUID, port int) backend.Value {
	cells := c.Cells[id]
	if port < 0 || port >= len(cells) {
		return nil
	}
	return cells[port]
}

func (c *Compiler) lineLocation(id uuid.UUID) backend.DebugLocation {
	if c.DCU == nil || c.DebugScope == nil {
		return nil
	}
	return c.DCU.NewLineLocation(c.DebugScope, c.Lines[id], 1)
}

// defaultExitBlock returns (creating once) the fallback block an
// unconnected exec output branches to: an immediate return of 0 (spec
// §8 boundary: "a function whose entry has no outgoing exec edges
// compiles to a function that immediately returns 0").
func (c *Compiler) defaultExitBlock() backend.Block {
	if c.fallback != nil {
		return c.fallback
	}
	b := c.Fun.AppendBlock("unreachable_exit")
	bd := c.Ctx.Builder(b)
	bd.Ret(c.Ctx.ConstInt(c.Ctx.IntType(32), 0))
	c.fallback = b
	return b
}
