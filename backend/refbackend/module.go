// SPDX-License-Identifier: MIT
package refbackend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chigraph/chigraph/backend"
)

// rfunction is refbackend's concrete backend.Function.
type rfunction struct {
	name       string
	paramTypes []*rtype
	retType    *rtype
	params     []*rvalue

	blocks     []*rblock
	blockIndex map[string]*rblock
	nextReg    int
	nextBlock  int

	subroutine *rdebugType
}

var _ backend.Function = (*rfunction)(nil)

func (f *rfunction) Name() string { return f.name }

func (f *rfunction) Param(i int) backend.Value {
	return f.params[i]
}

func (f *rfunction) AppendBlock(name string) backend.Block {
	if name == "" {
		name = fmt.Sprintf("bb%d", f.nextBlock)
	}
	// Blocks within one function must have unique names; disambiguate on
	// collision rather than silently overwriting the earlier block.
	base := name
	for i := 1; f.blockIndex[name] != nil; i++ {
		name = fmt.Sprintf("%s.%d", base, i)
	}
	f.nextBlock++
	b := &rblock{name: name, fn: f}
	f.blocks = append(f.blocks, b)
	f.blockIndex[name] = b
	return b
}

func (f *rfunction) SetSubroutineType(sub backend.DebugType) {
	if d, ok := sub.(*rdebugType); ok {
		f.subroutine = d
	}
}

func (f *rfunction) allocReg() int {
	f.nextReg++
	return f.nextReg
}

func (f *rfunction) isExtern() bool { return len(f.blocks) == 0 }

// rmodule is refbackend's concrete backend.Module.
type rmodule struct {
	ctx   *rcontext
	name  string
	funcs map[string]*rfunction
	order []string
}

var _ backend.Module = (*rmodule)(nil)

func (m *rmodule) Name() string { return m.name }

func (m *rmodule) DeclareFunction(name string, paramTypes []backend.Type, returnType backend.Type) backend.Function {
	if fn, ok := m.funcs[name]; ok {
		return fn
	}
	rts := make([]*rtype, len(paramTypes))
	params := make([]*rvalue, len(paramTypes))
	for i, t := range paramTypes {
		rt, _ := t.(*rtype)
		rts[i] = rt
		params[i] = &rvalue{kind: valParam, paramIdx: i, ty: rt}
	}
	ret, _ := returnType.(*rtype)
	fn := &rfunction{
		name:       name,
		paramTypes: rts,
		retType:    ret,
		params:     params,
		blockIndex: make(map[string]*rblock),
	}
	m.funcs[name] = fn
	m.order = append(m.order, name)
	return fn
}

func (m *rmodule) Functions() []backend.Function {
	out := make([]backend.Function, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.funcs[n])
	}
	return out
}

// Link merges other's functions into m. A function already declared
// (forward-declared, per spec §4.6 step 3) but not yet defined in m is
// replaced by other's definition; a function already defined in both is
// left as m's own (m is the module currently being compiled and always
// wins over a linked-in dependency).
func (m *rmodule) Link(other backend.Module) error {
	o, ok := other.(*rmodule)
	if !ok {
		return fmt.Errorf("refbackend: Link: %w: foreign module type", ErrVerifyFailed)
	}
	for _, name := range o.order {
		fn := o.funcs[name]
		existing, has := m.funcs[name]
		if !has {
			m.funcs[name] = fn
			m.order = append(m.order, name)
			continue
		}
		if existing.isExtern() && !fn.isExtern() {
			m.funcs[name] = fn
		}
	}
	return nil
}

// Verify checks that every defined (non-extern) function's every block
// ends in a terminator, and that every Call targets a function known to
// this module.
func (m *rmodule) Verify() error {
	for _, name := range m.order {
		fn := m.funcs[name]
		if fn.isExtern() {
			continue
		}
		for _, b := range fn.blocks {
			if b.term == nil {
				return fmt.Errorf("%w: function %q block %q has no terminator", ErrVerifyFailed, name, b.name)
			}
			for _, inst := range b.instrs {
				if inst.op == opCall && inst.callee != nil {
					if _, ok := m.funcs[inst.callee.name]; !ok {
						return fmt.Errorf("%w: function %q calls undeclared %q", ErrVerifyFailed, name, inst.callee.name)
					}
				}
			}
		}
	}
	return nil
}

// Print renders a readable (not bitcode-compatible) textual dump, used
// by the CLI's "compile --emit-ir" mode.
func (m *rmodule) Print() string {
	var b strings.Builder
	names := append([]string(nil), m.order...)
	sort.Strings(names)
	fmt.Fprintf(&b, "; module %s\n", m.name)
	for _, name := range names {
		fn := m.funcs[name]
		if fn.isExtern() {
			fmt.Fprintf(&b, "declare %s %s(%d args)\n", typeStr(fn.retType), fn.name, len(fn.paramTypes))
			continue
		}
		fmt.Fprintf(&b, "define %s %s(%d args) {\n", typeStr(fn.retType), fn.name, len(fn.paramTypes))
		for _, blk := range fn.blocks {
			fmt.Fprintf(&b, "%s:\n", blk.name)
			for _, inst := range blk.instrs {
				fmt.Fprintf(&b, "  %s\n", inst.describe())
			}
			if blk.term != nil {
				fmt.Fprintf(&b, "  %s\n", blk.term.describe())
			}
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func (m *rmodule) NewDebugCompileUnit(file string) backend.DebugCompileUnit {
	return &rdebugCompileUnit{file: file}
}

func (m *rmodule) JIT() (backend.Engine, error) {
	return &rengine{mod: m}, nil
}

func (m *rmodule) Dispose() {}

func typeStr(t *rtype) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
