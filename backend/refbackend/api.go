// SPDX-License-Identifier: MIT
package refbackend

import "github.com/chigraph/chigraph/backend"

// rcontext is refbackend's concrete backend.Context. It is stateless
// beyond being the factory for types, constants, and modules — refbackend
// has no native resources to own, unlike a real LLVM context.
type rcontext struct{}

var _ backend.Context = (*rcontext)(nil)

// NewContext returns a fresh refbackend Context.
func NewContext() backend.Context {
	return &rcontext{}
}

func (c *rcontext) BoolType() backend.Type       { return &rtype{kind: typeBool} }
func (c *rcontext) IntType(bits int) backend.Type { return &rtype{kind: typeInt, bits: bits} }
func (c *rcontext) FloatType() backend.Type      { return &rtype{kind: typeFloat} }
func (c *rcontext) DoubleType() backend.Type     { return &rtype{kind: typeDouble} }
func (c *rcontext) VoidType() backend.Type       { return &rtype{kind: typeVoid} }

func (c *rcontext) PointerType(elem backend.Type) backend.Type {
	e, _ := elem.(*rtype)
	return &rtype{kind: typePointer, elem: e}
}

func (c *rcontext) StructType(fields []backend.Type) backend.Type {
	fs := make([]*rtype, len(fields))
	for i, f := range fields {
		fs[i], _ = f.(*rtype)
	}
	return &rtype{kind: typeStruct, fields: fs}
}

func (c *rcontext) ConstInt(t backend.Type, v int64) backend.Value {
	rt, _ := t.(*rtype)
	return &rvalue{kind: valConstInt, ty: rt, i: v}
}

func (c *rcontext) ConstFloat(t backend.Type, v float64) backend.Value {
	rt, _ := t.(*rtype)
	return &rvalue{kind: valConstFloat, ty: rt, f: v}
}

func (c *rcontext) ConstBool(v bool) backend.Value {
	return &rvalue{kind: valConstBool, ty: &rtype{kind: typeBool}, b: v}
}

func (c *rcontext) ConstString(s string) backend.Value {
	return &rvalue{kind: valConstString, ty: &rtype{kind: typePointer, elem: &rtype{kind: typeInt, bits: 8}}, s: s}
}

func (c *rcontext) Undef(t backend.Type) backend.Value {
	rt, _ := t.(*rtype)
	return &rvalue{kind: valUndef, ty: rt}
}

func (c *rcontext) NewModule(name string) backend.Module {
	return &rmodule{ctx: c, name: name, funcs: make(map[string]*rfunction)}
}

func (c *rcontext) Builder(b backend.Block) backend.Builder {
	blk, _ := b.(*rblock)
	return &rbuilder{block: blk}
}

func (c *rcontext) Dispose() {}
