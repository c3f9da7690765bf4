// SPDX-License-Identifier: MIT
package refbackend

import (
	"fmt"

	"github.com/chigraph/chigraph/backend"
)

type instOp int

const (
	opAlloca instOp = iota
	opLoad
	opStore
	opCall
	opPhi
	opExtract
	opInsert
)

type instruction struct {
	op   instOp
	dst  *rvalue // result register (nil for opStore)
	ty   *rtype
	args []*rvalue

	allocaName string
	callee     *rfunction
	// index is the field index for opExtract/opInsert.
	index int
	// phiIncoming maps predecessor-block name to the incoming value,
	// serializable (unlike a map keyed by *rblock).
	phiIncoming map[string]*rvalue
}

func (i *instruction) describe() string {
	switch i.op {
	case opAlloca:
		return fmt.Sprintf("%%%d = alloca %s ; %s", i.dst.regID, typeStr(i.ty), i.allocaName)
	case opLoad:
		return fmt.Sprintf("%%%d = load %s, ptr %%%d", i.dst.regID, typeStr(i.ty), i.args[0].regID)
	case opStore:
		return fmt.Sprintf("store %s, ptr %%%d", describeVal(i.args[0]), i.args[1].regID)
	case opCall:
		return fmt.Sprintf("%%%d = call %s(%d args)", i.dst.regID, i.callee.name, len(i.args))
	case opPhi:
		return fmt.Sprintf("%%%d = phi %s", i.dst.regID, typeStr(i.ty))
	case opExtract:
		return fmt.Sprintf("%%%d = extractvalue %s, %d", i.dst.regID, describeVal(i.args[0]), i.index)
	case opInsert:
		return fmt.Sprintf("%%%d = insertvalue %s, %s, %d", i.dst.regID, describeVal(i.args[0]), describeVal(i.args[1]), i.index)
	default:
		return "?"
	}
}

func describeVal(v *rvalue) string {
	switch v.kind {
	case valConstInt:
		return fmt.Sprintf("%d", v.i)
	case valConstFloat:
		return fmt.Sprintf("%f", v.f)
	case valConstBool:
		return fmt.Sprintf("%v", v.b)
	case valConstString:
		return fmt.Sprintf("%q", v.s)
	case valParam:
		return fmt.Sprintf("param%d", v.paramIdx)
	default:
		return fmt.Sprintf("%%%d", v.regID)
	}
}

type termOp int

const (
	termBr termOp = iota
	termCondBr
	termSwitch
	termIndirectBr
	termRet
	termRetVoid
)

type terminator struct {
	op termOp

	target  string
	cond    *rvalue
	ifTrue  string
	ifFalse string

	switchVal *rvalue
	def       string
	cases     map[int64]string

	indirectAddr *rvalue
	possible     []string

	retVal *rvalue
}

func (t *terminator) describe() string {
	switch t.op {
	case termBr:
		return "br " + t.target
	case termCondBr:
		return fmt.Sprintf("condbr %s, %s, %s", describeVal(t.cond), t.ifTrue, t.ifFalse)
	case termSwitch:
		return fmt.Sprintf("switch %s, default %s (%d cases)", describeVal(t.switchVal), t.def, len(t.cases))
	case termIndirectBr:
		return fmt.Sprintf("indirectbr %s (%d possible)", describeVal(t.indirectAddr), len(t.possible))
	case termRet:
		return "ret " + describeVal(t.retVal)
	case termRetVoid:
		return "ret void"
	default:
		return "?"
	}
}

// rblock is refbackend's concrete backend.Block.
type rblock struct {
	name   string
	fn     *rfunction
	instrs []*instruction
	term   *terminator
}

var _ backend.Block = (*rblock)(nil)

// rbuilder is refbackend's concrete backend.Builder, scoped to one block.
type rbuilder struct {
	block *rblock
	loc   *rdebugLocation
}

var _ backend.Builder = (*rbuilder)(nil)

func (b *rbuilder) SetDebugLocation(loc backend.DebugLocation) {
	d, _ := loc.(*rdebugLocation)
	b.loc = d
}

func (b *rbuilder) Alloca(t backend.Type, name string) backend.Value {
	fn := b.block.fn
	rt, _ := t.(*rtype)
	dst := &rvalue{kind: valReg, regID: fn.allocReg(), ty: &rtype{kind: typePointer, elem: rt}}
	b.block.instrs = append(b.block.instrs, &instruction{op: opAlloca, dst: dst, ty: rt, allocaName: name})
	return dst
}

func (b *rbuilder) Load(t backend.Type, ptr backend.Value) backend.Value {
	fn := b.block.fn
	rt, _ := t.(*rtype)
	p, _ := ptr.(*rvalue)
	dst := &rvalue{kind: valReg, regID: fn.allocReg(), ty: rt}
	b.block.instrs = append(b.block.instrs, &instruction{op: opLoad, dst: dst, ty: rt, args: []*rvalue{p}})
	return dst
}

func (b *rbuilder) Store(val, ptr backend.Value) {
	v, _ := val.(*rvalue)
	p, _ := ptr.(*rvalue)
	b.block.instrs = append(b.block.instrs, &instruction{op: opStore, args: []*rvalue{v, p}})
}

func (b *rbuilder) Br(target backend.Block) {
	t, _ := target.(*rblock)
	b.block.term = &terminator{op: termBr, target: t.name}
}

func (b *rbuilder) CondBr(cond backend.Value, ifTrue, ifFalse backend.Block) {
	c, _ := cond.(*rvalue)
	tt, _ := ifTrue.(*rblock)
	ff, _ := ifFalse.(*rblock)
	b.block.term = &terminator{op: termCondBr, cond: c, ifTrue: tt.name, ifFalse: ff.name}
}

func (b *rbuilder) Switch(val backend.Value, def backend.Block, cases map[int64]backend.Block) {
	v, _ := val.(*rvalue)
	d, _ := def.(*rblock)
	cs := make(map[int64]string, len(cases))
	for k, blk := range cases {
		bb, _ := blk.(*rblock)
		cs[k] = bb.name
	}
	b.block.term = &terminator{op: termSwitch, switchVal: v, def: d.name, cases: cs}
}

func (b *rbuilder) IndirectBr(addr backend.Value, possible []backend.Block) {
	a, _ := addr.(*rvalue)
	names := make([]string, len(possible))
	for i, blk := range possible {
		bb, _ := blk.(*rblock)
		names[i] = bb.name
	}
	b.block.term = &terminator{op: termIndirectBr, indirectAddr: a, possible: names}
}

func (b *rbuilder) Ret(v backend.Value) {
	rv, _ := v.(*rvalue)
	b.block.term = &terminator{op: termRet, retVal: rv}
}

func (b *rbuilder) RetVoid() {
	b.block.term = &terminator{op: termRetVoid}
}

func (b *rbuilder) Call(fn backend.Function, args []backend.Value) backend.Value {
	f, _ := fn.(*rfunction)
	rargs := make([]*rvalue, len(args))
	for i, a := range args {
		rargs[i], _ = a.(*rvalue)
	}
	callerFn := b.block.fn
	dst := &rvalue{kind: valReg, regID: callerFn.allocReg(), ty: f.retType}
	b.block.instrs = append(b.block.instrs, &instruction{op: opCall, dst: dst, ty: f.retType, args: rargs, callee: f})
	return dst
}

func (b *rbuilder) Phi(t backend.Type, incoming map[backend.Block]backend.Value) backend.Value {
	fn := b.block.fn
	rt, _ := t.(*rtype)
	dst := &rvalue{kind: valReg, regID: fn.allocReg(), ty: rt}
	in := make(map[string]*rvalue, len(incoming))
	for blk, v := range incoming {
		bb, _ := blk.(*rblock)
		rv, _ := v.(*rvalue)
		in[bb.name] = rv
	}
	b.block.instrs = append(b.block.instrs, &instruction{op: opPhi, dst: dst, ty: rt, phiIncoming: in})
	return dst
}

func (b *rbuilder) ExtractField(agg backend.Value, index int) backend.Value {
	fn := b.block.fn
	a, _ := agg.(*rvalue)
	var fieldTy *rtype
	if a != nil && a.ty != nil && index < len(a.ty.fields) {
		fieldTy = a.ty.fields[index]
	}
	dst := &rvalue{kind: valReg, regID: fn.allocReg(), ty: fieldTy}
	b.block.instrs = append(b.block.instrs, &instruction{op: opExtract, dst: dst, ty: fieldTy, args: []*rvalue{a}, index: index})
	return dst
}

func (b *rbuilder) InsertField(agg backend.Value, index int, val backend.Value) backend.Value {
	fn := b.block.fn
	a, _ := agg.(*rvalue)
	v, _ := val.(*rvalue)
	dst := &rvalue{kind: valReg, regID: fn.allocReg(), ty: a.ty}
	b.block.instrs = append(b.block.instrs, &instruction{op: opInsert, dst: dst, ty: a.ty, args: []*rvalue{a, v}, index: index})
	return dst
}

func (b *rbuilder) BlockAddress(blk backend.Block) backend.Value {
	bb, _ := blk.(*rblock)
	return &rvalue{kind: valBlockAddr, blockFn: bb.fn.name, blockName: bb.name}
}
