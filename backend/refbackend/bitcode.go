// SPDX-License-Identifier: MIT
package refbackend

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/chigraph/chigraph/backend"
)

// The runtime module graph (rmodule -> rfunction -> rblock -> rfunction)
// is cyclic and full of unexported pointer types, so it cannot be gob-
// encoded directly. bcModule and friends are a flat, acyclic mirror used
// only for the on-disk / cached form (spec C10's "backend bitcode").

type bcType struct {
	Kind   typeKind
	Bits   int
	Elem   *bcType
	Fields []*bcType
}

type bcValue struct {
	Kind      valueKind
	Ty        *bcType
	I         int64
	F         float64
	B         bool
	S         string
	ParamIdx  int
	RegID     int
	BlockFn   string
	BlockName string
}

type bcInst struct {
	Op          instOp
	Dst         *bcValue
	Ty          *bcType
	Args        []*bcValue
	AllocaName  string
	Callee      string
	PhiIncoming map[string]*bcValue
	Index       int
}

type bcTerm struct {
	Op           termOp
	Target       string
	Cond         *bcValue
	IfTrue       string
	IfFalse      string
	SwitchVal    *bcValue
	Def          string
	Cases        map[int64]string
	IndirectAddr *bcValue
	Possible     []string
	RetVal       *bcValue
}

type bcBlock struct {
	Name   string
	Instrs []*bcInst
	Term   *bcTerm
}

type bcFunction struct {
	Name       string
	ParamTypes []*bcType
	RetType    *bcType
	Extern     bool
	Blocks     []*bcBlock
}

type bcModule struct {
	Name  string
	Order []string
	Funcs map[string]*bcFunction
}

func toBCType(t *rtype) *bcType {
	if t == nil {
		return nil
	}
	bt := &bcType{Kind: t.kind, Bits: t.bits, Elem: toBCType(t.elem)}
	for _, f := range t.fields {
		bt.Fields = append(bt.Fields, toBCType(f))
	}
	return bt
}

func fromBCType(t *bcType) *rtype {
	if t == nil {
		return nil
	}
	rt := &rtype{kind: t.Kind, bits: t.Bits, elem: fromBCType(t.Elem)}
	for _, f := range t.Fields {
		rt.fields = append(rt.fields, fromBCType(f))
	}
	return rt
}

func toBCValue(v *rvalue) *bcValue {
	if v == nil {
		return nil
	}
	return &bcValue{
		Kind: v.kind, Ty: toBCType(v.ty), I: v.i, F: v.f, B: v.b, S: v.s,
		ParamIdx: v.paramIdx, RegID: v.regID, BlockFn: v.blockFn, BlockName: v.blockName,
	}
}

func fromBCValue(v *bcValue) *rvalue {
	if v == nil {
		return nil
	}
	return &rvalue{
		kind: v.Kind, ty: fromBCType(v.Ty), i: v.I, f: v.F, b: v.B, s: v.S,
		paramIdx: v.ParamIdx, regID: v.RegID, blockFn: v.BlockFn, blockName: v.BlockName,
	}
}

func toBCModule(m *rmodule) *bcModule {
	out := &bcModule{Name: m.name, Order: append([]string(nil), m.order...), Funcs: make(map[string]*bcFunction, len(m.funcs))}
	for name, fn := range m.funcs {
		bf := &bcFunction{Name: fn.name, Extern: fn.isExtern()}
		for _, pt := range fn.paramTypes {
			bf.ParamTypes = append(bf.ParamTypes, toBCType(pt))
		}
		bf.RetType = toBCType(fn.retType)
		for _, blk := range fn.blocks {
			bb := &bcBlock{Name: blk.name}
			for _, inst := range blk.instrs {
				bi := &bcInst{Op: inst.op, Dst: toBCValue(inst.dst), Ty: toBCType(inst.ty), AllocaName: inst.allocaName, Index: inst.index}
				for _, a := range inst.args {
					bi.Args = append(bi.Args, toBCValue(a))
				}
				if inst.callee != nil {
					bi.Callee = inst.callee.name
				}
				if inst.phiIncoming != nil {
					bi.PhiIncoming = make(map[string]*bcValue, len(inst.phiIncoming))
					for k, v := range inst.phiIncoming {
						bi.PhiIncoming[k] = toBCValue(v)
					}
				}
				bb.Instrs = append(bb.Instrs, bi)
			}
			if blk.term != nil {
				t := blk.term
				bt := &bcTerm{
					Op: t.op, Target: t.target, Cond: toBCValue(t.cond), IfTrue: t.ifTrue, IfFalse: t.ifFalse,
					SwitchVal: toBCValue(t.switchVal), Def: t.def, IndirectAddr: toBCValue(t.indirectAddr),
					Possible: t.possible, RetVal: toBCValue(t.retVal),
				}
				if t.cases != nil {
					bt.Cases = make(map[int64]string, len(t.cases))
					for k, v := range t.cases {
						bt.Cases[k] = v
					}
				}
				bb.Term = bt
			}
			bf.Blocks = append(bf.Blocks, bb)
		}
		out.Funcs[name] = bf
	}
	return out
}

func fromBCModule(ctx *rcontext, b *bcModule) *rmodule {
	m := &rmodule{ctx: ctx, name: b.Name, funcs: make(map[string]*rfunction, len(b.Funcs)), order: append([]string(nil), b.Order...)}
	for name, bf := range b.Funcs {
		fn := &rfunction{name: bf.Name, retType: fromBCType(bf.RetType), blockIndex: make(map[string]*rblock)}
		for _, pt := range bf.ParamTypes {
			fn.paramTypes = append(fn.paramTypes, fromBCType(pt))
		}
		for i, pt := range fn.paramTypes {
			fn.params = append(fn.params, &rvalue{kind: valParam, paramIdx: i, ty: pt})
		}
		maxReg := 0
		for _, bb := range bf.Blocks {
			blk := &rblock{name: bb.Name, fn: fn}
			for _, bi := range bb.Instrs {
				inst := &instruction{op: bi.Op, dst: fromBCValue(bi.Dst), ty: fromBCType(bi.Ty), allocaName: bi.AllocaName, index: bi.Index}
				for _, a := range bi.Args {
					inst.args = append(inst.args, fromBCValue(a))
				}
				if bi.Callee != "" {
					inst.callee = &rfunction{name: bi.Callee} // resolved below
				}
				if bi.PhiIncoming != nil {
					inst.phiIncoming = make(map[string]*rvalue, len(bi.PhiIncoming))
					for k, v := range bi.PhiIncoming {
						inst.phiIncoming[k] = fromBCValue(v)
					}
				}
				if inst.dst != nil && inst.dst.regID > maxReg {
					maxReg = inst.dst.regID
				}
				blk.instrs = append(blk.instrs, inst)
			}
			if bb.Term != nil {
				t := bb.Term
				term := &terminator{
					op: t.Op, target: t.Target, cond: fromBCValue(t.Cond), ifTrue: t.IfTrue, ifFalse: t.IfFalse,
					switchVal: fromBCValue(t.SwitchVal), def: t.Def, indirectAddr: fromBCValue(t.IndirectAddr),
					possible: t.Possible, retVal: fromBCValue(t.RetVal),
				}
				if t.Cases != nil {
					term.cases = make(map[int64]string, len(t.Cases))
					for k, v := range t.Cases {
						term.cases[k] = v
					}
				}
				blk.term = term
			}
			fn.blocks = append(fn.blocks, blk)
			fn.blockIndex[blk.name] = blk
		}
		fn.nextReg = maxReg
		m.funcs[name] = fn
	}
	// Resolve call-site callee placeholders to the real function objects.
	for _, fn := range m.funcs {
		for _, blk := range fn.blocks {
			for _, inst := range blk.instrs {
				if inst.callee != nil {
					if real, ok := m.funcs[inst.callee.name]; ok {
						inst.callee = real
					}
				}
			}
		}
	}
	return m
}

func (m *rmodule) WriteBitcode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toBCModule(m)); err != nil {
		return nil, fmt.Errorf("refbackend: WriteBitcode: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *rcontext) ParseBitcode(data []byte) (backend.Module, error) {
	var bm bcModule
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&bm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBitcode, err)
	}
	return fromBCModule(c, &bm), nil
}
