// SPDX-License-Identifier: MIT
package refbackend

import (
	"fmt"
	"strings"

	"github.com/chigraph/chigraph/backend"
)

// rtValue is the dynamic runtime payload of one SSA register or memory
// cell during interpretation: int64, float64, bool, string, a cellRef
// (an alloca'd pointer), or a blockRef (a block address, for
// jumpBackInst / IndirectBr).
type rtValue any

type cellRef int

type blockRef struct {
	fn    string
	block string
}

// vm holds the single mutable piece of interpreter state that must
// outlive any one function activation: the heap of alloca'd cells. This
// is what lets an out-parameter pointer handed to a callee still be
// readable by the caller (and by Engine.RunMain) after the call returns.
type vm struct {
	heap []rtValue
}

// callFrame is one function activation's registers and incoming params.
type callFrame struct {
	regs   map[int]rtValue
	params []rtValue
}

func zeroValue(t *rtype) rtValue {
	if t == nil {
		return nil
	}
	switch t.kind {
	case typeBool:
		return false
	case typeInt:
		return int64(0)
	case typeFloat, typeDouble:
		return float64(0)
	case typePointer:
		return cellRef(-1)
	case typeStruct:
		fs := make([]rtValue, len(t.fields))
		for i, f := range t.fields {
			fs[i] = zeroValue(f)
		}
		return fs
	default:
		return nil
	}
}

func toInt64(v rtValue) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func toFloat64(v rtValue) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func toBool(v rtValue) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	default:
		return false
	}
}

func (vm *vm) resolve(frame *callFrame, v *rvalue) rtValue {
	if v == nil {
		return nil
	}
	switch v.kind {
	case valConstInt:
		return v.i
	case valConstFloat:
		return v.f
	case valConstBool:
		return v.b
	case valConstString:
		return v.s
	case valParam:
		if v.paramIdx < len(frame.params) {
			return frame.params[v.paramIdx]
		}
		return nil
	case valReg:
		return frame.regs[v.regID]
	case valBlockAddr:
		return blockRef{fn: v.blockFn, block: v.blockName}
	case valUndef:
		return zeroValue(v.ty)
	default:
		return nil
	}
}

// callFunction interprets fn with the given already-resolved args,
// returning its Ret value (nil for RetVoid).
func (vm *vm) callFunction(mod *rmodule, fn *rfunction, args []rtValue) (rtValue, error) {
	if fn.isExtern() {
		return vm.callIntrinsic(fn, args)
	}
	frame := &callFrame{regs: make(map[int]rtValue), params: args}
	cur := fn.blocks[0]
	prevName := ""
	for {
		for _, inst := range cur.instrs {
			switch inst.op {
			case opAlloca:
				idx := len(vm.heap)
				vm.heap = append(vm.heap, zeroValue(inst.ty))
				frame.regs[inst.dst.regID] = cellRef(idx)
			case opLoad:
				ptr, ok := vm.resolve(frame, inst.args[0]).(cellRef)
				if !ok || int(ptr) < 0 || int(ptr) >= len(vm.heap) {
					return nil, fmt.Errorf("refbackend: load through invalid pointer in %s", fn.name)
				}
				frame.regs[inst.dst.regID] = vm.heap[ptr]
			case opStore:
				val := vm.resolve(frame, inst.args[0])
				ptr, ok := vm.resolve(frame, inst.args[1]).(cellRef)
				if !ok || int(ptr) < 0 || int(ptr) >= len(vm.heap) {
					return nil, fmt.Errorf("refbackend: store through invalid pointer in %s", fn.name)
				}
				vm.heap[ptr] = val
			case opCall:
				cargs := make([]rtValue, len(inst.args))
				for i, a := range inst.args {
					cargs[i] = vm.resolve(frame, a)
				}
				res, err := vm.callFunction(mod, inst.callee, cargs)
				if err != nil {
					return nil, err
				}
				if inst.dst != nil {
					frame.regs[inst.dst.regID] = res
				}
			case opPhi:
				if val, ok := inst.phiIncoming[prevName]; ok {
					frame.regs[inst.dst.regID] = vm.resolve(frame, val)
				}
			case opExtract:
				agg, _ := vm.resolve(frame, inst.args[0]).([]rtValue)
				if inst.index < len(agg) {
					frame.regs[inst.dst.regID] = agg[inst.index]
				}
			case opInsert:
				agg, _ := vm.resolve(frame, inst.args[0]).([]rtValue)
				out := append([]rtValue(nil), agg...)
				if inst.index < len(out) {
					out[inst.index] = vm.resolve(frame, inst.args[1])
				}
				frame.regs[inst.dst.regID] = out
			}
		}
		if cur.term == nil {
			return nil, fmt.Errorf("%w: function %q block %q", ErrNoTerminator, fn.name, cur.name)
		}
		switch cur.term.op {
		case termBr:
			prevName = cur.name
			cur = fn.blockIndex[cur.term.target]
		case termCondBr:
			c := toBool(vm.resolve(frame, cur.term.cond))
			prevName = cur.name
			if c {
				cur = fn.blockIndex[cur.term.ifTrue]
			} else {
				cur = fn.blockIndex[cur.term.ifFalse]
			}
		case termSwitch:
			key := toInt64(vm.resolve(frame, cur.term.switchVal))
			prevName = cur.name
			if target, ok := cur.term.cases[key]; ok {
				cur = fn.blockIndex[target]
			} else {
				cur = fn.blockIndex[cur.term.def]
			}
		case termIndirectBr:
			addr, _ := vm.resolve(frame, cur.term.indirectAddr).(blockRef)
			prevName = cur.name
			target := fn.blockIndex[addr.block]
			if target == nil {
				return nil, fmt.Errorf("refbackend: indirectbr to unknown block %q in %s", addr.block, fn.name)
			}
			cur = target
		case termRet:
			return vm.resolve(frame, cur.term.retVal), nil
		case termRetVoid:
			return nil, nil
		default:
			return nil, fmt.Errorf("refbackend: unhandled terminator in %s", fn.name)
		}
		if cur == nil {
			return nil, fmt.Errorf("refbackend: branch to unknown block in %s", fn.name)
		}
	}
}

// callIntrinsic executes a call to a declared-but-never-defined function,
// by convention named "rt.<op>.<type>" (e.g. "rt.add.i32"). LangModule's
// arithmetic node types (nodetype/lang) declare exactly such functions and
// never give them bodies, modeling linkage against a compiler-rt-style
// runtime support library — the same mechanism a real backend would use
// for operations (128-bit math, software float) that aren't native
// instructions either.
func (vm *vm) callIntrinsic(fn *rfunction, args []rtValue) (rtValue, error) {
	parts := strings.SplitN(fn.name, ".", 3)
	if len(parts) != 3 || parts[0] != "rt" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntrinsic, fn.name)
	}
	op, typ := parts[1], parts[2]
	switch typ {
	case "i32", "i64", "int", "bool":
		a, b := toInt64(args[0]), int64(0)
		if len(args) > 1 {
			b = toInt64(args[1])
		}
		switch op {
		case "add":
			return a + b, nil
		case "sub":
			return a - b, nil
		case "mul":
			return a * b, nil
		case "neg":
			return -a, nil
		case "lt":
			return a < b, nil
		case "eq":
			return a == b, nil
		}
	case "float", "double":
		a, b := toFloat64(args[0]), float64(0)
		if len(args) > 1 {
			b = toFloat64(args[1])
		}
		switch op {
		case "add":
			return a + b, nil
		case "sub":
			return a - b, nil
		case "mul":
			return a * b, nil
		case "neg":
			return -a, nil
		case "lt":
			return a < b, nil
		case "eq":
			return a == b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownIntrinsic, fn.name)
}

// rengine is refbackend's concrete backend.Engine.
type rengine struct {
	mod *rmodule
}

var _ backend.Engine = (*rengine)(nil)

// RunMain executes fnName, treating every pointer-typed parameter as an
// out-parameter (spec's "(dataInputs..., out dataOutputs..., in exec
// selector) -> exec-output index" convention, §4.5 step 1) and every
// remaining non-trailing parameter as a data input defaulted to its
// type's zero value — argv/envp-to-dataInput marshaling is an external-
// collaborator concern (the CLI's "run" command, §6) that this reference
// engine does not need to reproduce to satisfy spec §8's scenarios, all
// of which compile functions with zero data inputs.
func (e *rengine) RunMain(fnName string, argv, envp []string) (int, error) {
	fn, ok := e.mod.funcs[fnName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFunction, fnName)
	}
	vm := &vm{}
	args := make([]rtValue, len(fn.paramTypes))
	firstOut := -1
	for i, pt := range fn.paramTypes {
		if pt != nil && pt.kind == typePointer {
			idx := len(vm.heap)
			vm.heap = append(vm.heap, zeroValue(pt.elem))
			args[i] = cellRef(idx)
			if firstOut == -1 {
				firstOut = idx
			}
			continue
		}
		args[i] = zeroValue(pt)
	}
	if _, err := vm.callFunction(e.mod, fn, args); err != nil {
		return 0, err
	}
	if firstOut >= 0 {
		return int(toInt64(vm.heap[firstOut])), nil
	}
	return 0, nil
}

func (e *rengine) Dispose() {}
