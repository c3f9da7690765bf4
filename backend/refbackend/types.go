// SPDX-License-Identifier: MIT
package refbackend

import (
	"fmt"
	"strings"

	"github.com/chigraph/chigraph/backend"
)

// typeKind enumerates the handful of type shapes refbackend models.
type typeKind int

const (
	typeVoid typeKind = iota
	typeBool
	typeInt
	typeFloat
	typeDouble
	typePointer
	typeStruct
)

// rtype is refbackend's concrete backend.Type.
type rtype struct {
	kind   typeKind
	bits   int      // for typeInt
	elem   *rtype   // for typePointer
	fields []*rtype // for typeStruct
}

func (t *rtype) String() string {
	switch t.kind {
	case typeVoid:
		return "void"
	case typeBool:
		return "i1"
	case typeInt:
		return fmt.Sprintf("i%d", t.bits)
	case typeFloat:
		return "float"
	case typeDouble:
		return "double"
	case typePointer:
		return t.elem.String() + "*"
	case typeStruct:
		names := make([]string, len(t.fields))
		for i, f := range t.fields {
			names[i] = f.String()
		}
		return "{" + strings.Join(names, ", ") + "}"
	default:
		return "?"
	}
}

// valueKind enumerates the shapes a runtime value reference can take.
type valueKind int

const (
	valConstInt valueKind = iota
	valConstFloat
	valConstBool
	valConstString
	valParam
	valReg // result of a previous instruction, looked up by regID
	valBlockAddr
	valUndef
)

// rvalue is refbackend's concrete backend.Value: a reference, not a
// runtime payload. Constants carry their payload directly; everything
// else is resolved against the current activation record at execution
// time.
type rvalue struct {
	kind valueKind
	ty   *rtype

	i int64
	f float64
	b bool
	s string

	paramIdx int
	regID    int

	blockFn   string
	blockName string
}

var _ backend.Type = (*rtype)(nil)
var _ backend.Value = (*rvalue)(nil)
