// SPDX-License-Identifier: MIT
package refbackend

import "github.com/chigraph/chigraph/backend"

// rdebugType is refbackend's concrete backend.DebugType: it carries just
// enough to let FunctionCompiler attach subroutine metadata and for the
// debugger bridge (out of core scope) to recover a source location.
type rdebugType struct {
	kind   string // "file", "subroutine"
	name   string
	dir    string
	params []*rdebugType
}

var _ backend.DebugType = (*rdebugType)(nil)

// rdebugLocation is refbackend's concrete backend.DebugLocation.
type rdebugLocation struct {
	scope *rdebugType
	line  int
	col   int
}

var _ backend.DebugLocation = (*rdebugLocation)(nil)

// rdebugCompileUnit is refbackend's concrete backend.DebugCompileUnit.
type rdebugCompileUnit struct {
	file string
}

var _ backend.DebugCompileUnit = (*rdebugCompileUnit)(nil)

func (u *rdebugCompileUnit) NewFile(name, dir string) backend.DebugType {
	return &rdebugType{kind: "file", name: name, dir: dir}
}

func (u *rdebugCompileUnit) NewSubroutineType(params []backend.DebugType) backend.DebugType {
	ps := make([]*rdebugType, len(params))
	for i, p := range params {
		ps[i], _ = p.(*rdebugType)
	}
	return &rdebugType{kind: "subroutine", params: ps}
}

func (u *rdebugCompileUnit) NewLineLocation(scope backend.DebugType, line, col int) backend.DebugLocation {
	s, _ := scope.(*rdebugType)
	return &rdebugLocation{scope: s, line: line, col: col}
}
