// SPDX-License-Identifier: MIT
package ir

import (
	"fmt"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// GraphStruct is a user-declared aggregate type (spec §3): an ordered
// list of named, typed fields. It synthesizes its own make/break node
// types (nodetype/lang.MakeStructNodeType/BreakStructNodeType), which
// need the aggregate backend.Type that DataType resolves on its first
// call, since that is the first point a backend.Context is available.
type GraphStruct struct {
	ModulePath string
	Name       string
	Fields     []nodetype.Port

	dataType dtype.DataType
	resolved bool
}

// NewGraphStruct declares a struct named name in modulePath with the
// given ordered fields.
func NewGraphStruct(modulePath, name string, fields []nodetype.Port) *GraphStruct {
	return &GraphStruct{
		ModulePath: modulePath,
		Name:       name,
		Fields:     append([]nodetype.Port(nil), fields...),
		dataType:   dtype.DataType{ModulePath: modulePath, Name: name},
	}
}

// DataType returns this struct's DataType, resolving its BackendType
// against ctx the first time it is called (GraphModule.Types calls it
// before synthesizing make/break node types; funccompile calls it to
// resolve struct-typed ports and locals).
func (s *GraphStruct) DataType(ctx *Context) dtype.DataType {
	if !s.resolved {
		fieldTypes := make([]backend.Type, len(s.Fields))
		for i, f := range s.Fields {
			fieldTypes[i] = lang.ResolveBackendType(ctx.Backend(), f.Type).BackendType
		}
		s.dataType.BackendType = ctx.Backend().StructType(fieldTypes)
		s.resolved = true
	}
	return s.dataType
}

// Field returns the Port for fieldName, or ErrFieldNotFound.
func (s *GraphStruct) Field(fieldName string) (nodetype.Port, error) {
	for _, f := range s.Fields {
		if f.Name == fieldName {
			return f, nil
		}
	}
	return nodetype.Port{}, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, s.Name, fieldName)
}

// NodeTypes returns this struct's synthesized _make_/_break_ node
// types. DataType must have been called at least once first so
// BackendType is resolved.
func (s *GraphStruct) NodeTypes() []nodetype.NodeType {
	return []nodetype.NodeType{
		lang.MakeStructNodeType(s.dataType, s.Fields),
		lang.BreakStructNodeType(s.dataType, s.Fields),
	}
}
