// SPDX-License-Identifier: MIT
package ir

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
)

// Local is one local variable declared on a GraphFunction (spec §3):
// a name and a type. Its _get_/_set_ node types are synthesized by
// funccompile once a concrete stack cell exists for it, not here —
// GraphFunction only records the declaration.
type Local struct {
	Name string
	Type dtype.DataType
}

// GraphFunction is a user-authored function: a signature, a set of
// local variables, and the graph of NodeInstances implementing it
// (spec C5/§3).
type GraphFunction struct {
	ModulePath string
	Name       string
	Signature  nodetype.Signature
	Locals     []Local

	nodes map[uuid.UUID]*NodeInstance
	order []uuid.UUID
}

// NewGraphFunction declares an empty function named name with sig.
func NewGraphFunction(modulePath, name string, sig nodetype.Signature) *GraphFunction {
	return &GraphFunction{
		ModulePath: modulePath,
		Name:       name,
		Signature:  sig,
		nodes:      make(map[uuid.UUID]*NodeInstance),
	}
}

// AddLocal declares a new local variable.
func (f *GraphFunction) AddLocal(name string, ty dtype.DataType) {
	f.Locals = append(f.Locals, Local{Name: name, Type: ty})
}

// AddNode places n into this function's graph.
func (f *GraphFunction) AddNode(n *NodeInstance) {
	if _, exists := f.nodes[n.ID]; !exists {
		f.order = append(f.order, n.ID)
	}
	f.nodes[n.ID] = n
}

// Node looks up a placed NodeInstance by ID.
func (f *GraphFunction) Node(id uuid.UUID) (*NodeInstance, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Nodes returns every placed NodeInstance, in insertion order.
func (f *GraphFunction) Nodes() []*NodeInstance {
	out := make([]*NodeInstance, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.nodes[id])
	}
	return out
}

// EntryNode returns this function's sole entry-typed NodeInstance, or
// an error if none or more than one is placed (spec §4.3: "exactly one
// entry node per function").
func (f *GraphFunction) EntryNode() (*NodeInstance, error) {
	var found *NodeInstance
	for _, n := range f.Nodes() {
		if n.Type.Name == "entry" && n.Type.ModulePath == lang.ModulePath {
			if found != nil {
				return nil, fmt.Errorf("ir: function %s has more than one entry node", f.Name)
			}
			found = n
		}
	}
	if found == nil {
		return nil, fmt.Errorf("ir: function %s has no entry node", f.Name)
	}
	return found, nil
}

// ExitNodes returns every exit-typed NodeInstance placed in this
// function's graph (one per reachable return path, spec §4.3).
func (f *GraphFunction) ExitNodes() []*NodeInstance {
	var out []*NodeInstance
	for _, n := range f.Nodes() {
		if n.Type.Name == "exit" && n.Type.ModulePath == lang.ModulePath {
			out = append(out, n)
		}
	}
	return out
}

// SynthesizedTypes returns this function's entry node type (parameterized
// by Signature). Exit types are synthesized per exit NodeInstance by
// funccompile, since each needs the concrete out-parameter backend
// values only available once the function is being compiled.
func (f *GraphFunction) SynthesizedTypes() []nodetype.NodeType {
	return []nodetype.NodeType{lang.EntryNodeType(f.Signature)}
}

// ConnectExec wires fromID.OutputExec[fromPort] -> toID.InputExec[toPort],
// replacing whatever fromID.OutputExec[fromPort] previously held (spec's
// fan-out-1 rule: a second connection from the same exec output replaces
// the first, it is not rejected). Both nodes must already be placed in
// this function via AddNode, since undoing the old back-reference
// requires looking up whichever node the previous connection pointed at.
func (f *GraphFunction) ConnectExec(fromID uuid.UUID, fromPort int, toID uuid.UUID, toPort int) error {
	from, ok := f.nodes[fromID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, fromID)
	}
	to, ok := f.nodes[toID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, toID)
	}
	if fromPort < 0 || fromPort >= len(from.OutputExec) {
		return fmt.Errorf("%w: exec output %d on %s", ErrPortNotFound, fromPort, fromID)
	}
	if toPort < 0 || toPort >= len(to.InputExec) {
		return fmt.Errorf("%w: exec input %d on %s", ErrPortNotFound, toPort, toID)
	}
	if prev := from.OutputExec[fromPort]; prev != (ConnRef{}) {
		if oldTarget, ok := f.nodes[prev.NodeID]; ok && prev.Port >= 0 && prev.Port < len(oldTarget.InputExec) {
			removeConnRef(&oldTarget.InputExec[prev.Port], fromID, fromPort)
		}
	}
	from.OutputExec[fromPort] = ConnRef{NodeID: toID, Port: toPort}
	to.InputExec[toPort] = append(to.InputExec[toPort], ConnRef{NodeID: fromID, Port: fromPort})
	return nil
}

// ConnectData wires fromID.OutputData[fromPort] -> toID.InputData[toPort],
// replacing whatever toID.InputData[toPort] previously held (fan-in-1).
// Both ports' DataType must agree (spec invariant: data connections are
// type-homogeneous). Both nodes must already be placed in this function.
func (f *GraphFunction) ConnectData(fromID uuid.UUID, fromPort int, toID uuid.UUID, toPort int) error {
	from, ok := f.nodes[fromID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, fromID)
	}
	to, ok := f.nodes[toID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, toID)
	}
	if fromPort < 0 || fromPort >= len(from.OutputData) {
		return fmt.Errorf("%w: data output %d on %s", ErrPortNotFound, fromPort, fromID)
	}
	if toPort < 0 || toPort >= len(to.InputData) {
		return fmt.Errorf("%w: data input %d on %s", ErrPortNotFound, toPort, toID)
	}
	srcType := from.Type.DataOutputs[fromPort].Type
	dstType := to.Type.DataInputs[toPort].Type
	if !srcType.Equal(dstType) {
		return fmt.Errorf("%w: %s -> %s", ErrTypeMismatch, srcType, dstType)
	}
	if prev := to.InputData[toPort]; prev != nil {
		if oldSource, ok := f.nodes[prev.NodeID]; ok && prev.Port >= 0 && prev.Port < len(oldSource.OutputData) {
			removeConnRef(&oldSource.OutputData[prev.Port], toID, toPort)
		}
	}
	ref := ConnRef{NodeID: fromID, Port: fromPort}
	to.InputData[toPort] = &ref
	from.OutputData[fromPort] = append(from.OutputData[fromPort], ConnRef{NodeID: toID, Port: toPort})
	return nil
}
