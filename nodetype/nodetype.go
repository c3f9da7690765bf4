// SPDX-License-Identifier: MIT
package nodetype

import (
	"encoding/json"

	"github.com/chigraph/chigraph/backend"
	"github.com/chigraph/chigraph/dtype"
	"github.com/chigraph/chigraph/result"
)

// Port is one named, typed data connection point on a NodeType. Exec
// connection points are plain names (NodeType.ExecInputs/ExecOutputs).
type Port struct {
	Name string
	Type dtype.DataType
}

// Signature is the shape the entry/exit derived node types are
// parameterized by (spec §3: "entry and exit ... parameterized by the
// function signature").
type Signature struct {
	DataInputs  []Port
	DataOutputs []Port
	ExecInputs  []string
	ExecOutputs []string
}

// CodegenArgs is everything a NodeType's Codegen hook needs, matching
// spec §4.2's contract: codegen(exec_input_id, source_location,
// io_values, entry_block, exit_blocks) -> Result.
type CodegenArgs struct {
	// ExecInputID selects which exec-input this invocation is compiling
	// for (0 for pure nodes and entry).
	ExecInputID int
	// Line is the node's assigned debug line number (spec §4.5 step 3).
	Line int
	Loc  backend.DebugLocation

	// IO holds len(DataInputs)+len(DataOutputs) values: the first
	// len(DataInputs) are already-loaded input values; the remainder are
	// pointer values the codegen hook must Store its outputs into.
	IO []backend.Value

	EntryBlock backend.Block
	// ExitBlocks has one entry per ExecOutput, in declared order. Empty
	// for pure nodes.
	ExitBlocks []backend.Block

	Ctx    backend.Context
	Module backend.Module
	Func   backend.Function
}

// CodegenFunc emits entry_block's instructions (spec §4.2). Non-pure
// implementations must terminate entry_block, branching into one of
// exit_blocks (exit, which has none, returns instead); pure
// implementations must not terminate it.
type CodegenFunc func(args CodegenArgs) *result.Result

// NodeType is Chigraph's node-type value (spec C4): a module-qualified
// name, ports (from which Pure derives purity), an opaque instance-data payload (the JSON
// "data" object described in spec §6), and a Codegen capability.
//
// NodeType is a value type: cloning it (Clone) and comparing it (Equal)
// never touches the owning NodeInstance, which is exactly what lets a
// single NodeInstance own its NodeType independently (spec §3).
type NodeType struct {
	ModulePath string
	Name       string

	DataInputs  []Port
	DataOutputs []Port
	ExecInputs  []string
	ExecOutputs []string

	// Payload is the node-type-defined instance data (spec §6's "data"),
	// e.g. the literal value of a const-int, or the variable name of a
	// _get_/_set_ node. It participates in Equal but never in codegen
	// dispatch (Codegen closures already capture whatever they need).
	Payload map[string]any

	Codegen CodegenFunc
}

// Pure reports whether t has zero exec inputs and zero exec outputs
// (spec invariant 2).
func (t NodeType) Pure() bool {
	return len(t.ExecInputs) == 0 && len(t.ExecOutputs) == 0
}

// QualifiedName is the "<module>:<name>" form used by the JSON schema.
func (t NodeType) QualifiedName() string {
	if t.ModulePath == "" {
		return t.Name
	}
	return t.ModulePath + ":" + t.Name
}

// Clone returns a deep copy of t's ports and payload. Codegen is a
// function value and is shared, not copied — it is stateless by
// construction (every lang.* constructor closes over only its own
// parameters, never over a NodeInstance).
func (t NodeType) Clone() NodeType {
	out := t
	out.DataInputs = append([]Port(nil), t.DataInputs...)
	out.DataOutputs = append([]Port(nil), t.DataOutputs...)
	out.ExecInputs = append([]string(nil), t.ExecInputs...)
	out.ExecOutputs = append([]string(nil), t.ExecOutputs...)
	if t.Payload != nil {
		out.Payload = make(map[string]any, len(t.Payload))
		for k, v := range t.Payload {
			out.Payload[k] = v
		}
	}
	return out
}

// Equal reports whether t and other have the same qualified name and
// the same JSON-serialized Payload (spec §3: "comparable by qualified
// name + JSON payload").
func (t NodeType) Equal(other NodeType) bool {
	if t.QualifiedName() != other.QualifiedName() {
		return false
	}
	a, errA := json.Marshal(t.Payload)
	b, errB := json.Marshal(other.Payload)
	if errA != nil || errB != nil {
		return errA == errB
	}
	return string(a) == string(b)
}

// Registry is a per-module factory for NodeType values, keyed by
// unqualified name (spec C4: "Per-module factory producing NodeType
// values").
type Registry interface {
	Lookup(name string) (NodeType, bool)
	All() []NodeType
}

// StaticRegistry is a Registry backed by a fixed map.
type StaticRegistry struct {
	byName map[string]NodeType
	order  []string
}

// NewStaticRegistry builds a StaticRegistry from types, preserving their
// given order for All().
func NewStaticRegistry(types ...NodeType) *StaticRegistry {
	r := &StaticRegistry{byName: make(map[string]NodeType, len(types))}
	for _, nt := range types {
		if _, exists := r.byName[nt.Name]; exists {
			continue
		}
		r.byName[nt.Name] = nt
		r.order = append(r.order, nt.Name)
	}
	return r
}

func (r *StaticRegistry) Lookup(name string) (NodeType, bool) {
	nt, ok := r.byName[name]
	return nt, ok
}

func (r *StaticRegistry) All() []NodeType {
	out := make([]NodeType, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.byName[n])
	}
	return out
}
