// SPDX-License-Identifier: MIT
package chijson

import (
	"encoding/json"
	"sort"

	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
	"github.com/chigraph/chigraph/result"
)

// Encode renders mod as the stable JSON form spec §6 defines. The
// result is deterministic: encoding/json sorts map keys, and every
// slice chijson builds (fields, nodes' connections) already follows
// mod's own declaration/insertion order.
func Encode(mod *ir.GraphModule) ([]byte, *result.Result) {
	r := result.New()

	doc := document{
		Dependencies: mod.Dependencies(),
		Types:        make(map[string][]fieldRef),
		Graphs:       make([]graphDoc, 0, len(mod.Functions())),
	}

	for _, s := range mod.Structs() {
		doc.Types[s.Name] = fieldRefsFromPorts(s.Fields)
	}

	for _, fn := range mod.Functions() {
		doc.Graphs = append(doc.Graphs, encodeFunction(fn, r))
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.Errorf(result.CodeJSONParse, "chijson: encode %s: %v", mod.Path(), err)
		return nil, r
	}
	return out, r
}

func encodeFunction(fn *ir.GraphFunction, r *result.Result) graphDoc {
	sig := fn.Signature
	doc := graphDoc{
		Type:           "function",
		Name:           fn.Name,
		Inputs:         fieldRefsFromPorts(sig.DataInputs),
		Outputs:        fieldRefsFromPorts(sig.DataOutputs),
		ExecInputs:     append([]string(nil), sig.ExecInputs...),
		ExecOutputs:    append([]string(nil), sig.ExecOutputs...),
		LocalVariables: make(map[string]string, len(fn.Locals)),
		Nodes:          make(map[string]nodeDoc, len(fn.Nodes())),
	}
	for _, l := range fn.Locals {
		doc.LocalVariables[l.Name] = typeRefString(l.Type)
	}

	nodes := fn.Nodes()
	for _, n := range nodes {
		doc.Nodes[n.ID.String()] = nodeDoc{
			Type:     n.Type.QualifiedName(),
			Location: [2]float64{n.X, n.Y},
			Data:     encodeNodeData(n, sig, r),
		}
	}

	for _, n := range nodes {
		for i, ref := range n.OutputExec {
			if ref == (ir.ConnRef{}) {
				continue
			}
			doc.Connections = append(doc.Connections, connectionDoc{
				Type:   "exec",
				Output: endpoint{Node: n.ID, Slot: i},
				Input:  endpoint{Node: ref.NodeID, Slot: ref.Port},
			})
		}
		for i, ref := range n.InputData {
			if ref == nil {
				continue
			}
			doc.Connections = append(doc.Connections, connectionDoc{
				Type:   "data",
				Input:  endpoint{Node: n.ID, Slot: i},
				Output: endpoint{Node: ref.NodeID, Slot: ref.Port},
			})
		}
	}
	return doc
}

// encodeNodeData renders a node's instance-data payload. Entry restates
// the function's signature (spec §6: "for entry, it restates inputs/exec
// so that loads can validate signature match"); every other node type
// marshals its own NodeType.Payload, defaulting to `{}` when nil.
func encodeNodeData(n *ir.NodeInstance, sig nodetype.Signature, r *result.Result) json.RawMessage {
	var payload any = n.Type.Payload
	if n.Type.ModulePath == lang.ModulePath && n.Type.Name == "entry" {
		execInputs := sig.ExecInputs
		if len(execInputs) == 0 {
			execInputs = []string{"exec"}
		}
		payload = map[string]any{
			"inputs":      fieldRefsFromPorts(sig.DataInputs),
			"exec_inputs": execInputs,
		}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		r.Errorf(result.CodeJSONParse, "chijson: encode node %s data: %v", n.ID, err)
		return nil
	}
	return raw
}

func fieldRefsFromPorts(ports []nodetype.Port) []fieldRef {
	out := make([]fieldRef, 0, len(ports))
	for _, p := range ports {
		out = append(out, fieldRef{p.Name: typeRefString(p.Type)})
	}
	return out
}

// sortedKeys is a small helper shared by decode.go's deterministic map
// traversal (Go map iteration order is randomized; every pass over a
// document map sorts its keys first so two decodes of the same bytes
// build identical node insertion order, the ordering spec §5 requires
// for reproducible debug-line assignment).
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
