// SPDX-License-Identifier: MIT
package validate

import (
	"github.com/google/uuid"

	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/result"
)

// CheckExecutionOrder walks fn's exec edges from its entry node (spec
// §4.7's second check) and verifies that every node's non-pure data
// dependencies have already executed by the time that node is reached.
// Pure nodes are transparent to this check: a data input sourced from a
// pure node is available as soon as that pure node's own non-pure
// ancestors are available, since pure codegen runs inline immediately
// before the consuming node (spec §4.4) rather than at a fixed point in
// exec order.
//
// Grounded on dfs's recursive-visited-map traversal
// (_examples/katalvlaran-lvlath/dfs), generalized the same way
// nodecompile generalizes it: "visited vertices" becomes "nodes whose
// outputs are known available", walked along exec edges instead of
// graph edges.
func CheckExecutionOrder(fn *ir.GraphFunction) *result.Result {
	r := result.New()
	entry, err := fn.EntryNode()
	if err != nil {
		r.Errorf(result.CodeNoEntryNode, "graph function has no entry node: %v", err)
		return r
	}

	w := &execWalker{
		fn:          fn,
		available:   make(map[uuid.UUID]bool),
		visitedExec: make(map[uuid.UUID]map[int]bool),
		r:           r,
	}
	w.walk(entry, 0)
	return r
}

type execWalker struct {
	fn          *ir.GraphFunction
	available   map[uuid.UUID]bool
	visitedExec map[uuid.UUID]map[int]bool
	r           *result.Result
}

func (w *execWalker) walk(n *ir.NodeInstance, execID int) {
	seen := w.visitedExec[n.ID]
	if seen == nil {
		seen = make(map[int]bool)
		w.visitedExec[n.ID] = seen
	}
	if seen[execID] {
		return
	}
	seen[execID] = true

	w.checkDataInputs(n, make(map[uuid.UUID]bool))
	w.available[n.ID] = true

	for out, target := range n.OutputExec {
		if target == (ir.ConnRef{}) {
			continue
		}
		succ, ok := w.fn.Node(target.NodeID)
		if !ok {
			w.r.Errorf(result.CodeUnknownNode, "node %s exec output %d targets unknown node %s", n.ID, out, target.NodeID)
			continue
		}
		w.walk(succ, target.Port)
	}
}

// checkDataInputs verifies every data input of n is either unconnected
// (reported) or traces back, possibly through a chain of pure nodes, to
// sources that are all already available. visiting guards against a
// cycle among pure nodes (spec invariant: pure data dependencies must be
// acyclic), reported once via CodePureCycle instead of recursing forever.
func (w *execWalker) checkDataInputs(n *ir.NodeInstance, visiting map[uuid.UUID]bool) {
	if visiting[n.ID] {
		w.r.Errorf(result.CodePureCycle, "pure data dependency cycle detected at node %s", n.ID)
		return
	}
	visiting[n.ID] = true
	defer delete(visiting, n.ID)

	for i, src := range n.InputData {
		if src == nil {
			w.r.Errorf(result.CodeMissingDataInput, "node %s data input %d is unconnected", n.ID, i)
			continue
		}
		source, ok := w.fn.Node(src.NodeID)
		if !ok {
			w.r.Errorf(result.CodeUnknownNode, "node %s data input %d sources unknown node %s", n.ID, i, src.NodeID)
			continue
		}
		if source.Type.Pure() {
			w.checkDataInputs(source, visiting)
			continue
		}
		if !w.available[source.ID] {
			w.r.Errorf(result.CodeMissingDataInput, "node %s data input %d reads %s before it executes", n.ID, i, source.ID)
		}
	}
}
