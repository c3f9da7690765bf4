// SPDX-License-Identifier: MIT
package validate

import (
	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/result"
)

// CheckConnectionSymmetry verifies that every recorded connection on
// every NodeInstance in fn has a matching back-reference on its peer,
// in both directions (spec §8 invariant 1, §4.7 "connection symmetry").
// A GraphFunction built exclusively through ir.GraphFunction.ConnectExec
// / ConnectData can never actually violate this, but a graph loaded from
// JSON (chijson) is untrusted input and must be checked before compile.
func CheckConnectionSymmetry(fn *ir.GraphFunction) *result.Result {
	r := result.New()
	nodes := fn.Nodes()
	byID := make(map[string]*ir.NodeInstance, len(nodes))
	for _, n := range nodes {
		byID[n.ID.String()] = n
	}

	for _, n := range nodes {
		checkExecOut(r, fn, n, byID)
		checkExecIn(r, fn, n, byID)
		checkDataOut(r, fn, n, byID)
		checkDataIn(r, fn, n, byID)
	}
	return r
}

func checkExecOut(r *result.Result, fn *ir.GraphFunction, n *ir.NodeInstance, byID map[string]*ir.NodeInstance) {
	for out, target := range n.OutputExec {
		if target == (ir.ConnRef{}) {
			continue
		}
		peer, ok := byID[target.NodeID.String()]
		if !ok {
			r.Errorf(result.CodeAsymmetricConnection, "node %s exec output %d targets unknown node %s", n.ID, out, target.NodeID)
			continue
		}
		if target.Port < 0 || target.Port >= len(peer.InputExec) || !hasConn(peer.InputExec[target.Port], n.ID, out) {
			r.Errorf(result.CodeAsymmetricConnection, "node %s exec output %d -> %s input %d has no matching back-reference", n.ID, out, peer.ID, target.Port)
		}
	}
}

func checkExecIn(r *result.Result, fn *ir.GraphFunction, n *ir.NodeInstance, byID map[string]*ir.NodeInstance) {
	for in, sources := range n.InputExec {
		for _, src := range sources {
			peer, ok := byID[src.NodeID.String()]
			if !ok {
				r.Errorf(result.CodeAsymmetricConnection, "node %s exec input %d cites unknown source node %s", n.ID, in, src.NodeID)
				continue
			}
			if src.Port < 0 || src.Port >= len(peer.OutputExec) || peer.OutputExec[src.Port] != (ir.ConnRef{NodeID: n.ID, Port: in}) {
				r.Errorf(result.CodeAsymmetricConnection, "node %s exec input %d cites %s output %d, which does not point back", n.ID, in, peer.ID, src.Port)
			}
		}
	}
}

func checkDataOut(r *result.Result, fn *ir.GraphFunction, n *ir.NodeInstance, byID map[string]*ir.NodeInstance) {
	for out, consumers := range n.OutputData {
		for _, c := range consumers {
			peer, ok := byID[c.NodeID.String()]
			if !ok {
				r.Errorf(result.CodeAsymmetricConnection, "node %s data output %d targets unknown node %s", n.ID, out, c.NodeID)
				continue
			}
			if c.Port < 0 || c.Port >= len(peer.InputData) || peer.InputData[c.Port] == nil || *peer.InputData[c.Port] != (ir.ConnRef{NodeID: n.ID, Port: out}) {
				r.Errorf(result.CodeAsymmetricConnection, "node %s data output %d -> %s input %d has no matching back-reference", n.ID, out, peer.ID, c.Port)
			}
		}
	}
}

func checkDataIn(r *result.Result, fn *ir.GraphFunction, n *ir.NodeInstance, byID map[string]*ir.NodeInstance) {
	for in, src := range n.InputData {
		if src == nil {
			continue
		}
		peer, ok := byID[src.NodeID.String()]
		if !ok {
			r.Errorf(result.CodeAsymmetricConnection, "node %s data input %d cites unknown source node %s", n.ID, in, src.NodeID)
			continue
		}
		if src.Port < 0 || src.Port >= len(peer.OutputData) || !hasConn(peer.OutputData[src.Port], n.ID, in) {
			r.Errorf(result.CodeAsymmetricConnection, "node %s data input %d cites %s output %d, which does not list it as a consumer", n.ID, in, peer.ID, src.Port)
		}
	}
}

func hasConn(list []ir.ConnRef, nodeID interface{ String() string }, port int) bool {
	for _, c := range list {
		if c.NodeID.String() == nodeID.String() && c.Port == port {
			return true
		}
	}
	return false
}
