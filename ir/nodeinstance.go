// SPDX-License-Identifier: MIT
package ir

import (
	"github.com/google/uuid"

	"github.com/chigraph/chigraph/nodetype"
)

// ConnRef names one endpoint of a connection: the owning node and the
// port index within whichever of its four port lists is relevant.
type ConnRef struct {
	NodeID uuid.UUID
	Port   int
}

// NodeInstance is one placed, owned node in a GraphFunction's graph
// (spec C3/§3): an identity, a position for the graph editor, an owned
// NodeType value, and four independent connection arrays.
//
// Execution (exec) connections fan in many-to-one and fan out one-to-
// one: InputExec has one slot per NodeType.ExecInputs entry and may
// receive connections from many other nodes' OutputExec slots, but each
// OutputExec slot holds at most one target. Data connections invert
// this: InputData fans in from exactly one source, OutputData fans out
// to arbitrarily many consumers (spec §3, invariant 1).
type NodeInstance struct {
	ID   uuid.UUID
	X, Y float64
	Type nodetype.NodeType

	// InputExec[i] lists every (NodeID, OutputExec index) connected to
	// ExecInputs[i] (fan-in-many).
	InputExec [][]ConnRef
	// OutputExec[i] holds at most one target for ExecOutputs[i]
	// (fan-out-1); the zero ConnRef means unconnected.
	OutputExec []ConnRef

	// InputData[i] holds at most one source for DataInputs[i]
	// (fan-in-1); nil means unconnected.
	InputData []*ConnRef
	// OutputData[i] lists every consumer of DataOutputs[i] (fan-out-many).
	OutputData [][]ConnRef
}

// NewNodeInstance places a fresh, unconnected instance of nt at (x, y)
// with a new random ID.
func NewNodeInstance(nt nodetype.NodeType, x, y float64) *NodeInstance {
	return &NodeInstance{
		ID:         uuid.New(),
		X:          x,
		Y:          y,
		Type:       nt,
		InputExec:  make([][]ConnRef, len(nt.ExecInputs)),
		OutputExec: make([]ConnRef, len(nt.ExecOutputs)),
		InputData:  make([]*ConnRef, len(nt.DataInputs)),
		OutputData: make([][]ConnRef, len(nt.DataOutputs)),
	}
}

func removeConnRef(list *[]ConnRef, nodeID uuid.UUID, port int) {
	out := (*list)[:0]
	for _, c := range *list {
		if c.NodeID == nodeID && c.Port == port {
			continue
		}
		out = append(out, c)
	}
	*list = out
}
