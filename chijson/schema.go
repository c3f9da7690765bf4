// SPDX-License-Identifier: MIT
package chijson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chigraph/chigraph/dtype"
)

// document is the root object spec §6 defines.
type document struct {
	Dependencies []string                     `json:"dependencies"`
	Types        map[string][]fieldRef        `json:"types"`
	Graphs       []graphDoc                   `json:"graphs"`
}

// fieldRef is one `{<field>: "<mod>:<type>"}` entry in a struct's field
// list. It is a single-key map in the wire format; fieldRefsFromPorts
// (encode.go) and portsFromFieldRefs (decode.go) convert to/from a
// []nodetype.Port.
type fieldRef map[string]string

// graphDoc is one entry of the top-level "graphs" array. Only
// `"type": "function"` is defined by spec §6; chijson rejects anything
// else via ErrUnknownGraphKind rather than silently ignoring it.
type graphDoc struct {
	Type           string              `json:"type"`
	Name           string              `json:"name"`
	Inputs         []fieldRef          `json:"inputs"`
	Outputs        []fieldRef          `json:"outputs"`
	ExecInputs     []string            `json:"exec_inputs"`
	ExecOutputs    []string            `json:"exec_outputs"`
	LocalVariables map[string]string   `json:"local_variables"`
	Nodes          map[string]nodeDoc  `json:"nodes"`
	Connections    []connectionDoc     `json:"connections"`
}

// nodeDoc is one entry of a graphDoc's "nodes" map, keyed by the node's
// UUID.
type nodeDoc struct {
	Type     string          `json:"type"`
	Location [2]float64      `json:"location"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// connectionDoc is one entry of a graphDoc's "connections" array.
type connectionDoc struct {
	Type   string   `json:"type"`
	Input  endpoint `json:"input"`
	Output endpoint `json:"output"`
}

// endpoint is a `[uuid, slot]` pair. It marshals/unmarshals as a JSON
// 2-element array rather than an object, matching spec §6's literal
// `"input": [<uuid>, <slot>]` shape.
type endpoint struct {
	Node uuid.UUID
	Slot int
}

func (e endpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Node.String(), e.Slot})
}

func (e *endpoint) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	var idStr string
	if err := json.Unmarshal(raw[0], &idStr); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	var slot int
	if err := json.Unmarshal(raw[1], &slot); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	e.Node, e.Slot = id, slot
	return nil
}

// typeRefString renders a dtype.DataType as the "<mod>:<type>" wire
// form. DataType.String already does exactly this; it is reused rather
// than duplicated here.
func typeRefString(t dtype.DataType) string {
	return t.String()
}

// parseTypeRef splits a "<mod>:<type>" wire reference back into an
// unresolved DataType (BackendType/DebugType are left zero; modcompile
// resolves them the same way it resolves any other DataType read from
// source). A reference with no colon names a LangModule primitive
// ("i32", "i32*"), matching DataType.String's own empty-path shorthand.
func parseTypeRef(ref string) dtype.DataType {
	if idx := strings.Index(ref, ":"); idx >= 0 {
		return dtype.DataType{ModulePath: ref[:idx], Name: ref[idx+1:]}
	}
	return dtype.DataType{ModulePath: "", Name: ref}
}
