// SPDX-License-Identifier: MIT
package chijson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chigraph/chigraph/ir"
	"github.com/chigraph/chigraph/nodetype"
	"github.com/chigraph/chigraph/nodetype/lang"
	"github.com/chigraph/chigraph/result"
)

// Decode parses data as spec §6's JSON schema into a new GraphModule
// registered at path (not yet added to ctx — the caller does that, the
// same way ir.Context.AddModule is always called explicitly elsewhere).
// ctx is used only to resolve already-registered dependency modules'
// node-type registries (struct make/break, synthesized entry types) for
// cross-module node references; nothing about decoding mutates ctx.
func Decode(ctx *ir.Context, path string, data []byte) (*ir.GraphModule, *result.Result) {
	r := result.New()

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.Errorf(result.CodeJSONParse, "chijson: decode %s: %v", path, err)
		return nil, r
	}

	opts := make([]ir.GraphOption, 0, len(doc.Dependencies))
	for _, dep := range doc.Dependencies {
		opts = append(opts, ir.WithDependency(dep))
	}
	mod := ir.NewGraphModule(path, opts...)

	for _, name := range sortedKeys(doc.Types) {
		fields, err := portsFromFieldRefs(doc.Types[name])
		if err != nil {
			r.Errorf(result.CodeJSONParse, "chijson: struct %s: %v", name, err)
			continue
		}
		mod.AddStruct(ir.NewGraphStruct(path, name, fields))
	}
	if !r.Success() {
		return nil, r
	}

	for _, gd := range doc.Graphs {
		if gd.Type != "function" {
			r.Errorf(result.CodeJSONParse, "%v: %s", ErrUnknownGraphKind, gd.Type)
			continue
		}
		fn, fr := decodeFunction(ctx, mod, gd)
		r.Merge(fr)
		if !r.Success() {
			return nil, r
		}
		mod.AddFunction(fn)
	}

	return mod, r
}

func decodeFunction(ctx *ir.Context, mod *ir.GraphModule, gd graphDoc) (*ir.GraphFunction, *result.Result) {
	r := result.New()

	dataInputs, err := portsFromFieldRefs(gd.Inputs)
	if err != nil {
		r.Errorf(result.CodeJSONParse, "chijson: function %s inputs: %v", gd.Name, err)
	}
	dataOutputs, err := portsFromFieldRefs(gd.Outputs)
	if err != nil {
		r.Errorf(result.CodeJSONParse, "chijson: function %s outputs: %v", gd.Name, err)
	}
	if !r.Success() {
		return nil, r
	}

	sig := nodetype.Signature{
		DataInputs:  dataInputs,
		DataOutputs: dataOutputs,
		ExecInputs:  append([]string(nil), gd.ExecInputs...),
		ExecOutputs: append([]string(nil), gd.ExecOutputs...),
	}
	fn := ir.NewGraphFunction(mod.Path(), gd.Name, sig)

	for _, name := range sortedKeys(gd.LocalVariables) {
		fn.AddLocal(name, parseTypeRef(gd.LocalVariables[name]))
	}

	for _, key := range sortedKeys(gd.Nodes) {
		id, err := uuid.Parse(key)
		if err != nil {
			r.Errorf(result.CodeJSONParse, "chijson: node id %q: %v", key, err)
			continue
		}
		nd := gd.Nodes[key]

		var payload map[string]any
		if len(nd.Data) > 0 {
			if err := json.Unmarshal(nd.Data, &payload); err != nil {
				r.Errorf(result.CodeJSONParse, "chijson: node %s data: %v", key, err)
				continue
			}
		}

		nt, err := resolveNodeType(ctx, mod, fn, nd.Type, payload)
		if err != nil {
			r.Errorf(result.CodeUnknownNodeType, "chijson: node %s: %v", key, err)
			continue
		}

		ni := ir.NewNodeInstance(nt, nd.Location[0], nd.Location[1])
		ni.ID = id
		fn.AddNode(ni)
	}
	if !r.Success() {
		return nil, r
	}

	for _, c := range gd.Connections {
		switch c.Type {
		case "exec":
			if err := fn.ConnectExec(c.Output.Node, c.Output.Slot, c.Input.Node, c.Input.Slot); err != nil {
				r.Errorf(result.CodeJSONParse, "chijson: exec connection %s: %v", gd.Name, err)
			}
		case "data":
			if err := fn.ConnectData(c.Output.Node, c.Output.Slot, c.Input.Node, c.Input.Slot); err != nil {
				r.Errorf(result.CodeJSONParse, "chijson: data connection %s: %v", gd.Name, err)
			}
		default:
			r.Errorf(result.CodeJSONParse, "chijson: unknown connection type %q", c.Type)
		}
	}

	return fn, r
}

func portsFromFieldRefs(refs []fieldRef) ([]nodetype.Port, error) {
	out := make([]nodetype.Port, 0, len(refs))
	for _, ref := range refs {
		if len(ref) != 1 {
			return nil, fmt.Errorf("%w: field entry with %d keys", ErrMalformedTypeRef, len(ref))
		}
		for name, typeRef := range ref {
			out = append(out, nodetype.Port{Name: name, Type: parseTypeRef(typeRef)})
		}
	}
	return out, nil
}

// resolveNodeType maps a node's "<module>:<name>" qualified type and
// instance-data payload back to a concrete nodetype.NodeType. See the
// package doc for why entry/exit/local accessors come back as
// placeholders that funccompile.Initialize rebinds later.
func resolveNodeType(ctx *ir.Context, mod *ir.GraphModule, fn *ir.GraphFunction, qualified string, payload map[string]any) (nodetype.NodeType, error) {
	modPath, name := splitQualified(qualified)

	if modPath == lang.ModulePath {
		switch {
		case name == "entry":
			return lang.EntryNodeType(fn.Signature), nil

		case name == "exit":
			execName := stringField(payload, "exec_output")
			if execName == "" {
				if len(fn.Signature.ExecOutputs) > 0 {
					execName = fn.Signature.ExecOutputs[0]
				} else {
					execName = "exec"
				}
			}
			return lang.ExitNodeType(fn.Signature, execName, nil), nil

		case strings.HasPrefix(name, "_get_"):
			varName := strings.TrimPrefix(name, "_get_")
			local, ok := findLocal(fn, varName)
			if !ok {
				return nodetype.NodeType{}, fmt.Errorf("%w: local %s", ErrUnknownNodeType, varName)
			}
			return lang.GetLocalNodeType(varName, local.Type, nil), nil

		case strings.HasPrefix(name, "_set_"):
			varName := strings.TrimPrefix(name, "_set_")
			local, ok := findLocal(fn, varName)
			if !ok {
				return nodetype.NodeType{}, fmt.Errorf("%w: local %s", ErrUnknownNodeType, varName)
			}
			return lang.SetLocalNodeType(varName, local.Type, nil), nil

		case name == "const-int":
			return lang.ConstInt(intField(payload, "width", 32), int64Field(payload, "value")), nil

		case name == "const-bool":
			return lang.ConstBool(boolField(payload, "value")), nil

		case name == "const-float":
			return lang.ConstFloat(boolField(payload, "double"), floatField(payload, "value")), nil

		case name == "strliteral":
			return lang.StrLiteral(stringField(payload, "value")), nil
		}

		for _, nt := range ctx.Lang().Types(ctx) {
			if nt.Name == name {
				return nt, nil
			}
		}
		return nodetype.NodeType{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, qualified)
	}

	if modPath == mod.Path() {
		if structName, ok := strings.CutPrefix(name, "_make_"); ok {
			return lookupStructNodeType(ctx, mod, structName, name)
		}
		if structName, ok := strings.CutPrefix(name, "_break_"); ok {
			return lookupStructNodeType(ctx, mod, structName, name)
		}
	}

	dep, err := ctx.Module(modPath)
	if err == nil {
		for _, nt := range dep.Types(ctx) {
			if nt.Name == name {
				return nt, nil
			}
		}
	}
	return nodetype.NodeType{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, qualified)
}

func lookupStructNodeType(ctx *ir.Context, mod *ir.GraphModule, structName, wantName string) (nodetype.NodeType, error) {
	s, ok := mod.Struct(structName)
	if !ok {
		return nodetype.NodeType{}, fmt.Errorf("%w: struct %s", ErrUnknownNodeType, structName)
	}
	s.DataType(ctx)
	for _, nt := range s.NodeTypes() {
		if nt.Name == wantName {
			return nt, nil
		}
	}
	return nodetype.NodeType{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, wantName)
}

func findLocal(fn *ir.GraphFunction, name string) (ir.Local, bool) {
	for _, l := range fn.Locals {
		if l.Name == name {
			return l, true
		}
	}
	return ir.Local{}, false
}

// splitQualified splits a "<module>:<name>" node-type reference. A
// reference with no colon names a LangModule node type ("if",
// "entry"), matching NodeType.QualifiedName's own empty-path shorthand.
func splitQualified(s string) (modPath, name string) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return lang.ModulePath, s
}

func stringField(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func boolField(payload map[string]any, key string) bool {
	v, _ := payload[key].(bool)
	return v
}

func floatField(payload map[string]any, key string) float64 {
	v, _ := payload[key].(float64)
	return v
}

func int64Field(payload map[string]any, key string) int64 {
	v, _ := payload[key].(float64)
	return int64(v)
}

func intField(payload map[string]any, key string, def int) int {
	v, ok := payload[key].(float64)
	if !ok {
		return def
	}
	return int(v)
}
