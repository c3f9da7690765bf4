// Package nodetype implements Chigraph's NodeType (spec C4): a
// polymorphic, cloneable value carrying a node's ports and its codegen
// capability.
//
// The teacher's deep virtual NodeType inheritance (spec §9, "Deep virtual
// inheritance of NodeType in the source") is replaced, per the redesign
// note, by a single concrete struct plus one function-valued capability,
// Codegen. Specializations (struct make/break, local-variable get/set,
// the lang built-ins) are ordinary Go functions in nodetype/lang that
// return a NodeType value parameterized by name/types — not subclasses.
//
// A NodeType is pure iff it has zero exec inputs and zero exec outputs
// (spec invariant 2, §8).
package nodetype
