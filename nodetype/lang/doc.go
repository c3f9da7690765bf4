// Package lang implements Chigraph's LangModule: the built-in primitive
// DataTypes and node types spec §3 and §4.2 describe — i1/i8/i32/i64/
// float/double (plus pointer forms), and the node types if, entry, exit,
// const-int, const-bool, const-float, strliteral.
//
// It also provides the generator functions for the node types every
// GraphModule/GraphFunction synthesizes dynamically: entry/exit
// (parameterized by a function's Signature), struct make/break
// (parameterized by a GraphStruct's fields), and local-variable get/set
// (parameterized by a local's name and DataType). These mirror the
// teacher's builder package shape (lvlath/builder: one Constructor per
// concrete graph shape, composed through a uniform functional-option
// config) — here, one NodeType constructor per concrete node shape,
// composed through nodetype.Signature / dtype.DataType parameters instead
// of lvlath's builderConfig.
package lang
