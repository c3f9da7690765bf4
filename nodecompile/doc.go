// Package nodecompile implements Chigraph's per-node code generator
// (spec C7): the two-stage state machine that lowers one NodeInstance,
// for one input_exec_id, into backend basic blocks. It resolves pure
// data dependencies into chained or shared (jumpBackInst) blocks ahead
// of each non-pure node's own code block, and recurses along exec edges
// to cover a whole GraphFunction starting from its entry node.
//
// Grounded on dfs's recursive-visited-map traversal idiom
// (_examples/katalvlaran-lvlath/dfs), generalized from "visited
// vertices" to "compiled (node, input_exec_id) pairs" — the exact
// bounded-state-growth property spec §8 invariant 5 requires.
package nodecompile
