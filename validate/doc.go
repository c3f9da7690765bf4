// Package validate implements Chigraph's two-way connection check and
// execution-order dataflow check (spec C6, §4.7).
//
// Both checks are pure functions over an *ir.GraphFunction: they read the
// connection arrays and node types already recorded by ir, and report
// violations as result.Entry values rather than mutating anything. The
// execution-order walk follows the teacher's dfs package idiom (a small
// walker struct closing over a visited set, recursing along graph edges)
// adapted from vertex IDs to (NodeInstance, input_exec_id) pairs.
package validate
