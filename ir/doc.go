// Package ir implements Chigraph's graph intermediate representation
// (spec C5): Context owns a set of named Modules; a GraphModule owns
// GraphFunctions and GraphStructs; a GraphFunction owns a graph of
// NodeInstances connected by four independent connection arrays.
//
// The graph shape mirrors the teacher's core.Graph (adjacency held in
// ID-keyed maps, validated incrementally as edges are added) adapted to
// Chigraph's asymmetric connection rules: exec connections fan-in-many/
// fan-out-1, data connections fan-in-1/fan-out-many (spec §3).
package ir
