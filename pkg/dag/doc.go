// Package dag provides a directed acyclic graph whose nodes are grouped into
// rows (layers).
//
// # Overview
//
// boxp uses the graph to describe how placed boxes stack: every box is a
// node and an edge From a lower box To an upper box means the lower box lies
// beneath the upper one with overlapping footprints. Rows are the layers
// computed from that relation (see package stratify), with row 0 on the
// ground.
//
// Edges always point upward, so a support graph built from real geometry is
// acyclic by construction. [DAG.Validate] checks this along with the row
// ordering.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "item0001"})
//	g.AddNode(dag.Node{ID: "item0002"})
//	g.AddEdge(dag.Edge{From: "item0001", To: "item0002"})
//	transform.AssignLayers(g, 0)
//
// Nodes and rows are listed in insertion order, which makes every query
// deterministic for a given box order.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// The [transform] subpackage provides layer assignment and transitive
// reduction.
//
// [transform]: github.com/L1TangDingZhen/BOX-P/pkg/dag/transform
package dag
