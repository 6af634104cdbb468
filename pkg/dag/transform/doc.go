// Package transform provides graph transformations over a [dag.DAG].
//
// # Layer Assignment
//
// [AssignLayers] computes the row for each node from its depth above the
// source nodes (those with no incoming edges). Each node lands one row above
// the highest of its parents. An optional cap flattens everything at or above
// the cap into a single row, which is how the single-level stacking view is
// produced: a box is either on the ground (row 0) or resting on something
// (row 1).
//
// # Transitive Reduction
//
// [TransitiveReduction] removes edges that are implied by longer paths. In a
// support graph, if A lies under B and B under C, the edge A→C is implied;
// removing it leaves only the "directly beneath" relation, which is what a
// rendered graph should show.
//
// # Usage
//
//	transform.TransitiveReduction(g) // optional, for display
//	transform.AssignLayers(g, 0)     // 0 = no cap
//
// [dag.DAG]: github.com/L1TangDingZhen/BOX-P/pkg/dag.DAG
package transform
