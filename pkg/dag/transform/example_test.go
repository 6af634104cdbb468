package transform_test

import (
	"fmt"

	"github.com/L1TangDingZhen/BOX-P/pkg/dag"
	"github.com/L1TangDingZhen/BOX-P/pkg/dag/transform"
)

func ExampleTransitiveReduction() {
	// floor → crate → lid, and the floor also lies under the lid
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "floor"})
	_ = g.AddNode(dag.Node{ID: "crate"})
	_ = g.AddNode(dag.Node{ID: "lid"})
	_ = g.AddEdge(dag.Edge{From: "floor", To: "crate"})
	_ = g.AddEdge(dag.Edge{From: "crate", To: "lid"})
	_ = g.AddEdge(dag.Edge{From: "floor", To: "lid"}) // Implied

	fmt.Println("Before reduction:", g.EdgeCount(), "edges")
	transform.TransitiveReduction(g)
	fmt.Println("After reduction:", g.EdgeCount(), "edges")
	// Output:
	// Before reduction: 3 edges
	// After reduction: 2 edges
}

func ExampleAssignLayers() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "floor"})
	_ = g.AddNode(dag.Node{ID: "crate"})
	_ = g.AddNode(dag.Node{ID: "lid"})
	_ = g.AddEdge(dag.Edge{From: "floor", To: "crate"})
	_ = g.AddEdge(dag.Edge{From: "crate", To: "lid"})

	transform.AssignLayers(g, 0)
	for _, n := range g.Nodes() {
		fmt.Println(n.ID, "row:", n.Row)
	}

	// Capped at one: anything resting on something shares row 1
	transform.AssignLayers(g, 1)
	lid, _ := g.Node("lid")
	fmt.Println("capped lid row:", lid.Row)
	// Output:
	// floor row: 0
	// crate row: 1
	// lid row: 2
	// capped lid row: 1
}
