// Package nodelink renders a box support graph as a node-link diagram.
//
// Each placed box is a node filled with its display color; an arrow from A
// to B means A lies beneath B. Nodes in the same layer share a rank, with
// the ground layer at the bottom.
//
// # Usage
//
//	g := stratify.SupportGraph(boxes)
//	transform.TransitiveReduction(g)
//	transform.AssignLayers(g, 0)
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
