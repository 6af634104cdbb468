// Package task reads and writes packing tasks in the JSON shape used by the
// task API:
//
//	{
//	  "id": 1,
//	  "space_info": {"x": 10, "y": 10, "z": 10},
//	  "items": [
//	    {"order_id": 1, "name": "A",
//	     "dimensions": {"x": 2, "y": 2, "z": 2},
//	     "position": {"x": 0, "y": 0, "z": 0},
//	     "face_up": false, "fragile": true, "color": "#a1b2c3"}
//	  ]
//	}
//
// Dimensions map x→width, y→height and z→depth; y is vertical. A Task is a
// plain value: placing its items into a [session.Session] with [Load] is
// where bounds and overlap are enforced.
package task

import (
	"cmp"
	"slices"

	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/placement"
	"github.com/L1TangDingZhen/BOX-P/pkg/session"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
)

// XYZ is a triple of numbers keyed x, y, z on the wire.
type XYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Item is one box of a task.
type Item struct {
	OrderID    int    `json:"order_id"`
	Name       string `json:"name"`
	Dimensions XYZ    `json:"dimensions"`
	Position   XYZ    `json:"position"`
	FaceUp     bool   `json:"face_up"`
	Fragile    bool   `json:"fragile"`
	Color      string `json:"color,omitempty"`

	// ID is the box ID in the session the item was exported from. It is
	// informational; loading assigns fresh IDs.
	ID string `json:"id,omitempty"`
}

// Task is a container together with the items to place in it.
type Task struct {
	ID        int    `json:"id,omitempty"`
	SpaceInfo XYZ    `json:"space_info"`
	Items     []Item `json:"items"`
}

// Container returns the task's container.
func (t *Task) Container() geom.Container {
	return geom.Container{X: t.SpaceInfo.X, Y: t.SpaceInfo.Y, Z: t.SpaceInfo.Z}
}

// Size returns the item's extent.
func (it Item) Size() geom.Size {
	return geom.Size{Width: it.Dimensions.X, Height: it.Dimensions.Y, Depth: it.Dimensions.Z}
}

// Candidate converts the item into a placement candidate.
func (it Item) Candidate() placement.Candidate {
	return placement.Candidate{
		Name:        it.Name,
		Position:    geom.Vec3{X: it.Position.X, Y: it.Position.Y, Z: it.Position.Z},
		Size:        it.Size(),
		Constraints: spatial.Constraints(it.FaceUp, it.Fragile),
		Color:       it.Color,
	}
}

// ItemFromBox converts a placed box into an item with the given order ID.
func ItemFromBox(b spatial.Box, orderID int) Item {
	return Item{
		OrderID:    orderID,
		Name:       b.Name,
		Dimensions: XYZ{X: b.Size.Width, Y: b.Size.Height, Z: b.Size.Depth},
		Position:   XYZ{X: b.Position.X, Y: b.Position.Y, Z: b.Position.Z},
		FaceUp:     b.Constraints.Has(spatial.FaceUp),
		Fragile:    b.Constraints.Has(spatial.Fragile),
		Color:      b.Color,
		ID:         b.ID,
	}
}

// Ordered returns a copy of items sorted by OrderID. Items with equal order
// IDs keep their relative order.
func Ordered(items []Item) []Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Compare(a.OrderID, b.OrderID)
	})
	return sorted
}

// FromSession snapshots a session as a task. Items follow placement order
// and are renumbered 1..n.
func FromSession(sess *session.Session, id int) *Task {
	c := sess.Container()
	t := &Task{
		ID:        id,
		SpaceInfo: XYZ{X: c.X, Y: c.Y, Z: c.Z},
		Items:     []Item{},
	}
	for i, b := range session.NewWalkthrough(sess.Boxes()).Boxes() {
		t.Items = append(t.Items, ItemFromBox(b, i+1))
	}
	return t
}

// New returns an empty task with the default container.
func New(id int) *Task {
	c := geom.DefaultContainer()
	return &Task{ID: id, SpaceInfo: XYZ{X: c.X, Y: c.Y, Z: c.Z}, Items: []Item{}}
}

// LineUp returns a copy of items laid out in a single row along X starting
// at the origin, each item flush against the previous one, with y = z = 0.
// Order IDs are renumbered 1..n in input order. This is the arrangement a
// newly created task starts with.
func LineUp(items []Item) []Item {
	out := make([]Item, len(items))
	x := 0.0
	for i, it := range items {
		it.OrderID = i + 1
		it.Position = XYZ{X: x}
		x += it.Dimensions.X
		out[i] = it
	}
	return out
}
