package spatial

import (
	"iter"
	"slices"

	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
)

// Index is an insertion-ordered collection of boxes keyed by ID.
//
// The zero value is not usable - use New.
type Index struct {
	boxes []Box
	byID  map[string]int // id -> position in boxes
}

// New creates an empty index.
func New() *Index {
	return &Index{byID: make(map[string]int)}
}

// Add inserts b without validation. If a box with the same ID is already
// present it is replaced in place, keeping its insertion position.
func (x *Index) Add(b Box) {
	if i, ok := x.byID[b.ID]; ok {
		x.boxes[i] = b
		return
	}
	x.byID[b.ID] = len(x.boxes)
	x.boxes = append(x.boxes, b)
}

// Remove deletes the box with the given ID and reports whether it existed.
// The relative order of the remaining boxes is preserved.
func (x *Index) Remove(id string) bool {
	i, ok := x.byID[id]
	if !ok {
		return false
	}
	x.boxes = slices.Delete(x.boxes, i, i+1)
	delete(x.byID, id)
	for j := i; j < len(x.boxes); j++ {
		x.byID[x.boxes[j].ID] = j
	}
	return true
}

// Get returns the box with the given ID.
func (x *Index) Get(id string) (Box, bool) {
	i, ok := x.byID[id]
	if !ok {
		return Box{}, false
	}
	return x.boxes[i], true
}

// Len returns the number of boxes.
func (x *Index) Len() int { return len(x.boxes) }

// Overlaps reports whether candidate intersects any box in the index with
// positive volume. Face contact is not an overlap.
func (x *Index) Overlaps(candidate Box) bool {
	c := candidate.AABB()
	for _, b := range x.boxes {
		if geom.Overlaps(c, b.AABB()) {
			return true
		}
	}
	return false
}

// Colliding returns the IDs of every box candidate overlaps, in insertion
// order. A box with candidate's own ID is skipped so an existing box can
// be re-checked against the rest.
func (x *Index) Colliding(candidate Box) []string {
	c := candidate.AABB()
	var ids []string
	for _, b := range x.boxes {
		if b.ID == candidate.ID && candidate.ID != "" {
			continue
		}
		if geom.Overlaps(c, b.AABB()) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// All returns the boxes in insertion order. The sequence iterates over a
// snapshot taken when All is called, so it can be ranged over repeatedly
// and is unaffected by later mutations of the index.
func (x *Index) All() iter.Seq[Box] {
	snapshot := slices.Clone(x.boxes)
	return func(yield func(Box) bool) {
		for _, b := range snapshot {
			if !yield(b) {
				return
			}
		}
	}
}

// Boxes returns a copy of the boxes in insertion order.
func (x *Index) Boxes() []Box { return slices.Clone(x.boxes) }
