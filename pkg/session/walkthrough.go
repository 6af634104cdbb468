package session

import (
	"cmp"
	"slices"

	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

// Walkthrough steps through boxes one at a time in placement order, the
// way a loader works through a task. It holds a snapshot; later changes to
// the session are not reflected.
type Walkthrough struct {
	boxes []spatial.Box
	pos   int
}

// NewWalkthrough creates a cursor over boxes sorted by Order. The cursor
// starts at the first box.
func NewWalkthrough(boxes []spatial.Box) *Walkthrough {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b spatial.Box) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return &Walkthrough{boxes: sorted}
}

// Len returns the number of boxes.
func (w *Walkthrough) Len() int { return len(w.boxes) }

// Index returns the 0-based cursor position.
func (w *Walkthrough) Index() int { return w.pos }

// Boxes returns the boxes in walk order. The slice must not be modified.
func (w *Walkthrough) Boxes() []spatial.Box { return w.boxes }

// Current returns the box under the cursor, or false if there are none.
func (w *Walkthrough) Current() (spatial.Box, bool) {
	if len(w.boxes) == 0 {
		return spatial.Box{}, false
	}
	return w.boxes[w.pos], true
}

// Next moves to the following box. It reports false at the last box.
func (w *Walkthrough) Next() bool {
	if w.pos+1 >= len(w.boxes) {
		return false
	}
	w.pos++
	return true
}

// Prev moves to the previous box. It reports false at the first box.
func (w *Walkthrough) Prev() bool {
	if w.pos == 0 {
		return false
	}
	w.pos--
	return true
}

// Select moves the cursor to position i and reports whether i was valid.
func (w *Walkthrough) Select(i int) bool {
	if i < 0 || i >= len(w.boxes) {
		return false
	}
	w.pos = i
	return true
}

// Find moves the cursor to the box with the given ID.
func (w *Walkthrough) Find(id string) bool {
	i := slices.IndexFunc(w.boxes, func(b spatial.Box) bool { return b.ID == id })
	return w.Select(i)
}

// Layer returns the IDs of boxes whose bottom is level with the current
// box, within stratify.DefaultTolerance. The current box is included.
func (w *Walkthrough) Layer() []string {
	cur, ok := w.Current()
	if !ok {
		return nil
	}
	return stratify.Slice(w.boxes, cur.Bottom(), stratify.DefaultTolerance)
}

// Done returns the boxes before the cursor, i.e. those already loaded.
func (w *Walkthrough) Done() []spatial.Box {
	return w.boxes[:w.pos]
}
