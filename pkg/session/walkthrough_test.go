package session

import (
	"slices"
	"testing"
)

func TestWalkthrough(t *testing.T) {
	s := mustNew(t, Options{})
	a := mustPlace(t, s, cand(0, 0, 0, 2, 1, 2))
	b := mustPlace(t, s, cand(0, 1, 0, 2, 1, 2))
	c := mustPlace(t, s, cand(4, 1.004, 4, 1, 1, 1))

	w := s.Walkthrough()
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}

	cur, _ := w.Current()
	if cur.ID != a.ID {
		t.Errorf("Current() = %s, want %s", cur.ID, a.ID)
	}
	if w.Prev() {
		t.Error("Prev() at start = true")
	}

	if !w.Next() || !w.Next() {
		t.Fatal("Next() stopped early")
	}
	if w.Next() {
		t.Error("Next() past end = true")
	}
	cur, _ = w.Current()
	if cur.ID != c.ID {
		t.Errorf("Current() = %s, want %s", cur.ID, c.ID)
	}
	if got, want := w.Layer(), []string{b.ID, c.ID}; !slices.Equal(got, want) {
		t.Errorf("Layer() = %v, want %v", got, want)
	}
	if got := len(w.Done()); got != 2 {
		t.Errorf("Done() = %d boxes, want 2", got)
	}

	if !w.Find(a.ID) || w.Index() != 0 {
		t.Errorf("Find(%s) -> index %d", a.ID, w.Index())
	}
	if w.Find("item9999") {
		t.Error("Find(unknown) = true")
	}
	if w.Select(3) || w.Select(-1) {
		t.Error("Select() out of range = true")
	}
}

func TestWalkthroughFollowsPlacementOrder(t *testing.T) {
	s := mustNew(t, Options{})
	mustPlace(t, s, cand(0, 0, 0, 1, 1, 1))
	mustPlace(t, s, cand(2, 0, 0, 1, 1, 1))
	mustPlace(t, s, cand(4, 0, 0, 1, 1, 1))

	// Boxes handed over out of order are walked by Order.
	boxes := s.Boxes()
	slices.Reverse(boxes)
	w := NewWalkthrough(boxes)

	var got []string
	for _, b := range w.Boxes() {
		got = append(got, b.ID)
	}
	if want := []string{"item0001", "item0002", "item0003"}; !slices.Equal(got, want) {
		t.Errorf("walk order = %v, want %v", got, want)
	}
}

func TestWalkthroughEmpty(t *testing.T) {
	w := NewWalkthrough(nil)
	if _, ok := w.Current(); ok {
		t.Error("Current() on empty = ok")
	}
	if w.Next() || w.Prev() || w.Layer() != nil {
		t.Error("empty walkthrough moved")
	}
}
