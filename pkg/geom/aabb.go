package geom

// AABB is an axis-aligned bounding box given by its minimum and maximum
// corners.
type AABB struct {
	Min, Max Vec3
}

// BoxAt returns the AABB of a box with minimum corner pos and extent s.
func BoxAt(pos Vec3, s Size) AABB {
	return AABB{Min: pos, Max: pos.Add(s)}
}

// Span returns the interval [lo, hi] covered along axis a.
func (b AABB) Span(a Axis) (lo, hi float64) {
	return b.Min.At(a), b.Max.At(a)
}

// Bottom returns the minimum Y, the face a box rests on.
func (b AABB) Bottom() float64 { return b.Min.Y }

// Top returns the maximum Y.
func (b AABB) Top() float64 { return b.Max.Y }

// intervalsOverlap is the open-interval test: [a0,a1] and [b0,b1] overlap
// only with positive length. Shared endpoints do not count.
func intervalsOverlap(a0, a1, b0, b1 float64) bool {
	return a0 < b1 && a1 > b0
}

// Overlaps reports whether a and b intersect with positive volume, i.e.
// their projections overlap with positive length on all three axes.
// Boxes that only share a face, edge or corner do not overlap.
func Overlaps(a, b AABB) bool {
	for _, ax := range Axes {
		a0, a1 := a.Span(ax)
		b0, b1 := b.Span(ax)
		if !intervalsOverlap(a0, a1, b0, b1) {
			return false
		}
	}
	return true
}

// FootprintOverlaps reports whether the XZ projections of a and b overlap
// with positive area, ignoring Y entirely.
func FootprintOverlaps(a, b AABB) bool {
	return intervalsOverlap(a.Min.X, a.Max.X, b.Min.X, b.Max.X) &&
		intervalsOverlap(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z)
}

// Below reports whether lower lies entirely under upper (lower's top is at
// or beneath upper's bottom) with overlapping footprints. This is the
// support relation used for layering; lower need not touch upper.
func Below(lower, upper AABB) bool {
	return lower.Top() <= upper.Bottom() && FootprintOverlaps(lower, upper)
}
