package geom

import (
	"fmt"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// DefaultExtent is the per-axis extent of a freshly created container.
const DefaultExtent = 10.0

// Container is the usable packing volume. Its minimum corner is fixed at
// the origin, so only the extents are stored.
type Container struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DefaultContainer returns the 10×10×10 container a session starts with.
func DefaultContainer() Container {
	return Container{X: DefaultExtent, Y: DefaultExtent, Z: DefaultExtent}
}

// At returns the extent along axis a.
func (c Container) At(a Axis) float64 {
	switch a {
	case AxisX:
		return c.X
	case AxisY:
		return c.Y
	default:
		return c.Z
	}
}

// Validate checks that every extent is finite and strictly positive.
func (c Container) Validate() error {
	for _, a := range Axes {
		if err := errors.ValidateDimension("container "+a.String(), c.At(a)); err != nil {
			return err
		}
	}
	return nil
}

// Volume returns X × Y × Z.
func (c Container) Volume() float64 { return c.X * c.Y * c.Z }

// Bounds returns the container as an AABB anchored at the origin.
func (c Container) Bounds() AABB {
	return AABB{Max: Vec3{X: c.X, Y: c.Y, Z: c.Z}}
}

// Contains reports whether b lies entirely inside the container: every
// minimum coordinate is >= 0 and every maximum is <= the extent.
// Touching a wall counts as inside.
func (c Container) Contains(b AABB) bool {
	return c.Violation(b) == nil
}

// Violation returns the first axis on which b leaves the container, or nil
// when b is contained. The returned description is suitable for messages.
func (c Container) Violation(b AABB) *BoundsViolation {
	for _, a := range Axes {
		lo, hi := b.Min.At(a), b.Max.At(a)
		if lo < 0 {
			return &BoundsViolation{Axis: a, Value: lo, Limit: 0}
		}
		if hi > c.At(a) {
			return &BoundsViolation{Axis: a, Value: hi, Limit: c.At(a)}
		}
	}
	return nil
}

// String formats the container as "x×y×z".
func (c Container) String() string {
	return fmt.Sprintf("%g×%g×%g", c.X, c.Y, c.Z)
}

// BoundsViolation describes how a box leaves the container on one axis.
// Limit is 0 for an underflow and the container extent for an overflow.
type BoundsViolation struct {
	Axis  Axis
	Value float64
	Limit float64
}

// String renders the violation, e.g. "x: 11 > 10".
func (v BoundsViolation) String() string {
	if v.Value < v.Limit {
		return fmt.Sprintf("%s: %g < %g", v.Axis, v.Value, v.Limit)
	}
	return fmt.Sprintf("%s: %g > %g", v.Axis, v.Value, v.Limit)
}
