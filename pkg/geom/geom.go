// Package geom provides the axis-aligned geometry used by the placement core.
//
// All coordinates live in a right-handed space with the container's minimum
// corner at the origin. Y is the vertical axis: a box's Height runs along Y,
// its Width along X and its Depth along Z.
//
// Interval tests are open: two boxes that share a face do not overlap. This
// is what allows items to be packed flush against each other.
package geom

import (
	"fmt"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// Axis names one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in x, y, z order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// String returns the lower-case axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Vec3 is a point in container space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// At returns the component along axis a.
func (v Vec3) At(a Axis) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// Add returns the component-wise sum v + s.
func (v Vec3) Add(s Size) Vec3 {
	return Vec3{X: v.X + s.Width, Y: v.Y + s.Height, Z: v.Z + s.Depth}
}

// Validate reports a non-finite component.
func (v Vec3) Validate() error {
	for _, a := range Axes {
		if err := errors.ValidateCoordinate("position "+a.String(), v.At(a)); err != nil {
			return err
		}
	}
	return nil
}

// String formats the point as "(x, y, z)".
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Size is the extent of a box along each axis.
type Size struct {
	Width  float64 `json:"width"`  // along X
	Height float64 `json:"height"` // along Y
	Depth  float64 `json:"depth"`  // along Z
}

// At returns the extent along axis a.
func (s Size) At(a Axis) float64 {
	switch a {
	case AxisX:
		return s.Width
	case AxisY:
		return s.Height
	default:
		return s.Depth
	}
}

// Volume returns Width × Height × Depth.
func (s Size) Volume() float64 { return s.Width * s.Height * s.Depth }

// Validate checks that every extent is finite and strictly positive.
func (s Size) Validate() error {
	if err := errors.ValidateDimension("width", s.Width); err != nil {
		return err
	}
	if err := errors.ValidateDimension("height", s.Height); err != nil {
		return err
	}
	return errors.ValidateDimension("depth", s.Depth)
}

// String formats the size as "w×h×d".
func (s Size) String() string {
	return fmt.Sprintf("%g×%g×%g", s.Width, s.Height, s.Depth)
}
