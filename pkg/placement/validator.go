// Package placement is the gate every new box passes through before it is
// added to a [spatial.Index].
//
// A placement is checked in a fixed order:
//
//  1. INVALID_DIMENSION (or INVALID_INPUT for a non-finite position)
//  2. OUT_OF_BOUNDS: position and position+size on every axis
//  3. OVERLAP: positive-volume intersection with any placed box
//
// Only a successful [Validator.TryPlace] mutates anything. A rejected call
// leaves the index, the ID sequence and the palette exactly as they were.
package placement

import (
	"strings"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
)

// Candidate is a box proposed for placement. ID, order and (optionally)
// color are assigned by the validator.
type Candidate struct {
	Name        string
	Position    geom.Vec3
	Size        geom.Size
	Constraints spatial.Constraint

	// Color is used when it is a well-formed "#rrggbb" value not yet in
	// use. Otherwise a fresh color is drawn from the palette.
	Color string
}

// Box returns the candidate as an unnamed box for geometric queries.
func (c Candidate) Box() spatial.Box {
	return spatial.Box{
		Name:        c.Name,
		Position:    c.Position,
		Size:        c.Size,
		Constraints: c.Constraints,
	}
}

// Options configures a Validator.
type Options struct {
	// Seed seeds the color palette.
	Seed uint64
}

// Validator checks candidates against a container and an index and
// commits accepted ones.
type Validator struct {
	index   *spatial.Index
	seq     Sequence
	palette *Palette
}

// NewValidator creates a validator that admits boxes into index.
func NewValidator(index *spatial.Index, opts Options) *Validator {
	return &Validator{
		index:   index,
		palette: NewPalette(opts.Seed),
	}
}

// Index returns the index this validator admits boxes into.
func (v *Validator) Index() *spatial.Index { return v.index }

// Palette returns the validator's color palette.
func (v *Validator) Palette() *Palette { return v.palette }

// NextID returns the ID the next accepted box will receive.
func (v *Validator) NextID() string { return FormatID(v.seq.Peek()) }

// Check runs every placement check without mutating anything.
func (v *Validator) Check(c Candidate, container geom.Container) error {
	if err := container.Validate(); err != nil {
		return err
	}
	if err := c.Size.Validate(); err != nil {
		return err
	}
	if err := c.Position.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateItemName(c.Name); err != nil {
		return err
	}

	b := c.Box()
	if viol := container.Violation(b.AABB()); viol != nil {
		return errors.New(errors.ErrCodeOutOfBounds,
			"box %s at %s exceeds container %s (%s)", c.Size, c.Position, container, viol)
	}
	if hits := v.index.Colliding(b); len(hits) > 0 {
		return errors.New(errors.ErrCodeOverlap,
			"box %s at %s overlaps %s", c.Size, c.Position, strings.Join(hits, ", "))
	}
	return nil
}

// TryPlace validates c and, if it passes, assigns an ID and color, adds it
// to the index and returns the finalized box.
func (v *Validator) TryPlace(c Candidate, container geom.Container) (spatial.Box, error) {
	if err := v.Check(c, container); err != nil {
		return spatial.Box{}, err
	}

	b := c.Box()
	b.ID, b.Order = v.seq.Next()
	b.Color = v.color(c.Color)
	v.index.Add(b)
	return b, nil
}

func (v *Validator) color(requested string) string {
	if requested != "" && errors.ValidateColor(requested) == nil && v.palette.Reserve(requested) {
		return strings.ToLower(requested)
	}
	return v.palette.Next()
}
