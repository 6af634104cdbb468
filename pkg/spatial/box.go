// Package spatial holds the authoritative set of placed boxes and answers
// overlap queries against it.
//
// The [Index] performs no validation: callers check container bounds and
// overlap (see package placement) before calling [Index.Add]. Overlap uses
// open intervals, so boxes packed flush against each other are accepted.
//
// An Index is not safe for concurrent use.
package spatial

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
)

// Constraint is a set of handling flags carried by a box.
// Flags are metadata only; placement never consults them.
type Constraint uint8

const (
	// FaceUp marks an item that must keep its top face up.
	FaceUp Constraint = 1 << iota
	// Fragile marks an item meant for the top layer.
	Fragile
)

// constraintNames maps each flag to its wire name.
var constraintNames = []struct {
	flag  Constraint
	name  string
	label string
}{
	{FaceUp, "face_up", "Face Up"},
	{Fragile, "fragile", "Fragile (Top Layer)"},
}

// Has reports whether every flag in f is set in c.
func (c Constraint) Has(f Constraint) bool { return c&f == f }

// Names returns the wire names of the set flags, e.g. ["face_up"].
func (c Constraint) Names() []string {
	var out []string
	for _, n := range constraintNames {
		if c.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

// Labels returns human-readable labels of the set flags.
func (c Constraint) Labels() []string {
	var out []string
	for _, n := range constraintNames {
		if c.Has(n.flag) {
			out = append(out, n.label)
		}
	}
	return out
}

// String joins the wire names with "|", or returns "none".
func (c Constraint) String() string {
	if names := c.Names(); len(names) > 0 {
		return strings.Join(names, "|")
	}
	return "none"
}

// ParseConstraint parses a single wire name.
func ParseConstraint(name string) (Constraint, error) {
	for _, n := range constraintNames {
		if n.name == name {
			return n.flag, nil
		}
	}
	return 0, fmt.Errorf("unknown constraint %q", name)
}

// Constraints builds a set from the two boolean flags used on the wire.
func Constraints(faceUp, fragile bool) Constraint {
	var c Constraint
	if faceUp {
		c |= FaceUp
	}
	if fragile {
		c |= Fragile
	}
	return c
}

// MarshalJSON encodes the set as a list of wire names.
func (c Constraint) MarshalJSON() ([]byte, error) {
	names := c.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of wire names.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out Constraint
	for _, name := range names {
		f, err := ParseConstraint(name)
		if err != nil {
			return err
		}
		out |= f
	}
	*c = out
	return nil
}

// Box is a placed axis-aligned item. Position is the minimum corner.
//
// The zero value is not a valid placement: boxes are created by the
// placement validator, which assigns ID, Order and Color.
type Box struct {
	ID          string     `json:"id"`
	Order       int        `json:"order"` // 1-based placement sequence number
	Name        string     `json:"name,omitempty"`
	Position    geom.Vec3  `json:"position"`
	Size        geom.Size  `json:"size"`
	Color       string     `json:"color"`
	Constraints Constraint `json:"constraints"`
}

// AABB returns the box's bounding volume.
func (b Box) AABB() geom.AABB { return geom.BoxAt(b.Position, b.Size) }

// Bottom returns the Y coordinate of the box's lower face.
func (b Box) Bottom() float64 { return b.Position.Y }

// Top returns the Y coordinate of the box's upper face.
func (b Box) Top() float64 { return b.Position.Y + b.Size.Height }

// Label returns the name if set, otherwise the ID.
func (b Box) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

// Overlaps reports whether a and b intersect with positive volume.
func Overlaps(a, b Box) bool { return geom.Overlaps(a.AABB(), b.AABB()) }
