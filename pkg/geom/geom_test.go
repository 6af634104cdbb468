package geom

import (
	"math"
	"testing"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

func TestOverlaps(t *testing.T) {
	unit := Size{Width: 2, Height: 2, Depth: 2}
	origin := BoxAt(Vec3{}, unit)

	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"identical", BoxAt(Vec3{}, unit), true},
		{"partial on all axes", BoxAt(Vec3{X: 1, Y: 1, Z: 1}, unit), true},
		{"contained", BoxAt(Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Size{1, 1, 1}), true},
		{"face touch x", BoxAt(Vec3{X: 2}, unit), false},
		{"face touch y", BoxAt(Vec3{Y: 2}, unit), false},
		{"face touch z", BoxAt(Vec3{Z: 2}, unit), false},
		{"edge touch", BoxAt(Vec3{X: 2, Y: 2}, unit), false},
		{"corner touch", BoxAt(Vec3{X: 2, Y: 2, Z: 2}, unit), false},
		{"apart", BoxAt(Vec3{X: 5}, unit), false},
		{"overlap x and y only", BoxAt(Vec3{X: 1, Y: 1, Z: 3}, unit), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(origin, tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, origin); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFootprintOverlaps(t *testing.T) {
	base := BoxAt(Vec3{}, Size{Width: 3, Height: 1, Depth: 3})

	tests := []struct {
		name string
		b    AABB
		want bool
	}{
		{"same footprint higher up", BoxAt(Vec3{Y: 5}, Size{3, 1, 3}), true},
		{"shifted but overlapping", BoxAt(Vec3{X: 2, Z: 2}, Size{3, 1, 3}), true},
		{"adjacent in x", BoxAt(Vec3{X: 3}, Size{3, 1, 3}), false},
		{"adjacent in z", BoxAt(Vec3{Z: 3}, Size{3, 1, 3}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FootprintOverlaps(base, tt.b); got != tt.want {
				t.Errorf("FootprintOverlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBelow(t *testing.T) {
	f := BoxAt(Vec3{}, Size{3, 1, 3})
	g := BoxAt(Vec3{Y: 1}, Size{3, 1, 3})
	floating := BoxAt(Vec3{Y: 4}, Size{1, 1, 1})
	aside := BoxAt(Vec3{X: 5, Y: 1}, Size{1, 1, 1})

	if !Below(f, g) {
		t.Error("Below(f, g) = false, want true for a box resting on another")
	}
	if Below(g, f) {
		t.Error("Below(g, f) = true, want false")
	}
	if !Below(f, floating) {
		t.Error("Below(f, floating) = false, want true without contact")
	}
	if Below(f, aside) {
		t.Error("Below(f, aside) = true, want false for disjoint footprints")
	}
}

func TestContainerViolation(t *testing.T) {
	c := DefaultContainer()

	tests := []struct {
		name     string
		box      AABB
		wantAxis Axis
		wantOK   bool
	}{
		{"inside", BoxAt(Vec3{X: 1, Y: 1, Z: 1}, Size{2, 2, 2}), 0, true},
		{"flush with far walls", BoxAt(Vec3{X: 8, Y: 8, Z: 8}, Size{2, 2, 2}), 0, true},
		{"whole container", BoxAt(Vec3{}, Size{10, 10, 10}), 0, true},
		{"overflow x", BoxAt(Vec3{X: 9}, Size{2, 1, 1}), AxisX, false},
		{"overflow z only", BoxAt(Vec3{Z: 9.5}, Size{1, 1, 1}), AxisZ, false},
		{"negative y", BoxAt(Vec3{Y: -0.1}, Size{1, 1, 1}), AxisY, false},
		{"corner overflow reports x first", BoxAt(Vec3{X: 9, Y: 9, Z: 9}, Size{2, 2, 2}), AxisX, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Violation(tt.box)
			if got := v == nil; got != tt.wantOK {
				t.Fatalf("Violation() = %v, want contained=%v", v, tt.wantOK)
			}
			if v != nil && v.Axis != tt.wantAxis {
				t.Errorf("Violation().Axis = %v, want %v", v.Axis, tt.wantAxis)
			}
			if got := c.Contains(tt.box); got != tt.wantOK {
				t.Errorf("Contains() = %v, want %v", got, tt.wantOK)
			}
		})
	}
}

func TestContainerValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Container
		wantErr bool
	}{
		{"default", DefaultContainer(), false},
		{"flat but positive", Container{X: 10, Y: 0.01, Z: 10}, false},
		{"zero", Container{X: 0, Y: 10, Z: 10}, true},
		{"negative", Container{X: 10, Y: -1, Z: 10}, true},
		{"NaN", Container{X: 10, Y: 10, Z: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidDimension) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDimension)
			}
		})
	}
}

func TestSizeValidate(t *testing.T) {
	if err := (Size{1, 2, 3}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (Size{1, 0, 3}).Validate(); !errors.Is(err, errors.ErrCodeInvalidDimension) {
		t.Errorf("Validate() = %v, want %v", err, errors.ErrCodeInvalidDimension)
	}
}

func TestVec3Validate(t *testing.T) {
	if err := (Vec3{X: -1}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil for a finite negative", err)
	}
	if err := (Vec3{Y: math.Inf(1)}).Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Validate() = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestBoundsViolationString(t *testing.T) {
	over := BoundsViolation{Axis: AxisX, Value: 11, Limit: 10}
	if got := over.String(); got != "x: 11 > 10" {
		t.Errorf("String() = %q, want %q", got, "x: 11 > 10")
	}
	under := BoundsViolation{Axis: AxisY, Value: -1, Limit: 0}
	if got := under.String(); got != "y: -1 < 0" {
		t.Errorf("String() = %q, want %q", got, "y: -1 < 0")
	}
}
