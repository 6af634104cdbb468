package errors

import (
	"math"
	"regexp"
	"unicode"
)

// maxItemNameLength mirrors the item name column width of the task backend.
const maxItemNameLength = 100

// ValidateDimension validates a size or container extent.
// The value must be finite and strictly positive.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimension, "%s must be a finite number, got %v", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidDimension, "%s is %.4f, must be positive", name, v)
	}
	return nil
}

// ValidateCoordinate validates a position component.
// Only finiteness is checked here; range checks against the container
// belong to placement.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", name, v)
	}
	return nil
}

// ValidateItemName validates a display name for an item.
// Empty names are allowed; the item ID is shown instead.
func ValidateItemName(name string) error {
	if len(name) > maxItemNameLength {
		return New(ErrCodeInvalidInput, "item name too long (max %d characters)", maxItemNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "item name contains invalid control characters")
		}
	}
	return nil
}

// colorRegex matches a "#rrggbb" hex color.
var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateColor validates a display color in "#rrggbb" form.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q, want #rrggbb", color)
	}
	return nil
}
