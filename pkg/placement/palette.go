package placement

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Palette hands out distinct "#rrggbb" colors.
//
// Colors are drawn uniformly from the 24-bit space and re-drawn while the
// result is already taken. A Palette with the same seed produces the same
// sequence of colors, which keeps CLI runs and tests reproducible.
type Palette struct {
	rng  *rand.Rand
	used map[string]struct{}
}

// NewPalette creates a palette seeded with seed.
func NewPalette(seed uint64) *Palette {
	return &Palette{
		rng:  rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		used: make(map[string]struct{}),
	}
}

// Next returns a color not yet in use and marks it used.
func (p *Palette) Next() string {
	for {
		c := fmt.Sprintf("#%06x", p.rng.Uint32()&0xffffff)
		if !p.InUse(c) {
			p.used[c] = struct{}{}
			return c
		}
	}
}

// Reserve marks color as used. It reports false if it already was.
func (p *Palette) Reserve(color string) bool {
	key := strings.ToLower(color)
	if _, ok := p.used[key]; ok {
		return false
	}
	p.used[key] = struct{}{}
	return true
}

// InUse reports whether color has been handed out or reserved.
// Comparison is case-insensitive.
func (p *Palette) InUse(color string) bool {
	_, ok := p.used[strings.ToLower(color)]
	return ok
}

// Len returns the number of colors in use.
func (p *Palette) Len() int { return len(p.used) }

// Sequence generates box IDs of the form "item0001", "item0002", ...
// IDs are never reused: the counter only moves forward.
type Sequence struct {
	n int
}

// Peek returns the order number the next call to Next will produce.
func (s *Sequence) Peek() int { return s.n + 1 }

// Next advances the sequence and returns the new ID and its order number.
func (s *Sequence) Next() (id string, order int) {
	s.n++
	return FormatID(s.n), s.n
}

// FormatID formats an order number as a box ID.
func FormatID(n int) string { return fmt.Sprintf("item%04d", n) }
