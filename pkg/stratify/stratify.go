// Package stratify groups placed boxes into display layers by their
// vertical support relation.
//
// A box o supports a box b when o lies entirely beneath b
// (o.Top() <= b.Bottom()) and their XZ footprints overlap with positive
// area. o does not have to touch b. Layers are derived on every call and
// never stored on the boxes.
//
// Two layering modes are available:
//
//   - [ModeSingleLevel] (default): a box with any supporter is in layer 1,
//     everything else in layer 0. Deep stacks collapse into layer 1.
//   - [ModeMultiLevel]: a box sits one layer above its highest supporter.
//
// All functions are pure and run in O(n²) for n boxes.
package stratify

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/L1TangDingZhen/BOX-P/pkg/dag"
	"github.com/L1TangDingZhen/BOX-P/pkg/dag/transform"
	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
)

// BoxKey is the support graph node metadata key holding the spatial.Box.
const BoxKey = "box"

// DefaultTolerance is the vertical tolerance used by [Slice] to decide
// whether a box starts at a given height.
const DefaultTolerance = 0.01

// Mode selects how deep stacks are layered.
type Mode int

const (
	// ModeSingleLevel caps every supported box at layer 1.
	ModeSingleLevel Mode = iota
	// ModeMultiLevel uses longest-path layering.
	ModeMultiLevel
)

// String returns "single" or "multi".
func (m Mode) String() string {
	if m == ModeMultiLevel {
		return "multi"
	}
	return "single"
}

// ParseMode parses "single" or "multi" (case-insensitive). An empty string
// yields ModeSingleLevel.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single-level":
		return ModeSingleLevel, nil
	case "multi", "multi-level", "multilevel":
		return ModeMultiLevel, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown layer mode %q (want single or multi)", s)
	}
}

// Options configures Stratify. The zero value is the default behavior:
// single-level layering with empty layers skipped.
type Options struct {
	Mode Mode

	// KeepEmpty returns every layer index from 0 up to the highest
	// populated one, including empty layers.
	KeepEmpty bool

	// MinLayers pads the result with empty layers until at least this many
	// are returned. Only honored together with KeepEmpty.
	MinLayers int
}

// Layer is one display layer: its index and the IDs of its boxes, ordered
// by bottom height and then by insertion order.
type Layer struct {
	Index int      `json:"index"`
	IDs   []string `json:"ids"`
}

// String renders the layer as "L0[item0001 item0002]".
func (l Layer) String() string {
	return fmt.Sprintf("L%d%v", l.Index, l.IDs)
}

// Stratify partitions boxes into layers. boxes must be in insertion order;
// the input slice is not modified.
func Stratify(boxes []spatial.Box, opts Options) []Layer {
	g := layered(boxes, opts.Mode)

	top := g.MaxRow()
	if opts.KeepEmpty && opts.MinLayers-1 > top {
		top = opts.MinLayers - 1
	}

	layers := make([]Layer, 0, top+1)
	for i := 0; i <= top; i++ {
		ids := dag.NodeIDs(g.NodesInRow(i))
		if len(ids) == 0 && !opts.KeepEmpty {
			continue
		}
		layers = append(layers, Layer{Index: i, IDs: ids})
	}
	return layers
}

// Levels returns the layer index of every box, keyed by ID.
func Levels(boxes []spatial.Box, mode Mode) map[string]int {
	g := layered(boxes, mode)
	out := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = n.Row
	}
	return out
}

// Graph returns the support graph with rows assigned by mode. With reduce
// set, edges implied by a longer path are removed, leaving only the
// "directly beneath" relation; layering is unaffected.
func Graph(boxes []spatial.Box, mode Mode, reduce bool) *dag.DAG {
	g := layered(boxes, mode)
	if reduce {
		transform.TransitiveReduction(g)
	}
	return g
}

func layered(boxes []spatial.Box, mode Mode) *dag.DAG {
	g := SupportGraph(boxes)
	maxRow := 1
	if mode == ModeMultiLevel {
		maxRow = 0
	}
	transform.AssignLayers(g, maxRow)
	return g
}

// SortByHeight returns a copy of boxes stably sorted by bottom height, so
// boxes at equal height keep their insertion order.
func SortByHeight(boxes []spatial.Box) []spatial.Box {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b spatial.Box) int {
		return cmp.Compare(a.Bottom(), b.Bottom())
	})
	return sorted
}

// SupportGraph builds the support relation as a DAG. Nodes are added in
// height order and carry the box in their metadata under BoxKey. An edge
// o → b means o lies beneath b with overlapping footprints.
//
// Boxes with a duplicate ID are ignored after the first.
func SupportGraph(boxes []spatial.Box) *dag.DAG {
	sorted := SortByHeight(boxes)
	g := dag.New(nil)
	kept := make([]spatial.Box, 0, len(sorted))
	for _, b := range sorted {
		if err := g.AddNode(dag.Node{ID: b.ID, Meta: dag.Metadata{BoxKey: b}}); err != nil {
			continue
		}
		kept = append(kept, b)
	}

	for _, b := range kept {
		for _, o := range kept {
			if o.ID == b.ID {
				continue
			}
			if geom.Below(o.AABB(), b.AABB()) {
				_ = g.AddEdge(dag.Edge{From: o.ID, To: b.ID})
			}
		}
	}
	return g
}

// BoxOf returns the box stored on a support graph node.
func BoxOf(n *dag.Node) (spatial.Box, bool) {
	b, ok := n.Meta[BoxKey].(spatial.Box)
	return b, ok
}

// Slice returns the IDs of boxes whose bottom face lies within tol of y,
// in height then insertion order. A negative tol uses DefaultTolerance.
func Slice(boxes []spatial.Box, y, tol float64) []string {
	if tol < 0 {
		tol = DefaultTolerance
	}
	var ids []string
	for _, b := range SortByHeight(boxes) {
		if math.Abs(b.Bottom()-y) <= tol {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Heights returns the distinct bottom heights of boxes in ascending order,
// merging heights closer than tol. A negative tol uses DefaultTolerance.
func Heights(boxes []spatial.Box, tol float64) []float64 {
	if tol < 0 {
		tol = DefaultTolerance
	}
	var out []float64
	for _, b := range SortByHeight(boxes) {
		if n := len(out); n > 0 && b.Bottom()-out[n-1] <= tol {
			continue
		}
		out = append(out, b.Bottom())
	}
	return out
}
