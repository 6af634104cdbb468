package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/L1TangDingZhen/BOX-P/pkg/dag"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds layer, size, position and constraints to node labels.
	// When false, only the box name (or ID) is shown.
	Detailed bool
}

// ToDOT converts a support graph to Graphviz DOT source. Nodes carrying a
// spatial.Box under stratify.BoxKey are filled with the box color.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, row := range g.RowIDs() {
		ids := dag.NodeIDs(g.NodesInRow(row))
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func boxOf(n dag.Node) (spatial.Box, bool) {
	return stratify.BoxOf(&n)
}

func fmtLabel(n dag.Node, detailed bool) string {
	b, hasBox := boxOf(n)
	title := n.ID
	if hasBox {
		title = b.Label()
	}
	if !detailed {
		return title
	}

	parts := []string{fmt.Sprintf("layer: %d", n.Row)}
	if hasBox {
		if b.Name != "" {
			parts = append(parts, "id: "+b.ID)
		}
		parts = append(parts,
			"size: "+b.Size.String(),
			"at: "+b.Position.String())
		if b.Constraints != 0 {
			parts = append(parts, strings.Join(b.Constraints.Labels(), ", "))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == stratify.BoxKey {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}

	return title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	b, ok := boxOf(n)
	if !ok || b.Color == "" {
		return attrs
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", b.Color), fmt.Sprintf("fontcolor=%q", textColor(b.Color)))
	if b.Constraints.Has(spatial.Fragile) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "penwidth=2")
	}
	return attrs
}

// textColor picks black or white text for legibility on a "#rrggbb" fill.
func textColor(fill string) string {
	v, err := strconv.ParseUint(strings.TrimPrefix(fill, "#"), 16, 32)
	if err != nil {
		return "black"
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	if 0.299*r+0.587*g+0.114*b > 140 {
		return "black"
	}
	return "white"
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return RenderSVGContext(context.Background(), dot)
}

// RenderSVGContext is RenderSVG with a caller-supplied context.
func RenderSVGContext(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
