package nodelink

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/L1TangDingZhen/BOX-P/pkg/cache"
	"github.com/L1TangDingZhen/BOX-P/pkg/dag"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

func sampleBoxes() []spatial.Box {
	return []spatial.Box{
		{ID: "item0001", Name: "pallet", Position: geom.Vec3{}, Size: geom.Size{Width: 4, Height: 1, Depth: 4}, Color: "#202020"},
		{ID: "item0002", Position: geom.Vec3{Y: 1}, Size: geom.Size{Width: 2, Height: 1, Depth: 2}, Color: "#f0f0f0", Constraints: spatial.Fragile},
		{ID: "item0003", Position: geom.Vec3{Y: 2}, Size: geom.Size{Width: 1, Height: 1, Depth: 1}, Color: "#ff0000"},
	}
}

func TestToDOT_Basic(t *testing.T) {
	g := stratify.Graph(sampleBoxes(), stratify.ModeMultiLevel, true)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G",
		"rankdir=BT",
		`"item0001" [label="pallet"`,
		`"item0001" -> "item0002"`,
		`"item0002" -> "item0003"`,
		`{ rank=same; "item0003"; }`,
		`fillcolor="#202020"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"item0001" -> "item0003"`) {
		t.Error("ToDOT() kept an implied edge after reduction")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := stratify.Graph(sampleBoxes(), stratify.ModeMultiLevel, false)
	dot := ToDOT(g, Options{Detailed: true})

	for _, want := range []string{"layer: 2", "id: item0001", "size: 2×1×2", "Fragile (Top Layer)", "dashed"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() detailed output missing %q", want)
		}
	}
}

func TestToDOT_PlainNodes(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Meta: dag.Metadata{"note": "x"}})
	if got := fmtLabel(*must(g.Node("a")), true); got != "a\nlayer: 0\nnote: x" {
		t.Errorf("fmtLabel() = %q", got)
	}
	if dot := ToDOT(g, Options{}); strings.Contains(dot, "fillcolor=\"#") {
		t.Error("plain node got a box fill color")
	}
}

func TestTextColor(t *testing.T) {
	tests := map[string]string{
		"#000000": "white",
		"#ffffff": "black",
		"#ffff00": "black",
		"#0000ff": "white",
		"bogus":   "black",
	}
	for fill, want := range tests {
		if got := textColor(fill); got != want {
			t.Errorf("textColor(%s) = %s, want %s", fill, got, want)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	dot := ToDOT(stratify.Graph(sampleBoxes(), stratify.ModeSingleLevel, true), Options{})
	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatalf("RenderSVG() = %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<?xml") && !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() output is not SVG: %.80s", svg)
	}
	if !strings.Contains(string(svg), `viewBox="0 0 `) {
		t.Error("RenderSVG() did not normalize the viewBox")
	}
}

func must(n *dag.Node, ok bool) *dag.Node {
	if !ok {
		panic("node not found")
	}
	return n
}

func TestRenderSVGCachedHit(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0)
	dot := ToDOT(stratify.Graph(sampleBoxes(), stratify.ModeSingleLevel, true), Options{})

	// A stored entry is served without invoking Graphviz.
	if err := c.Set(ctx, SVGKey(dot), []byte("<svg>cached</svg>"), 0); err != nil {
		t.Fatal(err)
	}
	svg, hit, err := RenderSVGCached(ctx, c, dot, time.Hour)
	if err != nil || !hit || string(svg) != "<svg>cached</svg>" {
		t.Errorf("RenderSVGCached() = %q, hit %v, err %v", svg, hit, err)
	}

	if SVGKey(dot) == SVGKey(dot+" ") {
		t.Error("SVGKey ignores DOT changes")
	}
}

func TestRenderSVGCachedMissStores(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	ctx := context.Background()
	c := cache.NewMemoryCache(0)
	dot := ToDOT(stratify.Graph(sampleBoxes(), stratify.ModeSingleLevel, true), Options{})

	first, hit, err := RenderSVGCached(ctx, c, dot, 0)
	if err != nil || hit {
		t.Fatalf("first render: hit %v, err %v", hit, err)
	}
	second, hit, err := RenderSVGCached(ctx, c, dot, 0)
	if err != nil || !hit {
		t.Fatalf("second render: hit %v, err %v", hit, err)
	}
	if string(first) != string(second) {
		t.Error("cached SVG differs from the rendered one")
	}
}
