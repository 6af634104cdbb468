package transform

import (
	"testing"

	"github.com/L1TangDingZhen/BOX-P/pkg/dag"
)

func build(t *testing.T, ids []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, id := range ids {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAssignLayers(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		edges  [][2]string
		maxRow int
		want   map[string]int
	}{
		{
			name: "empty",
			want: map[string]int{},
		},
		{
			name: "all on the ground",
			ids:  []string{"a", "b"},
			want: map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "longest path wins",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"d", "c"}},
			want:  map[string]int{"a": 0, "b": 1, "c": 2, "d": 0},
		},
		{
			name:   "capped at one",
			ids:    []string{"a", "b", "c"},
			edges:  [][2]string{{"a", "b"}, {"b", "c"}},
			maxRow: 1,
			want:   map[string]int{"a": 0, "b": 1, "c": 1},
		},
		{
			name:   "cap above depth is a no-op",
			ids:    []string{"a", "b"},
			edges:  [][2]string{{"a", "b"}},
			maxRow: 5,
			want:   map[string]int{"a": 0, "b": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.ids, tt.edges)
			AssignLayers(g, tt.maxRow)
			for id, want := range tt.want {
				n, _ := g.Node(id)
				if n.Row != want {
					t.Errorf("row(%s) = %d, want %d", id, n.Row, want)
				}
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate() after AssignLayers = %v", err)
			}
		})
	}
}

func TestAssignLayersOverwritesRows(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 7})
	AssignLayers(g, 0)
	if n, _ := g.Node("a"); n.Row != 0 {
		t.Errorf("row = %d, want 0", n.Row)
	}
	if got := g.RowIDs(); len(got) != 1 || got[0] != 0 {
		t.Errorf("RowIDs() = %v, want [0]", got)
	}
}

func TestTransitiveReduction(t *testing.T) {
	g := build(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "c"}, {"a", "d"}, {"b", "d"}},
	)
	TransitiveReduction(g)

	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount() = %d, want 3", got)
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}} {
		if !g.HasEdge(e[0], e[1]) {
			t.Errorf("edge %s→%s removed", e[0], e[1])
		}
	}
}
