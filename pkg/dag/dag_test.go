package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want %v", err, ErrInvalidNodeID)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want %v", err, ErrDuplicateNodeID)
	}

	tests := []struct {
		name string
		e    Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "a"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"self loop", Edge{From: "a", To: "a"}, ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.e); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		rows  map[string]int
		edges [][2]string
		want  error
	}{
		{"no rows assigned", nil, [][2]string{{"a", "b"}, {"b", "c"}}, nil},
		{"rows increase", map[string]int{"b": 1, "c": 3}, [][2]string{{"a", "b"}, {"b", "c"}}, nil},
		{"edge points down", map[string]int{"a": 2, "b": 1}, [][2]string{{"a", "b"}}, ErrRowOrder},
		{"cycle", nil, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, ErrGraphHasCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			for _, id := range []string{"a", "b", "c"} {
				_ = g.AddNode(Node{ID: id})
			}
			for _, e := range tt.edges {
				_ = g.AddEdge(Edge{From: e[0], To: e[1]})
			}
			g.SetRows(tt.rows)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"item0003", "item0001", "item0002"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}

	g.SetRows(map[string]int{"item0001": 1})
	if got := NodeIDs(g.NodesInRow(0)); !slices.Equal(got, []string{"item0003", "item0002"}) {
		t.Errorf("NodesInRow(0) = %v", got)
	}
	if got := g.MaxRow(); got != 1 {
		t.Errorf("MaxRow() = %d, want 1", got)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	g.RemoveEdge("a", "b")
	if g.HasEdge("a", "b") || g.EdgeCount() != 0 || g.InDegree("b") != 0 {
		t.Error("edge a→b still present after RemoveEdge")
	}
}
