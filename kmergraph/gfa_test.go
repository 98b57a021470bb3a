package kmergraph

import (
	"bytes"
	"testing"

	"github.com/mudesheng/panprg/seq"
)

func buildSample() *Graph {
	g := New(3)
	src := g.AddNode(seq.Path{})
	n1 := g.AddNode(seq.Path{{Start: 0, End: 3}})
	n2 := g.AddNode(seq.Path{{Start: 1, End: 4}})
	sink := g.AddNode(seq.Path{})
	g.AddEdge(src, n1)
	g.AddEdge(n1, n2)
	g.AddEdge(n2, sink)
	g.Nodes[n1].Fwd, g.Nodes[n1].Rev = 5, 2
	return g
}

func TestGFARoundTrip(t *testing.T) {
	g := buildSample()
	var buf bytes.Buffer
	if err := g.Save(&buf, nil, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Nodes) != len(g.Nodes) {
		t.Fatalf("node count mismatch: got %d, want %d", len(got.Nodes), len(g.Nodes))
	}
	for i, n := range g.Nodes {
		gn := got.Nodes[i]
		if !gn.Path.Equal(n.Path) {
			t.Errorf("node %d path mismatch: got %v, want %v", i, gn.Path, n.Path)
		}
		if gn.Fwd != n.Fwd || gn.Rev != n.Rev {
			t.Errorf("node %d covg mismatch: got (%d,%d), want (%d,%d)", i, gn.Fwd, gn.Rev, n.Fwd, n.Rev)
		}
		if len(gn.Out) != len(n.Out) {
			t.Errorf("node %d out-edge count mismatch: got %v, want %v", i, gn.Out, n.Out)
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	g := buildSample()
	if err := g.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	g := New(3)
	a := g.AddNode(seq.Path{{Start: 0, End: 3}})
	b := g.AddNode(seq.Path{{Start: 0, End: 3}})
	if a != b {
		t.Errorf("AddNode should be idempotent on equal paths: got %d and %d", a, b)
	}
	if len(g.Nodes) != 1 {
		t.Errorf("expected 1 node, got %d", len(g.Nodes))
	}
}
