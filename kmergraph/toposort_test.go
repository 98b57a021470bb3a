package kmergraph

import (
	"testing"

	"github.com/mudesheng/panprg/seq"
)

// TestTopoSortFixesOutOfOrderConstruction builds a graph the way
// Sketch can: node 2 (a post-bubble merge) is registered before node 3
// (a second allele's pre-merge node), leaving an edge 3->2 that goes
// from a higher id to a lower one. TopoSort must restore an order
// where every edge goes from a lower id to a higher one.
func TestTopoSortFixesOutOfOrderConstruction(t *testing.T) {
	g := New(3)
	source := g.AddNode(seq.Path{})
	allele1 := g.AddNode(seq.Path{{Start: 0, End: 3}})
	merge := g.AddNode(seq.Path{{Start: 3, End: 6}})
	allele2 := g.AddNode(seq.Path{{Start: 10, End: 13}}) // registered after merge, but precedes it
	sink := g.AddNode(seq.Path{})

	g.AddEdge(source, allele1)
	g.AddEdge(allele1, merge)
	g.AddEdge(source, allele2)
	g.AddEdge(allele2, merge)
	g.AddEdge(merge, sink)

	g.TopoSort()

	for _, n := range g.Nodes {
		for _, o := range n.Out {
			if o <= n.ID {
				t.Fatalf("edge %d -> %d is not in increasing id order after TopoSort", n.ID, o)
			}
		}
	}
	if g.Source() != 0 {
		t.Errorf("expected source to sort to id 0, got %d", g.Source())
	}
	if g.Sink() != len(g.Nodes)-1 {
		t.Errorf("expected sink to sort to the last id, got %d", g.Sink())
	}
}
