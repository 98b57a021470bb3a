package kmergraph

import "testing"

// TestBubbleAwareOrder pins spec Scenario 1: a diamond graph with
// nodes {0..6} and edges 0->1, 0->3, 0->5, 1->2, 3->4, 2->6, 4->6,
// 5->6 must sort to [1,2,3,4,5,0,6].
func TestBubbleAwareOrder(t *testing.T) {
	g := New(3)
	for i := 0; i < 7; i++ {
		g.Nodes = append(g.Nodes, &Node{ID: i})
	}
	edges := [][2]int{{0, 1}, {0, 3}, {0, 5}, {1, 2}, {3, 4}, {2, 6}, {4, 6}, {5, 6}}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}

	got := g.SortedOrder()
	want := []int{1, 2, 3, 4, 5, 0, 6}
	if len(got) != len(want) {
		t.Fatalf("SortedOrder() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedOrder() = %v, want %v", got, want)
		}
	}
}
