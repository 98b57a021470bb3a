package dbg

import "testing"

func TestBuildRetainsAboveCoverageKmers(t *testing.T) {
	reads := [][]byte{
		[]byte("ACGTACGTAC"),
		[]byte("ACGTACGTAC"),
	}
	g := Build(reads, 4, 2)
	if len(g.Kmers) == 0 {
		t.Fatal("expected at least one retained k-mer")
	}
	for _, c := range g.Kmers {
		if c < 2 {
			t.Errorf("retained k-mer with coverage %d below minCoverage", c)
		}
	}
}

func TestSuccessorsWalksLinearChain(t *testing.T) {
	read := []byte("ACGTACGTACGT")
	g := Build([][]byte{read}, 4, 1)

	n := Node("ACGT")
	succ := g.Successors(n)
	if len(succ) == 0 {
		t.Fatal("expected at least one successor along the read's own chain")
	}
}

func TestRemoveTipsDeletesShortDeadEnd(t *testing.T) {
	main := []byte("ACGTACGTACGTACGTACGT")
	tip := []byte("ACGTACGTTTTT") // diverges from main after a shared prefix
	g := Build([][]byte{main, main, tip}, 4, 1)

	before := len(g.Kmers)
	g.RemoveTips(3)
	if len(g.Kmers) >= before {
		t.Errorf("expected RemoveTips to shrink the graph, had %d, now %d", before, len(g.Kmers))
	}
}
