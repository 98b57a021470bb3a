package localassembly

import (
	"errors"
	"strings"
	"testing"

	"github.com/mudesheng/panprg/dbg"
	"github.com/mudesheng/panprg/panerr"
)

// TestAssembleSinglePathWithinMaxLength pins the shape of the "local
// assembly" scenario: one read carrying a single path between a start
// and end k-mer, k=9, max path length 30, yielding exactly one
// recovered path no longer than the cap. The read is built to have no
// repeated 9-mer so the path is unambiguous (the original's DFS/path
// enumeration does tolerate graph cycles -- see PathsBetween -- but a
// cycle-free fixture keeps this test deterministic).
func TestAssembleSinglePathWithinMaxLength(t *testing.T) {
	const read = "ACGTTACCGGATTGCATGGCATC" // 23bp, no repeated 9-mer
	startKmer := read[:9]
	endKmer := read[len(read)-9:]

	fasta := ">read1\n" + read + "\n"
	paths, err := Assemble(strings.NewReader(fasta),
		map[string]bool{startKmer: true},
		map[string]bool{endKmer: true},
		Options{K: 9, MaxPathLength: 30, MinCoverage: 1},
	)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want exactly 1: %v", len(paths), paths)
	}
	if len(paths[0]) > 30 {
		t.Errorf("path length %d exceeds max path length 30", len(paths[0]))
	}
	if string(paths[0]) != read {
		t.Errorf("path = %q, want %q", paths[0], read)
	}
}

func TestAssembleReturnsErrAnchorsNotFound(t *testing.T) {
	fasta := ">read1\nACGTTACCGGATTGCATGGCATC\n"
	_, err := Assemble(strings.NewReader(fasta),
		map[string]bool{"TTTTTTTTT": true},
		map[string]bool{"GGGGGGGGG": true},
		Options{K: 9, MaxPathLength: 30, MinCoverage: 1},
	)
	if !errors.Is(err, panerr.ErrAnchorsNotFound) {
		t.Fatalf("err = %v, want ErrAnchorsNotFound", err)
	}
}

func TestDFSRecordsEverySuccessorOnce(t *testing.T) {
	g := dbg.Build([][]byte{[]byte("ACGTTACCGGATTGCATGGCATC")}, 9, 1)
	tree := DFS(dbg.Node("ACGTTACCG"), g)
	if len(tree) == 0 {
		t.Fatal("expected a non-empty DFS tree")
	}
	// The read's 15 distinct 9-mers form one chain, so the walk records
	// each of them exactly once.
	if len(tree) != 15 {
		t.Errorf("DFS tree has %d entries, want 15 (one per 9-mer of the read)", len(tree))
	}
}

func TestPathsBetweenRespectsMaxLength(t *testing.T) {
	tree := DFSTree{
		"AAAAAAAAA": {dbg.Node("AAAAAAAAT")},
		"AAAAAAAAT": {dbg.Node("AAAAAAATT")},
		"AAAAAAATT": {},
	}
	paths := PathsBetween("AAAAAAAAA", "AAATT", tree, 1)
	if len(paths) != 0 {
		t.Errorf("expected no paths within a length-1 budget, got %v", paths)
	}

	paths = PathsBetween("AAAAAAAAA", "AAATT", tree, 30)
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1: %v", len(paths), paths)
	}
}
