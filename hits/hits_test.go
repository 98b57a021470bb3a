package hits

import (
	"testing"

	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/minimizer"
	"github.com/mudesheng/panprg/seq"
)

func TestMinimizeMatchesSketchOnLinearLocus(t *testing.T) {
	lp, err := localgraph.ParsePRG(0, "linear", []byte("AAGCT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	_, records := lp.Sketch(1, 3)
	minis := Minimize([]byte("AAGCT"), 1, 3)
	if len(minis) != len(records) {
		t.Fatalf("expected %d minimizers from the read, got %d", len(records), len(minis))
	}
}

func TestClusterHitsSplitsOnGapAndLocus(t *testing.T) {
	h := []MinimizerHit{
		{ReadID: "r1", ReadPos: 0, PRGID: 1, Strand: seq.Forward},
		{ReadID: "r1", ReadPos: 3, PRGID: 1, Strand: seq.Forward},
		{ReadID: "r1", ReadPos: 6, PRGID: 1, Strand: seq.Forward},
		// gap of 50 on the read -> new cluster
		{ReadID: "r1", ReadPos: 56, PRGID: 1, Strand: seq.Forward},
		{ReadID: "r1", ReadPos: 58, PRGID: 1, Strand: seq.Forward},
		// different locus -> new cluster regardless of gap
		{ReadID: "r1", ReadPos: 59, PRGID: 2, Strand: seq.Forward},
	}

	clusters := ClusterHits(h, 5, 2)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters to meet the threshold, got %d", len(clusters))
	}
	if len(clusters[0].Hits) != 3 {
		t.Errorf("expected first cluster to have 3 hits, got %d", len(clusters[0].Hits))
	}
	if len(clusters[1].Hits) != 2 {
		t.Errorf("expected second cluster to have 2 hits, got %d", len(clusters[1].Hits))
	}
	// The single hit to PRGID 2 falls below clusterThresh and is dropped.
	for _, c := range clusters {
		if c.PRGID == 2 {
			t.Errorf("cluster below clusterThresh should have been dropped")
		}
	}
}

func TestCollectHitsResolvesAgainstIndex(t *testing.T) {
	lp, err := localgraph.ParsePRG(7, "locus", []byte("AAGCT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	idx := minimizer.Build([]*localgraph.LocalPRG{lp}, 1, 3)

	minis := Minimize([]byte("AAGCT"), 1, 3)
	h := CollectHits(idx, "r1", minis)
	// AGC and GCT are reverse complements, so they share a canonical
	// hash and each of those two read minimizers resolves to both indexed
	// occurrences: 1 + 2 + 2 = 5 hits for 3 minimizers.
	if len(h) != 5 {
		t.Fatalf("expected 5 hits for %d minimizers, got %d", len(minis), len(h))
	}
	aligned := 0
	for _, hit := range h {
		if hit.PRGID != 7 {
			t.Errorf("expected hit against PRG 7, got %d", hit.PRGID)
		}
		if hit.KmerPath[0].Start != hit.ReadPos {
			continue
		}
		aligned++
		if hit.Strand != seq.Forward {
			t.Errorf("expected forward-relative strand for a read identical to the locus, got %v", hit.Strand)
		}
	}
	if aligned != len(minis) {
		t.Errorf("expected one hit at its own locus position per minimizer, got %d for %d minimizers", aligned, len(minis))
	}
}
