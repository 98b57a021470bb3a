package minimizer

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/panerr"
)

func TestBuildAndLookup(t *testing.T) {
	lp, err := localgraph.ParsePRG(3, "locus", []byte("AAGCT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	idx := Build([]*localgraph.LocalPRG{lp}, 1, 3)
	// The three 3-mers AAG, AGC and GCT yield only 2 distinct canonical
	// hashes: AGC and GCT are reverse complements of each other.
	if idx.Len() != 2 {
		t.Fatalf("expected 2 distinct minimizer hashes, got %d", idx.Len())
	}

	_, records := lp.Sketch(1, 3)
	for _, r := range records {
		occs := idx.Lookup(r.Hash)
		if len(occs) == 0 {
			t.Fatalf("expected at least one occurrence for hash %d", r.Hash)
		}
		found := false
		for _, o := range occs {
			if o.PRGID == 3 && o.KmerPath.Equal(r.KmerPath) {
				found = true
			}
		}
		if !found {
			t.Errorf("lookup for hash %d did not return the expected occurrence", r.Hash)
		}
	}
}

// TestBuildDeduplicatesOverlappingWindowOccurrences covers w=2, where
// a locus's repeated motif is re-selected as the minimizer by two
// consecutive overlapping windows: the index must record that
// occurrence once, not once per window it survived in (spec §4.2's
// uniqueness contract). w=1 cannot exercise this: each window then
// has a single candidate k-mer, so consecutive windows can never
// re-select an already-chosen one.
func TestBuildDeduplicatesOverlappingWindowOccurrences(t *testing.T) {
	lp, err := localgraph.ParsePRG(7, "repeat", []byte("ACGTACGTACGTACGTACGT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	idx := Build([]*localgraph.LocalPRG{lp}, 2, 3)

	seen := make(map[string]bool)
	for hash, occs := range idx.recs {
		for _, o := range occs {
			key := fmt.Sprintf("%d|%s|%d", o.PRGID, o.KmerPath.String(), o.Strand)
			if seen[key] {
				t.Fatalf("hash %d: duplicate (prg_id, kmer_path, strand) occurrence %+v", hash, o)
			}
			seen[key] = true
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	lp, err := localgraph.ParsePRG(3, "locus", []byte("AAGCT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	idx := Build([]*localgraph.LocalPRG{lp}, 1, 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path, 1, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != idx.Len() {
		t.Fatalf("round-tripped index has %d hashes, want %d", got.Len(), idx.Len())
	}
}

func TestLoadRejectsMismatchedParams(t *testing.T) {
	lp, err := localgraph.ParsePRG(3, "locus", []byte("AAGCT"))
	if err != nil {
		t.Fatalf("ParsePRG: %v", err)
	}
	idx := Build([]*localgraph.LocalPRG{lp}, 1, 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	if err := idx.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err = Load(path, 2, 3)
	if err == nil {
		t.Fatal("expected an error loading with a different w")
	}
	if !errors.Is(err, panerr.ErrMismatchedIndexParams) {
		t.Errorf("expected ErrMismatchedIndexParams, got %v", err)
	}
}
