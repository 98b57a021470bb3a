// Package hits turns a read's (w,k)-minimizers into locus-level
// clusters: minimize the read, look each minimizer up in the global
// index, then sort-and-sweep the resulting hits into compact,
// co-oriented groups per spec §4.3.
package hits

import (
	"sort"

	"github.com/mudesheng/panprg/minimizer"
	"github.com/mudesheng/panprg/seq"
)

// Minimizer is one (w,k)-minimizer found in a read: its canonical
// hash, the strand it was observed on, and the offset of its first
// base in the read.
type Minimizer struct {
	ReadPos int
	Hash    uint64
	Strand  seq.Strand
}

// Minimize slides every length-(w+k-1) window of read and keeps the
// minimum-canonical-hash k-mer of each, exactly as
// localgraph.LocalPRG.Sketch does for a PRG's paths -- the two share
// the windowing rule so a read and a locus are sketched identically.
func Minimize(read []byte, w, k int) []Minimizer {
	windowLen := w + k - 1
	var out []Minimizer
	for start := 0; start+windowLen <= len(read); start++ {
		window := read[start : start+windowLen]
		best := -1
		var bestHash uint64
		var bestCanon seq.Kmer
		var bestStrand seq.Strand
		for i := 0; i <= w-1 && i+k <= len(window); i++ {
			kmer := seq.Kmer(window[i : i+k])
			canon, strand := kmer.Canonical()
			h := canon.Hash()
			if best == -1 || h < bestHash || (h == bestHash && kmerLess(canon, bestCanon)) {
				best, bestHash, bestCanon, bestStrand = i, h, canon, strand
			}
		}
		if best == -1 {
			continue
		}
		out = append(out, Minimizer{ReadPos: start + best, Hash: bestHash, Strand: bestStrand})
	}
	return out
}

func kmerLess(a, b seq.Kmer) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// MinimizerHit is one read minimizer resolved against the index: a
// specific PRG locus, the k-mer path within it, and the strand the
// read must be on relative to that locus for the two occurrences to
// agree (the XOR of the read's own strand and the indexed
// occurrence's strand).
type MinimizerHit struct {
	ReadID   string
	ReadPos  int
	PRGID    int
	KmerPath seq.Path
	Strand   seq.Strand
}

// CollectHits resolves every read minimizer against the index,
// producing one MinimizerHit per (minimizer, indexed occurrence)
// pair. A minimizer absent from the index contributes nothing.
func CollectHits(idx *minimizer.Index, readID string, minis []Minimizer) []MinimizerHit {
	var out []MinimizerHit
	for _, m := range minis {
		for _, occ := range idx.Lookup(m.Hash) {
			out = append(out, MinimizerHit{
				ReadID:   readID,
				ReadPos:  m.ReadPos,
				PRGID:    occ.PRGID,
				KmerPath: occ.KmerPath,
				Strand:   m.Strand ^ occ.Strand,
			})
		}
	}
	return out
}

// Cluster is a maximal run of a read's MinimizerHits to the same PRG
// locus in the same relative orientation, with no internal read-gap
// exceeding maxDiff (spec §4.3).
type Cluster struct {
	PRGID  int
	Strand seq.Strand
	Hits   []MinimizerHit
}

// ClusterHits sorts hits by (prg_id, strand, read_start) and sweeps
// them into clusters, starting a new cluster whenever the
// read-position gap to the previous hit exceeds maxDiff or
// prg_id/strand changes. Only clusters with at least clusterThresh
// hits are kept.
func ClusterHits(hitsIn []MinimizerHit, maxDiff, clusterThresh int) []Cluster {
	sorted := make([]MinimizerHit, len(hitsIn))
	copy(sorted, hitsIn)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.PRGID != b.PRGID {
			return a.PRGID < b.PRGID
		}
		if a.Strand != b.Strand {
			return a.Strand < b.Strand
		}
		return a.ReadPos < b.ReadPos
	})

	var clusters []Cluster
	var cur Cluster
	for i, h := range sorted {
		newCluster := i == 0 ||
			h.PRGID != cur.PRGID ||
			h.Strand != cur.Strand ||
			h.ReadPos-sorted[i-1].ReadPos > maxDiff
		if newCluster {
			if len(cur.Hits) >= clusterThresh {
				clusters = append(clusters, cur)
			}
			cur = Cluster{PRGID: h.PRGID, Strand: h.Strand}
		}
		cur.Hits = append(cur.Hits, h)
	}
	if len(cur.Hits) >= clusterThresh {
		clusters = append(clusters, cur)
	}
	return clusters
}
