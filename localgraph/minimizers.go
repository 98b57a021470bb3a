package localgraph

import (
	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/seq"
)

// MinimizerRecord is a single (w,k)-minimizer discovered while
// sketching a LocalPRG: the canonical hash of the chosen k-mer, its
// projection onto the LocalGraph's coordinate space, and the strand
// it was found on. The minimizer package turns these into MiniRecords
// keyed by the owning PRG's id once sketching is done, so this
// package never needs to know about the global index.
type MinimizerRecord struct {
	Hash     uint64
	KmerPath seq.Path
	Strand   seq.Strand
}

// pathWalk holds the per-source-to-sink-path bookkeeping needed to
// project a window of concatenated bytes back onto LocalGraph
// intervals.
type pathWalk struct {
	nodeIDs []int
	cum     []int // cum[i] = offset of nodeIDs[i]'s first byte in the concatenated sequence
	seqb    []byte
}

func (g *Graph) walk(nodeIDs []int) pathWalk {
	cum := make([]int, len(nodeIDs)+1)
	var buf []byte
	for i, id := range nodeIDs {
		cum[i] = len(buf)
		buf = append(buf, g.Nodes[id].Sequence...)
	}
	cum[len(nodeIDs)] = len(buf)
	return pathWalk{nodeIDs: nodeIDs, cum: cum, seqb: buf}
}

// project maps a [start,end) byte range of the walk's concatenated
// sequence back onto the LocalGraph's coordinate space, splitting
// across node boundaries as needed.
func (g *Graph) project(w pathWalk, start, end int) seq.Path {
	var p seq.Path
	for i, id := range w.nodeIDs {
		nodeStart, nodeEnd := w.cum[i], w.cum[i+1]
		lo, hi := max(start, nodeStart), min(end, nodeEnd)
		if lo >= hi {
			continue
		}
		iv := g.Nodes[id].Interval
		p = append(p, seq.Interval{
			Start: iv.Start + (lo - nodeStart),
			End:   iv.Start + (hi - nodeStart),
		})
	}
	return p
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// allSourceToSinkPaths enumerates every node-id path from source to
// sink by DFS over Outgoing edges.
func (g *Graph) allSourceToSinkPaths() [][]int {
	source, sink := g.Source(), g.Sink()
	if source == -1 || sink == -1 {
		return nil
	}
	var paths [][]int
	var cur []int
	var visit func(id int)
	visit = func(id int) {
		cur = append(cur, id)
		if id == sink {
			paths = append(paths, append([]int(nil), cur...))
		} else {
			for _, o := range g.Nodes[id].Outgoing {
				visit(o)
			}
		}
		cur = cur[:len(cur)-1]
	}
	visit(source)
	return paths
}

// chooseMinimizer picks, among the w candidate k-mers of a length
// (w+k-1) window, the one with minimum canonical hash, breaking ties
// lexicographically on the canonical k-mer bytes (spec §4.1).
// Returns the chosen k-mer's offset within the window, its canonical
// hash and the strand it was observed on.
func chooseMinimizer(window []byte, w, k int) (offset int, hash uint64, strand seq.Strand) {
	best := -1
	var bestHash uint64
	var bestCanon seq.Kmer
	var bestStrand seq.Strand
	for i := 0; i <= w-1 && i+k <= len(window); i++ {
		kmer := seq.Kmer(window[i : i+k])
		canon, strnd := kmer.Canonical()
		h := canon.Hash()
		if best == -1 || h < bestHash || (h == bestHash && bytesLessKmer(canon, bestCanon)) {
			best = i
			bestHash = h
			bestCanon = canon
			bestStrand = strnd
		}
	}
	return best, bestHash, bestStrand
}

func bytesLessKmer(a, b seq.Kmer) bool {
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

// Sketch enumerates every length-(w+k-1) window across every
// source-to-sink path of the LocalGraph, selects the minimizing k-mer
// of each window, and builds the resulting KmerGraph (spec §4.1). It
// is deterministic up to the tie-break rule in chooseMinimizer:
// identical k-mer paths collapse onto a single KmerNode (invariant
// I2), so bubbles that share a flanking k-mer automatically share the
// corresponding KmerNode.
func (lp *LocalPRG) Sketch(w, k int) (*kmergraph.Graph, []MinimizerRecord) {
	kg := kmergraph.New(k)
	source := kg.AddNode(seq.Path{})
	sink := kg.AddNode(seq.Path{})

	var records []MinimizerRecord
	windowLen := w + k - 1

	// Overlapping windows (w>1) frequently re-select the same
	// (kmerPath, strand) minimizer: AddNode already collapses those
	// onto a single KmerNode (I2), but the flat records slice that
	// feeds minimizer.Build would otherwise carry one duplicate per
	// window the minimizer survives in, violating the index's
	// (hash, prg_id, kmer_path, strand) uniqueness contract. seen
	// tracks every (kmerPath, strand) already emitted for this PRG so
	// each distinct occurrence is recorded exactly once.
	seen := make(map[string]bool)

	for _, nodeIDs := range lp.Graph.allSourceToSinkPaths() {
		pw := lp.Graph.walk(nodeIDs)
		if len(pw.seqb) < windowLen {
			kg.AddEdge(source, sink)
			continue
		}

		prev := source
		for start := 0; start+windowLen <= len(pw.seqb); start++ {
			window := pw.seqb[start : start+windowLen]
			offset, hash, strand := chooseMinimizer(window, w, k)
			if offset == -1 {
				continue
			}
			kmerStart, kmerEnd := start+offset, start+offset+k
			kmerPath := lp.Graph.project(pw, kmerStart, kmerEnd)

			nodeID := kg.AddNode(kmerPath)
			if nodeID == prev {
				// an overlapping window re-selected the previous
				// window's minimizer: no new node, no self-loop edge,
				// and its record was already emitted
				continue
			}
			kg.AddEdge(prev, nodeID)
			prev = nodeID

			key := kmerPath.String()
			if strand == seq.Reverse {
				key += "/rev"
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, MinimizerRecord{
				Hash:     hash,
				KmerPath: kmerPath,
				Strand:   strand,
			})
		}
		kg.AddEdge(prev, sink)
	}

	// Per-path construction can leave a later path's pre-bubble nodes
	// with higher ids than a merge node an earlier path already
	// placed downstream of it; restore id order as a real topological
	// order before handing the graph to consumers that walk it by id
	// (coverage.FindMaxPath in particular).
	kg.TopoSort()

	return kg, records
}
