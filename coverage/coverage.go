// Package coverage layers per-sample, per-strand k-mer coverage onto
// a kmergraph.Graph and implements the maximum-likelihood path search
// over it (spec §4.4). Coverage increments are lock-free: each node's
// (forward, reverse) pair lives packed into one uint32 word, updated
// via the same CAS-spin-loop idiom the teacher uses to update a
// packed 16-bit fingerprint+count field in its cuckoo filter.
package coverage

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

// SampleCoverage is the (forward, reverse) coverage pair read back
// out for one node/sample.
type SampleCoverage struct {
	Fwd, Rev uint16
}

// KmerGraphWithCoverage wraps a kmergraph.Graph with per-sample
// coverage counters and the probabilistic-emission machinery used to
// recover a maximum-likelihood path through it.
type KmerGraphWithCoverage struct {
	Graph      *kmergraph.Graph
	NumSamples int
	NumReads   int
	Thresh     float64

	// covg[nodeID*NumSamples+sampleID] packs (fwd<<16)|rev.
	covg []uint32
}

// New allocates coverage counters for every node of g across
// numSamples samples, all initially zero.
func New(g *kmergraph.Graph, numSamples int) *KmerGraphWithCoverage {
	return &KmerGraphWithCoverage{
		Graph:      g,
		NumSamples: numSamples,
		covg:       make([]uint32, len(g.Nodes)*numSamples),
	}
}

func (kc *KmerGraphWithCoverage) index(nodeID, sampleID int) int {
	return nodeID*kc.NumSamples + sampleID
}

// IncrementCovg bumps the forward or reverse counter of (nodeID,
// sampleID) by one, saturating at math.MaxUint16, via a CAS spin loop
// over the packed uint32 word -- safe for concurrent callers.
func (kc *KmerGraphWithCoverage) IncrementCovg(nodeID int, strand seq.Strand, sampleID int) {
	idx := kc.index(nodeID, sampleID)
	for {
		old := atomic.LoadUint32(&kc.covg[idx])
		fwd, rev := uint16(old>>16), uint16(old)
		if strand == seq.Forward {
			if fwd == math.MaxUint16 {
				return
			}
			fwd++
		} else {
			if rev == math.MaxUint16 {
				return
			}
			rev++
		}
		next := uint32(fwd)<<16 | uint32(rev)
		if atomic.CompareAndSwapUint32(&kc.covg[idx], old, next) {
			return
		}
	}
}

// SetCovg overwrites the (forward, reverse) pair of (nodeID,
// sampleID) directly.
func (kc *KmerGraphWithCoverage) SetCovg(nodeID int, sampleID int, c SampleCoverage) {
	atomic.StoreUint32(&kc.covg[kc.index(nodeID, sampleID)], uint32(c.Fwd)<<16|uint32(c.Rev))
}

// GetCovg returns the (forward, reverse) coverage pair recorded for
// (nodeID, sampleID).
func (kc *KmerGraphWithCoverage) GetCovg(nodeID, sampleID int) SampleCoverage {
	word := atomic.LoadUint32(&kc.covg[kc.index(nodeID, sampleID)])
	return SampleCoverage{Fwd: uint16(word >> 16), Rev: uint16(word)}
}

// ForwardCovg and ReverseCovg are the single-strand accessors the
// probability models read.
func (kc *KmerGraphWithCoverage) ForwardCovg(nodeID, sampleID int) uint32 {
	return uint32(kc.GetCovg(nodeID, sampleID).Fwd)
}

func (kc *KmerGraphWithCoverage) ReverseCovg(nodeID, sampleID int) uint32 {
	return uint32(kc.GetCovg(nodeID, sampleID).Rev)
}

// TotalCovg is the forward+reverse sum for (nodeID, sampleID).
func (kc *KmerGraphWithCoverage) TotalCovg(nodeID, sampleID int) uint32 {
	c := kc.GetCovg(nodeID, sampleID)
	return uint32(c.Fwd) + uint32(c.Rev)
}

// CoverageIsZero reports whether every node carries zero coverage for
// sampleID -- callers use this to short-circuit a max-path search
// that could never find a supported path.
func (kc *KmerGraphWithCoverage) CoverageIsZero(sampleID int) bool {
	for _, n := range kc.Graph.Nodes {
		if kc.TotalCovg(n.ID, sampleID) > 0 {
			return false
		}
	}
	return true
}

// SaveCovgDist writes one "node_id sample_id fwd rev" line per
// (node, sample) pair, the format save_covg_dist produces.
func (kc *KmerGraphWithCoverage) SaveCovgDist(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range kc.Graph.Nodes {
		for s := 0; s < kc.NumSamples; s++ {
			c := kc.GetCovg(n.ID, s)
			if _, err := fmt.Fprintf(bw, "%d %d %d %d\n", n.ID, s, c.Fwd, c.Rev); err != nil {
				return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
			}
		}
	}
	return bw.Flush()
}
