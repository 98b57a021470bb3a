package coverage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/panerr"
)

// ReadAligner is the pluggable collaborator
// find_max_path_with_base_level_mapping delegates to for "which of
// these candidate sequences do the locus's reads actually support".
// Shelling out to a real aligner binary belongs to the CLI layer, not
// this library, so only the interface lives here.
type ReadAligner interface {
	AlignReadsToCandidates(candidateFASTA []byte, reads []byte) (bestCandidateID string, err error)
}

// GreedyAligner is the default ReadAligner: it parses candidateFASTA
// with biogo's fasta reader and picks the record that the most reads
// (read as whitespace-separated raw sequences rather than parsed as
// FASTA, since callers may pass a single concatenated read block)
// appear as an exact substring of. It exists so the library has a
// working default without requiring an external aligner binary; it is
// not a substitute for a real sequence aligner.
type GreedyAligner struct{}

func (GreedyAligner) AlignReadsToCandidates(candidateFASTA []byte, reads []byte) (string, error) {
	type candidate struct {
		id  string
		seq []byte
	}
	var candidates []candidate

	r := fasta.NewReader(bytes.NewReader(candidateFASTA), linear.NewSeq("", nil, alphabet.DNA))
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		l := s.(*linear.Seq)
		b := make([]byte, len(l.Seq))
		for i, v := range l.Seq {
			b[i] = byte(v)
		}
		candidates = append(candidates, candidate{id: l.Name(), seq: b})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidate sequences to align against", panerr.ErrMalformedInput)
	}

	best, bestCount := "", -1
	for _, c := range candidates {
		count := 0
		for _, chunk := range bytes.Fields(reads) {
			if bytes.Contains(c.seq, chunk) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = c.id, count
		}
	}
	return best, nil
}

// FindMaxPathWithBaseLevelMapping is the rescue path invoked when the
// coverage-only DP in FindMaxPath cannot confidently choose between
// two or more outgoing branches: rather than trust coverage alone, it
// renders each branch's downstream ML sequence and asks aligner which
// one the locus's own reads actually support. lp supplies the
// LocalGraph needed to render a kmer path back to nucleotides.
func FindMaxPathWithBaseLevelMapping(kc *KmerGraphWithCoverage, lp *localgraph.LocalPRG, model ProbModel, sampleID int, aligner ReadAligner, reads []byte) ([]int, float64, error) {
	if kc.CoverageIsZero(sampleID) {
		return nil, NoSignal, nil
	}

	nodes := kc.Graph.Nodes
	n := len(nodes)
	terminus := n - 1

	prevNode := make([]int, n)
	for i := range prevNode {
		prevNode[i] = terminus
	}

	for j := n - 1; j > 0; j-- {
		currentID := j - 1
		out := nodes[currentID].Out

		var mlOutnode int
		switch len(out) {
		case 0:
			continue
		case 1:
			mlOutnode = out[0]
		default:
			mlOutnode = pickBranch(kc, lp, out, prevNode, terminus, aligner, reads, sampleID)
		}
		prevNode[currentID] = mlOutnode
	}

	var path []int
	prev := prevNode[0]
	for prev < terminus {
		path = append(path, prev)
		prev = prevNode[prev]
		if len(path) > 1000000 {
			return nil, 0, fmt.Errorf("%w: extracted more than 1000000 nodes", panerr.ErrCycleSuspected)
		}
	}

	return path, probPath(kc, path, sampleID, model), nil
}

func pickBranch(kc *KmerGraphWithCoverage, lp *localgraph.LocalPRG, outnodes []int, prevNode []int, terminus int, aligner ReadAligner, reads []byte, sampleID int) int {
	var fastaBuf bytes.Buffer
	haveCandidate := false
	for _, out := range outnodes {
		downstream := extractDownstream(out, prevNode, terminus)
		seqBytes := lp.Graph.StringAlongKmerPath(kc.Graph.Nodes[out].Path)
		for _, id := range downstream {
			seqBytes = append(seqBytes, lp.Graph.StringAlongKmerPath(kc.Graph.Nodes[id].Path)...)
		}
		if len(seqBytes) == 0 {
			continue
		}
		fmt.Fprintf(&fastaBuf, ">%d\n%s\n", out, seqBytes)
		haveCandidate = true
	}

	if haveCandidate {
		if id, err := aligner.AlignReadsToCandidates(fastaBuf.Bytes(), reads); err == nil {
			for _, out := range outnodes {
				if fmt.Sprint(out) == id {
					return out
				}
			}
		}
	}

	// No neighbour was selected by read mapping: prefer the terminus if
	// it is one of the branches, else the most-covered branch.
	for _, out := range outnodes {
		if out == terminus {
			return terminus
		}
	}
	best, bestCovg := outnodes[0], -1
	for _, out := range outnodes {
		c := int(kc.TotalCovg(out, sampleID))
		if c > bestCovg {
			best, bestCovg = out, c
		}
	}
	return best
}

func extractDownstream(start int, prevNode []int, terminus int) []int {
	var path []int
	prev := prevNode[start]
	for prev < terminus {
		path = append(path, prev)
		prev = prevNode[prev]
		if len(path) > 1000000 {
			break
		}
	}
	return path
}
