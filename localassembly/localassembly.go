// Package localassembly recovers the sequence between two anchor
// k-mers by building a local de Bruijn graph over a read pile and
// enumerating every DFS path that connects them, transcribing
// original_source/src/local_assembly.cpp onto the dbg package.
package localassembly

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/mudesheng/panprg/dbg"
	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

// Options bundles the knobs local_assembly's free function took as
// positional parameters.
type Options struct {
	K             int
	MaxPathLength int
	MinCoverage   int
	CleanGraph    bool
	MaxTipLen     int
}

// DFSTree maps an oriented k-mer's string form to the successors the
// non-recursive DFS recorded for it the first (and only) time it was
// explored, transcribing local_assembly.cpp::DFS's stack-based walk.
type DFSTree map[string][]dbg.Node

// DFS performs a non-recursive depth-first exploration of g from
// start, recording each explored node's successor set exactly once.
func DFS(start dbg.Node, g *dbg.Graph) DFSTree {
	stack := []dbg.Node{start}
	explored := make(map[string]bool)
	tree := make(DFSTree)

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := g.ToString(current)
		if explored[key] {
			continue
		}
		explored[key] = true

		neighbours := g.Successors(current)
		tree[key] = neighbours
		for _, child := range neighbours {
			stack = append(stack, child)
		}
	}
	return tree
}

// PathsBetween enumerates every path in tree that starts at startKmer
// and ends with the suffix endKmer, transcribing
// get_paths_between/get_paths_between_util: cycles are permitted
// while the length budget (maxPathLength) remains.
func PathsBetween(startKmer, endKmer string, tree DFSTree, maxPathLength int) [][]byte {
	if len(startKmer) == 0 {
		return nil
	}
	initialAcc := []byte(startKmer[:len(startKmer)-1])
	var result [][]byte
	pathsBetweenUtil(startKmer, endKmer, initialAcc, tree, &result, maxPathLength)
	return result
}

func pathsBetweenUtil(startKmer, endKmer string, acc []byte, tree DFSTree, result *[][]byte, maxPathLength int) {
	if len(acc) > maxPathLength {
		return
	}

	next := make([]byte, len(acc)+1)
	copy(next, acc)
	next[len(acc)] = startKmer[len(startKmer)-1]

	if bytes.HasSuffix(next, []byte(endKmer)) {
		*result = append(*result, next)
	}

	for _, child := range tree[startKmer] {
		pathsBetweenUtil(string(child), endKmer, next, tree, result, maxPathLength)
	}
}

// findAnchorPair searches g for both orientations of (startKmer,
// endKmer), retrying with the reverse-complement swap
// local_assembly.cpp's single-kmer overload performs when the forward
// orientation isn't found.
func findAnchorPair(g *dbg.Graph, startKmer, endKmer string) (start, end string, found bool) {
	if g.Contains(dbg.Node(startKmer)) && g.Contains(dbg.Node(endKmer)) {
		return startKmer, endKmer, true
	}
	rcStart := string(seq.ReverseComplement([]byte(endKmer)))
	rcEnd := string(seq.ReverseComplement([]byte(startKmer)))
	if g.Contains(dbg.Node(rcStart)) && g.Contains(dbg.Node(rcEnd)) {
		return rcStart, rcEnd, true
	}
	return "", "", false
}

// Assemble builds a local de Bruijn graph from the FASTA/FASTQ-style
// reads in r and enumerates every path between some combination of
// startKmers and endKmers, trying both the forward and the
// reverse-complement orientation of every candidate pair (the
// multi-kmer overload's two-orientation retry). It returns
// ErrAnchorsNotFound if no combination resolves in either
// orientation.
func Assemble(r io.Reader, startKmers, endKmers map[string]bool, opts Options) ([][]byte, error) {
	reads, err := readSequences(r)
	if err != nil {
		return nil, err
	}

	g := dbg.Build(reads, opts.K, opts.MinCoverage)
	if opts.CleanGraph {
		g.RemoveTips(opts.MaxTipLen)
	}

	for s := range startKmers {
		for e := range endKmers {
			if startKmers[e] {
				continue // end kmer also appears as a start kmer: skip per the original's guard
			}
			start, end, found := findAnchorPair(g, s, e)
			if !found {
				continue
			}

			tree := DFS(dbg.Node(start), g)
			paths := PathsBetween(start, end, tree, opts.MaxPathLength)
			return paths, nil
		}
	}

	return nil, fmt.Errorf("%w: no combination of start/end k-mers resolved in either orientation", panerr.ErrAnchorsNotFound)
}

// readSequences reads every record out of r as FASTA, matching
// mapDBG.go's biogo-backed read-ingestion pattern.
func readSequences(r io.Reader) ([][]byte, error) {
	fr := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))
	var out [][]byte
	for {
		s, err := fr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		l := s.(*linear.Seq)
		b := make([]byte, len(l.Seq))
		for i, v := range l.Seq {
			b[i] = byte(v)
		}
		out = append(out, b)
	}
	return out, nil
}

// WriteFASTA writes each assembled path as its own ">path" FASTA
// record, wrapped at lineWidth, matching write_paths_to_fasta.
func WriteFASTA(w io.Writer, paths [][]byte, lineWidth int) error {
	bw := bufio.NewWriter(w)
	for _, p := range paths {
		if _, err := fmt.Fprintln(bw, ">path"); err != nil {
			return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
		}
		for i := 0; i < len(p); i += lineWidth {
			end := i + lineWidth
			if end > len(p) {
				end = len(p)
			}
			if _, err := fmt.Fprintln(bw, string(p[i:end])); err != nil {
				return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
			}
		}
	}
	return bw.Flush()
}
