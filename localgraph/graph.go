// Package localgraph parses a PRG's bracketed textual form into a DAG
// of sequence nodes with variation sites (spec §4.1), and sketches
// that DAG into a KmerGraph by enumerating (w,k)-minimizers over every
// source-to-sink path (spec §4.1 "Minimizer sketch").
package localgraph

import (
	"fmt"

	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

// Node is a LocalGraph node: a maximal run of sequence characters (or
// an empty synthetic fork/merge node at a variation site boundary),
// occupying Interval in the LocalPRG's coordinate space.
type Node struct {
	ID       int
	Sequence []byte
	Interval seq.Interval
	Outgoing []int
	Incoming []int
}

// Graph is the LocalGraph of spec §3: dense node IDs assigned in
// left-to-right parse order, node 0 the unique source, the last node
// the unique sink.
type Graph struct {
	Nodes []*Node
}

// LocalPRG bundles a parsed PRG locus with the graph derived from its
// bracketed text. Its KmerGraph is not stored here: Sketch builds and
// returns a fresh one on each call.
type LocalPRG struct {
	ID       int
	Name     string
	Sequence []byte
	Graph    *Graph
}

// Source returns the id of the unique node with no incoming edges.
func (g *Graph) Source() int {
	for _, n := range g.Nodes {
		if len(n.Incoming) == 0 {
			return n.ID
		}
	}
	return -1
}

// Sink returns the id of the unique node with no outgoing edges.
func (g *Graph) Sink() int {
	for _, n := range g.Nodes {
		if len(n.Outgoing) == 0 {
			return n.ID
		}
	}
	return -1
}

// StringAlongPath concatenates the sequence of every node in a
// LocalGraph node-id path, in order.
func (g *Graph) StringAlongPath(nodeIDs []int) []byte {
	var out []byte
	for _, id := range nodeIDs {
		out = append(out, g.Nodes[id].Sequence...)
	}
	return out
}

// StringAlongKmerPath renders a seq.Path of LocalGraph coordinate
// intervals (as carried by a kmergraph.Node) back into nucleotides,
// the inverse of the projection Sketch performs while building the
// KmerGraph.
func (g *Graph) StringAlongKmerPath(p seq.Path) []byte {
	var out []byte
	for _, iv := range p {
		out = append(out, g.sequenceAt(iv)...)
	}
	return out
}

// sequenceAt returns the bytes a coordinate interval covers, which
// may span more than one LocalGraph node if iv crosses a node
// boundary (it never does for a single kmer's interval segment, since
// Sketch never produces a cross-boundary Interval entry, but a
// multi-entry Path can still straddle several nodes overall).
func (g *Graph) sequenceAt(iv seq.Interval) []byte {
	var out []byte
	for _, n := range g.Nodes {
		lo, hi := max(iv.Start, n.Interval.Start), min(iv.End, n.Interval.End)
		if lo >= hi {
			continue
		}
		out = append(out, n.Sequence[lo-n.Interval.Start:hi-n.Interval.Start]...)
	}
	return out
}

// newNode allocates a node with the next dense id, assigning its
// coordinate interval immediately after the previous node's (the
// left-to-right parse-order numbering spec §4.1 requires).
type builder struct {
	text     []byte
	nodes    []*Node
	globalPos int
}

func (b *builder) newNode(sequence []byte) int {
	id := len(b.nodes)
	n := &Node{
		ID:       id,
		Sequence: sequence,
		Interval: seq.Interval{Start: b.globalPos, End: b.globalPos + len(sequence)},
	}
	b.globalPos += len(sequence)
	b.nodes = append(b.nodes, n)
	return id
}

func (b *builder) addEdge(u, v int) {
	for _, o := range b.nodes[u].Outgoing {
		if o == v {
			return
		}
	}
	b.nodes[u].Outgoing = append(b.nodes[u].Outgoing, v)
	b.nodes[v].Incoming = append(b.nodes[v].Incoming, u)
}

const (
	siteOpen   = '['
	siteClose  = ']'
	alleleSep  = '|'
)

// parseChain parses a run of sequence characters interleaved with
// bracketed sites starting at pos, stopping at an enclosing ']'/'|'
// or end of text. It returns the entry and exit node ids of the chain
// it built (both -1 if the chain was empty) and the position just
// past what it consumed.
func (b *builder) parseChain(pos int) (entry, exit, newPos int, err error) {
	entry, exit = -1, -1
	link := func(id int) {
		if entry == -1 {
			entry = id
		} else {
			b.addEdge(exit, id)
		}
		exit = id
	}

	for pos < len(b.text) {
		c := b.text[pos]
		if c == siteClose || c == alleleSep {
			break
		}
		if c == siteOpen {
			forkID, mergeID, np, err := b.parseSite(pos)
			if err != nil {
				return 0, 0, 0, err
			}
			pos = np
			link(forkID)
			exit = mergeID
			continue
		}
		start := pos
		for pos < len(b.text) && b.text[pos] != siteOpen && b.text[pos] != siteClose && b.text[pos] != alleleSep {
			pos++
		}
		id := b.newNode(b.text[start:pos])
		link(id)
	}
	return entry, exit, pos, nil
}

// parseSite parses "[" allele ("|" allele)* "]" where pos indexes the
// opening '['. It returns a fork node (fanning out to every allele's
// entry) and a merge node (fed by every allele's exit), matching spec
// §4.1's "one branching fork ... and one merge node" rule. An empty
// allele (back-to-back '[' '|' or '|' ']') is represented by a
// zero-length synthetic node so the fork/merge topology stays
// uniform.
func (b *builder) parseSite(pos int) (forkID, mergeID, newPos int, err error) {
	forkID = b.newNode(nil)
	pos++ // consume '['

	var alleleExits []int
	for {
		entry, exit, np, err := b.parseChain(pos)
		pos = np
		if err != nil {
			return 0, 0, 0, err
		}
		if entry == -1 {
			id := b.newNode(nil)
			entry, exit = id, id
		}
		b.addEdge(forkID, entry)
		alleleExits = append(alleleExits, exit)

		if pos >= len(b.text) {
			return 0, 0, 0, fmt.Errorf("%w: unterminated variation site", panerr.ErrMalformedInput)
		}
		switch b.text[pos] {
		case alleleSep:
			pos++
			continue
		case siteClose:
			pos++
		default:
			return 0, 0, 0, fmt.Errorf("%w: unexpected character %q in variation site", panerr.ErrMalformedInput, b.text[pos])
		}
		break
	}

	mergeID = b.newNode(nil)
	for _, e := range alleleExits {
		b.addEdge(e, mergeID)
	}
	return forkID, mergeID, pos, nil
}

// ParsePRG parses a PRG's bracketed textual form (spec §6's PRG text
// format: nucleotide alphabet plus '[' site-open, '|' allele
// separator, ']' site-close, nesting freely) into a LocalPRG.
func ParsePRG(id int, name string, text []byte) (*LocalPRG, error) {
	b := &builder{text: text}
	entry, exit, pos, err := b.parseChain(0)
	if err != nil {
		return nil, err
	}
	if pos != len(text) {
		return nil, fmt.Errorf("%w: unbalanced bracket in PRG %q at offset %d", panerr.ErrMalformedInput, name, pos)
	}
	if entry == -1 {
		id := b.newNode(nil)
		entry, exit = id, id
	}
	_ = exit

	return &LocalPRG{
		ID:       id,
		Name:     name,
		Sequence: text,
		Graph:    &Graph{Nodes: b.nodes},
	}, nil
}
