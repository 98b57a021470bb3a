// Package kmergraph implements the KmerGraph of spec §3/§4.1: a DAG
// whose nodes are k-mer paths through a LocalPRG, with a bubble-aware
// topological order and a GFA-like serialization. Nodes live in a
// single arena slice and edges are expressed as index pairs (no
// pointer cycles), per the REDESIGN FLAGS arena-of-indices guidance.
package kmergraph

import (
	"fmt"

	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

// Node is a KmerNode: a k-mer's projected Path through its LocalPRG,
// plus the dense in/out adjacency (by index into Graph.Nodes) and a
// forward/reverse coverage pair that Load fills from a GFA's FC/RC
// tags and Save writes back; sketching leaves it zero (per-sample
// coverage lives in the coverage package, layered on top).
type Node struct {
	ID    int
	Path  seq.Path
	In    []int
	Out   []int
	NumAT int
	Fwd   uint32
	Rev   uint32
}

// Graph is an ordered container of Nodes. It is built once per locus
// by the localgraph sketching pass, then wrapped by
// coverage.KmerGraphWithCoverage for inference.
type Graph struct {
	Nodes []*Node
	K     int

	byPath map[string]int // path.String() -> node index, for idempotent AddNode
	sorted []int          // cached bubble-aware order, invalidated on structural change
}

// New returns an empty graph for k-mers of length k.
func New(k int) *Graph {
	return &Graph{K: k, byPath: make(map[string]int)}
}

// AddNode inserts a node for path p if no existing node has an equal,
// non-empty path (invariant I2), returning the node's index either
// way. An empty path marks a graph terminal rather than a k-mer
// locus, so it is never deduplicated against another empty path: each
// call allocates a fresh node, leaving the caller (Sketch's source
// and sink, in particular) to track which id is which.
func (g *Graph) AddNode(p seq.Path) int {
	if len(p) > 0 {
		key := p.String()
		if id, ok := g.byPath[key]; ok {
			return id
		}
	}
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, &Node{ID: id, Path: p})
	if len(p) > 0 {
		g.byPath[p.String()] = id
	}
	g.sorted = nil
	return id
}

// NodeByPath returns the id of the node whose Path equals p, if one
// has been added. Empty paths never resolve, since source/sink
// terminals are not content-addressed (see AddNode).
func (g *Graph) NodeByPath(p seq.Path) (int, bool) {
	if len(p) == 0 {
		return 0, false
	}
	id, ok := g.byPath[p.String()]
	return id, ok
}

// AddEdge connects u -> v, suppressing duplicate edges (invariant I3).
func (g *Graph) AddEdge(u, v int) {
	un, vn := g.Nodes[u], g.Nodes[v]
	for _, o := range un.Out {
		if o == v {
			return
		}
	}
	un.Out = append(un.Out, v)
	vn.In = append(vn.In, u)
	g.sorted = nil
}

// Check verifies invariant I1: exactly one source (no in-edges) and
// exactly one sink (no out-edges); every other node has at least one
// of each.
func (g *Graph) Check() error {
	sources, sinks := 0, 0
	for _, n := range g.Nodes {
		if len(n.In) == 0 {
			sources++
		}
		if len(n.Out) == 0 {
			sinks++
		}
		if len(n.In) == 0 && len(n.Out) == 0 && len(g.Nodes) > 1 {
			return fmt.Errorf("%w: node %d is isolated", panerr.ErrMalformedInput, n.ID)
		}
	}
	if sources != 1 {
		return fmt.Errorf("%w: expected exactly one source, found %d", panerr.ErrMalformedInput, sources)
	}
	if sinks != 1 {
		return fmt.Errorf("%w: expected exactly one sink, found %d", panerr.ErrMalformedInput, sinks)
	}
	return nil
}

// Source returns the index of the unique node with no in-edges.
func (g *Graph) Source() int {
	for _, n := range g.Nodes {
		if len(n.In) == 0 {
			return n.ID
		}
	}
	return -1
}

// Sink returns the index of the unique node with no out-edges.
func (g *Graph) Sink() int {
	for _, n := range g.Nodes {
		if len(n.Out) == 0 {
			return n.ID
		}
	}
	return -1
}
