// Package pangraph implements the PanGraph of spec §3/§4.3: a
// multigraph of the loci observed across a read set, with nodes
// holding per-locus coverage and edges recording which loci were
// seen adjacent to one another and in what relative orientation.
package pangraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/awalterschulze/gographviz"

	"github.com/mudesheng/panprg/coverage"
	"github.com/mudesheng/panprg/hits"
	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/panerr"
)

// Node is a PanNode: a PRG locus that at least one read's cluster
// touched, plus the reads that touched it and the per-sample coverage
// accumulated against its KmerGraph.
type Node struct {
	PRGID   int
	Reads   []string
	Covg    *coverage.KmerGraphWithCoverage
}

// Edge is a PanEdge between two loci observed adjacent to one another
// on the same read, with an orientation in {0,1,2,3} following
// original_source/src/panedge.cpp's convention: 0 = both reverse,
// 1 = from forward/to reverse, 2 = from reverse/to forward, 3 = both
// forward.
type Edge struct {
	From, To    int
	Orientation uint8
	Covg        int
}

// RevOrient returns the orientation that the same physical adjacency
// has when described from the opposite end, per panedge.cpp's
// rev_orient: swapping endpoints maps 0 and 3 onto each other, while
// 1 and 2 (single-end reversed) are each their own mirror.
func RevOrient(o uint8) uint8 {
	switch o {
	case 0:
		return 3
	case 3:
		return 0
	default:
		return o
	}
}

// Graph is the PanGraph: nodes keyed by PRG id, plus the edge list.
// Mutation is guarded by a mutex rather than relying on single-writer
// call discipline, so AddHits and AddEdge are safe to call from
// concurrent read-processing workers (spec §5).
type Graph struct {
	mu    sync.Mutex
	k     int
	Nodes map[int]*Node
	Edges []*Edge
}

// New returns an empty PanGraph whose lazily-created nodes wrap a
// KmerGraphWithCoverage built for k-mers of length k.
func New(k int) *Graph {
	return &Graph{k: k, Nodes: make(map[int]*Node)}
}

// node returns (creating if necessary) the node for prgID, wrapping
// kg in a fresh coverage.KmerGraphWithCoverage the first time the
// locus is touched.
func (g *Graph) node(prgID int, kg *kmergraph.Graph, numSamples int) *Node {
	n, ok := g.Nodes[prgID]
	if !ok {
		n = &Node{PRGID: prgID, Covg: coverage.New(kg, numSamples)}
		g.Nodes[prgID] = n
	}
	return n
}

// AddHits applies one accepted cluster to the PanGraph (spec §4.3):
// creates the node lazily, records the read, and increments coverage
// on every KmerNode the cluster's hits touch, using the strand each
// hit recorded.
func (g *Graph) AddHits(readID string, kg *kmergraph.Graph, sampleID int, numSamples int, cluster hits.Cluster) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.node(cluster.PRGID, kg, numSamples)
	n.Reads = append(n.Reads, readID)
	for _, h := range cluster.Hits {
		nodeID, ok := kg.NodeByPath(h.KmerPath)
		if !ok {
			continue
		}
		n.Covg.IncrementCovg(nodeID, h.Strand, sampleID)
	}
}

// AddEdge records one observed adjacency between two loci, creating
// the edge on first sight and incrementing its coverage on every
// subsequent sighting (spec §9's open question: self-loops where
// from == to are rejected as invalid rather than silently accepted).
// Orientation is canonicalized via RevOrient so an edge and its
// mirror image (reported from the other endpoint) coalesce into one
// entry.
func (g *Graph) AddEdge(from, to int, orientation uint8) error {
	if from == to {
		return fmt.Errorf("%w: pangraph self-loop on node %d", panerr.ErrInvalidParameters, from)
	}
	if orientation > 3 {
		return fmt.Errorf("%w: orientation %d out of range", panerr.ErrInvalidParameters, orientation)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range g.Edges {
		if e.From == from && e.To == to && e.Orientation == orientation {
			e.Covg++
			return nil
		}
		if e.From == to && e.To == from && e.Orientation == RevOrient(orientation) {
			e.Covg++
			return nil
		}
	}
	g.Edges = append(g.Edges, &Edge{From: from, To: to, Orientation: orientation, Covg: 1})
	return nil
}

// WriteGFA renders the PanGraph as the GFA dialect of spec §6: one S
// line per locus (carrying its read count as a tag) and one L line
// per edge.
func (g *Graph) WriteGFA(w io.Writer) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "H\tVN:Z:1.0\tbn:Z:--linear --singlearr"); err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	for _, n := range g.Nodes {
		if _, err := fmt.Fprintf(bw, "S\t%d\t*\tRC:i:%d\n", n.PRGID, len(n.Reads)); err != nil {
			return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
		}
	}
	for _, e := range g.Edges {
		fromRev, toRev := orientStrand(e.Orientation)
		if _, err := fmt.Fprintf(bw, "L\t%d\t%s\t%d\t%s\t0M\n", e.From, fromRev, e.To, toRev); err != nil {
			return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
		}
	}
	return bw.Flush()
}

func orientStrand(o uint8) (string, string) {
	switch o {
	case 0:
		return "-", "-"
	case 1:
		return "+", "-"
	case 2:
		return "-", "+"
	default:
		return "+", "+"
	}
}

// WriteDot renders the PanGraph as Graphviz dot, grounded on
// findPath.GraphvizDBG's record-shaped node labels and blue edge
// styling.
func (g *Graph) WriteDot(w io.Writer) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	gv := gographviz.NewGraph()
	gv.SetName("G")
	gv.SetDir(true)
	gv.SetStrict(false)

	for id, n := range g.Nodes {
		attr := map[string]string{
			"color": "Green",
			"shape": "record",
			"label": fmt.Sprintf("prg %d | reads %d", id, len(n.Reads)),
		}
		if err := gv.AddNode("G", strconv.Itoa(id), attr); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		attr := map[string]string{
			"color": "Blue",
			"label": fmt.Sprintf("orient:%d covg:%d", e.Orientation, e.Covg),
		}
		if err := gv.AddEdge(strconv.Itoa(e.From), strconv.Itoa(e.To), true, attr); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte(gv.String()))
	return err
}
