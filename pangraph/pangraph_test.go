package pangraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mudesheng/panprg/hits"
	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/seq"
)

func smallKmerGraph() *kmergraph.Graph {
	kg := kmergraph.New(9)
	src := kg.AddNode(nil)
	mid := kg.AddNode(seq.Path{{Start: 0, End: 9}})
	sink := kg.AddNode(nil)
	kg.AddEdge(src, mid)
	kg.AddEdge(mid, sink)
	return kg
}

func TestAddHitsCreatesNodeAndIncrementsCoverage(t *testing.T) {
	kg := smallKmerGraph()
	pg := New(9)

	cluster := hits.Cluster{
		PRGID:  3,
		Strand: seq.Forward,
		Hits: []hits.MinimizerHit{
			{ReadID: "r1", PRGID: 3, KmerPath: seq.Path{{Start: 0, End: 9}}, Strand: seq.Forward},
		},
	}
	pg.AddHits("r1", kg, 0, 1, cluster)

	n, ok := pg.Nodes[3]
	if !ok {
		t.Fatal("expected node for locus 3 to be created")
	}
	if len(n.Reads) != 1 || n.Reads[0] != "r1" {
		t.Fatalf("Reads = %v, want [r1]", n.Reads)
	}

	midID, _ := kg.NodeByPath(seq.Path{{Start: 0, End: 9}})
	c := n.Covg.GetCovg(midID, 0)
	if c.Fwd != 1 || c.Rev != 0 {
		t.Errorf("coverage = %+v, want Fwd=1 Rev=0", c)
	}
}

func TestAddHitsUnknownKmerPathIsIgnored(t *testing.T) {
	kg := smallKmerGraph()
	pg := New(9)

	cluster := hits.Cluster{
		PRGID: 3,
		Hits: []hits.MinimizerHit{
			{ReadID: "r1", PRGID: 3, KmerPath: seq.Path{{Start: 100, End: 109}}, Strand: seq.Forward},
		},
	}
	pg.AddHits("r1", kg, 0, 1, cluster)

	n := pg.Nodes[3]
	for _, node := range kg.Nodes {
		c := n.Covg.GetCovg(node.ID, 0)
		if c.Fwd != 0 || c.Rev != 0 {
			t.Errorf("node %d got coverage %+v, want zero (unmatched path)", node.ID, c)
		}
	}
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	pg := New(9)
	if err := pg.AddEdge(1, 1, 3); err == nil {
		t.Error("expected an error for a self-loop edge")
	}
}

func TestAddEdgeCoalescesMirroredOrientation(t *testing.T) {
	pg := New(9)
	if err := pg.AddEdge(1, 2, 1); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := pg.AddEdge(2, 1, RevOrient(1)); err != nil {
		t.Fatalf("AddEdge (mirror): %v", err)
	}
	if len(pg.Edges) != 1 {
		t.Fatalf("got %d edges, want 1 (mirrored orientation should coalesce)", len(pg.Edges))
	}
	if pg.Edges[0].Covg != 2 {
		t.Errorf("Covg = %d, want 2", pg.Edges[0].Covg)
	}
}

func TestWriteGFAIncludesEveryNodeAndEdge(t *testing.T) {
	kg := smallKmerGraph()
	pg := New(9)
	pg.AddHits("r1", kg, 0, 1, hits.Cluster{PRGID: 1, Hits: []hits.MinimizerHit{
		{ReadID: "r1", PRGID: 1, KmerPath: seq.Path{{Start: 0, End: 9}}, Strand: seq.Forward},
	}})
	pg.AddHits("r2", kg, 0, 1, hits.Cluster{PRGID: 2, Hits: []hits.MinimizerHit{
		{ReadID: "r2", PRGID: 2, KmerPath: seq.Path{{Start: 0, End: 9}}, Strand: seq.Forward},
	}})
	if err := pg.AddEdge(1, 2, 3); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	var buf bytes.Buffer
	if err := pg.WriteGFA(&buf); err != nil {
		t.Fatalf("WriteGFA: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "S\t1\t") || !strings.Contains(out, "S\t2\t") {
		t.Errorf("GFA missing an S line for a node: %s", out)
	}
	if !strings.Contains(out, "L\t1\t+\t2\t+\t0M") {
		t.Errorf("GFA missing the expected L line: %s", out)
	}
}
