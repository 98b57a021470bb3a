package kmergraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

const gfaHeader = "H\tVN:Z:1.0\tbn:Z:--linear --singlearr"

// CovgFunc supplies the forward/reverse coverage to render for a
// node, so coverage kept outside the Graph (such as a
// coverage.KmerGraphWithCoverage sample) can be written without a
// second GFA writer; with a nil CovgFunc, Save uses the Graph's own
// Fwd/Rev fields.
type CovgFunc func(nodeID int) (fwd, rev uint32)

// Save writes the KmerGraph GFA dialect of spec §6. If localprgSeq is
// non-nil it is used to render each node's sequence instead of its
// raw Path (mirroring KmerGraphWithCoverage::save's localprg-present
// branch); covg supplies the FC/RC fields, defaulting to the graph's
// own Node.Fwd/Rev when nil.
func (g *Graph) Save(w io.Writer, localprgSeq func(seq.Path) string, covg CovgFunc) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, gfaHeader); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		field := n.Path.String()
		if localprgSeq != nil {
			field = localprgSeq(n.Path)
		}
		fwd, rev := n.Fwd, n.Rev
		if covg != nil {
			fwd, rev = covg(n.ID)
		}
		if _, err := fmt.Fprintf(bw, "S\t%d\t%s\tFC:i:%d\tRC:i:%d", n.ID, field, fwd, rev); err != nil {
			return err
		}
		if n.NumAT != 0 {
			if _, err := fmt.Fprintf(bw, "\tAT:i:%d", n.NumAT); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
		for _, o := range n.Out {
			if _, err := fmt.Fprintf(bw, "L\t%d\t+\t%d\t+\t0M\n", n.ID, o); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Load parses the GFA dialect written by Save. The sequence field of
// each S-line must parse as a Path (spec §6) or Load fails with
// panerr.ErrMalformedInput. If the
// first parsed node has id 0 and the last has id N-1 the node order is
// kept; otherwise the node list is reversed after load, matching the
// original loader's forward/reverse-order detection.
func Load(r io.Reader) (*Graph, error) {
	g := New(0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)

	type sLine struct {
		id       int
		path     seq.Path
		fwd, rev uint32
		numAT    int
	}
	var sLines []sLine
	var lLines [][2]int
	firstID, lastID := -1, -1

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'S':
			fields := strings.Split(line, "\t")
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: malformed kmer graph S-line %q", panerr.ErrMalformedInput, line)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: malformed kmer graph node id %q", panerr.ErrMalformedInput, fields[1])
			}
			if !seq.LooksLikePath(fields[2]) {
				return nil, fmt.Errorf("%w: kmer graph node %d does not carry a PRG path", panerr.ErrMalformedInput, id)
			}
			p, err := seq.ParsePath(fields[2])
			if err != nil {
				return nil, fmt.Errorf("%w: malformed kmer graph path on node %d: %v", panerr.ErrMalformedInput, id, err)
			}
			var fwd, rev uint32
			var numAT int
			for _, f := range fields[3:] {
				switch {
				case strings.HasPrefix(f, "FC:i:"):
					v, _ := strconv.Atoi(strings.TrimPrefix(f, "FC:i:"))
					fwd = uint32(v)
				case strings.HasPrefix(f, "RC:i:"):
					v, _ := strconv.Atoi(strings.TrimPrefix(f, "RC:i:"))
					rev = uint32(v)
				case strings.HasPrefix(f, "AT:i:"):
					v, _ := strconv.Atoi(strings.TrimPrefix(f, "AT:i:"))
					numAT = v
				}
			}
			if firstID == -1 {
				firstID = id
			}
			lastID = id
			sLines = append(sLines, sLine{id: id, path: p, fwd: fwd, rev: rev, numAT: numAT})
			if p.Length() > 0 && g.K == 0 {
				g.K = p.Length()
			}
		case 'L':
			fields := strings.Split(line, "\t")
			if len(fields) < 5 {
				return nil, fmt.Errorf("%w: malformed kmer graph L-line %q", panerr.ErrMalformedInput, line)
			}
			var from, to int
			if fields[2] == fields[4] {
				from, _ = strconv.Atoi(fields[1])
				to, _ = strconv.Atoi(fields[3])
			} else {
				from, _ = strconv.Atoi(fields[3])
				to, _ = strconv.Atoi(fields[1])
			}
			lLines = append(lLines, [2]int{from, to})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}

	if firstID == 0 && lastID == len(sLines)-1 {
		// forward order, nothing to do
	} else {
		for i, j := 0, len(sLines)-1; i < j; i, j = i+1, j-1 {
			sLines[i], sLines[j] = sLines[j], sLines[i]
		}
	}

	idToIndex := make(map[int]int, len(sLines))
	for i, s := range sLines {
		idToIndex[s.id] = i
		nid := g.AddNode(s.path)
		if nid != i {
			return nil, fmt.Errorf("%w: kmer graph node %d has inconsistent id", panerr.ErrMalformedInput, s.id)
		}
		g.Nodes[nid].Fwd = s.fwd
		g.Nodes[nid].Rev = s.rev
		g.Nodes[nid].NumAT = s.numAT
	}
	for _, l := range lLines {
		u, ok1 := idToIndex[l[0]]
		v, ok2 := idToIndex[l[1]]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: kmer graph edge references unknown node", panerr.ErrMalformedInput)
		}
		g.AddEdge(u, v)
	}
	return g, nil
}
