package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jwaldrip/odin/cli"
	"github.com/klauspost/compress/gzip"

	"github.com/mudesheng/panprg/panerr"
)

type compareOptions struct {
	Prefix    string
	CovgDumps []string
}

func checkArgsCompare(c cli.Command) (compareOptions, error) {
	raw := c.Flag("covgDumps").String()
	if raw == "" {
		return compareOptions{}, fmt.Errorf("%w: -covgDumps is required", panerr.ErrInvalidParameters)
	}
	return compareOptions{
		Prefix:    c.Flag("p").String(),
		CovgDumps: strings.Split(raw, ","),
	}, nil
}

// nodeTotal is one (locus, kmer node) pair's summed forward+reverse
// coverage within a single sample's dump.
type nodeTotal map[int]uint64

// Compare reads the "node_id sample_id fwd rev" coverage dumps that
// map writes for each sample and tabulates, per node, which samples
// carry non-zero coverage -- the cross-sample presence/absence view
// spec §4.5's comparison step needs.
func Compare(c cli.Command) {
	opt, err := checkArgsCompare(c)
	if err != nil {
		exitWithError(err)
		return
	}

	perSample := make([]nodeTotal, len(opt.CovgDumps))
	for i, path := range opt.CovgDumps {
		totals, err := readCovgDump(path)
		if err != nil {
			exitWithError(err)
			return
		}
		perSample[i] = totals
	}

	nodeSet := make(map[int]bool)
	for _, totals := range perSample {
		for node := range totals {
			nodeSet[node] = true
		}
	}
	nodes := make([]int, 0, len(nodeSet))
	for node := range nodeSet {
		nodes = append(nodes, node)
	}
	sort.Ints(nodes)

	out, err := os.Create(opt.Prefix + ".compare.tsv")
	if err != nil {
		exitWithError(fmt.Errorf("%w: %v", panerr.ErrIoError, err))
		return
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	fmt.Fprint(bw, "node_id")
	for i, path := range opt.CovgDumps {
		fmt.Fprintf(bw, "\t%s", sampleLabel(path, i))
	}
	fmt.Fprintln(bw)

	for _, node := range nodes {
		fmt.Fprintf(bw, "%d", node)
		for _, totals := range perSample {
			fmt.Fprintf(bw, "\t%d", totals[node])
		}
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		exitWithError(fmt.Errorf("%w: %v", panerr.ErrIoError, err))
		return
	}

	fmt.Printf("compared %d samples across %d nodes, wrote %s.compare.tsv\n", len(opt.CovgDumps), len(nodes), opt.Prefix)
}

func sampleLabel(path string, i int) string {
	if path == "" {
		return fmt.Sprintf("sample%d", i)
	}
	return path
}

func readCovgDump(path string) (nodeTotal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
		}
		defer gr.Close()
		r = gr
	}

	totals := make(nodeTotal)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 4 {
			continue
		}
		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		fwd, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		rev, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		totals[nodeID] += fwd + rev
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return totals, nil
}
