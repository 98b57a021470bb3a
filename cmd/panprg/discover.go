package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/panprg/localassembly"
	"github.com/mudesheng/panprg/panerr"
)

type discoverOptions struct {
	K             int
	Prefix        string
	ReadsFile     string
	StartKmers    []string
	EndKmers      []string
	MaxPathLength int
	MinCoverage   int
	CleanGraph    bool
	MaxTipLen     int
}

func checkArgsDiscover(c cli.Command) (discoverOptions, error) {
	start := c.Flag("start").String()
	end := c.Flag("end").String()
	opt := discoverOptions{
		K:             c.Flag("k").Get().(int),
		Prefix:        c.Flag("p").String(),
		ReadsFile:     c.Flag("reads").String(),
		MaxPathLength: c.Flag("maxPathLength").Get().(int),
		MinCoverage:   c.Flag("minCoverage").Get().(int),
		CleanGraph:    c.Flag("cleanGraph").Get().(bool),
		MaxTipLen:     c.Flag("maxTipLen").Get().(int),
	}
	if opt.ReadsFile == "" || start == "" || end == "" {
		return opt, fmt.Errorf("%w: -reads, -start and -end are required", panerr.ErrInvalidParameters)
	}
	opt.StartKmers = strings.Split(start, ",")
	opt.EndKmers = strings.Split(end, ",")
	return opt, nil
}

// Discover assembles the sequence between a set of start and end
// anchor k-mers out of a read pile's local de Bruijn graph, per
// spec §4.6 (the "local assembly" rescue path used when no indexed
// PRG locus accounts for a read's content).
func Discover(c cli.Command) {
	opt, err := checkArgsDiscover(c)
	if err != nil {
		exitWithError(err)
		return
	}

	f, err := os.Open(opt.ReadsFile)
	if err != nil {
		exitWithError(fmt.Errorf("%w: %v", panerr.ErrIoError, err))
		return
	}
	defer f.Close()

	startSet := toSet(opt.StartKmers)
	endSet := toSet(opt.EndKmers)

	paths, err := localassembly.Assemble(f, startSet, endSet, localassembly.Options{
		K:             opt.K,
		MaxPathLength: opt.MaxPathLength,
		MinCoverage:   opt.MinCoverage,
		CleanGraph:    opt.CleanGraph,
		MaxTipLen:     opt.MaxTipLen,
	})
	if err != nil {
		exitWithError(err)
		return
	}

	out, err := createZstd(opt.Prefix + ".discovered.fasta")
	if err != nil {
		exitWithError(err)
		return
	}
	defer out.Close()

	const lineWidth = 70
	if err := localassembly.WriteFASTA(out, paths, lineWidth); err != nil {
		exitWithError(err)
		return
	}

	fmt.Printf("assembled %d path(s), wrote %s.discovered.fasta.zst\n", len(paths), opt.Prefix)
}

func toSet(kmers []string) map[string]bool {
	set := make(map[string]bool, len(kmers))
	for _, k := range kmers {
		set[k] = true
	}
	return set
}
