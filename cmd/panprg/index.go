package main

import (
	"fmt"
	"os"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/minimizer"
	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

type indexOptions struct {
	W, K    int
	Prefix  string
	PRGFile string
}

func checkArgsIndex(c cli.Command) (indexOptions, error) {
	opt := indexOptions{
		W:       c.Flag("w").Get().(int),
		K:       c.Flag("k").Get().(int),
		Prefix:  c.Flag("p").String(),
		PRGFile: c.Flag("prg").String(),
	}
	if opt.PRGFile == "" {
		return opt, fmt.Errorf("%w: -prg is required", panerr.ErrInvalidParameters)
	}
	if opt.W < 1 || opt.K < 1 {
		return opt, fmt.Errorf("%w: -w and -k must be positive", panerr.ErrInvalidParameters)
	}
	return opt, nil
}

// Index builds a minimizer index over every locus in a PRG file,
// writing one KmerGraph GFA file per locus into kmer_prgs/ and the
// combined minimizer index to <prefix>.midx.
func Index(c cli.Command) {
	opt, err := checkArgsIndex(c)
	if err != nil {
		exitWithError(err)
		return
	}

	prgs, err := readPRGs(opt.PRGFile)
	if err != nil {
		exitWithError(err)
		return
	}

	if err := os.MkdirAll("kmer_prgs", 0o755); err != nil {
		exitWithError(fmt.Errorf("%w: %v", panerr.ErrIoError, err))
		return
	}

	idx := minimizer.Build(prgs, opt.W, opt.K)

	for _, lp := range prgs {
		kg, _ := lp.Sketch(opt.W, opt.K)
		if err := saveLocusGFA(lp, kg); err != nil {
			exitWithError(err)
			return
		}
	}

	if err := idx.Save(opt.Prefix + ".midx"); err != nil {
		exitWithError(err)
		return
	}

	fmt.Printf("indexed %d loci, %d distinct minimizer hashes, wrote %s.midx\n", len(prgs), idx.Len(), opt.Prefix)
}

func saveLocusGFA(lp *localgraph.LocalPRG, kg *kmergraph.Graph) error {
	f, err := os.Create(fmt.Sprintf("kmer_prgs/%d.gfa", lp.ID))
	if err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	localprgSeq := func(p seq.Path) string { return string(lp.Graph.StringAlongKmerPath(p)) }
	return kg.Save(f, localprgSeq, nil)
}
