package main

import (
	"fmt"
	"os"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/panprg/coverage"
	"github.com/mudesheng/panprg/hits"
	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/minimizer"
	"github.com/mudesheng/panprg/pangraph"
	"github.com/mudesheng/panprg/panerr"
)

type mapOptions struct {
	W, K              int
	Prefix            string
	PRGFile           string
	ReadsFile         string
	MaxDiff           int
	ClusterThresh     int
	Model             string
	ErrRate           float64
	MaxKmersToAverage int
}

func checkArgsMap(c cli.Command) (mapOptions, error) {
	opt := mapOptions{
		W:                 c.Flag("w").Get().(int),
		K:                 c.Flag("k").Get().(int),
		Prefix:            c.Flag("p").String(),
		PRGFile:           c.Flag("prg").String(),
		ReadsFile:         c.Flag("reads").String(),
		MaxDiff:           c.Flag("maxDiff").Get().(int),
		ClusterThresh:     c.Flag("clusterThresh").Get().(int),
		Model:             c.Flag("model").String(),
		ErrRate:           c.Flag("errRate").Get().(float64),
		MaxKmersToAverage: c.Flag("maxKmersToAverage").Get().(int),
	}
	if opt.PRGFile == "" || opt.ReadsFile == "" {
		return opt, fmt.Errorf("%w: -prg and -reads are required", panerr.ErrInvalidParameters)
	}
	return opt, nil
}

// Map ingests a read set against a PRG's minimizer index, clusters
// each read's hits into per-locus coverage, genotypes every touched
// locus under the chosen probability model, and writes the resulting
// PanGraph plus per-locus coverage dumps, per spec §4.3/§4.4.
func Map(c cli.Command) {
	opt, err := checkArgsMap(c)
	if err != nil {
		exitWithError(err)
		return
	}

	prgs, err := readPRGs(opt.PRGFile)
	if err != nil {
		exitWithError(err)
		return
	}
	kmerGraphs := make(map[int]*kmergraph.Graph, len(prgs))
	localPRGs := make(map[int]*localgraph.LocalPRG, len(prgs))
	for _, lp := range prgs {
		kg, _ := lp.Sketch(opt.W, opt.K)
		kg.TopoSort()
		kmerGraphs[lp.ID] = kg
		localPRGs[lp.ID] = lp
	}

	idx := minimizer.Build(prgs, opt.W, opt.K)

	reads, err := readReadsAny(opt.ReadsFile)
	if err != nil {
		exitWithError(err)
		return
	}

	const sampleID, numSamples = 0, 1
	pg := pangraph.New(opt.K)

	for _, r := range reads {
		minis := hits.Minimize(r.Seq, opt.W, opt.K)
		readHits := hits.CollectHits(idx, r.ID, minis)
		clusters := hits.ClusterHits(readHits, opt.MaxDiff, opt.ClusterThresh)
		for _, cl := range clusters {
			kg := kmerGraphs[cl.PRGID]
			if kg == nil {
				continue
			}
			pg.AddHits(r.ID, kg, sampleID, numSamples, cl)
		}
	}

	model, err := coverage.ParseProbModel(opt.Model, coverage.BinomialParameterP(opt.ErrRate, opt.K), 0.5, 5)
	if err != nil {
		exitWithError(err)
		return
	}

	gfaFile, err := os.Create(opt.Prefix + ".pangraph.gfa")
	if err != nil {
		exitWithError(fmt.Errorf("%w: %v", panerr.ErrIoError, err))
		return
	}
	defer gfaFile.Close()

	covgFile, err := createGzip(opt.Prefix + ".covg.txt")
	if err != nil {
		exitWithError(err)
		return
	}
	defer covgFile.Close()

	genotyped := 0
	for prgID, n := range pg.Nodes {
		path, score, err := coverage.FindMaxPath(n.Covg, model, sampleID, opt.MaxKmersToAverage, coverage.NoSignal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "locus %d: %v\n", prgID, err)
			continue
		}
		if score == coverage.NoSignal {
			continue
		}
		lp := localPRGs[prgID]
		var rendered []byte
		for _, nodeID := range path {
			rendered = append(rendered, lp.Graph.StringAlongKmerPath(n.Covg.Graph.Nodes[nodeID].Path)...)
		}
		fmt.Fprintf(covgFile, "locus %d\tscore %f\tsequence %s\n", prgID, score, rendered)
		genotyped++
	}

	if err := pg.WriteGFA(gfaFile); err != nil {
		exitWithError(err)
		return
	}

	for _, n := range pg.Nodes {
		if err := n.Covg.SaveCovgDist(covgFile); err != nil {
			exitWithError(err)
			return
		}
	}

	fmt.Printf("mapped %d reads, touched %d loci, genotyped %d, wrote %s.covg.txt.gz\n", len(reads), len(pg.Nodes), genotyped, opt.Prefix)
}
