// Command panprg is the CLI entry point for the pangenome graph
// mapper/genotyper, wiring four subcommands via odin/cli exactly as
// ga.go wires pp/ccf/cdbg/...
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jwaldrip/odin/cli"

	"github.com/mudesheng/panprg/panerr"
)

var app = cli.New("1.0.0", "Pangenome-aware read-to-graph mapper and genotyper", func(c cli.Command) {})

func init() {
	idx := app.DefineSubCommand("index", "build a minimizer index over a PRG set", Index)
	{
		idx.DefineIntFlag("w", 1, "minimizer window size")
		idx.DefineIntFlag("k", 15, "kmer size")
		idx.DefineStringFlag("p", "panprg", "output prefix")
		idx.DefineStringFlag("prg", "", "PRG text file (one record per locus)")
	}

	mp := app.DefineSubCommand("map", "map reads against an index and genotype each locus", Map)
	{
		mp.DefineIntFlag("w", 1, "minimizer window size")
		mp.DefineIntFlag("k", 15, "kmer size")
		mp.DefineStringFlag("p", "panprg", "output prefix")
		mp.DefineStringFlag("prg", "", "PRG text file (one record per locus)")
		mp.DefineStringFlag("reads", "", "FASTA read file, or BAM file if the name ends in .bam")
		mp.DefineIntFlag("maxDiff", 500, "max read-position gap tolerated within a cluster")
		mp.DefineIntFlag("clusterThresh", 2, "minimum hits to keep a cluster")
		mp.DefineStringFlag("model", "bin", "probability model: lin|bin|nbin")
		mp.DefineFloat64Flag("errRate", 0.11, "assumed per-base sequencing error rate")
		mp.DefineIntFlag("maxKmersToAverage", 100, "sliding window cap for the ML-path search")
	}

	cmp := app.DefineSubCommand("compare", "compare per-sample coverage dumps produced by map", Compare)
	{
		cmp.DefineStringFlag("p", "panprg", "output prefix")
		cmp.DefineStringFlag("covgDumps", "", "comma-separated list of coverage dump files, one per sample")
	}

	disc := app.DefineSubCommand("discover", "assemble novel sequence between anchor k-mers", Discover)
	{
		disc.DefineIntFlag("w", 1, "minimizer window size (unused, accepted for flag-surface symmetry)")
		disc.DefineIntFlag("k", 9, "de Bruijn graph kmer size")
		disc.DefineStringFlag("p", "panprg", "output prefix")
		disc.DefineStringFlag("reads", "", "FASTA read file to assemble from")
		disc.DefineStringFlag("start", "", "comma-separated start anchor k-mers")
		disc.DefineStringFlag("end", "", "comma-separated end anchor k-mers")
		disc.DefineIntFlag("maxPathLength", 500, "maximum assembled path length")
		disc.DefineIntFlag("minCoverage", 1, "minimum k-mer coverage to retain in the local graph")
		disc.DefineBoolFlag("cleanGraph", true, "remove short tips before assembling")
		disc.DefineIntFlag("maxTipLen", 10, "maximum tip length removed when cleanGraph is set")
	}
}

func main() {
	app.Start()
}

// exitWithError is the one os.Exit call site: it classifies a
// returned error against the shared taxonomy and maps it to spec §6's
// exit codes (0 success, 1 usage/IO error, 2 unrecoverable runtime
// error). Subcommand handlers call it directly since odin/cli's
// handler signature has no return value for main to inspect.
func exitWithError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, panerr.ErrIoError) || errors.Is(err, panerr.ErrInvalidParameters) {
		os.Exit(1)
	}
	os.Exit(2)
}
