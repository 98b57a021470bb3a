package coverage

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/mudesheng/panprg/panerr"
)

// findMeanCovg returns the index in dist at which the second coverage
// peak's maximum occurs, transcribing find_mean_covg: increases are
// treated as noise rather than evidence of having left the first
// (error k-mer) peak until three consecutive ones have been seen (a
// non-increase before then resets the count). It returns 0,
// the original's signal for "did not find 2 distinct peaks", if the
// distribution never leaves that initial run.
func findMeanCovg(dist []uint64) uint64 {
	firstPeak := true
	var maxCovg, noiseBuffer uint64

	for i := 1; i < len(dist); i++ {
		if dist[i] <= dist[i-1] {
			if firstPeak && noiseBuffer < 3 {
				noiseBuffer = 0
			}
			continue
		}
		switch {
		case firstPeak && noiseBuffer < 3:
			noiseBuffer++
		case firstPeak:
			firstPeak = false
			maxCovg = uint64(i)
		case dist[i] > dist[maxCovg]:
			maxCovg = uint64(i)
		}
	}

	if firstPeak {
		return 0
	}
	return maxCovg
}

// findProbThresh locates the minimum between two peaks of dist, a
// histogram of log-probabilities offset so index 0 represents -200,
// transcribing find_prob_thresh's two-pass peak search (first pass
// takes a peak within 15 bins of the upper end as the second peak and
// any other peak as the first, second pass relaxes that margin to 6
// bins, and a final fallback picks the smallest
// non-zero bin above the single peak found). The result is already
// shifted back by -200.
func findProbThresh(dist []uint64) int {
	if len(dist) == 0 {
		return 0
	}

	search := func(edgeMargin int) (firstPeak, secondPeak int) {
		firstPeak, secondPeak = 0, len(dist)-1
		for (firstPeak == 0 || secondPeak == len(dist)-1) && firstPeak != secondPeak {
			peak := argmax(dist, firstPeak+1, secondPeak)
			if peak > len(dist)-edgeMargin {
				secondPeak = peak
			} else {
				firstPeak = peak
			}
		}
		return firstPeak, secondPeak
	}

	firstPeak, secondPeak := search(15)
	if firstPeak == secondPeak {
		firstPeak, secondPeak = search(6)
	}
	if firstPeak == secondPeak {
		peak := argmax(dist, 0, len(dist))
		for i := peak; i < len(dist); i++ {
			if dist[i] > 0 && (dist[i] < dist[peak] || dist[peak] == 0) {
				peak = i
			}
		}
		return peak - 200
	}

	peak := argmin(dist, firstPeak, secondPeak)
	return peak - 200
}

// argmax/argmin return the index of the largest/smallest value in
// dist[lo:hi], defaulting to lo when the range is empty.
func argmax(dist []uint64, lo, hi int) int {
	best := lo
	for i := lo; i < hi; i++ {
		if dist[i] > dist[best] {
			best = i
		}
	}
	return best
}

func argmin(dist []uint64, lo, hi int) int {
	best := lo
	for i := lo; i < hi; i++ {
		if dist[i] < dist[best] {
			best = i
		}
	}
	return best
}

// Locus wraps one PRG's coverage-bearing KmerGraph; EstimateParameters
// reads its coverage and sets its Covg.Thresh in place.
type Locus struct {
	Covg *KmerGraphWithCoverage
}

// EstimateParameters recomputes a per-base error rate from the
// coverage recorded across loci and derives a coverage-probability
// threshold below which a k-mer is deemed untrustworthy, transcribing
// estimate_parameters. It writes the raw coverage and log-probability
// histograms to covgOut/probOut (the ".kmer_covgs.txt"/".kmer_probs.txt"
// side files the original always produces alongside the estimate) and
// sets loc.Covg.Thresh on every locus. sampleID selects which sample's
// coverage to estimate from; k is the k-mer length used to convert an
// error rate into a binomial success probability.
func EstimateParameters(loci []Locus, sampleID, k int, errRate float64, covgOut, probOut io.Writer) (newErrRate float64, thresh int, err error) {
	if len(loci) == 0 {
		return errRate, 0, nil
	}

	covgDist := make([]uint64, 1000)
	var totalReads, numLoci int
	for _, loc := range loci {
		numLoci++
		totalReads += loc.Covg.NumReads
		nodes := loc.Covg.Graph.Nodes
		for i := 1; i < len(nodes)-1; i++ {
			c := uint64(loc.Covg.TotalCovg(i, sampleID))
			if c < uint64(len(covgDist)) {
				covgDist[c]++
			}
		}
	}
	avgNumReads := totalReads / numLoci

	if err := writeHistogram(covgOut, covgDist, 0); err != nil {
		return errRate, 0, err
	}

	if avgNumReads > 30 {
		meanCovg := findMeanCovg(covgDist)
		if meanCovg > 0 {
			errRate = -math.Log(float64(meanCovg)/float64(avgNumReads)) / float64(k)
		}
	}

	p := BinomialParameterP(errRate, k)
	model := BinomialModel{P: p}

	probDist := make([]uint64, 200)
	for _, loc := range loci {
		nodes := loc.Covg.Graph.Nodes
		for i := 1; i < len(nodes)-1; i++ {
			logP := model.Prob(loc.Covg, i, sampleID)
			bin := int(logP) + 200
			if bin < 0 {
				bin = 0
			}
			if bin >= len(probDist) {
				bin = len(probDist) - 1
			}
			probDist[bin]++
		}
	}

	if err := writeHistogram(probOut, probDist, -200); err != nil {
		return errRate, 0, err
	}

	firstNonZero := 0
	for firstNonZero < len(probDist)-1 && probDist[firstNonZero] == 0 {
		firstNonZero++
	}
	firstNonZero++

	var remaining uint64
	for _, v := range probDist[firstNonZero:] {
		remaining += v
	}

	if remaining > 1000 {
		thresh = findProbThresh(probDist)
	} else {
		thresh = firstNonZero - 200
	}

	for _, loc := range loci {
		loc.Covg.Thresh = float64(thresh)
	}

	return errRate, thresh, nil
}

func writeHistogram(w io.Writer, dist []uint64, offset int) error {
	bw := bufio.NewWriter(w)
	for i, v := range dist {
		if _, err := fmt.Fprintf(bw, "%d\t%d\n", i+offset, v); err != nil {
			return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
		}
	}
	return bw.Flush()
}
