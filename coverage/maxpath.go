package coverage

import (
	"fmt"
	"math"

	"github.com/mudesheng/panprg/panerr"
)

// NoSignal is the sentinel FindMaxPath/FindMaxPathWithBaseLevelMapping
// return in place of a score when a sample's coverage is entirely
// zero: there is nothing a probability model could meaningfully score,
// so the caller gets an explicit "no signal" value rather than an
// error, matching the original's use of the float minimum for the
// same purpose.
const NoSignal = -math.MaxFloat64

// FindMaxPath recovers the maximum-likelihood path through kc's
// KmerGraph for one sample under model, transcribing the reverse-
// topological DP of the original find_max_path: a sliding window of
// at most maxNumKmersToAverage kmers is kept per node so the running
// average log-likelihood doesn't get diluted by an arbitrarily long
// tail, and ties are broken first by preferring the graph terminus
// when the best average found so far is below thresh, then by average
// log-likelihood,
// then (within tolerance) by the longer path. kc.Graph must already
// be in topological id order (kmergraph.Graph.TopoSort).
func FindMaxPath(kc *KmerGraphWithCoverage, model ProbModel, sampleID int, maxNumKmersToAverage int, thresh float64) ([]int, float64, error) {
	if kc.CoverageIsZero(sampleID) {
		return nil, NoSignal, nil
	}

	nodes := kc.Graph.Nodes
	n := len(nodes)
	terminus := n - 1

	maxSumLogProb := make([]float64, n)
	lengthMaxPath := make([]int, n)
	prevNode := make([]int, n)
	for i := range prevNode {
		prevNode[i] = terminus
	}

	const tolerance = 0.000001

	for j := n - 1; j > 0; j-- {
		currentID := j - 1
		maxMean := math.Inf(-1)
		maxLength := 0

		for _, outID := range nodes[currentID].Out {
			isTerminusAndMostLikely := outID == terminus && thresh > maxMean+tolerance
			avgLogLikelihood := maxSumLogProb[outID] / float64(lengthMaxPath[outID])
			avgLogLikelihoodIsMostLikely := avgLogLikelihood > maxMean+tolerance
			avgLogLikelihoodIsCloseToMostLikely := maxMean-avgLogLikelihood <= tolerance
			isLongerPath := lengthMaxPath[outID] > maxLength

			if !(isTerminusAndMostLikely || avgLogLikelihoodIsMostLikely ||
				(avgLogLikelihoodIsCloseToMostLikely && isLongerPath)) {
				continue
			}

			maxSumLogProb[currentID] = model.Prob(kc, currentID, sampleID) + maxSumLogProb[outID]
			lengthMaxPath[currentID] = 1 + lengthMaxPath[outID]
			prevNode[currentID] = outID

			if lengthMaxPath[currentID] > maxNumKmersToAverage {
				p := prevNode[currentID]
				for step := 0; step < maxNumKmersToAverage; step++ {
					p = prevNode[p]
				}
				maxSumLogProb[currentID] -= model.Prob(kc, p, sampleID)
				lengthMaxPath[currentID]--
			}

			if outID != terminus {
				maxMean = maxSumLogProb[outID] / float64(lengthMaxPath[outID])
				maxLength = lengthMaxPath[outID]
			} else {
				maxMean = thresh
			}
		}
	}

	var path []int
	prev := prevNode[0]
	for prev < terminus {
		path = append(path, prev)
		prev = prevNode[prev]
		if len(path) > 1000000 {
			return nil, 0, fmt.Errorf("%w: extracted more than 1000000 nodes", panerr.ErrCycleSuspected)
		}
	}
	if lengthMaxPath[0] == 0 {
		return nil, 0, fmt.Errorf("%w: no path through the kmer graph", panerr.ErrNoPathFound)
	}

	return path, probPath(kc, path, sampleID, model), nil
}

// probPath averages model's log-likelihood over path, adjusting the
// denominator when the path's own first/last entries are themselves
// zero-length (graph terminals), matching prob_path's length
// bookkeeping.
func probPath(kc *KmerGraphWithCoverage, path []int, sampleID int, model ProbModel) float64 {
	var sum float64
	for _, id := range path {
		sum += model.Prob(kc, id, sampleID)
	}
	length := len(path)
	if length > 0 && kc.Graph.Nodes[path[0]].Path.Length() == 0 {
		length--
	}
	if length > 0 && kc.Graph.Nodes[path[len(path)-1]].Path.Length() == 0 {
		length--
	}
	if length == 0 {
		length = 1
	}
	return sum / float64(length)
}
