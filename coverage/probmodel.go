package coverage

import (
	"fmt"
	"math"

	"github.com/mudesheng/panprg/panerr"
)

// floorLogProb is the saturation floor for a log-probability that
// would otherwise underflow to -Inf, matching the original's
// std::numeric_limits<float>::lowest()/1000 clamp rather than letting
// it widen away under float64.
const floorLogProb = -math.MaxFloat32 / 1000

// ProbModel is the tagged-union-by-method-set replacement for the
// string-dispatched "lin"/"bin"/"nbin" probability model: a concrete
// implementation is chosen once by the caller, not re-parsed from a
// string on every node visited by the max-path search.
type ProbModel interface {
	Prob(kc *KmerGraphWithCoverage, nodeID, sampleID int) float64
}

// LinearModel scores a node by its share of the sample's total read
// count: log(coverage / num_reads).
type LinearModel struct{}

func (LinearModel) Prob(kc *KmerGraphWithCoverage, nodeID, sampleID int) float64 {
	if kc.NumReads == 0 {
		return floorLogProb
	}
	c := float64(kc.TotalCovg(nodeID, sampleID))
	return math.Log(c / float64(kc.NumReads))
}

// BinomialModel scores a node under a per-kmer binomial emission
// model with success probability P (spec §4.4).
type BinomialModel struct {
	P float64
}

func (m BinomialModel) Prob(kc *KmerGraphWithCoverage, nodeID, sampleID int) float64 {
	source, sink := kc.Graph.Source(), kc.Graph.Sink()
	if nodeID == source || nodeID == sink {
		return 0 // undefined at the graph terminals
	}

	fwd := kc.ForwardCovg(nodeID, sampleID)
	rev := kc.ReverseCovg(nodeID, sampleID)
	sum := fwd + rev
	num := uint32(kc.NumReads)

	if sum > num {
		// under model assumptions this can't happen, but it does; fall
		// back to treating the observed sum as the trial count.
		return lognchoosek2(sum, fwd, rev) + float64(sum)*math.Log(m.P/2)
	}
	return lognchoosek2(num, fwd, rev) +
		float64(sum)*math.Log(m.P/2) +
		float64(num-sum)*math.Log(1-m.P)
}

// NegBinomialModel scores a node's total coverage under a negative
// binomial emission model with success probability P and number of
// failures R.
type NegBinomialModel struct {
	P, R float64
}

func (m NegBinomialModel) Prob(kc *KmerGraphWithCoverage, nodeID, sampleID int) float64 {
	k := float64(kc.TotalCovg(nodeID, sampleID))
	logPMF := nbinLogPMF(k, m.R, m.P)
	return math.Max(logPMF, floorLogProb)
}

// nbinLogPMF is the log probability mass function of a negative
// binomial distribution with R failures and success probability P,
// evaluated via log-gamma so it stays accurate for large k.
func nbinLogPMF(k, r, p float64) float64 {
	lg1, _ := math.Lgamma(k + r)
	lg2, _ := math.Lgamma(k + 1)
	lg3, _ := math.Lgamma(r)
	return lg1 - lg2 - lg3 + r*math.Log(p) + k*math.Log(1-p)
}

// lognchoosek2 is the log of the trinomial coefficient n! / (k1! k2!
// (n-k1-k2)!), the log-count of ways to split n reads into k1
// forward, k2 reverse, and n-k1-k2 absent observations.
func lognchoosek2(n, k1, k2 uint32) float64 {
	lgN, _ := math.Lgamma(float64(n) + 1)
	lgK1, _ := math.Lgamma(float64(k1) + 1)
	lgK2, _ := math.Lgamma(float64(k2) + 1)
	rest := float64(n) - float64(k1) - float64(k2)
	lgRest, _ := math.Lgamma(rest + 1)
	return lgN - lgK1 - lgK2 - lgRest
}

// ParseProbModel maps the CLI's model flag to a concrete ProbModel.
// It is the only place in the package a string names a model.
func ParseProbModel(s string, binomialP, negBinomialP, negBinomialR float64) (ProbModel, error) {
	switch s {
	case "lin":
		return LinearModel{}, nil
	case "bin":
		return BinomialModel{P: binomialP}, nil
	case "nbin":
		return NegBinomialModel{P: negBinomialP, R: negBinomialR}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want lin, bin or nbin)", panerr.ErrUnknownProbModel, s)
	}
}

// BinomialParameterP derives the binomial success probability from
// an estimated per-base error rate and k-mer length: p = 1 /
// exp(errRate * k), matching set_binomial_parameter_p.
func BinomialParameterP(errRate float64, k int) float64 {
	return 1 / math.Exp(errRate*float64(k))
}
