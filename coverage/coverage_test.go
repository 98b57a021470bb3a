package coverage

import (
	"math"
	"testing"

	"github.com/mudesheng/panprg/kmergraph"
	"github.com/mudesheng/panprg/seq"
)

func ivPath(start int) seq.Path {
	return seq.Path{{Start: start, End: start + 1}}
}

// TestBinomialProb pins the worked example: k=15, e_rate=0.11, N=10,
// f=3, r=2 gives p=exp(-1.65) and
// log C(10;3,2) + 5*log(p/2) + 5*log(1-p).
func TestBinomialProb(t *testing.T) {
	g := kmergraph.New(15)
	source := g.AddNode(seq.Path{})
	node := g.AddNode(ivPath(0))
	sink := g.AddNode(seq.Path{})
	g.AddEdge(source, node)
	g.AddEdge(node, sink)

	kc := New(g, 1)
	kc.NumReads = 10
	kc.SetCovg(node, 0, SampleCoverage{Fwd: 3, Rev: 2})

	p := BinomialParameterP(0.11, 15)
	wantP := math.Exp(-1.65)
	if math.Abs(p-wantP) > 1e-9 {
		t.Fatalf("BinomialParameterP = %v, want %v", p, wantP)
	}

	model := BinomialModel{P: p}
	got := model.Prob(kc, node, 0)

	want := lognchoosek2(10, 3, 2) + 5*math.Log(p/2) + 5*math.Log(1-p)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Prob = %v, want %v", got, want)
	}
}

// TestFindMaxPathPrefersLongerPathOnTie builds a decision node with two
// downstream branches of equal per-node coverage but lengths 3 and 5;
// since their mean log-likelihoods tie, the longer branch must win.
func TestFindMaxPathPrefersLongerPathOnTie(t *testing.T) {
	g := kmergraph.New(9)
	source := g.AddNode(seq.Path{})       // 0
	d := g.AddNode(ivPath(0))              // 1
	a1 := g.AddNode(ivPath(1))              // 2
	a2 := g.AddNode(ivPath(2))              // 3
	a3 := g.AddNode(ivPath(3))              // 4
	b1 := g.AddNode(ivPath(4))              // 5
	b2 := g.AddNode(ivPath(5))              // 6
	b3 := g.AddNode(ivPath(6))              // 7
	b4 := g.AddNode(ivPath(7))              // 8
	b5 := g.AddNode(ivPath(8))              // 9
	sink := g.AddNode(seq.Path{})           // 10

	g.AddEdge(source, d)
	g.AddEdge(d, a1)
	g.AddEdge(a1, a2)
	g.AddEdge(a2, a3)
	g.AddEdge(a3, sink)
	g.AddEdge(d, b1)
	g.AddEdge(b1, b2)
	g.AddEdge(b2, b3)
	g.AddEdge(b3, b4)
	g.AddEdge(b4, b5)
	g.AddEdge(b5, sink)

	kc := New(g, 1)
	kc.NumReads = 10
	for _, n := range []int{d, a1, a2, a3, b1, b2, b3, b4, b5} {
		kc.SetCovg(n, 0, SampleCoverage{Fwd: 5, Rev: 0})
	}

	path, _, err := FindMaxPath(kc, LinearModel{}, 0, 100, NoSignal)
	if err != nil {
		t.Fatalf("FindMaxPath: %v", err)
	}

	has := func(id int) bool {
		for _, p := range path {
			if p == id {
				return true
			}
		}
		return false
	}
	if !has(b1) || has(a1) {
		t.Errorf("FindMaxPath = %v, want the longer b-branch chosen over the shorter a-branch", path)
	}
}

// TestFindMaxPathZeroCoverageReturnsNoSignal checks the all-zero
// short-circuit.
func TestFindMaxPathZeroCoverageReturnsNoSignal(t *testing.T) {
	g := kmergraph.New(5)
	source := g.AddNode(seq.Path{})
	node := g.AddNode(ivPath(0))
	sink := g.AddNode(seq.Path{})
	g.AddEdge(source, node)
	g.AddEdge(node, sink)

	kc := New(g, 1)
	_, score, err := FindMaxPath(kc, LinearModel{}, 0, 100, 0)
	if err != nil {
		t.Fatalf("FindMaxPath: %v", err)
	}
	if score != NoSignal {
		t.Errorf("score = %v, want NoSignal", score)
	}
}

// TestIncrementCovgSaturates checks the packed counter never wraps
// past math.MaxUint16.
func TestIncrementCovgSaturates(t *testing.T) {
	g := kmergraph.New(5)
	node := g.AddNode(ivPath(0))
	kc := New(g, 1)
	kc.SetCovg(node, 0, SampleCoverage{Fwd: math.MaxUint16})
	kc.IncrementCovg(node, seq.Forward, 0)
	if got := kc.GetCovg(node, 0).Fwd; got != math.MaxUint16 {
		t.Errorf("Fwd = %d, want saturated at %d", got, math.MaxUint16)
	}
}
