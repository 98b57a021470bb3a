package seq

import (
	"bytes"
	"testing"
)

func TestReverseComplement(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ACGT", "ACGT"},
		{"AAGCT", "AGCTT"},
	}
	for _, c := range cases {
		got := ReverseComplement([]byte(c.in))
		if string(got) != c.want {
			t.Errorf("ReverseComplement(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReverseComplementInvolution(t *testing.T) {
	for _, s := range []string{"A", "C", "G", "T", "ACGTACGT", "GATTACA"} {
		got := ReverseComplement(ReverseComplement([]byte(s)))
		if string(got) != s {
			t.Errorf("ReverseComplement(ReverseComplement(%q)) = %q, want %q", s, got, s)
		}
	}
}

func TestPathEqual(t *testing.T) {
	p1 := Path{{0, 3}, {5, 5}, {7, 10}}
	p2 := Path{{0, 3}, {5, 5}, {7, 10}}
	p3 := Path{{0, 3}, {7, 10}}
	if !p1.Equal(p2) {
		t.Errorf("expected p1 == p2")
	}
	if p1.Equal(p3) {
		t.Errorf("expected p1 != p3")
	}
}

func TestPathRoundTrip(t *testing.T) {
	p := Path{{0, 3}, {5, 5}, {7, 10}}
	s := p.String()
	got, err := ParsePath(s)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if !got.Equal(p) {
		t.Errorf("round trip mismatch: got %v, want %v", got, p)
	}
}

func TestKmerCanonical(t *testing.T) {
	k := Kmer([]byte("AAG"))
	canon, strand := k.Canonical()
	// AAG revcomp is CTT; AAG < CTT lexicographically, so AAG wins.
	if !bytes.Equal(canon, []byte("AAG")) || strand != Forward {
		t.Errorf("Canonical(AAG) = (%s, %v), want (AAG, Forward)", canon, strand)
	}
}
