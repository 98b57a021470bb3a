package seq

import "github.com/cespare/xxhash"

// Strand records which strand a k-mer, minimizer or alignment was
// observed on.
type Strand uint8

const (
	Forward Strand = 0
	Reverse Strand = 1
)

// Rev flips the strand.
func (s Strand) Rev() Strand {
	if s == Forward {
		return Reverse
	}
	return Forward
}

// revCompMagic implements the branchless reverse-complement scheme
// from the original local-assembly code: XORing an upper-case ASCII
// A/C/G/T with 4 (if the bit of value 2 is set, i.e. it's C or G) or 21
// (otherwise, A or T) maps each base to its complement without a
// lookup table.
func revCompMagic(b byte) byte {
	if b&2 != 0 {
		return b ^ 4
	}
	return b ^ 21
}

// ReverseComplement returns the reverse complement of an upper-case
// ACGT byte slice. The input is not mutated.
func ReverseComplement(s []byte) []byte {
	n := len(s)
	out := make([]byte, n)
	for i, b := range s {
		out[n-1-i] = revCompMagic(b)
	}
	return out
}

// Kmer is a short, immutable nucleotide window. Canonical and Hash
// together give the (w,k)-minimizer machinery its "minimum canonical
// hash, ties broken lexicographically" rule.
type Kmer []byte

// Canonical returns the lexicographically smaller of the k-mer and
// its reverse complement, along with the strand that smaller form was
// observed on (Forward if the k-mer itself was already minimal).
func (k Kmer) Canonical() (Kmer, Strand) {
	rc := Kmer(ReverseComplement(k))
	if bytesLess(rc, k) {
		return rc, Reverse
	}
	return k, Forward
}

// Hash returns the xxhash-64 digest of the raw k-mer bytes. Callers
// that need a canonical (strand-independent) hash should call
// Canonical first.
func (k Kmer) Hash() uint64 {
	return xxhash.Sum64(k)
}

// bytesLess performs the lexicographic comparison used to break ties
// between a k-mer and its reverse complement, matching the teacher's
// KmerBnt.BiggerThan convention (compare, don't just hash-compare).
func bytesLess(a, b Kmer) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
