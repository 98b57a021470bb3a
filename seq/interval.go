// Package seq provides the coordinate and k-mer primitives shared by
// the LocalPRG, KmerGraph, minimizer and coverage packages: half-open
// intervals, paths built from them, canonical k-mer hashing and
// reverse complementation.
package seq

import "fmt"

// Interval is a half-open [Start, End) range over a LocalGraph's
// sequence coordinates. Zero-length intervals are permitted and mark
// bubble boundaries (empty alleles, graph terminals).
type Interval struct {
	Start, End int
}

// Length returns End - Start.
func (i Interval) Length() int {
	return i.End - i.Start
}

func (i Interval) String() string {
	return fmt.Sprintf("%d[%d,%d)", i.Length(), i.Start, i.End)
}

// Equal reports whether two intervals have identical bounds.
func (i Interval) Equal(o Interval) bool {
	return i.Start == o.Start && i.End == o.End
}
