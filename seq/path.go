package seq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mudesheng/panprg/panerr"
)

// Path is an ordered sequence of Intervals over a LocalGraph's
// coordinate space. Paths concatenate; two paths are equal iff their
// interval sequences are equal. An empty Path marks a graph terminal
// (the KmerGraph's unique source/sink).
type Path []Interval

// Length is the sum of the interval lengths.
func (p Path) Length() int {
	n := 0
	for _, iv := range p {
		n += iv.Length()
	}
	return n
}

// Equal reports whether two paths have identical interval sequences.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !p[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Concat appends o's intervals after p's, returning a new Path.
func (p Path) Concat(o Path) Path {
	out := make(Path, 0, len(p)+len(o))
	out = append(out, p...)
	out = append(out, o...)
	return out
}

// String renders the path as the GFA sequence field of spec §6: a
// space-separated list of "start:end" intervals. An empty path
// renders as the empty string.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, iv := range p {
		parts[i] = fmt.Sprintf("%d:%d", iv.Start, iv.End)
	}
	return strings.Join(parts, " ")
}

// ParsePath parses the GFA sequence-field dialect produced by String.
// An empty string parses to the empty Path (a graph terminal).
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Path{}, nil
	}
	fields := strings.Fields(s)
	p := make(Path, 0, len(fields))
	for _, f := range fields {
		se := strings.SplitN(f, ":", 2)
		if len(se) != 2 {
			return nil, fmt.Errorf("%w: malformed path interval %q", panerr.ErrMalformedInput, f)
		}
		start, err := strconv.Atoi(se[0])
		if err != nil {
			return nil, fmt.Errorf("%w: malformed path interval %q: %v", panerr.ErrMalformedInput, f, err)
		}
		end, err := strconv.Atoi(se[1])
		if err != nil {
			return nil, fmt.Errorf("%w: malformed path interval %q: %v", panerr.ErrMalformedInput, f, err)
		}
		p = append(p, Interval{Start: start, End: end})
	}
	return p, nil
}

// LooksLikePath reports whether s begins with a digit, the heuristic
// the GFA loader uses to distinguish a serialized Path from a raw
// sequence string in the node's S-line (mirrors the teacher corpus's
// convention of peeking at the first byte before committing to a
// parse).
func LooksLikePath(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}
