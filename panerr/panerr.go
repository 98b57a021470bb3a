// Package panerr holds the shared error taxonomy used across the
// mapper/genotyper packages. Library code returns one of these,
// wrapped with context via fmt.Errorf("%w: ...", ...); only cmd/panprg
// translates them into process exit codes.
package panerr

import "errors"

var (
	ErrIoError              = errors.New("io error")
	ErrMalformedInput       = errors.New("malformed input")
	ErrMismatchedIndexParams = errors.New("mismatched index parameters")
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrAnchorsNotFound      = errors.New("anchors not found")
	ErrCycleSuspected       = errors.New("cycle suspected")
	ErrUnknownProbModel     = errors.New("unknown probability model")
	ErrNoPathFound          = errors.New("no path found")
)
