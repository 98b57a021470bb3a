package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/mudesheng/panprg/panerr"
)

// readReadsAny dispatches to the BAM or FASTA reader by file
// extension, the read-ingestion collaborator spec §1 leaves external
// (reads may arrive already aligned to some reference, or as raw
// FASTA).
func readReadsAny(path string) ([]read, error) {
	if strings.HasSuffix(path, ".bam") {
		return readReadsBAM(path)
	}
	return readReads(path)
}

// readReadsBAM decodes a BAM file's mapped records into reads,
// matching deconstructdbg/bam.go's GetSamRecord pattern (skip
// unmapped records) but returning sequences in-process rather than
// over a channel, since the caller here wants a single slice.
func readReadsBAM(path string) ([]read, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	br, err := bam.NewReader(f, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer br.Close()

	var out []read
	for {
		r, err := br.Read()
		if err != nil {
			break
		}
		if r.Flags&sam.Unmapped != 0 {
			continue
		}
		expanded := r.Seq.Expand()
		seq := make([]byte, len(expanded))
		copy(seq, expanded)
		out = append(out, read{ID: r.Name, Seq: seq})
	}
	return out, nil
}
