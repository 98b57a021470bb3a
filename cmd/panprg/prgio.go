package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/panerr"
)

// readPRGs parses a PRG text file: FASTA-shaped records (">name" then
// one or more text lines) whose body is the bracketed PRG text of
// spec §4.1 rather than a nucleotide alphabet, so it is read with a
// plain line scanner instead of biogo's FASTA reader.
func readPRGs(path string) ([]*localgraph.LocalPRG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	var prgs []*localgraph.LocalPRG
	var name string
	var body strings.Builder
	id := 0

	flush := func() error {
		if name == "" {
			return nil
		}
		lp, err := localgraph.ParsePRG(id, name, []byte(body.String()))
		if err != nil {
			return err
		}
		prgs = append(prgs, lp)
		id++
		body.Reset()
		return nil
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			name = strings.TrimSpace(line[1:])
			continue
		}
		body.WriteString(strings.TrimSpace(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return prgs, nil
}

// read is one parsed FASTA record: its header name and raw sequence.
type read struct {
	ID  string
	Seq []byte
}

// readReads parses a nucleotide FASTA file of sequencing reads,
// matching mapDBG.go's biogo-backed ingestion pattern.
func readReads(path string) ([]read, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	fr := fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNA))
	var out []read
	for {
		s, err := fr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", panerr.ErrMalformedInput, err)
		}
		l := s.(*linear.Seq)
		b := make([]byte, len(l.Seq))
		for i, v := range l.Seq {
			b[i] = byte(v)
		}
		out = append(out, read{ID: l.Name(), Seq: b})
	}
	return out, nil
}
