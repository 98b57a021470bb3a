// Package minimizer implements the global minimizer index of spec
// §4.2: a build-once, read-many map from canonical k-mer hash to every
// locus that carries it, persisted in a magic+(w,k)-prefixed binary
// format. It keeps the build-once/read-many lifecycle of
// cuckoofilter.CuckooFilter but backs it with a plain Go map rather
// than a fixed-size fingerprint table, since the index must hold an
// unbounded number of records per hash rather than a bounded count.
package minimizer

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/brotli/go/cbrotli"

	"github.com/mudesheng/panprg/localgraph"
	"github.com/mudesheng/panprg/panerr"
	"github.com/mudesheng/panprg/seq"
)

// MiniRecord is one occurrence of a minimizer hash: the PRG locus it
// came from, its path through that locus, and the strand it was
// observed on.
type MiniRecord struct {
	PRGID    int
	KmerPath seq.Path
	Strand   seq.Strand
}

// Index is the global (hash -> occurrences) map, plus the (w,k) it
// was built with. Save/Load round-trip it through the binary format
// of spec §6; mismatched (w,k) on Load is a hard error, since a
// minimizer index is meaningless against a different window/k-mer
// size than the one it was built with.
type Index struct {
	W, K int
	recs map[uint64][]MiniRecord
}

const indexMagic uint32 = 0x50524749 // "PRGI"

// Build sketches every LocalPRG with the given (w,k) and inserts the
// resulting minimizer occurrences into a fresh Index.
func Build(prgs []*localgraph.LocalPRG, w, k int) *Index {
	idx := &Index{W: w, K: k, recs: make(map[uint64][]MiniRecord)}
	for _, lp := range prgs {
		_, records := lp.Sketch(w, k)
		for _, r := range records {
			idx.insert(r.Hash, MiniRecord{
				PRGID:    lp.ID,
				KmerPath: r.KmerPath,
				Strand:   r.Strand,
			})
		}
	}
	return idx
}

// insert appends rec to the occurrence list for hash unless an equal
// (PRGID, KmerPath, Strand) occurrence is already recorded, enforcing
// the index's uniqueness contract (spec §4.2) independently of
// whatever dedup the sketching pass that produced rec already did.
func (idx *Index) insert(hash uint64, rec MiniRecord) {
	for _, o := range idx.recs[hash] {
		if o.PRGID == rec.PRGID && o.Strand == rec.Strand && o.KmerPath.Equal(rec.KmerPath) {
			return
		}
	}
	idx.recs[hash] = append(idx.recs[hash], rec)
}

// Lookup returns every recorded occurrence of a canonical k-mer hash,
// or nil if the hash was never observed while building the index.
func (idx *Index) Lookup(hash uint64) []MiniRecord {
	return idx.recs[hash]
}

// Len reports the number of distinct minimizer hashes in the index.
func (idx *Index) Len() int {
	return len(idx.recs)
}

// Save persists the index to path as magic, w, k, record-count,
// followed by (hash, occurrence-count, occurrences...) tuples,
// brotli-compressed the way cuckoofilter.Store wraps its mmap'd
// filter bytes before writing them out.
func (idx *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	cw := cbrotli.NewWriter(f, cbrotli.WriterOptions{Quality: 6})
	defer cw.Close()

	bw := bufio.NewWriter(cw)
	if err := writeUint32(bw, indexMagic); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(idx.W)); err != nil {
		return err
	}
	if err := writeUint32(bw, uint32(idx.K)); err != nil {
		return err
	}
	if err := writeUint64(bw, uint64(len(idx.recs))); err != nil {
		return err
	}
	for hash, occs := range idx.recs {
		if err := writeUint64(bw, hash); err != nil {
			return err
		}
		if err := writeUint32(bw, uint32(len(occs))); err != nil {
			return err
		}
		for _, o := range occs {
			if err := writeOccurrence(bw, o); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return nil
}

// Load reads an index previously written by Save, verifying that it
// was built with the same (w,k) the caller intends to query it with.
func Load(path string, w, k int) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	defer f.Close()

	cr := cbrotli.NewReader(f)
	defer cr.Close()
	br := bufio.NewReader(cr)

	magic, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	if magic != indexMagic {
		return nil, fmt.Errorf("%w: not a minimizer index file", panerr.ErrMalformedInput)
	}
	fileW, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	fileK, err := readUint32(br)
	if err != nil {
		return nil, err
	}
	if int(fileW) != w || int(fileK) != k {
		return nil, fmt.Errorf("%w: index built with w=%d k=%d, requested w=%d k=%d",
			panerr.ErrMismatchedIndexParams, fileW, fileK, w, k)
	}

	n, err := readUint64(br)
	if err != nil {
		return nil, err
	}

	idx := &Index{W: w, K: k, recs: make(map[uint64][]MiniRecord, n)}
	for i := uint64(0); i < n; i++ {
		hash, err := readUint64(br)
		if err != nil {
			return nil, err
		}
		count, err := readUint32(br)
		if err != nil {
			return nil, err
		}
		occs := make([]MiniRecord, count)
		for j := range occs {
			o, err := readOccurrence(br)
			if err != nil {
				return nil, err
			}
			occs[j] = o
		}
		idx.recs[hash] = occs
	}
	return idx, nil
}

func writeOccurrence(w io.Writer, o MiniRecord) error {
	if err := writeUint32(w, uint32(o.PRGID)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(o.Strand)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(o.KmerPath))); err != nil {
		return err
	}
	for _, iv := range o.KmerPath {
		if err := writeUint32(w, uint32(iv.Start)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(iv.End)); err != nil {
			return err
		}
	}
	return nil
}

func readOccurrence(r io.Reader) (MiniRecord, error) {
	prgID, err := readUint32(r)
	if err != nil {
		return MiniRecord{}, err
	}
	strand, err := readUint32(r)
	if err != nil {
		return MiniRecord{}, err
	}
	n, err := readUint32(r)
	if err != nil {
		return MiniRecord{}, err
	}
	path := make(seq.Path, n)
	for i := range path {
		start, err := readUint32(r)
		if err != nil {
			return MiniRecord{}, err
		}
		end, err := readUint32(r)
		if err != nil {
			return MiniRecord{}, err
		}
		path[i] = seq.Interval{Start: int(start), End: int(end)}
	}
	return MiniRecord{PRGID: int(prgID), KmerPath: path, Strand: seq.Strand(strand)}, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	if err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	if err != nil {
		return fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
