package main

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/mudesheng/panprg/panerr"
)

// createGzip opens path+".gz" and returns a writer that gzip-compresses
// everything written to it, matching preprocess.go's layered use of
// klauspost/compress alongside cbrotli elsewhere in this binary
// (klauspost's gzip is used in place of stdlib gzip everywhere the
// teacher reached for compress/gzip).
func createGzip(path string) (io.WriteCloser, error) {
	f, err := os.Create(path + ".gz")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	gw := gzip.NewWriter(f)
	return &closeChain{WriteCloser: gw, next: f}, nil
}

// createZstd opens path+".zst" and returns a zstd-compressed writer,
// used for local-assembly FASTA output per the domain stack's
// compression split (brotli for the minimizer index, gzip for the
// coverage dump, zstd for FASTA output).
func createZstd(path string) (io.WriteCloser, error) {
	f, err := os.Create(path + ".zst")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", panerr.ErrIoError, err)
	}
	return &closeChain{WriteCloser: zw, next: f}, nil
}

// closeChain closes the compressor before the underlying file, so the
// compressed stream is flushed and trailer-terminated before the file
// descriptor goes away.
type closeChain struct {
	io.WriteCloser
	next io.Closer
}

func (c *closeChain) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		c.next.Close()
		return err
	}
	return c.next.Close()
}
