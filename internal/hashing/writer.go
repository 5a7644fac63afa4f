// Package hashing provides writers that digest data as it passes through.
package hashing

import (
	"hash"
	"io"
)

// Writer feeds everything written to it into a hash before passing it on to
// the wrapped writer.
type Writer struct {
	w io.Writer
	h hash.Hash
}

// NewWriter returns a Writer hashing into h while writing to w.
func NewWriter(w io.Writer, h hash.Hash) *Writer {
	return &Writer{w: w, h: h}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.h.Write(p[:n])
	return n, err
}

// Sum returns the digest of the data written so far, appended to d.
func (w *Writer) Sum(d []byte) []byte {
	return w.h.Sum(d)
}
