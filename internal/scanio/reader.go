package scanio

import "io"

// DefaultBufSize is the suggested read buffer size of spec.md §4.1.
const DefaultBufSize = 4096

// Reader produces successive buffers of template source bytes, per
// spec.md §4.1. Read allocates a fresh buffer whose prefix is a copy of
// prepend (bytes the scanner has not yet consumed from the previous
// buffer), fills the remainder from the underlying source, and wraps the
// result in a new reference-counted handle.
type Reader interface {
	Read(prepend []byte) (Buffer, error)
}

// Buffer is a single Read result: the filled byte slice, whether the
// source is now exhausted, and the refcounted handle backing the slice.
type Buffer struct {
	Bytes []byte
	EOF   bool
	ref   *refcount
}

// Token returns a handle to buf[start:end], sharing the buffer's refcount.
func (b Buffer) Token(start, end int) Token {
	return Token{ref: b.ref, start: start, end: end}
}

// StringReader presents an entire in-memory template in a single Read,
// with EOF immediately true, per spec.md §4.1 "When source = string, the
// whole template is presented once and eof is immediately true."
type StringReader struct {
	s    string
	done bool
}

// NewStringReader returns a Reader over a complete in-memory template.
func NewStringReader(s string) *StringReader {
	return &StringReader{s: s}
}

// Read implements Reader.
func (r *StringReader) Read(prepend []byte) (Buffer, error) {
	if r.done {
		return Buffer{EOF: true}, nil
	}
	r.done = true
	buf := make([]byte, 0, len(prepend)+len(r.s))
	buf = append(buf, prepend...)
	buf = append(buf, r.s...)
	return Buffer{Bytes: buf, EOF: true, ref: newRefcount(buf)}, nil
}

// FileReader pulls bounded-size buffers from an underlying io.Reader,
// realizing spec.md §4.1's bounded-buffer reader contract. It does not
// open files itself — file-system open is explicitly out of scope
// (spec.md §1) and is the caller's concern; FileReader only wraps
// whatever io.Reader the caller hands it.
type FileReader struct {
	src     io.Reader
	bufSize int
	eof     bool
}

// NewFileReader wraps src, reading in chunks of at most bufSize bytes
// (DefaultBufSize if bufSize <= 0).
func NewFileReader(src io.Reader, bufSize int) *FileReader {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}
	return &FileReader{src: src, bufSize: bufSize}
}

// Read implements Reader. A short read, or a read returning io.EOF,
// signals EOF on the returned Buffer; the buffer is shrunk to the actual
// number of bytes filled. When prepend alone would fill bufSize bytes, the
// buffer grows to len(prepend)+bufSize so that each Read still makes room
// for fresh source bytes.
func (r *FileReader) Read(prepend []byte) (Buffer, error) {
	if r.eof && len(prepend) == 0 {
		return Buffer{EOF: true}, nil
	}

	size := r.bufSize
	if size <= len(prepend) {
		size = len(prepend) + r.bufSize
	}
	buf := make([]byte, size)
	total := copy(buf, prepend)

	for total < len(buf) && !r.eof {
		n, err := r.src.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				r.eof = true
				break
			}
			return Buffer{}, &ReadError{Kind: ErrIO, Err: err}
		}
		if n == 0 {
			r.eof = true
			break
		}
	}

	buf = buf[:total]
	return Buffer{Bytes: buf, EOF: r.eof, ref: newRefcount(buf)}, nil
}
