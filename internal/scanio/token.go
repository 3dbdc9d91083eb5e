package scanio

// refcount is the counted, owned byte buffer of spec.md §4.5: "{ counter:
// usize, buffer: owned bytes }". It is allocated only by a Reader and
// starts life with count 1. Every Token built against it that outlives a
// single Read call holds its own Retain.
type refcount struct {
	n   int32
	buf []byte
}

func newRefcount(buf []byte) *refcount {
	return &refcount{n: 1, buf: buf}
}

func (r *refcount) retain() {
	if r != nil {
		r.n++
	}
}

// release decrements the counter, dropping the buffer reference once it
// reaches zero. Go has no manual free; dropping the last strong reference
// is the idiomatic analogue of "freeing" — the buffer becomes eligible for
// garbage collection instead of being reused by a pool.
func (r *refcount) release() {
	if r == nil {
		return
	}
	if r.n--; r.n <= 0 {
		r.buf = nil
	}
}

// Token is a handle to a byte range within a Reader-owned buffer. It may be
// an owned string-mode slice or a borrowed file-mode slice; either way,
// Bytes() and Text() are safe to call for as long as the Token (or any copy
// obtained via Retain) has not been Released past zero.
type Token struct {
	ref        *refcount
	start, end int
}

// Bytes returns the token's bytes. The returned slice aliases the
// underlying buffer and must not be retained past the Token's lifetime;
// copy out of it if it needs to outlive a Release.
func (t Token) Bytes() []byte {
	if t.ref == nil {
		return nil
	}
	buf := t.ref.buf
	if t.start < 0 || t.end > len(buf) || t.start > t.end {
		return nil
	}
	return buf[t.start:t.end]
}

// Text copies the token's bytes into a string.
func (t Token) Text() string { return string(t.Bytes()) }

// Len returns the number of bytes spanned by the token.
func (t Token) Len() int { return t.end - t.start }

// Empty reports whether the token spans zero bytes.
func (t Token) Empty() bool { return t.end <= t.start }

// Retain increments the token's underlying buffer reference count and
// returns the same token, for use at assignment sites: `tok = tok.Retain()`.
func (t Token) Retain() Token {
	t.ref.retain()
	return t
}

// Release decrements the token's underlying buffer reference count. The
// last release of a buffer's last outstanding token drops it for GC.
func (t Token) Release() {
	t.ref.release()
}

// Slice returns a sub-token of the receiver; i and j are token-relative
// offsets, mirroring token[i:j]. The returned token shares the same
// refcount handle — callers that retain it independently must Retain it
// themselves.
func (t Token) Slice(i, j int) Token {
	return Token{ref: t.ref, start: t.start + i, end: t.start + j}
}

// TrimLeft drops the first n bytes from the token, returning the
// remainder. Used by the trimmer's standalone-line rule (spec.md §4.3).
func (t Token) TrimLeft(n int) Token {
	return Token{ref: t.ref, start: t.start + n, end: t.end}
}

// TrimRight truncates the token to its first n bytes, returning the
// remainder (from n to the prior end) as a second token sharing the same
// buffer — the indentation tail of spec.md §4.3/§4.4. The caller is
// responsible for Retain-ing the tail if it outlives the head.
func (t Token) TrimRight(n int) (head, tail Token) {
	head = Token{ref: t.ref, start: t.start, end: t.start + n}
	tail = Token{ref: t.ref, start: t.start + n, end: t.end}
	return head, tail
}
