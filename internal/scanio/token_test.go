package scanio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomustache/mustache/internal/scanio"
)

func TestTokenBytesAndSlice(t *testing.T) {
	r := scanio.NewStringReader("Hello, World!")
	buf, err := r.Read(nil)
	require.NoError(t, err)

	tok := buf.Token(0, 13)
	assert.Equal(t, "Hello, World!", tok.Text())

	sub := tok.Slice(7, 12)
	assert.Equal(t, "World", sub.Text())
	assert.Equal(t, 5, sub.Len())
	assert.False(t, sub.Empty())
}

func TestTokenTrimLeftRight(t *testing.T) {
	r := scanio.NewStringReader("  \nindented\n")
	buf, err := r.Read(nil)
	require.NoError(t, err)

	tok := buf.Token(0, len(buf.Bytes))
	trimmed := tok.TrimLeft(3)
	assert.Equal(t, "indented\n", trimmed.Text())

	head, tail := trimmed.TrimRight(8)
	assert.Equal(t, "indented", head.Text())
	assert.Equal(t, "\n", tail.Text())
}

func TestTokenRetainReleaseKeepsBufferAliveAcrossReaderAdvance(t *testing.T) {
	src := bytes.NewReader([]byte("ABCDEFGH"))
	r := scanio.NewFileReader(src, 4)

	buf1, err := r.Read(nil)
	require.NoError(t, err)
	held := buf1.Token(0, 4).Retain() // simulate an emitted node borrowing buf1

	buf2, err := r.Read(nil)
	require.NoError(t, err)
	assert.Equal(t, "EFGH", string(buf2.Bytes))

	// buf1's bytes remain readable through the retained token even though
	// the reader has moved on to buf2.
	assert.Equal(t, "ABCD", held.Text())
	held.Release()
}
