package scanner_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomustache/mustache/internal/scanio"
	"github.com/gomustache/mustache/internal/scanner"
)

type part struct {
	typ       scanner.PartType
	text      string
	line, col int
}

func scanAll(t *testing.T, src string, delims scanner.Delimiters) []part {
	t.Helper()
	sc, err := scanner.New(scanio.NewStringReader(src), delims)
	require.NoError(t, err)

	var out []part
	for {
		p, ok, err := sc.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, part{typ: p.Type, text: p.Content.Text(), line: p.Line, col: p.Col})
	}
}

func TestScannerScenario1(t *testing.T) {
	got := scanAll(t, "Hello{{tag1}}\nWorld{{{ tag2 }}}Until eof", scanner.DefaultDelimiters)

	want := []part{
		{scanner.Static, "Hello", 1, 1},
		{scanner.Interpolation, "tag1", 1, 6},
		{scanner.Static, "\nWorld", 1, 14},
		{scanner.Raw, " tag2 ", 2, 6},
		{scanner.Static, "Until eof", 2, 18},
	}
	assert.Equal(t, want, got)
}

func TestScannerCustomDelimiters(t *testing.T) {
	// The scanner does not interpret a delimiters tag itself; its caller
	// switches the pair with SetDelimiters, as the tree builder does.
	sc, err := scanner.New(scanio.NewStringReader("{{=[ ]=}}           \n[interpolation]"), scanner.DefaultDelimiters)
	require.NoError(t, err)

	var got []part
	for {
		p, ok, err := sc.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, part{typ: p.Type, text: p.Content.Text(), line: p.Line, col: p.Col})
		if p.Type == scanner.SetDelimiters {
			require.NoError(t, sc.SetDelimiters(scanner.Delimiters{Start: "[", End: "]"}))
		}
	}

	require.Len(t, got, 3)
	assert.Equal(t, scanner.SetDelimiters, got[0].typ)
	assert.Equal(t, "[ ]=", got[0].text)
	assert.Equal(t, scanner.Static, got[1].typ)
	assert.Equal(t, scanner.Interpolation, got[2].typ)
	assert.Equal(t, "interpolation", got[2].text)
}

func TestScannerIndicatorTypes(t *testing.T) {
	got := scanAll(t, "{{!c}}{{#s}}{{^i}}{{/s}}{{>p}}{{<par}}{{$b}}{{&u}}", scanner.DefaultDelimiters)

	want := []scanner.PartType{
		scanner.Comment,
		scanner.Section,
		scanner.InvertedSection,
		scanner.CloseSection,
		scanner.Partial,
		scanner.Parent,
		scanner.Block,
		scanner.Unescaped,
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].typ, "part %d", i)
	}
}

func TestScannerUnexpectedEOF(t *testing.T) {
	sc, err := scanner.New(scanio.NewStringReader("hello {{tag"), scanner.DefaultDelimiters)
	require.NoError(t, err)

	_, _, err = sc.Next()
	require.NoError(t, err)

	_, ok, err := sc.Next()
	assert.False(t, ok)
	var se *scanner.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "UnexpectedEOF", se.Kind)
}

func TestScannerNoFalseMatchAcrossMismatch(t *testing.T) {
	// "{X{{t}}" must not let the stray leading "{" participate in matching
	// the real starting delimiter; the scanner's matcher resets to zero on
	// any mismatch rather than attempting overlap recovery.
	got := scanAll(t, "{X{{t}}", scanner.DefaultDelimiters)

	require.Len(t, got, 2)
	assert.Equal(t, scanner.Static, got[0].typ)
	assert.Equal(t, "{X", got[0].text)
	assert.Equal(t, scanner.Interpolation, got[1].typ)
	assert.Equal(t, "t", got[1].text)
}

func TestScannerInvalidDelimitersRejected(t *testing.T) {
	_, err := scanner.New(scanio.NewStringReader("x"), scanner.Delimiters{Start: "", End: "}}"})
	require.Error(t, err)
}

func TestScannerSmallBufferFileSource(t *testing.T) {
	src := "Hello {{tag1}} World, " + "this template is longer than the buffer"
	r := scanio.NewFileReader(&constReader{s: src}, 8)
	sc, err := scanner.New(r, scanner.DefaultDelimiters)
	require.NoError(t, err)

	var texts []string
	for {
		p, ok, err := sc.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		texts = append(texts, p.Content.Text())
	}
	assert.Equal(t, []string{"Hello ", "tag1", " World, this template is longer than the buffer"}, texts)
}

// constReader is a tiny io.Reader backing a FileReader with a small buffer
// size, to exercise compaction/readMore.
type constReader struct {
	s string
	i int
}

func (r *constReader) Read(p []byte) (int, error) {
	if r.i >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.i:])
	r.i += n
	return n, nil
}
