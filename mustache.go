// Package mustache parses the Mustache templating language into a tree of
// rendering instructions. It does not render templates: downstream
// renderers consume the Node tree this package produces.
package mustache

import (
	"io"

	"github.com/gomustache/mustache/internal/scanio"
	"github.com/gomustache/mustache/internal/scanner"
)

// Parser drives a Scanner and builder over a single template source,
// producing batches of Node. Construct one with NewParser, or use the
// Parse/ParseFile convenience functions for the common cached-tree case.
type Parser struct {
	b       *builder
	lastErr *Error
	done    bool
}

// NewParser constructs a Parser reading from r with the given Config.
func NewParser(r scanio.Reader, cfg Config) (*Parser, error) {
	sc, err := scanner.New(r, cfg.delimiters())
	if err != nil {
		return nil, scannerErr(err)
	}
	return &Parser{b: newBuilder(sc, cfg)}, nil
}

// Next returns the next batch of nodes. In cached mode (the default) it
// returns the whole tree in a single batch and nil thereafter. In streamed
// mode (Config.Streamed) it returns one flushed batch at a time as root-
// level static text proves a safe boundary, per spec.md §4.4/§4.5.
//
// A nil, nil result means parsing finished successfully with nothing left
// to flush. A non-nil error aborts the parse; the same error is available
// afterward from LastError.
func (p *Parser) Next() ([]Node, error) {
	if p.done {
		return nil, nil
	}
	for {
		flush, done, err := p.b.step()
		if err != nil {
			p.done = true
			p.lastErr = asError(err)
			return nil, p.lastErr
		}
		if flush {
			return p.b.flushBoundary(), nil
		}
		if done {
			p.done = true
			return p.b.takeBatch(), nil
		}
	}
}

// LastError returns the error that aborted the most recent parse, or nil.
func (p *Parser) LastError() *Error { return p.lastErr }

func asError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: IOError, Err: err}
}

// Parse parses a template held entirely in memory and returns its full node
// tree. Equivalent to NewParser with a scanio.StringReader in cached mode.
func Parse(src string, cfg Config) ([]Node, error) {
	cfg.Streamed = false
	p, err := NewParser(scanio.NewStringReader(src), cfg)
	if err != nil {
		return nil, err
	}
	return drain(p)
}

// ParseFile parses a template streamed from r and returns its full node
// tree. Equivalent to NewParser with a scanio.FileReader in cached mode.
func ParseFile(r io.Reader, cfg Config) ([]Node, error) {
	cfg.Streamed = false
	bufSize := cfg.BufSize
	if bufSize <= 0 {
		bufSize = scanio.DefaultBufSize
	}
	p, err := NewParser(scanio.NewFileReader(r, bufSize), cfg)
	if err != nil {
		return nil, err
	}
	return drain(p)
}

func drain(p *Parser) ([]Node, error) {
	var nodes []Node
	for {
		batch, err := p.Next()
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nodes, nil
		}
		nodes = append(nodes, batch...)
	}
}
