// Package scanner implements the streaming text scanner and its
// companion whitespace trimmer (spec.md §4.2, §4.3): a byte-at-a-time
// tokenizer that splits a Mustache template into coarse static-text and
// tag-body parts, tracking source position and requesting more buffer
// from a scanio.Reader as the look-ahead window approaches the buffer
// tail.
package scanner

import (
	"fmt"

	"github.com/gomustache/mustache/internal/scanio"
)

// state is the scanner's small operation-state machine of spec.md §4.2.
type state int

const (
	stateMatchOpen state = iota
	stateMatchClose
	stateProduceOpen
	stateProduceClose
	stateEOS
)

// Error is a scanner-detected syntactic failure: an invalid (empty)
// delimiter pair or an unterminated tag at end of input.
type Error struct {
	Kind string // "InvalidDelimiters" | "UnexpectedEOF"
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("scanner: %s at %d:%d", e.Kind, e.Line, e.Col)
}

// Scanner is the streaming text scanner of spec.md §4.2.
type Scanner struct {
	reader  scanio.Reader
	delims  Delimiters
	maxSize int

	buf     scanio.Buffer
	content []byte
	bufEOF  bool

	index            int // current scan position
	blockIndex       int // start of the pending static-text part
	lastStartingMark int // start of the most recently matched starting delimiter
	tagBodyStart     int // start of the current tag's body (after any indicator byte)

	line, col int

	blockLine, blockCol int // source position where blockIndex's span began
	tagLine, tagCol     int // source position of the tag currently being matched

	st       state
	matchI   int
	partType PartType

	trim trimmer

	pins []*int // caller-owned indices (e.g. bookmark text positions) rebased on compaction
}

// New constructs a Scanner reading from r with the given initial
// delimiters. It performs the first buffer fill eagerly so that Next can
// be called immediately.
func New(r scanio.Reader, delims Delimiters) (*Scanner, error) {
	if !delims.Valid() {
		return nil, &Error{Kind: "InvalidDelimiters", Line: 1, Col: 1}
	}
	s := &Scanner{
		reader:    r,
		line:      1,
		col:       1,
		blockLine: 1,
		blockCol:  1,
	}
	if err := s.SetDelimiters(delims); err != nil {
		return nil, err
	}
	if err := s.fill(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetDelimiters updates the scanner's delimiter pair and recomputes
// delimiter_max_size, per spec.md §4.2 "Delimiter changes mid-stream".
// Rejects empty strings with an InvalidDelimiters error.
func (s *Scanner) SetDelimiters(d Delimiters) error {
	if !d.Valid() {
		return &Error{Kind: "InvalidDelimiters", Line: s.line, Col: s.col}
	}
	s.delims = d
	s.maxSize = d.MaxSize()
	return nil
}

// Delimiters returns the scanner's current delimiter pair.
func (s *Scanner) Delimiters() Delimiters { return s.delims }

// Pin registers idx to be rebased whenever the scanner compacts its
// buffer, per spec.md §4.2 step 1's bookmark lower bound. Callers (the
// tree builder's open bookmarks) must Unpin once the pinned value is no
// longer needed.
func (s *Scanner) Pin(idx *int) { s.pins = append(s.pins, idx) }

// Unpin removes a previously Pinned index.
func (s *Scanner) Unpin(idx *int) {
	for i, p := range s.pins {
		if p == idx {
			s.pins = append(s.pins[:i], s.pins[i+1:]...)
			return
		}
	}
}

// Pos returns the scanner's current line/column, for callers reporting an
// error detected once the scanner itself has nothing left to report (e.g.
// the tree builder's UnexpectedEOF on an unclosed section).
func (s *Scanner) Pos() (line, col int) { return s.line, s.col }

// LastStartingMark exposes the position where the most recently matched
// starting delimiter began. Used by the tree builder to compute a
// section's inner-text span when its closing tag is reached: that close
// tag's own opening delimiter marks the exclusive end of the inner text
// that preceded it.
func (s *Scanner) LastStartingMark() int { return s.lastStartingMark }

// BlockIndex exposes the scanner's current pending-text-part start index:
// the position immediately after the most recently fully-consumed tag
// (or the start of the stream, if none yet). Used by the tree builder to
// open a lambda inner-text bookmark at "the current scanner index" per
// spec.md §4.4, i.e. right where a section/inverted-section/parent/block
// tag's inner content begins.
func (s *Scanner) BlockIndex() int { return s.blockIndex }

func (s *Scanner) advancePos(c byte) {
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

// fill ensures the current buffer is loaded, reading the first buffer
// from the reader if none has been read yet.
func (s *Scanner) fill() error {
	if s.content != nil || s.bufEOF {
		return nil
	}
	return s.readMore()
}

// ensureLookahead implements spec.md §4.2 step 1: requests more bytes
// when the look-ahead window approaches the buffer tail, compacting the
// still-needed prefix forward and rebasing all live indices.
func (s *Scanner) ensureLookahead() error {
	for !s.bufEOF && s.index+s.maxSize+1 >= len(s.content) {
		if err := s.readMore(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) readMore() error {
	preserve := s.blockIndex
	if s.lastStartingMark < preserve {
		preserve = s.lastStartingMark
	}
	for _, p := range s.pins {
		if *p < preserve {
			preserve = *p
		}
	}
	if preserve < 0 {
		preserve = 0
	}

	var prepend []byte
	if s.content != nil {
		prepend = s.content[preserve:]
	}

	buf, err := s.reader.Read(prepend)
	if err != nil {
		return err
	}
	s.buf = buf
	s.content = buf.Bytes
	s.bufEOF = buf.EOF

	off := preserve
	s.index -= off
	s.blockIndex -= off
	s.lastStartingMark -= off
	s.tagBodyStart -= off
	for _, p := range s.pins {
		*p -= off
	}
	return nil
}

func (s *Scanner) token(start, end int) scanio.Token {
	return s.buf.Token(start, end)
}

// TokenRange builds a Token spanning [start,end) of the scanner's current
// buffer. Used by the tree builder to capture a section's inner-text span
// between its open bookmark and LastStartingMark at close time.
func (s *Scanner) TokenRange(start, end int) scanio.Token {
	return s.token(start, end)
}

// Next scans and returns the next Part, or ok=false once the scanner has
// reached end of stream. Per spec.md §4.2, each call returns zero or one
// Part: states that emit nothing (an empty static-text span, an in-flight
// delimiter match) silently continue the internal loop instead of
// returning.
func (s *Scanner) Next() (Part, bool, error) {
	if s.st == stateEOS {
		return Part{}, false, nil
	}

	for {
		if err := s.ensureLookahead(); err != nil {
			return Part{}, false, err
		}

		if s.index >= len(s.content) && s.bufEOF && s.st != stateProduceClose {
			return s.finish()
		}

		switch s.st {
		case stateMatchOpen:
			c := s.content[s.index]
			if c == s.delims.Start[s.matchI] {
				if s.matchI == 0 {
					s.tagLine, s.tagCol = s.line, s.col
				}
				s.matchI++
				s.advancePos(c)
				s.index++
				if s.matchI == len(s.delims.Start) {
					// lastStartingMark marks where this delimiter match
					// began, not where it ended: it is both the exclusive
					// end of the preceding static-text span (produceOpen,
					// just below) and, when a tag dispatched much later
					// reads it back via LastStartingMark, the exclusive
					// end of whatever inner text preceded that tag's own
					// opening delimiter (spec.md §4.4's bookmark close).
					s.lastStartingMark = s.index - len(s.delims.Start)
					s.matchI = 0
					s.st = stateProduceOpen
				}
				continue
			}
			s.matchI = 0
			s.trim.Feed(s.index-s.blockIndex, c)
			s.advancePos(c)
			s.index++
			continue

		case stateProduceOpen:
			partType := Interpolation
			if s.index < len(s.content) {
				if pt, ok := indicatorTypes[s.content[s.index]]; ok {
					partType = pt
					s.advancePos(s.content[s.index])
					s.index++
				}
			}
			s.partType = partType
			s.tagBodyStart = s.index
			s.st = stateMatchClose
			s.matchI = 0

			if s.blockIndex < s.lastStartingMark {
				left, right := s.trim.Result()
				s.trim.reset()
				part := Part{
					Type:    Static,
					Content: s.token(s.blockIndex, s.lastStartingMark),
					Line:    s.blockLine,
					Col:     s.blockCol,
					Left:    left,
					Right:   right,
				}
				s.blockIndex = s.lastStartingMark
				s.blockLine, s.blockCol = s.line, s.col
				return part, true, nil
			}
			s.trim.reset()
			continue

		case stateMatchClose:
			c := s.content[s.index]
			if c == s.delims.End[s.matchI] {
				s.matchI++
				s.advancePos(c)
				s.index++
				if s.matchI == len(s.delims.End) {
					s.matchI = 0
					s.st = stateProduceClose
				}
				continue
			}
			s.matchI = 0
			s.advancePos(c)
			s.index++
			continue

		case stateProduceClose:
			bodyEnd := s.index - len(s.delims.End)
			if s.partType == Raw {
				if s.index < len(s.content) && s.content[s.index] == '}' {
					s.advancePos('}')
					s.index++
				}
			}
			part := Part{
				Type:    s.partType,
				Content: s.token(s.tagBodyStart, bodyEnd),
				Line:    s.tagLine,
				Col:     s.tagCol,
			}
			s.blockIndex = s.index
			s.blockLine, s.blockCol = s.line, s.col
			s.st = stateMatchOpen
			return part, true, nil
		}
	}
}

func (s *Scanner) finish() (Part, bool, error) {
	if s.st == stateMatchClose || s.st == stateProduceClose {
		return Part{}, false, &Error{Kind: "UnexpectedEOF", Line: s.line, Col: s.col}
	}
	s.st = stateEOS
	if s.blockIndex < s.index {
		left, _ := s.trim.Result()
		s.trim.reset()
		// No tag follows the trailing static text, so its end cannot be
		// part of a standalone line.
		right := TrimState{Kind: Preserve}
		part := Part{
			Type:    Static,
			Content: s.token(s.blockIndex, s.index),
			Line:    s.blockLine,
			Col:     s.blockCol,
			Left:    left,
			Right:   right,
		}
		s.blockIndex = s.index
		return part, true, nil
	}
	return Part{}, false, nil
}
