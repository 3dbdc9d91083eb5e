package mustache

import (
	"bytes"

	"github.com/gomustache/mustache/internal/scanio"
	"github.com/gomustache/mustache/internal/scanner"
)

// level is one frame of the builder's level stack, per spec.md §4.4: each
// frame records the delimiters in force within it (restored on close) and
// the arena index of the node that opened it. The root frame has
// openIndex -1.
type level struct {
	delims    Delimiters
	openIndex int
}

// bookmarkFrame is spec.md §3's Bookmark, opened when a section-like tag
// begins and closed when its matching close tag is reached, used only when
// lambda inner-text capture is enabled. spec.md §3 also names a
// prev_node_index field, but nothing in this builder ever needs to walk a
// bookmark back to the node that opened it (closeSection already has that
// node via the level stack's openIndex), so it is not carried here.
type bookmarkFrame struct {
	textIndex int
}

// builder is the tree builder of spec.md §4.4: it classifies scanned Parts,
// maintains the level stack, resolves standalone trimming and delimiter
// changes, and assembles the node arena.
type builder struct {
	sc  *scanner.Scanner
	cfg Config

	nodes []Node
	levels []level
	bookmarks []*bookmarkFrame

	lastStaticIdx int

	flushed int // count of nodes already handed to the caller in streamed mode
}

func newBuilder(sc *scanner.Scanner, cfg Config) *builder {
	return &builder{
		sc:            sc,
		cfg:           cfg,
		levels:        []level{{delims: cfg.delimiters(), openIndex: -1}},
		lastStaticIdx: -1,
	}
}

// step consumes one scanner Part and reports whether the accumulated batch
// should be flushed now (streamed mode, root level, a just-resolved
// non-preserve static-text left trim) and whether the template is now
// fully parsed.
func (b *builder) step() (flush, done bool, err error) {
	part, ok, err := b.sc.Next()
	if err != nil {
		return false, true, scannerErr(err)
	}
	if !ok {
		return false, true, b.finish()
	}
	flush, err = b.dispatch(part)
	return flush, false, err
}

// dispatch classifies one Part and returns true if the batch built so far
// (in streamed mode) should be flushed now.
func (b *builder) dispatch(part scanner.Part) (bool, error) {
	switch part.Type {
	case scanner.Static:
		return b.appendStatic(part)

	case scanner.Comment:
		b.append(Node{Type: Comment, Content: part.Content, Line: part.Line, Col: part.Col})
		return false, nil

	case scanner.SetDelimiters:
		d, err := b.parseDelimiters(part)
		if err != nil {
			return false, err
		}
		if err := b.sc.SetDelimiters(d); err != nil {
			return false, scannerErr(err)
		}
		b.levels[len(b.levels)-1].delims = d
		b.append(Node{Type: SetDelimiters, Content: part.Content, Delimiters: d, Line: part.Line, Col: part.Col})
		return false, nil

	case scanner.Section, scanner.InvertedSection, scanner.Parent, scanner.Block:
		id, err := b.identifier(part)
		if err != nil {
			return false, err
		}
		idx := b.append(Node{Type: part.Type, Identifier: id, Content: part.Content, Line: part.Line, Col: part.Col})
		b.levels = append(b.levels, level{delims: b.sc.Delimiters(), openIndex: idx + b.flushed})
		b.openBookmark()
		return false, nil

	case scanner.CloseSection:
		return false, b.closeSection(part)

	case scanner.Interpolation, scanner.Unescaped, scanner.Raw, scanner.Partial:
		id, err := b.identifier(part)
		if err != nil {
			return false, err
		}
		b.append(Node{Type: part.Type, Identifier: id, Content: part.Content, Line: part.Line, Col: part.Col})
		return false, nil

	default:
		return false, nil
	}
}

// append adds n to the arena, recording n's own index, and returns that
// index. It silently drops static text that is a direct child of a parent
// tag collecting block overrides, per spec.md §4.4.
func (b *builder) append(n Node) int {
	if n.Type == Static && b.insideParentOverrides() {
		return -1
	}
	n.Index = len(b.nodes) + b.flushed
	n.IsStandAlone = n.Type.CanStandAlone()
	n.Content = n.Content.Retain()
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

func (b *builder) insideParentOverrides() bool {
	top := b.levels[len(b.levels)-1]
	if top.openIndex < 0 {
		return false
	}
	if i := top.openIndex - b.flushed; i >= 0 && i < len(b.nodes) {
		return b.nodes[i].Type == Parent
	}
	return false
}

func (b *builder) appendStatic(part scanner.Part) (bool, error) {
	idx := b.append(Node{
		Type:    Static,
		Content: part.Content,
		Left:    part.Left,
		Right:   part.Right,
		Line:    part.Line,
		Col:     part.Col,
	})
	if idx < 0 {
		return false, nil
	}
	b.lastStaticIdx = idx
	if !b.cfg.DisableStandaloneTrim {
		b.trimStandAlone(idx)
	}
	flush := b.cfg.Streamed && len(b.levels) == 1 && b.nodes[idx].Left.Kind != Preserve
	return flush, nil
}

// canTrimLeft walks backward from i through standalone-eligible tag nodes
// looking for the static-text predecessor that decides whether the caller's
// left-trim is permitted, per spec.md §4.4's trimStandAlone. When it finds
// and trims that predecessor, any indentation tail produced is attached
// directly to the node immediately following it.
func (b *builder) canTrimLeft(i int) bool {
	for i >= 0 {
		n := &b.nodes[i]
		if n.Type == Static {
			switch n.Right.Kind {
			case Trimmed:
				return true
			case Allow:
				head, tail := n.Content.TrimRight(n.Right.Index)
				n.Content = head
				n.Right = TrimState{Kind: Trimmed}
				if !tail.Empty() && i+1 < len(b.nodes) {
					b.nodes[i+1].Indentation = tail.Retain()
					b.nodes[i+1].HasIndentation = true
				}
				return true
			default:
				return false
			}
		}
		if n.Type.CanStandAlone() {
			i--
			continue
		}
		return false
	}
	return true
}

func (b *builder) trimStandAlone(idx int) {
	n := &b.nodes[idx]
	if n.Left.Kind != Allow {
		return
	}
	if b.canTrimLeft(idx - 1) {
		drop := n.Left.Index + 1
		n.Content = n.Content.TrimLeft(drop)
		if n.Right.Kind == Allow {
			n.Right.Index -= drop
		}
		n.Left = TrimState{Kind: Trimmed}
	} else {
		n.Left = TrimState{Kind: Preserve}
	}
}

// trimLast applies spec.md §4.4's end-of-input pass: the last-introduced
// static-text node's trailing whitespace may still be dropped if every node
// emitted after it is a standalone-eligible tag with nothing left to look
// back from it.
func (b *builder) trimLast() {
	if b.lastStaticIdx < 0 || b.cfg.DisableStandaloneTrim {
		return
	}
	for i := b.lastStaticIdx + 1; i < len(b.nodes); i++ {
		if !b.nodes[i].Type.CanStandAlone() {
			return
		}
	}
	n := &b.nodes[b.lastStaticIdx]
	if n.Right.Kind == Allow {
		// The indentation tail has no following sibling to attach to at
		// end-of-input; it was never Retained (see canTrimLeft), so it is
		// simply discarded here rather than Released.
		head, _ := n.Content.TrimRight(n.Right.Index)
		n.Content = head
		n.Right = TrimState{Kind: Trimmed}
	}
}

func (b *builder) openBookmark() {
	if !b.cfg.WithLambdas {
		return
	}
	frame := &bookmarkFrame{textIndex: b.sc.BlockIndex()}
	b.bookmarks = append(b.bookmarks, frame)
	b.sc.Pin(&frame.textIndex)
}

func (b *builder) closeSection(part scanner.Part) error {
	if len(b.levels) == 1 {
		return &Error{Kind: UnexpectedCloseSection, Line: part.Line, Col: part.Col}
	}
	id, err := b.identifier(part)
	if err != nil {
		return err
	}
	top := b.levels[len(b.levels)-1]
	opener := &b.nodes[top.openIndex-b.flushed]
	if opener.Identifier != id {
		return &Error{Kind: ClosingTagMismatch, Line: part.Line, Col: part.Col, Detail: opener.Identifier}
	}
	opener.ChildrenCount = len(b.nodes) + b.flushed - top.openIndex - 1

	if b.cfg.WithLambdas {
		frame := b.bookmarks[len(b.bookmarks)-1]
		b.bookmarks = b.bookmarks[:len(b.bookmarks)-1]
		b.sc.Unpin(&frame.textIndex)
		inner := b.sc.TokenRange(frame.textIndex, b.sc.LastStartingMark())
		opener.InnerText = inner.Retain()
		opener.HasInnerText = true
	}

	b.levels = b.levels[:len(b.levels)-1]
	if err := b.sc.SetDelimiters(b.levels[len(b.levels)-1].delims); err != nil {
		return scannerErr(err)
	}
	return nil
}

func (b *builder) finish() error {
	if len(b.levels) > 1 {
		line, col := b.sc.Pos()
		return &Error{Kind: UnexpectedEOF, Line: line, Col: col}
	}
	b.trimLast()
	return nil
}

// identifier extracts the single whitespace-delimited token naming a tag,
// per spec.md §4.4: exactly one field is required, anything else is
// InvalidIdentifier.
func (b *builder) identifier(part scanner.Part) (string, error) {
	fields := splitFields(part.Content.Bytes())
	if len(fields) != 1 {
		return "", &Error{Kind: InvalidIdentifier, Line: part.Line, Col: part.Col}
	}
	return string(fields[0]), nil
}

// parseDelimiters parses a delimiters tag body: two whitespace-separated
// tokens, the body must end with '=', per spec.md §4.4.
func (b *builder) parseDelimiters(part scanner.Part) (scanner.Delimiters, error) {
	raw := part.Content.Bytes()
	if len(raw) == 0 || raw[len(raw)-1] != '=' {
		return scanner.Delimiters{}, &Error{Kind: InvalidDelimiters, Line: part.Line, Col: part.Col}
	}
	fields := splitFields(raw[:len(raw)-1])
	if len(fields) != 2 {
		return scanner.Delimiters{}, &Error{Kind: InvalidDelimiters, Line: part.Line, Col: part.Col}
	}
	d := scanner.Delimiters{Start: string(fields[0]), End: string(fields[1])}
	if !d.Valid() {
		return scanner.Delimiters{}, &Error{Kind: InvalidDelimiters, Line: part.Line, Col: part.Col}
	}
	return d, nil
}

// splitFields splits on spaces and tabs only. A tag body may span lines,
// and a newline inside it is not a separator: it stays part of the
// adjacent field.
func splitFields(raw []byte) [][]byte {
	return bytes.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
}

// scannerErr translates a scanner.Error or a scanio.ReadError into the
// public mustache.Error vocabulary of spec.md §6. Any other error (for
// instance one from a caller-supplied scanio.Reader) is returned unchanged.
func scannerErr(err error) error {
	if re, ok := err.(*scanio.ReadError); ok {
		return &Error{Kind: IOError, Err: re}
	}
	se, ok := err.(*scanner.Error)
	if !ok {
		return err
	}
	var kind Kind
	switch se.Kind {
	case "InvalidDelimiters":
		kind = InvalidDelimiters
	case "UnexpectedEOF":
		kind = UnexpectedEOF
	case "StartingDelimiterMismatch":
		kind = StartingDelimiterMismatch
	case "EndingDelimiterMismatch":
		kind = EndingDelimiterMismatch
	default:
		kind = UnexpectedEOF
	}
	return &Error{Kind: kind, Line: se.Line, Col: se.Col}
}

// takeBatch drains the nodes accumulated since the last call, advancing the
// flushed counter so future node indices stay globally addressable even
// though the arena itself is periodically reset, per spec.md §4.5's
// streamed-mode buffer discipline.
func (b *builder) takeBatch() []Node {
	batch := b.nodes
	b.flushed += len(b.nodes)
	b.nodes = nil
	return batch
}

// flushBoundary finalizes the batch up to, but excluding, the most recently
// appended node (the one whose resolved left trim just proved a safe root-
// level boundary), per spec.md §4.4's streamed-mode flush: the boundary
// node itself becomes the first entry of the next batch.
func (b *builder) flushBoundary() []Node {
	last := b.nodes[len(b.nodes)-1]
	b.nodes = b.nodes[:len(b.nodes)-1]
	batch := b.takeBatch()
	b.nodes = append(b.nodes, last)
	b.lastStaticIdx = len(b.nodes) - 1
	return batch
}
