package mustache

import (
	"fmt"

	"github.com/gomustache/mustache/internal/scanio"
	"github.com/gomustache/mustache/internal/scanner"
)

// PartType classifies a parsed node, per spec.md §3's tag table.
type PartType = scanner.PartType

// PartType values, re-exported from the internal scanner so callers never
// need to import an internal package to name them.
const (
	Static          = scanner.Static
	Interpolation   = scanner.Interpolation
	Raw             = scanner.Raw
	Unescaped       = scanner.Unescaped
	Comment         = scanner.Comment
	Section         = scanner.Section
	InvertedSection = scanner.InvertedSection
	CloseSection    = scanner.CloseSection
	Partial         = scanner.Partial
	Parent          = scanner.Parent
	Block           = scanner.Block
	SetDelimiters   = scanner.SetDelimiters
)

// TrimKind and TrimState re-export the scanner's trimming-index vocabulary
// of spec.md §3.
type (
	TrimKind  = scanner.TrimKind
	TrimState = scanner.TrimState
)

// TrimKind values.
const (
	Preserve = scanner.Preserve
	Allow    = scanner.Allow
	Trimmed  = scanner.Trimmed
)

// Node is one entry of the parsed tree, per spec.md §3. Nodes live in a
// contiguous, index-addressed arena within a batch; parent/child
// relationships are implicit via ChildrenCount (the number of immediate
// descendant nodes that directly follow), avoiding parent pointers and
// the cyclic ownership they would otherwise require (spec.md §9).
type Node struct {
	Index int
	Type  PartType

	// Line, Col is the 1-based source position where this node's tag (or,
	// for static text, the start of its span) was first matched.
	Line, Col int

	// Identifier is the single validated token naming a section, partial,
	// parent, block, or interpolation/unescaped/raw reference. Unset for
	// static text, comments, and delimiter changes.
	Identifier string

	// Content is the node's own text: the (possibly trimmed) static-text
	// span, or a tag's identifier/comment/delimiter body.
	Content scanio.Token

	// HasIndentation/Indentation hold the whitespace prefix captured by a
	// trimmed standalone-line predecessor, attached per spec.md §4.4 so a
	// partial/parent renderer can indent every inserted line. Resolve a
	// node's effective indentation with ResolveIndentation, which also
	// accounts for adjacent standalone tag nodes that did not themselves
	// receive the tail directly.
	HasIndentation bool
	Indentation    scanio.Token

	// ChildrenCount is the number of nodes immediately following this one
	// in the arena that belong to its subtree. Zero for leaves.
	ChildrenCount int

	// Delimiters holds the new pair for a SetDelimiters node.
	Delimiters Delimiters

	// HasInnerText/InnerText hold the raw source span between a
	// section-like node's open and close tags, captured only when lambda
	// support is enabled (spec.md §1 Non-goals: only the substring is
	// captured here, never evaluated).
	HasInnerText bool
	InnerText    scanio.Token

	// IsStandAlone mirrors PartType.CanStandAlone(), cached for
	// predecessor-walking convenience matching the data model of
	// spec.md §3.
	IsStandAlone bool

	// Left/Right are meaningful only for Type == Static.
	Left, Right TrimState
}

// ResolveIndentation returns the indentation captured for node i, per
// spec.md §4.4's getIndentation: if node i did not itself receive an
// indentation tail (because an adjacent standalone tag node did, with no
// static text between them), it is inherited from the nearest such
// predecessor.
func ResolveIndentation(nodes []Node, i int) (scanio.Token, bool) {
	for ; i >= 0; i-- {
		if nodes[i].HasIndentation {
			return nodes[i].Indentation, true
		}
		if !nodes[i].Type.CanStandAlone() {
			return scanio.Token{}, false
		}
	}
	return scanio.Token{}, false
}

// Format writes a terse "Type" form, or a verbose multi-field form under
// the %+v verb, grounded on the teacher's BlockType.Format/Block.Format
// pairing (scandown/fmt.go).
func (n Node) Format(f fmt.State, c rune) {
	if !f.Flag('+') {
		fmt.Fprintf(f, "%v", n.Type)
		return
	}
	switch n.Type {
	case Static:
		fmt.Fprintf(f, "Static %q left=%v right=%v", n.Content.Text(), n.Left, n.Right)
	case Section, InvertedSection, Partial, Parent, Block:
		fmt.Fprintf(f, "%v(%q) children=%d", n.Type, n.Identifier, n.ChildrenCount)
	case Interpolation, Unescaped, Raw:
		fmt.Fprintf(f, "%v(%q)", n.Type, n.Identifier)
	case SetDelimiters:
		fmt.Fprintf(f, "Delimiters(%q,%q)", n.Delimiters.Start, n.Delimiters.End)
	default:
		fmt.Fprintf(f, "%v", n.Type)
	}
}
