package scanner

import (
	"fmt"

	"github.com/gomustache/mustache/internal/scanio"
)

// PartType classifies a scanned text part, per spec.md §3's tag table.
type PartType int

// PartType values.
const (
	Static PartType = iota
	Interpolation
	Raw
	Unescaped
	Comment
	Section
	InvertedSection
	CloseSection
	Partial
	Parent
	Block
	SetDelimiters
)

// indicatorTypes maps the byte immediately following a matched starting
// delimiter to the tag type it selects, per spec.md §4.2 step 4. A byte
// not in this table means the tag defaults to Interpolation with no
// indicator consumed.
var indicatorTypes = map[byte]PartType{
	'!': Comment,
	'#': Section,
	'^': InvertedSection,
	'/': CloseSection,
	'>': Partial,
	'<': Parent,
	'$': Block,
	'&': Unescaped,
	'=': SetDelimiters,
	'{': Raw,
}

// CanStandAlone reports whether a tag of this type is permitted to occupy
// its own line and have surrounding whitespace trimmed, per the "Can stand
// alone" column of spec.md §3.
func (t PartType) CanStandAlone() bool {
	switch t {
	case Comment, Section, InvertedSection, CloseSection, Partial, Parent, Block, SetDelimiters:
		return true
	default:
		return false
	}
}

func (t PartType) String() string {
	switch t {
	case Static:
		return "Static"
	case Interpolation:
		return "Interpolation"
	case Raw:
		return "Raw"
	case Unescaped:
		return "Unescaped"
	case Comment:
		return "Comment"
	case Section:
		return "Section"
	case InvertedSection:
		return "InvertedSection"
	case CloseSection:
		return "CloseSection"
	case Partial:
		return "Partial"
	case Parent:
		return "Parent"
	case Block:
		return "Block"
	case SetDelimiters:
		return "Delimiters"
	default:
		return fmt.Sprintf("InvalidPartType(%d)", int(t))
	}
}

// TrimKind is one of the three trimming-index states of spec.md §3.
type TrimKind int

// TrimKind values.
const (
	Preserve TrimKind = iota
	Allow
	Trimmed
)

// TrimState annotates one side (left or right) of a static-text part, per
// spec.md §3/§4.3.
type TrimState struct {
	Kind       TrimKind
	Index      int
	StandAlone bool
}

func (ts TrimState) Format(f fmt.State, c rune) {
	switch ts.Kind {
	case Preserve:
		fmt.Fprint(f, "preserve")
	case Trimmed:
		fmt.Fprint(f, "trimmed")
	default:
		fmt.Fprintf(f, "allow(%d,standalone=%v)", ts.Index, ts.StandAlone)
	}
}

// Part is one scanned text part: a coarse span of either static content or
// a tag body, with its source position and (for static text) trimming
// hints, per spec.md §3/§4.2.
type Part struct {
	Type PartType

	Content     scanio.Token
	Indentation scanio.Token // not set by the scanner; the builder keeps indentation on mustache.Node

	Line, Col int

	Left, Right TrimState
}
