package scanner

// lfState is the two-lane state machine of spec.md §4.3: leftLF tracks
// whether a standalone-eligible LF has been seen since the static-text
// part began; rightLF tracks the most recent such LF seen so far.
type lfState int

const (
	lfScanning lfState = iota
	lfNotFound
	lfFound
)

// trimmer is the single-pass whitespace scanner attached to the Scanner
// for the duration of one static-text part, per spec.md §4.3. Feed() is
// called once per byte of the part's content, in order.
type trimmer struct {
	leftState  lfState
	leftIndex  int
	rightState lfState
	rightIndex int
}

func (t *trimmer) reset() {
	*t = trimmer{}
}

// Feed processes the next byte of the static-text part at the given
// 0-based index within that part.
func (t *trimmer) Feed(i int, c byte) {
	switch c {
	case '\n':
		if t.leftState == lfScanning {
			t.leftState = lfFound
			t.leftIndex = i
		}
		t.rightState = lfFound
		t.rightIndex = i
	case '\r', '\t', ' ', 0:
		// whitespace of interest: does not resolve leftState, and leaves
		// rightState as-is (waiting) unless already found-and-then-broken
		// by a later non-whitespace byte, handled in the default case.
	default:
		if t.leftState == lfScanning {
			t.leftState = lfNotFound
		}
		t.rightState = lfNotFound
	}
}

// Result computes the final left/right TrimState for the part once all of
// its bytes have been fed, per spec.md §4.3's "Result" rules.
func (t *trimmer) Result() (left, right TrimState) {
	if t.leftState == lfFound {
		left = TrimState{Kind: Allow, Index: t.leftIndex, StandAlone: true}
	} else {
		left = TrimState{Kind: Preserve}
	}

	switch {
	case t.leftState == lfScanning:
		// whitespace-only so far; may still be trimmed if a later tag
		// proves standalone.
		right = TrimState{Kind: Allow, Index: 0, StandAlone: false}
	case t.rightState == lfFound:
		right = TrimState{Kind: Allow, Index: t.rightIndex + 1, StandAlone: true}
	default:
		right = TrimState{Kind: Preserve}
	}
	return left, right
}
