// Package cursor defines the text-cursor contract the interpreter drives and
// ships Buffer, an in-memory implementation used by the editor host.
//
// The interpreter never touches text storage directly. Every movement,
// selection and mutation goes through an Adapter supplied by the host.
package cursor

// Unit is a movement unit understood by an Adapter.
type Unit int

const (
	Left Unit = iota + 1
	Right
	Up
	Down
	StartOfLine
	EndOfLine
	StartOfDocument
	EndOfDocument
	NextWord
	PreviousWord
)

var unitNames = map[Unit]string{
	Left:            "left",
	Right:           "right",
	Up:              "up",
	Down:            "down",
	StartOfLine:     "start_of_line",
	EndOfLine:       "end_of_line",
	StartOfDocument: "start_of_document",
	EndOfDocument:   "end_of_document",
	NextWord:        "next_word",
	PreviousWord:    "previous_word",
}

// Units returns every unit in declaration order.
func Units() []Unit {
	return []Unit{Left, Right, Up, Down, StartOfLine, EndOfLine, StartOfDocument, EndOfDocument, NextWord, PreviousWord}
}

// Valid reports whether u is one of the declared units.
func (u Unit) Valid() bool {
	_, ok := unitNames[u]
	return ok
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return "unknown"
}

// Anchor says whether a movement drags the selection anchor along (move)
// or leaves it in place so the selection grows (keep).
type Anchor int

const (
	// AnchorDefault defers to the policy of the current mode.
	AnchorDefault Anchor = iota
	AnchorMove
	AnchorKeep
)

func (a Anchor) String() string {
	switch a {
	case AnchorDefault:
		return "default"
	case AnchorMove:
		return "move"
	case AnchorKeep:
		return "keep"
	default:
		return "unknown"
	}
}

// Position is a cursor location. Column is a grapheme index, not a byte offset.
type Position struct {
	Line   int
	Column int
}

// WidthSink receives cursor visual width requests.
type WidthSink interface {
	SetCursorVisualWidth(px int)
}

// Adapter is the host-provided cursor the interpreter operates on.
//
// Implementations may panic on internal faults; the interpreter recovers at
// its edit boundary. MoveBy returns false when the unit is unsupported or
// the cursor could not move (document or line boundary).
type Adapter interface {
	WidthSink

	CurrentPosition() Position
	Supports(unit Unit) bool
	MoveBy(unit Unit, anchor Anchor, count int) bool

	SelectedText() string
	// CollapseSelection drops the selection, leaving the cursor at its start.
	CollapseSelection()
	RemoveSelectedText()

	// InsertText replaces the selection, if any, with text.
	InsertText(text string)
	// InsertLine breaks the line at the cursor without auto-indentation and
	// leaves the cursor at the start of the new line.
	InsertLine()
	DeleteForward(count int)

	// BeginEdit and EndEdit bracket one undoable step. They nest.
	BeginEdit()
	EndEdit()

	// Text returns the whole document; Seek and Highlight take byte offsets into it.
	Text() string
	Seek(offset int)
	Highlight(start, end int)
}
