package cursor

import (
	"slices"
	"strings"
)

// snapshot is the state restored by Undo.
type snapshot struct {
	lines []string
	cur   Position
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithoutUnits makes the buffer report the given units as unsupported.
// Hosts use it to expose a narrower movement vocabulary.
func WithoutUnits(units ...Unit) Option {
	return func(b *Buffer) {
		for _, u := range units {
			b.unsupported[u] = true
		}
	}
}

// Buffer is an in-memory Adapter over a slice of lines.
//
// Columns are grapheme indexes and may equal the line's grapheme count
// (cursor after the last character). Left and Right never cross lines.
// Every mutation runs inside an edit transaction; the outermost
// BeginEdit/EndEdit pair becomes a single undo step.
type Buffer struct {
	lines        []string
	cur          Position
	anchor       Position
	preferredCol int

	unsupported map[Unit]bool

	depth  int
	before *snapshot
	undo   []snapshot
	edits  int

	hlStart, hlEnd int
	hasHighlight   bool
	visualWidth    int
}

var _ Adapter = (*Buffer)(nil)

// NewBuffer creates a buffer holding text with the cursor at the start.
func NewBuffer(text string, opts ...Option) *Buffer {
	b := &Buffer{
		lines:       splitLines(text),
		unsupported: make(map[Unit]bool),
		visualWidth: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func splitLines(text string) []string {
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// SetText replaces the whole document and clears undo history.
func (b *Buffer) SetText(text string) {
	b.lines = splitLines(text)
	b.cur = Position{}
	b.anchor = Position{}
	b.preferredCol = 0
	b.undo = nil
	b.hasHighlight = false
}

// Text returns the document with lines joined by "\n".
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// Lines returns a copy of the document lines.
func (b *Buffer) Lines() []string {
	return slices.Clone(b.lines)
}

// CurrentPosition returns the cursor position.
func (b *Buffer) CurrentPosition() Position {
	return b.cur
}

// SetPosition places the cursor, clamped to the document, and drops the selection.
func (b *Buffer) SetPosition(p Position) {
	p.Line = max(min(p.Line, len(b.lines)-1), 0)
	p.Column = max(min(p.Column, GraphemeCount(b.lines[p.Line])), 0)
	b.cur = p
	b.anchor = p
	b.preferredCol = p.Column
}

// Selection returns the ordered selection bounds and whether one exists.
func (b *Buffer) Selection() (start, end Position, ok bool) {
	start, end = b.ordered()
	return start, end, start != end
}

// Supports reports whether the buffer implements unit.
func (b *Buffer) Supports(unit Unit) bool {
	return unit.Valid() && !b.unsupported[unit]
}

// MoveBy moves the cursor count units. With AnchorKeep the selection
// anchor stays put; otherwise it follows the cursor.
func (b *Buffer) MoveBy(unit Unit, anchor Anchor, count int) bool {
	if !b.Supports(unit) {
		return false
	}
	count = max(count, 1)
	start := b.cur
	for range count {
		if !b.step(unit) {
			break
		}
	}
	if anchor != AnchorKeep {
		b.anchor = b.cur
	}
	return b.cur != start
}

func (b *Buffer) step(unit Unit) bool {
	n := GraphemeCount(b.lines[b.cur.Line])
	switch unit {
	case Left:
		if b.cur.Column == 0 {
			return false
		}
		b.cur.Column--
		b.preferredCol = b.cur.Column
	case Right:
		if b.cur.Column >= n {
			return false
		}
		b.cur.Column++
		b.preferredCol = b.cur.Column
	case Up:
		if b.cur.Line == 0 {
			return false
		}
		b.cur.Line--
		b.cur.Column = min(b.preferredCol, GraphemeCount(b.lines[b.cur.Line]))
	case Down:
		if b.cur.Line >= len(b.lines)-1 {
			return false
		}
		b.cur.Line++
		b.cur.Column = min(b.preferredCol, GraphemeCount(b.lines[b.cur.Line]))
	case StartOfLine:
		if b.cur.Column == 0 {
			return false
		}
		b.cur.Column = 0
		b.preferredCol = 0
	case EndOfLine:
		if b.cur.Column == n {
			return false
		}
		b.cur.Column = n
		b.preferredCol = n
	case StartOfDocument:
		if b.cur == (Position{}) {
			return false
		}
		b.cur = Position{}
		b.preferredCol = 0
	case EndOfDocument:
		last := len(b.lines) - 1
		end := Position{Line: last, Column: GraphemeCount(b.lines[last])}
		if b.cur == end {
			return false
		}
		b.cur = end
		b.preferredCol = end.Column
	case NextWord:
		return b.nextWord()
	case PreviousWord:
		return b.previousWord()
	default:
		return false
	}
	return true
}

// nextWord moves to the start of the next word. A word that runs to the end
// of the line stops there; only a cursor already at the line end wraps.
func (b *Buffer) nextWord() bool {
	start := b.cur
	gs := graphemes(b.lines[b.cur.Line])
	col := b.cur.Column
	if col < len(gs) {
		if cls := classOf(gs[col]); cls != classSpace {
			for col < len(gs) && classOf(gs[col]) == cls {
				col++
			}
		}
		for col < len(gs) && classOf(gs[col]) == classSpace {
			col++
		}
	} else if b.cur.Line < len(b.lines)-1 {
		b.cur.Line++
		gs = graphemes(b.lines[b.cur.Line])
		col = 0
		for col < len(gs) && classOf(gs[col]) == classSpace {
			col++
		}
	}
	b.cur.Column = col
	b.preferredCol = col
	return b.cur != start
}

// previousWord moves to the start of the previous word, crossing
// blank-only stretches and line breaks.
func (b *Buffer) previousWord() bool {
	start := b.cur
	line, col := b.cur.Line, b.cur.Column
	for {
		gs := graphemes(b.lines[line])
		for col > 0 && classOf(gs[col-1]) == classSpace {
			col--
		}
		if col > 0 {
			cls := classOf(gs[col-1])
			for col > 0 && classOf(gs[col-1]) == cls {
				col--
			}
			break
		}
		if line == 0 {
			break
		}
		line--
		col = GraphemeCount(b.lines[line])
	}
	b.cur = Position{Line: line, Column: col}
	b.preferredCol = col
	return b.cur != start
}

func less(a, c Position) bool {
	return a.Line < c.Line || (a.Line == c.Line && a.Column < c.Column)
}

func (b *Buffer) ordered() (Position, Position) {
	if less(b.cur, b.anchor) {
		return b.cur, b.anchor
	}
	return b.anchor, b.cur
}

// SelectedText returns the text between anchor and cursor.
func (b *Buffer) SelectedText() string {
	start, end := b.ordered()
	if start == end {
		return ""
	}
	if start.Line == end.Line {
		return sliceGraphemes(b.lines[start.Line], start.Column, end.Column)
	}
	first := b.lines[start.Line]
	parts := []string{sliceGraphemes(first, start.Column, GraphemeCount(first))}
	parts = append(parts, b.lines[start.Line+1:end.Line]...)
	parts = append(parts, sliceGraphemes(b.lines[end.Line], 0, end.Column))
	return strings.Join(parts, "\n")
}

// CollapseSelection drops the selection and leaves the cursor at its start.
func (b *Buffer) CollapseSelection() {
	start, _ := b.ordered()
	b.cur = start
	b.anchor = start
	b.preferredCol = start.Column
}

// RemoveSelectedText deletes the selection, if any.
func (b *Buffer) RemoveSelectedText() {
	start, end := b.ordered()
	if start == end {
		return
	}
	b.mutate(func() { b.deleteBetween(start, end) })
}

func (b *Buffer) deleteBetween(start, end Position) {
	first := b.lines[start.Line]
	last := b.lines[end.Line]
	joined := first[:graphemeOffset(first, start.Column)] + last[graphemeOffset(last, end.Column):]

	lines := make([]string, 0, len(b.lines)-(end.Line-start.Line))
	lines = append(lines, b.lines[:start.Line]...)
	lines = append(lines, joined)
	lines = append(lines, b.lines[end.Line+1:]...)
	b.lines = lines

	b.cur = start
	b.anchor = start
	b.preferredCol = start.Column
}

// InsertText replaces the selection, if any, and inserts text at the cursor.
// The cursor ends up after the inserted text.
func (b *Buffer) InsertText(text string) {
	b.mutate(func() {
		if start, end := b.ordered(); start != end {
			b.deleteBetween(start, end)
		}
		if text == "" {
			return
		}
		line := b.lines[b.cur.Line]
		off := graphemeOffset(line, b.cur.Column)
		before, after := line[:off], line[off:]
		parts := strings.Split(text, "\n")
		if len(parts) == 1 {
			b.lines[b.cur.Line] = before + text + after
			b.cur.Column += GraphemeCount(text)
		} else {
			inserted := make([]string, len(parts))
			copy(inserted, parts)
			inserted[0] = before + parts[0]
			inserted[len(parts)-1] = parts[len(parts)-1] + after

			lines := make([]string, 0, len(b.lines)+len(parts)-1)
			lines = append(lines, b.lines[:b.cur.Line]...)
			lines = append(lines, inserted...)
			lines = append(lines, b.lines[b.cur.Line+1:]...)
			b.lines = lines
			b.cur = Position{Line: b.cur.Line + len(parts) - 1, Column: GraphemeCount(parts[len(parts)-1])}
		}
		b.anchor = b.cur
		b.preferredCol = b.cur.Column
	})
}

// InsertLine splits the current line at the cursor. No indentation is
// carried over; the cursor lands at column 0 of the new line.
func (b *Buffer) InsertLine() {
	b.mutate(func() {
		if start, end := b.ordered(); start != end {
			b.deleteBetween(start, end)
		}
		line := b.lines[b.cur.Line]
		off := graphemeOffset(line, b.cur.Column)

		lines := make([]string, 0, len(b.lines)+1)
		lines = append(lines, b.lines[:b.cur.Line]...)
		lines = append(lines, line[:off], line[off:])
		lines = append(lines, b.lines[b.cur.Line+1:]...)
		b.lines = lines

		b.cur = Position{Line: b.cur.Line + 1}
		b.anchor = b.cur
		b.preferredCol = 0
	})
}

// DeleteForward removes count graphemes after the cursor. A line break
// counts as one grapheme. With a selection, only the selection is removed.
func (b *Buffer) DeleteForward(count int) {
	b.mutate(func() {
		if start, end := b.ordered(); start != end {
			b.deleteBetween(start, end)
			return
		}
		for range max(count, 1) {
			end := b.cur
			if end.Column < GraphemeCount(b.lines[end.Line]) {
				end.Column++
			} else if end.Line < len(b.lines)-1 {
				end = Position{Line: end.Line + 1}
			} else {
				return
			}
			b.deleteBetween(b.cur, end)
		}
	})
}

// DeleteBackward removes count graphemes before the cursor, joining lines
// at column 0. Hosts use it for backspace in insert mode.
func (b *Buffer) DeleteBackward(count int) {
	b.mutate(func() {
		for range max(count, 1) {
			start := b.cur
			if start.Column > 0 {
				start.Column--
			} else if start.Line > 0 {
				start = Position{Line: start.Line - 1, Column: GraphemeCount(b.lines[start.Line-1])}
			} else {
				return
			}
			b.deleteBetween(start, b.cur)
		}
	})
}

func (b *Buffer) mutate(fn func()) {
	b.BeginEdit()
	defer b.EndEdit()
	fn()
}

// BeginEdit opens an edit transaction. Transactions nest; only the
// outermost one records an undo step.
func (b *Buffer) BeginEdit() {
	if b.depth == 0 {
		b.before = &snapshot{lines: slices.Clone(b.lines), cur: b.cur}
	}
	b.depth++
}

// EndEdit closes an edit transaction. Unbalanced calls are ignored.
func (b *Buffer) EndEdit() {
	if b.depth == 0 {
		return
	}
	b.depth--
	if b.depth > 0 {
		return
	}
	if b.before != nil && !slices.Equal(b.before.lines, b.lines) {
		b.undo = append(b.undo, *b.before)
	}
	b.before = nil
	b.edits++
}

// EditDepth returns the number of open edit transactions.
func (b *Buffer) EditDepth() int {
	return b.depth
}

// Edits returns how many outermost edit transactions have completed.
func (b *Buffer) Edits() int {
	return b.edits
}

// CanUndo reports whether an undo step is available.
func (b *Buffer) CanUndo() bool {
	return len(b.undo) > 0
}

// Undo restores the state before the last completed transaction.
func (b *Buffer) Undo() bool {
	if len(b.undo) == 0 || b.depth > 0 {
		return false
	}
	last := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.lines = last.lines
	b.SetPosition(last.cur)
	return true
}

// Seek moves the cursor to a byte offset in Text and drops the selection.
func (b *Buffer) Seek(offset int) {
	for i, line := range b.lines {
		if offset <= len(line) {
			b.SetPosition(Position{Line: i, Column: byteToGrapheme(line, offset)})
			return
		}
		offset -= len(line) + 1
	}
	last := len(b.lines) - 1
	b.SetPosition(Position{Line: last, Column: GraphemeCount(b.lines[last])})
}

// Highlight marks a byte range of Text for the renderer.
func (b *Buffer) Highlight(start, end int) {
	b.hlStart, b.hlEnd = start, end
	b.hasHighlight = end > start
}

// ClearHighlight removes the highlight.
func (b *Buffer) ClearHighlight() {
	b.hasHighlight = false
}

// Highlighted returns the highlighted byte range.
func (b *Buffer) Highlighted() (start, end int, ok bool) {
	return b.hlStart, b.hlEnd, b.hasHighlight
}

// SetCursorVisualWidth records the requested cursor width in cells.
func (b *Buffer) SetCursorVisualWidth(px int) {
	b.visualWidth = max(px, 1)
}

// VisualWidth returns the last requested cursor width.
func (b *Buffer) VisualWidth() int {
	return b.visualWidth
}
