package editor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/andrei-shtanakov/Vimja/internal/cursor"
)

type cellKind int

const (
	cellPlain cellKind = iota
	cellSelected
	cellMatch
	cellCursor
)

// View renders the visible lines and the status bar.
func (m Model) View() string {
	lines := m.buf.Lines()
	first, last := m.visible(len(lines))

	// Byte offset of each line start in Text, for the search highlight.
	offsets := make([]int, len(lines))
	for i := 1; i < len(lines); i++ {
		offsets[i] = offsets[i-1] + len(lines[i-1]) + 1
	}
	gutter := m.gutterWidth(len(lines))

	var b strings.Builder
	for i := first; i < last; i++ {
		var row string
		if gutter > 0 {
			row = lineNumberStyle.Render(fmt.Sprintf("%*d ", gutter-1, i+1))
		}
		row += m.renderLine(i, lines[i], offsets[i])
		b.WriteString(m.mark(lineZone(i), row))
		if i < last-1 {
			b.WriteByte('\n')
		}
	}
	if m.height > 0 {
		for i := last - first; i < m.textHeight(); i++ {
			b.WriteString("\n" + lineNumberStyle.Render("~"))
		}
	}

	if m.opts.ShowStatusBar {
		b.WriteString("\n" + m.statusLine())
		b.WriteString("\n" + m.help.ShortHelpView(m.opts.KeyMap.ShortHelp()))
	}
	if m.closed() {
		return b.String()
	}
	return m.zones.Scan(b.String())
}

// visible returns the range of document lines on screen.
func (m Model) visible(n int) (first, last int) {
	if m.height <= 0 {
		return 0, n
	}
	return m.top, min(m.top+m.textHeight(), n)
}

// gutterWidth is the width of the line number column, including its
// trailing space.
func (m Model) gutterWidth(n int) int {
	if !m.opts.ShowLineNumbers {
		return 0
	}
	return len(fmt.Sprint(n)) + 1
}

func lineZone(i int) string { return fmt.Sprintf("line-%d", i) }

// mark wraps a rendered row in a click zone. Empty rows get a blank cell
// so they can still be clicked.
func (m Model) mark(id, row string) string {
	if m.closed() {
		return row
	}
	if row == "" {
		row = " "
	}
	return m.zones.Mark(id, row)
}

// columnAt maps a cell offset within line to a grapheme column.
func columnAt(line string, cells int) int {
	col, width := 0, 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		w := cursor.DisplayWidth(gr.Str())
		if cells < width+w {
			return col
		}
		width += w
		col++
	}
	return col
}

// renderLine styles one line. Runs of graphemes with the same styling are
// rendered together.
func (m Model) renderLine(idx int, line string, offset int) string {
	pos := m.buf.CurrentPosition()
	selStart, selEnd, hasSel := m.buf.Selection()
	hlStart, hlEnd, hasHl := m.buf.Highlighted()
	cursorStyle := barCursorStyle
	if m.buf.VisualWidth() >= 2 {
		cursorStyle = blockCursorStyle
	}

	kindAt := func(col, byteOff int) cellKind {
		p := cursor.Position{Line: idx, Column: col}
		switch {
		case p == pos:
			return cellCursor
		case hasHl && offset+byteOff >= hlStart && offset+byteOff < hlEnd:
			return cellMatch
		case hasSel && !less(p, selStart) && less(p, selEnd):
			return cellSelected
		default:
			return cellPlain
		}
	}
	render := func(kind cellKind, s string) string {
		switch kind {
		case cellCursor:
			return cursorStyle.Render(s)
		case cellMatch:
			return matchStyle.Render(s)
		case cellSelected:
			return selectionStyle.Render(s)
		default:
			return s
		}
	}

	var b, run strings.Builder
	runKind := cellPlain
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(render(runKind, run.String()))
			run.Reset()
		}
	}

	col := 0
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		from, _ := gr.Positions()
		kind := kindAt(col, from)
		if kind != runKind {
			flush()
			runKind = kind
		}
		run.WriteString(gr.Str())
		col++
	}
	flush()

	// A cursor past the last grapheme sits on a blank cell.
	if pos.Line == idx && pos.Column >= col {
		b.WriteString(cursorStyle.Render(" "))
	}
	return b.String()
}

func less(a, c cursor.Position) bool {
	return a.Line < c.Line || (a.Line == c.Line && a.Column < c.Column)
}

func (m Model) statusLine() string {
	left := []string{badge(m.in.Mode())}

	name := "[No Name]"
	if m.opts.Path != "" {
		name = filepath.Base(m.opts.Path)
	}
	if m.Dirty() {
		name += " [+]"
	}
	left = append(left, name)

	if m.in.SearchActive() {
		left = append(left, "/"+m.in.SearchPattern())
	} else if pending := m.in.Pending(); len(pending) > 0 {
		left = append(left, pending.String())
	}

	pos := m.buf.CurrentPosition()
	right := fmt.Sprintf("%d:%d", pos.Line+1, pos.Column+1)
	switch {
	case m.message != "" && m.failed:
		right = errorStyle.Render(m.message) + "  " + right
	case m.message != "":
		right = m.message + "  " + right
	case m.opts.ShowLastLog && m.lastLog != "":
		right = statusStyle.Render(m.lastLog) + "  " + right
	}

	l := strings.Join(left, " ")
	if m.width <= 0 {
		return l + "  " + right
	}
	gap := m.width - lipgloss.Width(l) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(l+" "+right, m.width, "…")
	}
	return l + strings.Repeat(" ", gap) + right
}
