package keys

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/uniseg"
)

// FromTea converts a Bubble Tea key message into a Code.
// Returns "" for keys the interpreter has no name for (function keys,
// multi-grapheme pastes).
func FromTea(msg tea.KeyMsg) Code {
	switch msg.Type {
	case tea.KeyRunes:
		s := string(msg.Runes)
		if msg.Paste || uniseg.GraphemeClusterCount(s) != 1 {
			return ""
		}
		if s == "<" {
			return LessThan
		}
		return Code(s)
	case tea.KeyEscape:
		return Escape
	case tea.KeyEnter:
		return Enter
	case tea.KeyBackspace:
		return Backspace
	case tea.KeyDelete:
		return Delete
	case tea.KeyTab:
		return Tab
	case tea.KeySpace:
		return Space
	case tea.KeyLeft:
		return Left
	case tea.KeyRight:
		return Right
	case tea.KeyUp:
		return Up
	case tea.KeyDown:
		return Down
	case tea.KeyHome:
		return Home
	case tea.KeyEnd:
		return End
	}

	// ctrl+letter arrives as its own KeyType; its string form is stable.
	if name, ok := strings.CutPrefix(msg.String(), "ctrl+"); ok && len(name) == 1 && name[0] >= 'a' && name[0] <= 'z' {
		return Ctrl(rune(name[0]))
	}
	return ""
}

// ToTea converts a Code back into a key message. Used by host tests to
// replay key sequences through a Bubble Tea program.
func ToTea(c Code) tea.KeyMsg {
	switch c {
	case Escape:
		return tea.KeyMsg{Type: tea.KeyEscape}
	case Enter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case Backspace:
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case Delete:
		return tea.KeyMsg{Type: tea.KeyDelete}
	case Tab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case Space:
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case Left:
		return tea.KeyMsg{Type: tea.KeyLeft}
	case Right:
		return tea.KeyMsg{Type: tea.KeyRight}
	case Up:
		return tea.KeyMsg{Type: tea.KeyUp}
	case Down:
		return tea.KeyMsg{Type: tea.KeyDown}
	case Home:
		return tea.KeyMsg{Type: tea.KeyHome}
	case End:
		return tea.KeyMsg{Type: tea.KeyEnd}
	case LessThan:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'<'}}
	}
	if name, ok := strings.CutPrefix(string(c), "<ctrl+"); ok && len(name) == 2 {
		// tea.KeyCtrlA..KeyCtrlZ are contiguous.
		return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(name[0]-'a')}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(string(c))}
}
