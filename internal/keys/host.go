package keys

import "github.com/charmbracelet/bubbles/key"

// HostKeyMap holds the keys the editor host handles itself, before the
// interpreter sees them.
type HostKeyMap struct {
	Quit key.Binding
	Save key.Binding
	Undo key.Binding
}

// Host is the default host keymap.
var Host = DefaultHostKeyMap()

// DefaultHostKeyMap returns the default host keybindings.
func DefaultHostKeyMap() HostKeyMap {
	return HostKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k HostKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Undo, k.Quit}
}
