// Package keys defines the key codes the interpreter consumes and the
// sequences the command table is keyed by.
package keys

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// ErrUnknownKey is returned when a bracketed key name is not recognized.
var ErrUnknownKey = errors.New("unknown key")

// Code identifies a single key press.
// Printable keys are the grapheme itself ("d", "$", "é").
// Special keys use bracket notation ("<escape>", "<ctrl+r>").
type Code string

// Named keys.
const (
	Escape    Code = "<escape>"
	Enter     Code = "<enter>"
	Backspace Code = "<backspace>"
	Delete    Code = "<delete>"
	Tab       Code = "<tab>"
	Space     Code = "<space>"
	Left      Code = "<left>"
	Right     Code = "<right>"
	Up        Code = "<up>"
	Down      Code = "<down>"
	Home      Code = "<home>"
	End       Code = "<end>"
	// LessThan is the literal '<' key. It is spelled out so that sequence
	// strings can be split back into codes without ambiguity.
	LessThan Code = "<lt>"
)

var namedKeys = map[Code]struct{}{
	Escape: {}, Enter: {}, Backspace: {}, Delete: {}, Tab: {}, Space: {},
	Left: {}, Right: {}, Up: {}, Down: {}, Home: {}, End: {}, LessThan: {},
}

// Ctrl returns the code for ctrl plus a lowercase letter.
func Ctrl(r rune) Code {
	return Code(fmt.Sprintf("<ctrl+%c>", r))
}

// IsNamed reports whether the code uses bracket notation.
func (c Code) IsNamed() bool {
	return strings.HasPrefix(string(c), "<") && strings.HasSuffix(string(c), ">") && len(c) > 2
}

// Rune returns the character the key types, if it types exactly one rune.
// Space and the literal '<' count as printable.
func (c Code) Rune() (rune, bool) {
	switch c {
	case Space:
		return ' ', true
	case LessThan:
		return '<', true
	}
	if c.IsNamed() || c == "" {
		return 0, false
	}
	runes := []rune(string(c))
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}

// Text returns the text the key types, or "" for non-printable keys.
// Unlike Rune it accepts multi-rune graphemes (emoji, combining marks).
func (c Code) Text() string {
	if r, ok := c.Rune(); ok {
		return string(r)
	}
	if c.IsNamed() || c == "" {
		return ""
	}
	return string(c)
}

// Parse resolves a single key description into a Code.
func Parse(s string) (Code, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	if s == "<" {
		return LessThan, nil
	}
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2 {
		name := strings.ToLower(s)
		switch name {
		case "<esc>":
			return Escape, nil
		case "<cr>", "<return>":
			return Enter, nil
		case "<bs>":
			return Backspace, nil
		case "<del>":
			return Delete, nil
		}
		if _, ok := namedKeys[Code(name)]; ok {
			return Code(name), nil
		}
		if rest, ok := strings.CutPrefix(name, "<ctrl+"); ok {
			letter := strings.TrimSuffix(rest, ">")
			if len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z' {
				return Code(name), nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
	}
	if uniseg.GraphemeClusterCount(s) != 1 {
		return "", fmt.Errorf("%w: %q is not a single key", ErrUnknownKey, s)
	}
	if s == " " {
		return Space, nil
	}
	return Code(s), nil
}
