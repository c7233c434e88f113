// Package mode holds the interpreter's mode state machine.
//
// A Controller is the only writer of the current mode. Every transition
// also sets the default anchor policy used by later moves and asks the
// attached cursor to render a mode-specific width.
package mode

import "github.com/andrei-shtanakov/Vimja/internal/cursor"

// Kind identifies the interpretation regime for incoming keys.
type Kind int

const (
	// KindNormal is the command mode keys are looked up in by default.
	KindNormal Kind = iota
	// KindInsert passes unclaimed keys through to the host.
	KindInsert
	// KindPending waits for the motion or selection of an operator.
	KindPending
)

// Operator is the action an operator-pending mode will apply.
type Operator int

const (
	OpNone Operator = iota
	OpDelete
	OpYank
)

// String returns the lowercase operator name.
func (o Operator) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpDelete:
		return "delete"
	case OpYank:
		return "yank"
	default:
		return "unknown"
	}
}

// Mode is the active mode. Operator is OpNone unless Kind is KindPending.
type Mode struct {
	Kind     Kind
	Operator Operator
}

// Normal returns the normal mode.
func Normal() Mode { return Mode{Kind: KindNormal} }

// Insert returns the insert mode.
func Insert() Mode { return Mode{Kind: KindInsert} }

// Pending returns the operator-pending mode for op.
func Pending(op Operator) Mode { return Mode{Kind: KindPending, Operator: op} }

// IsPending reports whether m waits for an operator target.
func (m Mode) IsPending() bool { return m.Kind == KindPending }

// Valid reports whether m is one of the four reachable modes.
func (m Mode) Valid() bool {
	switch m.Kind {
	case KindNormal, KindInsert:
		return m.Operator == OpNone
	case KindPending:
		return m.Operator == OpDelete || m.Operator == OpYank
	default:
		return false
	}
}

// String returns the status-line name of the mode.
func (m Mode) String() string {
	switch m.Kind {
	case KindNormal:
		return "NORMAL"
	case KindInsert:
		return "INSERT"
	case KindPending:
		switch m.Operator {
		case OpDelete:
			return "PENDING (delete)"
		case OpYank:
			return "PENDING (yank)"
		}
	}
	return "UNKNOWN"
}

// DefaultAnchor is the anchor policy a mode installs when a transition
// does not name one. Pending modes grow the selection; the others move.
func (m Mode) DefaultAnchor() cursor.Anchor {
	if m.IsPending() {
		return cursor.AnchorKeep
	}
	return cursor.AnchorMove
}
