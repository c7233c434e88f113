package keymap

import (
	"fmt"
	"strings"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
)

// Operation names. OpUnbind removes an inherited default binding.
const (
	OpMove       = "move"
	OpSwitchMode = "switch_mode"
	OpBufferOp   = "buffer_op"
	OpPaste      = "paste"
	OpSearch     = "search"
	OpUnbind     = "unbind"
)

var anchors = map[string]cursor.Anchor{
	"":        cursor.AnchorDefault,
	"default": cursor.AnchorDefault,
	"move":    cursor.AnchorMove,
	"keep":    cursor.AnchorKeep,
}

var operators = map[string]mode.Operator{
	"":       mode.OpNone,
	"delete": mode.OpDelete,
	"yank":   mode.OpYank,
}

var selections = map[string]func(e Entry) (command.Selection, error){
	"line":     func(Entry) (command.Selection, error) { return command.SelectLine{}, nil },
	"existing": func(Entry) (command.Selection, error) { return command.SelectExisting{}, nil },
	"char": func(e Entry) (command.Selection, error) {
		return command.SelectChar{Count: max(e.Count, 1)}, nil
	},
	"motion": func(e Entry) (command.Selection, error) {
		unit, err := ParseUnit(e.Unit)
		if err != nil {
			return nil, err
		}
		return command.SelectMotion{Unit: unit, Count: e.Count}, nil
	},
}

func unknown(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownSymbol, kind, name)
}

// ParseUnit resolves a unit name such as "next_word".
func ParseUnit(name string) (cursor.Unit, error) {
	for _, u := range cursor.Units() {
		if u.String() == name {
			return u, nil
		}
	}
	return 0, unknown("unit", name)
}

// ParseAnchor resolves "default", "move" or "keep". Empty means default.
func ParseAnchor(name string) (cursor.Anchor, error) {
	if a, ok := anchors[strings.ToLower(name)]; ok {
		return a, nil
	}
	return 0, unknown("anchor", name)
}

// ParseOperator resolves "delete" or "yank". Empty means no operator.
func ParseOperator(name string) (mode.Operator, error) {
	if op, ok := operators[strings.ToLower(name)]; ok {
		return op, nil
	}
	return 0, unknown("operator", name)
}

// ParseMode resolves "normal", "insert" or "pending"; pending needs an
// operator, which may also be written inline as "pending:delete".
func ParseMode(name, operator string) (mode.Mode, error) {
	kind, inline, hasInline := strings.Cut(strings.ToLower(name), ":")
	if hasInline {
		operator = inline
	}
	switch kind {
	case "normal":
		return mode.Normal(), nil
	case "insert":
		return mode.Insert(), nil
	case "pending":
		op, err := ParseOperator(operator)
		if err != nil {
			return mode.Mode{}, err
		}
		if op == mode.OpNone {
			return mode.Mode{}, fmt.Errorf("%w: pending mode without operator", ErrUnknownSymbol)
		}
		return mode.Pending(op), nil
	default:
		return mode.Mode{}, unknown("mode", name)
	}
}

// descriptor resolves e into a table entry for seq. remove reports an
// unbind entry.
func (e Entry) descriptor(scope command.Scope, seq keys.Sequence) (d command.Descriptor, remove bool, err error) {
	d = command.Descriptor{
		ID:       e.ID,
		Sequence: seq,
		Scope:    scope,
		Help:     e.Help,
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("user.%s.%s", scope, seq)
	}
	if d.Operator, err = ParseOperator(e.Only); err != nil {
		return d, false, err
	}

	switch strings.ToLower(e.Op) {
	case OpMove:
		var m command.Move
		if m.Unit, err = ParseUnit(e.Unit); err != nil {
			return d, false, err
		}
		if m.Anchor, err = ParseAnchor(e.Anchor); err != nil {
			return d, false, err
		}
		m.Count = e.Count
		d.Op = m
	case OpSwitchMode, "mode":
		var s command.SwitchMode
		if s.Target, err = ParseMode(e.Mode, e.Operator); err != nil {
			return d, false, err
		}
		if s.Anchor, err = ParseAnchor(e.Anchor); err != nil {
			return d, false, err
		}
		s.Width = e.Width
		d.Op = s
	case OpBufferOp:
		b := command.BufferOp{Register: e.Register, Line: e.Line}
		if b.Operator, err = ParseOperator(e.Operator); err != nil {
			return d, false, err
		}
		build, ok := selections[strings.ToLower(e.Selection)]
		if !ok {
			return d, false, unknown("selection", e.Selection)
		}
		if b.Selection, err = build(e); err != nil {
			return d, false, err
		}
		d.Op = b
	case OpPaste:
		d.Op = command.Paste{Register: e.Register, After: e.After}
	case OpSearch:
		d.Op = command.Search{}
	case OpUnbind:
		return d, true, nil
	default:
		return d, false, unknown("op", e.Op)
	}
	return d, false, nil
}
