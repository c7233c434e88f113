package keymap

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
)

// Encode writes descs as a keymap document that Load reads back into an
// equivalent table.
func Encode(descs []command.Descriptor) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	sections := map[command.Scope]*yaml.Node{}
	for _, scope := range []command.Scope{command.ScopeNormal, command.ScopePending, command.ScopeInsert} {
		sec := &yaml.Node{Kind: yaml.MappingNode}
		sections[scope] = sec
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: scope.String()}, sec)
	}

	for _, d := range descs {
		sec, ok := sections[d.Scope]
		if !ok {
			return nil, fmt.Errorf("%s %q: %w: scope", d.Scope, d.Sequence, ErrUnknownSymbol)
		}
		e, err := entryFor(d)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", d.Scope, d.Sequence, err)
		}
		var value yaml.Node
		if err := value.Encode(e); err != nil {
			return nil, err
		}
		value.Style = yaml.FlowStyle
		sec.Content = append(sec.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: d.Sequence.String(), Style: yaml.DoubleQuotedStyle}, &value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func entryFor(d command.Descriptor) (Entry, error) {
	e := Entry{ID: d.ID, Help: d.Help, Only: operatorName(d.Operator)}
	switch op := d.Op.(type) {
	case command.Move:
		e.Op = OpMove
		e.Unit = op.Unit.String()
		e.Count = op.Count
		e.Anchor = anchorName(op.Anchor)
	case command.SwitchMode:
		e.Op = OpSwitchMode
		e.Mode = modeName(op.Target)
		e.Operator = operatorName(op.Target.Operator)
		e.Anchor = anchorName(op.Anchor)
		e.Width = op.Width
	case command.BufferOp:
		e.Op = OpBufferOp
		e.Operator = operatorName(op.Operator)
		e.Register = op.Register
		e.Line = op.Line
		switch sel := op.Selection.(type) {
		case command.SelectLine:
			e.Selection = "line"
		case command.SelectExisting:
			e.Selection = "existing"
		case command.SelectChar:
			e.Selection = "char"
			e.Count = sel.Count
		case command.SelectMotion:
			e.Selection = "motion"
			e.Unit = sel.Unit.String()
			e.Count = sel.Count
		default:
			return e, fmt.Errorf("%w: selection %T", ErrUnknownSymbol, sel)
		}
	case command.Paste:
		e.Op = OpPaste
		e.Register = op.Register
		e.After = op.After
	case command.Search:
		e.Op = OpSearch
	default:
		return e, fmt.Errorf("%w: operation %T", ErrUnknownSymbol, op)
	}
	return e, nil
}

func operatorName(op mode.Operator) string {
	if op == mode.OpNone {
		return ""
	}
	return op.String()
}

func anchorName(a cursor.Anchor) string {
	if a == cursor.AnchorDefault {
		return ""
	}
	return a.String()
}

func modeName(m mode.Mode) string {
	switch m.Kind {
	case mode.KindInsert:
		return "insert"
	case mode.KindPending:
		return "pending"
	default:
		return "normal"
	}
}
