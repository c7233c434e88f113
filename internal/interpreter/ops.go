package interpreter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

func unsupported(unit cursor.Unit) error {
	return fmt.Errorf("%w: unit %s is not supported by the editor", ErrInvalidOperation, unit)
}

// moveBy resolves unit against the adapter before moving, so an
// unsupported unit leaves the cursor untouched.
func moveBy(a cursor.Adapter, unit cursor.Unit, anchor cursor.Anchor, count int) (bool, error) {
	if !unit.Valid() || !a.Supports(unit) {
		return false, unsupported(unit)
	}
	return a.MoveBy(unit, anchor, max(count, 1)), nil
}

func (in *Interpreter) move(op command.Move) error {
	return in.call(func(a cursor.Adapter) error {
		anchor := op.Anchor
		if anchor == cursor.AnchorDefault {
			anchor = in.modes.Anchor()
		}
		_, err := moveBy(a, op.Unit, anchor, op.Count)
		return err
	})
}

// bufferOp selects a range, captures it into a register and, for the
// delete operator, removes it. Issued from Normal mode it runs inside
// the operator-pending mode of its own operator.
func (in *Interpreter) bufferOp(ctx context.Context, op command.BufferOp, started mode.Mode) error {
	operator := op.Resolve(started)
	if operator == mode.OpNone {
		return fmt.Errorf("%w: buffer op without operator", ErrInvalidOperation)
	}
	if in.adapter == nil {
		return ErrDetached
	}
	if !started.IsPending() {
		if err := in.switchMode(ctx, mode.Pending(operator), cursor.AnchorKeep, 0); err != nil {
			in.leavePending(ctx)
			return err
		}
		defer in.leavePending(ctx)
	}

	var written bool
	err := in.edit(func(a cursor.Adapter) error {
		if err := selectRange(a, op.Selection); err != nil {
			return err
		}
		text := a.SelectedText()
		if text == "" && !op.Line {
			return nil
		}
		if err := in.registers.Set(op.Register, text, op.Line); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		written = true

		if operator != mode.OpDelete {
			a.CollapseSelection()
			return nil
		}
		a.RemoveSelectedText()
		if op.Line {
			removeLineBreak(a)
		}
		return nil
	})
	if written {
		in.log.Debug(log.CatEdit, "register written", "register", op.Register, "operator", operator, "line", op.Line)
		trace.SpanFromContext(ctx).AddEvent(tracing.EventRegisterWritten, trace.WithAttributes(
			attribute.String(tracing.AttrRegister, op.Register),
			attribute.Bool(tracing.AttrRegisterLine, op.Line),
		))
		in.publish(pubsub.RegisterWrittenEvent, op.Register)
	}
	return err
}

// selectRange materializes sel as the adapter's selection.
func selectRange(a cursor.Adapter, sel command.Selection) error {
	switch sel := sel.(type) {
	case command.SelectLine:
		if _, err := moveBy(a, cursor.StartOfLine, cursor.AnchorMove, 1); err != nil {
			return err
		}
		_, err := moveBy(a, cursor.EndOfLine, cursor.AnchorKeep, 1)
		return err
	case command.SelectChar:
		a.CollapseSelection()
		_, err := moveBy(a, cursor.Right, cursor.AnchorKeep, sel.Count)
		return err
	case command.SelectMotion:
		_, err := moveBy(a, sel.Unit, cursor.AnchorKeep, sel.Count)
		return err
	case command.SelectExisting:
		return nil
	default:
		return fmt.Errorf("%w: selection %T", ErrInvalidOperation, sel)
	}
}

// removeLineBreak deletes the line break left behind by removing a whole
// line's text, so no blank line remains. The line below moves up; on the
// last line the break before it goes instead. A single-line document
// keeps its one, now empty, line.
func removeLineBreak(a cursor.Adapter) {
	if a.MoveBy(cursor.Down, cursor.AnchorMove, 1) {
		a.MoveBy(cursor.Up, cursor.AnchorMove, 1)
		a.MoveBy(cursor.StartOfLine, cursor.AnchorMove, 1)
		a.DeleteForward(1)
		return
	}
	if a.MoveBy(cursor.Up, cursor.AnchorMove, 1) {
		a.MoveBy(cursor.EndOfLine, cursor.AnchorMove, 1)
		a.DeleteForward(1)
		a.MoveBy(cursor.StartOfLine, cursor.AnchorMove, 1)
	}
}

// paste inserts a register. Line registers always land on a fresh line,
// above the cursor line unless After is set; character registers go at
// the cursor, or one position right of it with After.
func (in *Interpreter) paste(op command.Paste) error {
	reg := in.registers.Get(op.Register)
	if reg.Empty() && !reg.IsLine {
		return in.call(func(cursor.Adapter) error { return nil })
	}
	return in.edit(func(a cursor.Adapter) error {
		if !reg.IsLine {
			if op.After {
				a.MoveBy(cursor.Right, cursor.AnchorMove, 1)
			}
			a.InsertText(reg.Text)
			return nil
		}

		switch {
		case op.After:
			a.MoveBy(cursor.EndOfLine, cursor.AnchorMove, 1)
			a.InsertLine()
		case a.MoveBy(cursor.Up, cursor.AnchorMove, 1):
			a.MoveBy(cursor.EndOfLine, cursor.AnchorMove, 1)
			a.InsertLine()
		default:
			// First line: open a line above it by splitting at column 0.
			a.MoveBy(cursor.StartOfLine, cursor.AnchorMove, 1)
			a.InsertLine()
			a.MoveBy(cursor.Up, cursor.AnchorMove, 1)
		}
		a.InsertText(reg.Text)
		a.MoveBy(cursor.StartOfLine, cursor.AnchorMove, 1)
		return nil
	})
}
