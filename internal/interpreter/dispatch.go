package interpreter

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

// OnKeyPress handles one key. Every failure is contained here: the
// sequence is never left holding a completed or dead-end command, the
// mode never stays operator-pending after its operation, and no edit
// transaction stays open.
func (in *Interpreter) OnKeyPress(code keys.Code) Outcome {
	if in.closed {
		return PassThrough
	}

	before := in.modes.Mode()
	ctx, span := in.tracer.Start(context.Background(), tracing.SpanKeyPress, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, in.id),
		attribute.String(tracing.AttrKey, string(code)),
		attribute.String(tracing.AttrModeBefore, before.String()),
	))
	defer span.End()

	outcome, match := in.handle(ctx, code)

	span.SetAttributes(
		attribute.String(tracing.AttrMatch, match),
		attribute.String(tracing.AttrOutcome, outcome.String()),
		attribute.String(tracing.AttrModeAfter, in.modes.Mode().String()),
	)
	return outcome
}

func (in *Interpreter) handle(ctx context.Context, code keys.Code) (Outcome, string) {
	if code == keys.Escape {
		in.escape(ctx)
		return Consumed, tracing.MatchEscape
	}

	if in.search.Active() {
		in.feedSearch(ctx, code)
		return Consumed, tracing.MatchSearch
	}

	current := in.modes.Mode()
	if current.Kind == mode.KindInsert {
		d, ok := in.table.Lookup(current, keys.Sequence{code})
		if !ok {
			return PassThrough, tracing.MatchPassThrough
		}
		in.execute(ctx, d)
		return Consumed, tracing.MatchExact
	}

	seq := in.seq.Append(code)
	switch d, match := in.table.Resolve(current, seq); match {
	case command.Exact:
		in.seq = nil
		in.execute(ctx, d)
		return Consumed, tracing.MatchExact
	case command.Prefix:
		// Prefixes are strict, so a retained sequence is always shorter
		// than the table's longest entry.
		in.seq = seq
		in.log.Debug(log.CatKeys, "awaiting more keys", "seq", seq)
		return Consumed, tracing.MatchPrefix
	}

	in.seq = nil
	in.log.Debug(log.CatKeys, "sequence discarded", "seq", seq, "mode", current)
	trace.SpanFromContext(ctx).AddEvent(tracing.EventSequenceAborted,
		trace.WithAttributes(attribute.String(tracing.AttrSequence, seq.String())))
	if current.IsPending() {
		in.leavePending(ctx)
	}
	return Consumed, tracing.MatchDeadEnd
}

// escape is the universal reset: Normal mode, empty sequence, no search.
func (in *Interpreter) escape(ctx context.Context) {
	in.seq = nil
	if in.search.Active() {
		in.search.Reset()
		_ = in.call(func(a cursor.Adapter) error {
			a.Highlight(0, 0)
			return nil
		})
		in.publish(pubsub.SearchUpdatedEvent, "")
	}
	in.leavePending(ctx)
}

// execute runs d and enforces that an operation started while
// operator-pending always ends in Normal mode.
func (in *Interpreter) execute(ctx context.Context, d command.Descriptor) {
	started := in.modes.Mode()
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String(tracing.AttrCommandID, d.ID),
		attribute.String(tracing.AttrOperation, d.Op.Kind()),
		attribute.String(tracing.AttrSequence, d.Sequence.String()),
	)

	err := in.run(ctx, d.Op, started)
	in.lastErr = err
	if err != nil {
		in.fail(ctx, d.ID, err)
	} else {
		in.log.Debug(log.CatKeys, "executed", "command", d.ID, "op", d.Op.Kind())
	}

	if started.IsPending() {
		in.leavePending(ctx)
	}
}

func (in *Interpreter) run(ctx context.Context, op command.Operation, started mode.Mode) error {
	switch op := op.(type) {
	case command.Move:
		return in.move(op)
	case command.SwitchMode:
		return in.switchMode(ctx, op.Target, op.Anchor, op.Width)
	case command.BufferOp:
		return in.bufferOp(ctx, op, started)
	case command.Paste:
		return in.paste(op)
	case command.Search:
		in.startSearch()
		return nil
	default:
		return ErrInvalidOperation
	}
}

// fail logs err and marks the span. Detachment is expected before the
// host wires an editor and is only logged at debug level.
func (in *Interpreter) fail(ctx context.Context, what string, err error) {
	in.lastErr = err
	if errors.Is(err, ErrDetached) {
		in.log.Debug(log.CatEdit, "skipped without editor", "command", what)
		return
	}
	in.log.ErrorErr(log.CatEdit, "operation failed", err, "command", what)
	span := trace.SpanFromContext(ctx)
	span.AddEvent(tracing.EventOperationFailed, trace.WithAttributes(
		attribute.String(tracing.AttrCommandID, what),
		attribute.String(tracing.AttrErrorMessage, err.Error()),
	))
	span.SetStatus(codes.Error, err.Error())
}

// switchMode is the only path to the mode controller's Switch. The
// controller commits the new mode before asking the adapter for a cursor
// width, so a faulting adapter cannot strand the old mode.
func (in *Interpreter) switchMode(ctx context.Context, target mode.Mode, anchor cursor.Anchor, width int) error {
	from := in.modes.Mode()
	err := protect(func() error {
		in.modes.Switch(target, anchor, width)
		return nil
	})
	if to := in.modes.Mode(); to != from {
		in.log.Debug(log.CatMode, "mode changed", "from", from, "to", to)
		trace.SpanFromContext(ctx).AddEvent(tracing.EventModeChanged, trace.WithAttributes(
			attribute.String(tracing.AttrModeBefore, from.String()),
			attribute.String(tracing.AttrModeAfter, to.String()),
		))
		in.publish(pubsub.ModeChangedEvent, "")
	}
	return err
}

// leavePending returns to Normal and drops any selection the pending
// mode grew.
func (in *Interpreter) leavePending(ctx context.Context) {
	if err := in.switchMode(ctx, mode.Normal(), cursor.AnchorDefault, 0); err != nil {
		in.fail(ctx, "mode.normal", err)
	}
	if err := in.call(func(a cursor.Adapter) error {
		a.CollapseSelection()
		return nil
	}); err != nil && !errors.Is(err, ErrDetached) {
		in.fail(ctx, "selection.collapse", err)
	}
}
