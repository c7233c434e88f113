package interpreter

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

func (in *Interpreter) startSearch() {
	in.search.Start()
	in.log.Debug(log.CatSearch, "search started")
	in.publish(pubsub.SearchUpdatedEvent, "")
}

// feedSearch routes a key to the active search. Enter commits and leaves
// the last match in place; non-printable keys other than backspace are
// ignored.
func (in *Interpreter) feedSearch(ctx context.Context, code keys.Code) {
	defer func() {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String(tracing.AttrPattern, in.search.Pattern()))
	}()

	switch code {
	case keys.Enter:
		in.log.Debug(log.CatSearch, "search committed", "pattern", in.search.Pattern())
		in.search.Reset()
	case keys.Backspace:
		if !in.search.Backspace() {
			return
		}
		in.seekMatch(ctx)
	default:
		text := code.Text()
		if text == "" {
			return
		}
		in.search.Append(text)
		in.seekMatch(ctx)
	}
	in.publish(pubsub.SearchUpdatedEvent, "")
}

// seekMatch moves the cursor to the first case-insensitive match of the
// pattern in the whole document and highlights it. Without a match the
// cursor and highlight stay where they were.
func (in *Interpreter) seekMatch(ctx context.Context) {
	pattern := in.search.Pattern()
	if pattern == "" {
		return
	}
	err := in.call(func(a cursor.Adapter) error {
		m, ok := in.matcher.Find(a.Text(), pattern)
		if !ok {
			in.log.Debug(log.CatSearch, "no match", "pattern", pattern)
			return nil
		}
		a.Seek(m.Start)
		a.Highlight(m.Start, m.End)
		return nil
	})
	if err != nil {
		in.fail(ctx, "search.seek", err)
	}
}
