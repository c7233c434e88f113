package interpreter

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

func recordingTracer(t *testing.T) (*tracetest.SpanRecorder, Option) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, WithTracer(tp.Tracer("test"))
}

func keySpans(sr *tracetest.SpanRecorder) []sdktrace.ReadOnlySpan {
	var spans []sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		if s.Name() == tracing.SpanKeyPress {
			spans = append(spans, s)
		}
	}
	return spans
}

func attr(s sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range s.Attributes() {
		if kv.Key == attribute.Key(key) {
			return kv.Value.Emit()
		}
	}
	return ""
}

func eventNames(s sdktrace.ReadOnlySpan) []string {
	names := make([]string, 0, len(s.Events()))
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	return names
}

func TestTracing_PrefixThenExact(t *testing.T) {
	sr, opt := recordingTracer(t)
	in, buf := newSession(t, "one\ntwo", opt)
	buf.SetPosition(at(1, 2))

	press(t, in, "gg")

	spans := keySpans(sr)
	require.Len(t, spans, 2)

	require.Equal(t, tracing.MatchPrefix, attr(spans[0], tracing.AttrMatch))
	require.Equal(t, "consumed", attr(spans[0], tracing.AttrOutcome))
	require.Equal(t, in.SessionID(), attr(spans[0], tracing.AttrSessionID))
	require.Empty(t, attr(spans[0], tracing.AttrCommandID))

	require.Equal(t, tracing.MatchExact, attr(spans[1], tracing.AttrMatch))
	require.Equal(t, "move.document_start", attr(spans[1], tracing.AttrCommandID))
	require.Equal(t, "move", attr(spans[1], tracing.AttrOperation))
	require.Equal(t, "NORMAL", attr(spans[1], tracing.AttrModeAfter))
	require.Equal(t, at(0, 0), buf.CurrentPosition())
}

func TestTracing_AttachSpan(t *testing.T) {
	sr, opt := recordingTracer(t)
	in, _ := newSession(t, "text", opt)

	var attach []sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		if s.Name() == tracing.SpanAttach {
			attach = append(attach, s)
		}
	}
	require.Len(t, attach, 1)
	require.Equal(t, in.SessionID(), attr(attach[0], tracing.AttrSessionID))
}

func TestTracing_DeleteLineEvents(t *testing.T) {
	sr, opt := recordingTracer(t)
	in, _ := newSession(t, "one\ntwo", opt)

	press(t, in, "dd")

	spans := keySpans(sr)
	require.Len(t, spans, 2)
	require.Equal(t, "PENDING (delete)", attr(spans[0], tracing.AttrModeAfter))
	require.Equal(t, "operator.delete", attr(spans[0], tracing.AttrCommandID))
	require.Contains(t, eventNames(spans[0]), tracing.EventModeChanged)

	require.Equal(t, "delete.line", attr(spans[1], tracing.AttrCommandID))
	require.Equal(t, "PENDING (delete)", attr(spans[1], tracing.AttrModeBefore))
	require.Equal(t, "NORMAL", attr(spans[1], tracing.AttrModeAfter))
	require.Equal(t, []string{tracing.EventRegisterWritten, tracing.EventModeChanged}, eventNames(spans[1]))
}

func TestTracing_DeadEndEvent(t *testing.T) {
	sr, opt := recordingTracer(t)
	in, _ := newSession(t, "text", opt)

	press(t, in, "gq")

	spans := keySpans(sr)
	require.Len(t, spans, 2)
	require.Equal(t, tracing.MatchDeadEnd, attr(spans[1], tracing.AttrMatch))
	require.Equal(t, []string{tracing.EventSequenceAborted}, eventNames(spans[1]))
	require.Equal(t, "gq", spans[1].Events()[0].Attributes[0].Value.Emit())
}

func TestTracing_FaultMarksSpan(t *testing.T) {
	sr, opt := recordingTracer(t)
	buf := newFaultyBuffer("cat")
	buf.On("SetCursorVisualWidth", mock.Anything).Return()
	buf.On("RemoveSelectedText").Panic("widget gone")

	in := New(command.Default(), opt)
	t.Cleanup(in.Shutdown)
	in.OnEditorAttached(buf)

	press(t, in, "x")

	spans := keySpans(sr)
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Contains(t, spans[0].Status().Description, "widget gone")
	require.Contains(t, eventNames(spans[0]), tracing.EventOperationFailed)
	require.Equal(t, "NORMAL", attr(spans[0], tracing.AttrModeAfter))
}

func TestTracing_SearchPatternAttribute(t *testing.T) {
	sr, opt := recordingTracer(t)
	in, _ := newSession(t, "alpha beta", opt)

	press(t, in, "/be")

	spans := keySpans(sr)
	require.Len(t, spans, 3)
	require.Equal(t, "search.start", attr(spans[0], tracing.AttrCommandID))
	require.Equal(t, tracing.MatchSearch, attr(spans[2], tracing.AttrMatch))
	require.Equal(t, "be", attr(spans[2], tracing.AttrPattern))
}

func TestLogging_SessionFieldsAndDeadEnd(t *testing.T) {
	var out bytes.Buffer
	in, _ := newSession(t, "text", WithLogger(log.New(&out)))

	press(t, in, "q")

	logged := out.String()
	require.Contains(t, logged, "session started")
	require.Contains(t, logged, "editor attached")
	require.Contains(t, logged, "[DEBUG] [keys] sequence discarded")
	require.Contains(t, logged, "session="+in.SessionID())
	require.Contains(t, logged, "seq=q")
}

func TestLogging_FailureIsLoggedAsError(t *testing.T) {
	var out bytes.Buffer
	buf := cursor.NewBuffer("abc", cursor.WithoutUnits(cursor.NextWord))
	in, _ := newSessionWith(t, command.Default(), buf, WithLogger(log.New(&out)))

	press(t, in, "w")

	require.ErrorIs(t, in.LastError(), ErrInvalidOperation)
	require.Contains(t, out.String(), "[ERROR] [edit] operation failed")
	require.Contains(t, out.String(), "command=move.word_forward")
}

func TestLogging_DetachedIsDebugOnly(t *testing.T) {
	var out bytes.Buffer
	logger := log.New(&out)
	logger.SetMinLevel(log.LevelInfo)
	in := New(command.Default(), WithLogger(logger))
	t.Cleanup(in.Shutdown)

	press(t, in, "x")

	require.ErrorIs(t, in.LastError(), ErrDetached)
	require.NotContains(t, out.String(), "[ERROR]")
}

func TestLogging_ListenerReceivesEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.New(&bytes.Buffer{})
	sub := logger.NewListener(ctx)
	require.NotNil(t, sub)

	newSession(t, "text", WithLogger(logger))

	// The entry is already buffered on the subscription.
	msg, ok := sub.Listen()().(pubsub.Event[string])
	require.True(t, ok)
	require.Equal(t, pubsub.LoggedEvent, msg.Type)
	require.Contains(t, msg.Payload, "session started")
}
