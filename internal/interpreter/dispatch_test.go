package interpreter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/register"
)

func TestDeleteLine_FromPrefixTable(t *testing.T) {
	table := command.MustTable(command.Descriptor{
		ID:       "delete.line",
		Sequence: keys.MustParseSequence("dd"),
		Op: command.BufferOp{
			Selection: command.SelectLine{},
			Operator:  mode.OpDelete,
			Line:      true,
		},
	})
	in, buf := newSessionWith(t, table, cursor.NewBuffer("first\nsecond\nthird"))
	buf.SetPosition(at(1, 3))

	require.Equal(t, Consumed, press(t, in, "d"))
	require.Equal(t, keys.Sequence{"d"}, in.Pending(), "d is only a prefix")
	require.Equal(t, mode.Normal(), in.Mode())

	require.Equal(t, Consumed, press(t, in, "d"))
	require.Equal(t, []string{"first", "third"}, buf.Lines())
	require.Equal(t, register.Register{Text: "second", IsLine: true}, in.Registers().Get(""))
	require.Empty(t, in.Pending())
	require.Equal(t, mode.Normal(), in.Mode())
	require.NoError(t, in.LastError())
}

func TestDeleteLine_DefaultTable(t *testing.T) {
	in, buf := newSession(t, "first\nsecond\nthird")
	buf.SetPosition(at(1, 0))

	press(t, in, "d")
	require.Equal(t, mode.Pending(mode.OpDelete), in.Mode())
	press(t, in, "d")

	require.Equal(t, []string{"first", "third"}, buf.Lines())
	require.Equal(t, register.Register{Text: "second", IsLine: true}, in.Registers().Get(""))
	require.Equal(t, mode.Normal(), in.Mode())
	require.Equal(t, at(1, 0), buf.CurrentPosition())
}

func TestDeleteLine_LastAndOnlyLines(t *testing.T) {
	in, buf := newSession(t, "first\nlast")
	buf.SetPosition(at(1, 2))
	press(t, in, "dd")
	require.Equal(t, []string{"first"}, buf.Lines())
	require.Equal(t, register.Register{Text: "last", IsLine: true}, in.Registers().Get(""))

	press(t, in, "dd")
	require.Equal(t, []string{""}, buf.Lines(), "a document keeps one line")
	require.Equal(t, register.Register{Text: "first", IsLine: true}, in.Registers().Get(""))
}

func TestDeleteLine_IsOneUndoStep(t *testing.T) {
	in, buf := newSession(t, "a\nb\nc")
	buf.SetPosition(at(1, 0))
	press(t, in, "dd")

	require.Equal(t, 0, buf.EditDepth())
	require.True(t, buf.Undo())
	require.Equal(t, "a\nb\nc", buf.Text())
	require.False(t, buf.CanUndo())
}

func TestCutCharacter(t *testing.T) {
	in, buf := newSession(t, "cat")

	require.Equal(t, Consumed, press(t, in, "x"))

	require.Equal(t, "at", buf.Text())
	require.Equal(t, register.Register{Text: "c"}, in.Registers().Get(""))
	require.Equal(t, mode.Normal(), in.Mode())
	require.Equal(t, 0, buf.EditDepth())
}

func TestCutCharacter_AtLineEndKeepsRegister(t *testing.T) {
	in, buf := newSession(t, "ab")
	press(t, in, "x")
	buf.SetPosition(at(0, 1))

	press(t, in, "x")
	require.Equal(t, "b", buf.Text())
	require.Equal(t, register.Register{Text: "a"}, in.Registers().Get(""), "nothing to cut, register untouched")
}

func TestEscapeFromInsert_ThenDeadEnd(t *testing.T) {
	table := command.MustTable(command.Descriptor{
		ID:       "delete.char",
		Sequence: keys.MustParseSequence("x"),
		Op:       command.BufferOp{Selection: command.SelectChar{Count: 1}, Operator: mode.OpDelete},
	})
	in, buf := newSessionWith(t, table, cursor.NewBuffer("hello"), WithInitialMode(mode.Insert()))

	require.Equal(t, PassThrough, press(t, in, "h"))
	require.Equal(t, Consumed, press(t, in, "<escape>"))
	require.Equal(t, mode.Normal(), in.Mode())

	require.Equal(t, Consumed, press(t, in, "h"))
	require.Empty(t, in.Pending())
	require.Equal(t, Consumed, press(t, in, "h"))
	require.Empty(t, in.Pending())
	require.Equal(t, "hello", buf.Text())
	require.Equal(t, mode.Normal(), in.Mode())
}

func TestIncrementalSearch_MovesToFirstMatch(t *testing.T) {
	in, buf := newSession(t, "alpha\nbeta FOO foo\nfoo")

	press(t, in, "/")
	require.True(t, in.SearchActive())

	press(t, in, "f")
	require.Equal(t, at(1, 5), buf.CurrentPosition())
	press(t, in, "o")
	press(t, in, "o")
	require.Equal(t, at(1, 5), buf.CurrentPosition(), "first occurrence, case-insensitive")
	start, end, ok := buf.Highlighted()
	require.True(t, ok)
	require.Equal(t, "FOO", buf.Text()[start:end])
	require.Equal(t, "foo", in.SearchPattern())

	require.Equal(t, Consumed, press(t, in, "<enter>"))
	require.False(t, in.SearchActive())
	require.Equal(t, "", in.SearchPattern())
	require.Equal(t, at(1, 5), buf.CurrentPosition(), "commit leaves the match in place")
}

func TestSearch_NoMatchLeavesCursor(t *testing.T) {
	in, buf := newSession(t, "one two")
	press(t, in, "/tw")
	require.Equal(t, at(0, 4), buf.CurrentPosition())

	press(t, in, "z")
	require.Equal(t, "twz", in.SearchPattern())
	require.Equal(t, at(0, 4), buf.CurrentPosition())
	start, end, _ := buf.Highlighted()
	require.Equal(t, "tw", buf.Text()[start:end])
}

func TestSearch_Backspace(t *testing.T) {
	in, buf := newSession(t, "ab ac")
	press(t, in, "/ac")
	require.Equal(t, at(0, 3), buf.CurrentPosition())

	press(t, in, "<backspace>")
	require.Equal(t, "a", in.SearchPattern())
	require.Equal(t, at(0, 0), buf.CurrentPosition())

	press(t, in, "<backspace><backspace>")
	require.Equal(t, "", in.SearchPattern())
	require.True(t, in.SearchActive(), "backspace on empty pattern is a no-op")
}

func TestSearch_BackspaceDropsCombiningGrapheme(t *testing.T) {
	in, buf := newSession(t, "cafe caf\u00e9 cafe\u0301")
	press(t, in, "/cafe\u0301")
	require.Equal(t, "cafe\u0301", in.SearchPattern())
	require.Equal(t, at(0, 10), buf.CurrentPosition())

	press(t, in, "<backspace>")
	require.Equal(t, "caf", in.SearchPattern(), "the accent goes with its letter")
	require.Equal(t, at(0, 0), buf.CurrentPosition())
}

func TestSearch_ConsumesTableKeys(t *testing.T) {
	in, buf := newSession(t, "dx")
	press(t, in, "/x")
	require.Equal(t, "dx", buf.Text(), "x is a search character, not a cut")
	require.Equal(t, at(0, 1), buf.CurrentPosition())
	require.Equal(t, mode.Normal(), in.Mode())
}

func TestSearch_SpaceAndIgnoredKeys(t *testing.T) {
	in, buf := newSession(t, "ab cd")
	press(t, in, "/<tab>b<space>c")
	require.Equal(t, "b c", in.SearchPattern())
	require.Equal(t, at(0, 1), buf.CurrentPosition())
}

func TestEscape_CancelsSearch(t *testing.T) {
	in, buf := newSession(t, "foo")
	press(t, in, "/fo")

	press(t, in, "<escape>")
	require.False(t, in.SearchActive())
	require.Equal(t, "", in.SearchPattern())
	_, _, ok := buf.Highlighted()
	require.False(t, ok)

	press(t, in, "x")
	require.Equal(t, "oo", buf.Text(), "keys dispatch normally again")
}

func TestPrefixThenExact(t *testing.T) {
	in, buf := newSession(t, "one\ntwo\nthree")
	buf.SetPosition(at(2, 3))

	require.Equal(t, Consumed, press(t, in, "g"))
	require.Equal(t, keys.Sequence{"g"}, in.Pending())
	require.Equal(t, at(2, 3), buf.CurrentPosition())

	press(t, in, "g")
	require.Empty(t, in.Pending())
	require.Equal(t, at(0, 0), buf.CurrentPosition())
}

func TestPrefixThenDeadEnd(t *testing.T) {
	in, buf := newSession(t, "abc")
	press(t, in, "gq")
	require.Empty(t, in.Pending())

	press(t, in, "x")
	require.Equal(t, "bc", buf.Text(), "the discarded g does not leak into the next sequence")
}

func TestDeadEndInPendingAbortsOperator(t *testing.T) {
	in, buf := newSession(t, "abc")
	press(t, in, "d")
	require.Equal(t, mode.Pending(mode.OpDelete), in.Mode())

	require.Equal(t, Consumed, press(t, in, "q"))
	require.Equal(t, mode.Normal(), in.Mode())
	require.Empty(t, in.Pending())
	require.Equal(t, "abc", buf.Text())
}

func TestEscapeFromPending(t *testing.T) {
	in, buf := newSession(t, "abc")
	press(t, in, "y")
	require.Equal(t, cursor.AnchorKeep, in.modes.Anchor())

	press(t, in, "<escape>")
	require.Equal(t, mode.Normal(), in.Mode())
	require.Equal(t, cursor.AnchorMove, in.modes.Anchor())
	require.Equal(t, "abc", buf.Text())
}

func TestPendingOverridesGlobalEntry(t *testing.T) {
	table := command.MustTable(
		command.Descriptor{
			ID:       "operator.delete",
			Sequence: keys.MustParseSequence("d"),
			Op:       command.SwitchMode{Target: mode.Pending(mode.OpDelete)},
		},
		command.Descriptor{
			ID:       "move.word",
			Sequence: keys.MustParseSequence("w"),
			Op:       command.Move{Unit: cursor.NextWord},
		},
		command.Descriptor{
			ID:       "select.word",
			Sequence: keys.MustParseSequence("w"),
			Scope:    command.ScopePending,
			Op:       command.BufferOp{Selection: command.SelectMotion{Unit: cursor.NextWord}},
		},
	)
	in, buf := newSessionWith(t, table, cursor.NewBuffer("foo bar"))

	press(t, in, "w")
	require.Equal(t, at(0, 4), buf.CurrentPosition(), "global entry in normal mode")
	buf.SetPosition(at(0, 0))

	press(t, in, "dw")
	require.Equal(t, "bar", buf.Text(), "pending entry wins over the global one")
	require.Equal(t, register.Register{Text: "foo "}, in.Registers().Get(""))
	require.Equal(t, mode.Normal(), in.Mode())
}

func TestPendingPrefixOverridesGlobalEntry(t *testing.T) {
	table := command.MustTable(append(command.DefaultDescriptors(), command.Descriptor{
		ID:       "select.inner_word",
		Sequence: keys.MustParseSequence("iw"),
		Scope:    command.ScopePending,
		Op:       command.BufferOp{Selection: command.SelectMotion{Unit: cursor.NextWord, Count: 1}},
	})...)
	in, buf := newSessionWith(t, table, cursor.NewBuffer("foo bar"))

	press(t, in, "di")
	require.Equal(t, mode.Pending(mode.OpDelete), in.Mode(), "the global i must not fire")
	require.Equal(t, keys.Sequence{"i"}, in.Pending())

	press(t, in, "w")
	require.Equal(t, "bar", buf.Text())
	require.Equal(t, register.Register{Text: "foo "}, in.Registers().Get(""))
	require.Equal(t, mode.Normal(), in.Mode())
	require.Empty(t, in.Pending())

	press(t, in, "i")
	require.Equal(t, mode.Insert(), in.Mode(), "the global i still applies in normal mode")
}

func TestPendingFallsBackToGlobalEntry(t *testing.T) {
	in, buf := newSession(t, "abc")
	buf.SetPosition(at(0, 1))

	press(t, in, "dp")
	require.Equal(t, mode.Normal(), in.Mode(), "pending ends after the fallback operation")
	require.Equal(t, "abc", buf.Text(), "empty register paste is a no-op")
}

func TestMotionOperators(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		start    cursor.Position
		keys     string
		wantText string
		wantReg  register.Register
	}{
		{"delete word", "foo bar baz", at(0, 4), "dw", "foo baz", register.Register{Text: "bar "}},
		{"delete to line end", "foo bar", at(0, 3), "d$", "foo", register.Register{Text: " bar"}},
		{"delete to line start", "foo bar", at(0, 4), "d0", "bar", register.Register{Text: "foo "}},
		{"delete left", "abc", at(0, 2), "dh", "ac", register.Register{Text: "b"}},
		{"delete right", "abc", at(0, 0), "dl", "bc", register.Register{Text: "a"}},
		{"delete word backward", "foo bar", at(0, 4), "db", "bar", register.Register{Text: "foo "}},
		{"yank word", "foo bar", at(0, 0), "yw", "foo bar", register.Register{Text: "foo "}},
		{"yank line", "one\ntwo", at(1, 2), "yy", "one\ntwo", register.Register{Text: "two", IsLine: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, buf := newSession(t, tt.text)
			buf.SetPosition(tt.start)

			press(t, in, tt.keys)

			require.Equal(t, tt.wantText, buf.Text())
			require.Equal(t, tt.wantReg, in.Registers().Get(""))
			require.Equal(t, mode.Normal(), in.Mode())
			_, _, selected := buf.Selection()
			require.False(t, selected)
		})
	}
}

func TestYankLeavesCursorAtSelectionStart(t *testing.T) {
	in, buf := newSession(t, "foo bar")
	buf.SetPosition(at(0, 4))
	press(t, in, "yb")
	require.Equal(t, at(0, 0), buf.CurrentPosition())
}

func TestDeleteThenMoveInPendingDropsSelection(t *testing.T) {
	in, buf := newSession(t, "one\ntwo")
	press(t, in, "dj")
	require.Equal(t, mode.Normal(), in.Mode())
	require.Equal(t, "one\ntwo", buf.Text())
	_, _, selected := buf.Selection()
	require.False(t, selected)
}

func TestYankOperatorIgnoresDeleteLineEntry(t *testing.T) {
	in, buf := newSession(t, "one\ntwo")
	press(t, in, "yd")
	require.Equal(t, "one\ntwo", buf.Text())
	require.Equal(t, mode.Normal(), in.Mode())
}

func TestInsertMode(t *testing.T) {
	table := command.MustTable(
		command.Descriptor{
			ID:       "mode.insert",
			Sequence: keys.MustParseSequence("i"),
			Op:       command.SwitchMode{Target: mode.Insert()},
		},
		command.Descriptor{
			ID:       "insert.left",
			Sequence: keys.MustParseSequence("<ctrl+b>"),
			Scope:    command.ScopeInsert,
			Op:       command.Move{Unit: cursor.Left},
		},
	)
	in, buf := newSessionWith(t, table, cursor.NewBuffer("abc"))
	buf.SetPosition(at(0, 2))

	require.Equal(t, Consumed, press(t, in, "i"))
	require.Equal(t, mode.Insert(), in.Mode())

	require.Equal(t, PassThrough, press(t, in, "x"))
	require.Equal(t, PassThrough, press(t, in, "i"))
	require.Empty(t, in.Pending())

	require.Equal(t, Consumed, press(t, in, "<ctrl+b>"))
	require.Equal(t, at(0, 1), buf.CurrentPosition())
	require.Equal(t, mode.Insert(), in.Mode())
}

func TestMove_CountAndAnchor(t *testing.T) {
	table := command.MustTable(
		command.Descriptor{
			ID:       "move.right3",
			Sequence: keys.MustParseSequence("L"),
			Op:       command.Move{Unit: cursor.Right, Count: 3},
		},
		command.Descriptor{
			ID:       "select.right",
			Sequence: keys.MustParseSequence("S"),
			Op:       command.Move{Unit: cursor.Right, Anchor: cursor.AnchorKeep},
		},
	)
	in, buf := newSessionWith(t, table, cursor.NewBuffer("abcdef"))

	press(t, in, "L")
	require.Equal(t, at(0, 3), buf.CurrentPosition())

	press(t, in, "S")
	require.Equal(t, "d", buf.SelectedText())
}

func TestMove_UnsupportedUnit(t *testing.T) {
	buf := cursor.NewBuffer("abc", cursor.WithoutUnits(cursor.EndOfLine))
	in, _ := newSessionWith(t, command.Default(), buf)
	buf.SetPosition(at(0, 1))

	require.Equal(t, Consumed, press(t, in, "$"))
	require.ErrorIs(t, in.LastError(), ErrInvalidOperation)
	require.Equal(t, at(0, 1), buf.CurrentPosition())
	require.Empty(t, in.Pending())

	press(t, in, "l")
	require.NoError(t, in.LastError())
}

func TestBufferOp_UnsupportedMotionRestoresNormal(t *testing.T) {
	buf := cursor.NewBuffer("foo bar", cursor.WithoutUnits(cursor.NextWord))
	in, _ := newSessionWith(t, command.Default(), buf)

	press(t, in, "dw")
	require.ErrorIs(t, in.LastError(), ErrInvalidOperation)
	require.Equal(t, mode.Normal(), in.Mode())
	require.Equal(t, "foo bar", buf.Text())
	require.Equal(t, 0, buf.EditDepth())
	require.True(t, in.Registers().Get("").Empty())
}

func TestPaste(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		start    cursor.Position
		reg      register.Register
		keys     string
		wantText string
		wantPos  cursor.Position
	}{
		{"char after", "ac", at(0, 0), register.Register{Text: "b"}, "p", "abc", at(0, 2)},
		{"char before", "ac", at(0, 1), register.Register{Text: "b"}, "P", "abc", at(0, 2)},
		{"line after", "one\nthree", at(0, 1), register.Register{Text: "two", IsLine: true}, "p", "one\ntwo\nthree", at(1, 0)},
		{"line before", "one\nthree", at(1, 2), register.Register{Text: "two", IsLine: true}, "P", "one\ntwo\nthree", at(1, 0)},
		{"line before first line", "two", at(0, 2), register.Register{Text: "one", IsLine: true}, "P", "one\ntwo", at(0, 0)},
		{"line after last line", "one", at(0, 0), register.Register{Text: "two", IsLine: true}, "p", "one\ntwo", at(1, 0)},
		{"empty line register", "one", at(0, 0), register.Register{IsLine: true}, "p", "one\n", at(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, buf := newSession(t, tt.text)
			require.NoError(t, in.Registers().Set("", tt.reg.Text, tt.reg.IsLine))
			buf.SetPosition(tt.start)

			press(t, in, tt.keys)

			require.Equal(t, tt.wantText, buf.Text())
			require.Equal(t, tt.wantPos, buf.CurrentPosition())
			require.Equal(t, 0, buf.EditDepth())
			require.NoError(t, in.LastError())
		})
	}
}

func TestPaste_EmptyRegisterIsNoOp(t *testing.T) {
	in, buf := newSession(t, "abc")
	press(t, in, "pP")
	require.Equal(t, "abc", buf.Text())
	require.Equal(t, 0, buf.Edits())
	require.NoError(t, in.LastError())
}

func TestDeleteLineThenPasteMovesLine(t *testing.T) {
	in, buf := newSession(t, "a\nb\nc")
	press(t, in, "ddp")
	require.Equal(t, "b\na\nc", buf.Text())
}

func TestNamedRegisters(t *testing.T) {
	table := command.MustTable(
		command.Descriptor{
			ID:       "yank.char.a",
			Sequence: keys.MustParseSequence("a"),
			Op:       command.BufferOp{Selection: command.SelectChar{Count: 1}, Operator: mode.OpYank, Register: "A"},
		},
		command.Descriptor{
			ID:       "paste.a",
			Sequence: keys.MustParseSequence("p"),
			Op:       command.Paste{Register: "a", After: true},
		},
		command.Descriptor{
			ID:       "right",
			Sequence: keys.MustParseSequence("l"),
			Op:       command.Move{Unit: cursor.Right},
		},
		command.Descriptor{
			ID:       "cut.blackhole",
			Sequence: keys.MustParseSequence("x"),
			Op:       command.BufferOp{Selection: command.SelectChar{Count: 1}, Operator: mode.OpDelete, Register: register.BlackHole},
		},
	)
	in, buf := newSessionWith(t, table, cursor.NewBuffer("xyz"))

	press(t, in, "ala")
	require.Equal(t, register.Register{Text: "xy"}, in.Registers().Get("a"))
	require.Equal(t, register.Register{Text: "xy"}, in.Registers().Get(""))

	press(t, in, "x")
	require.Equal(t, "xz", buf.Text())
	require.Equal(t, register.Register{Text: "xy"}, in.Registers().Get(""), "black hole leaves registers alone")
}

func TestDetached(t *testing.T) {
	in := New(command.Default())
	t.Cleanup(in.Shutdown)
	require.False(t, in.Attached())

	require.Equal(t, Consumed, press(t, in, "x"))
	require.ErrorIs(t, in.LastError(), ErrDetached)
	require.Equal(t, mode.Normal(), in.Mode())

	press(t, in, "dd")
	require.ErrorIs(t, in.LastError(), ErrDetached)
	require.Equal(t, mode.Normal(), in.Mode())

	press(t, in, "i")
	require.Equal(t, mode.Insert(), in.Mode(), "mode switches do not need an editor")

	buf := cursor.NewBuffer("abc")
	in.OnEditorAttached(buf)
	require.True(t, in.Attached())
	require.Equal(t, mode.DefaultWidths().Insert, buf.VisualWidth(), "attach renders the current mode")

	press(t, in, "<escape>x")
	require.Equal(t, "bc", buf.Text())
}

func TestAttachNilIsIgnored(t *testing.T) {
	in := New(command.Default())
	in.OnEditorAttached(nil)
	require.False(t, in.Attached())
}

func TestCursorWidthFollowsMode(t *testing.T) {
	widths := mode.Widths{Normal: 3, Insert: 1, Pending: 5}
	in, buf := newSession(t, "abc", WithWidths(widths))
	require.Equal(t, 3, buf.VisualWidth())

	press(t, in, "d")
	require.Equal(t, 5, buf.VisualWidth())
	press(t, in, "<escape>i")
	require.Equal(t, 1, buf.VisualWidth())
	press(t, in, "<escape>")
	require.Equal(t, 3, buf.VisualWidth())
}

func TestShutdown(t *testing.T) {
	in, buf := newSession(t, "abc")
	events := in.Subscribe(context.Background())
	press(t, in, "g")

	in.Shutdown()
	in.Shutdown()

	require.Empty(t, in.Pending())
	require.False(t, in.Attached())
	require.Equal(t, PassThrough, press(t, in, "x"))
	require.Equal(t, "abc", buf.Text())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribe_ModeAndRegisterEvents(t *testing.T) {
	in, _ := newSession(t, "abc")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := in.Subscribe(ctx)

	press(t, in, "x")

	var types []pubsub.EventType
	var last Snapshot
	for len(types) < 3 {
		select {
		case ev := <-events:
			types = append(types, ev.Type)
			last = ev.Payload
		case <-time.After(time.Second):
			require.FailNow(t, "timed out", "got %v", types)
		}
	}
	require.Equal(t, []pubsub.EventType{
		pubsub.ModeChangedEvent,
		pubsub.RegisterWrittenEvent,
		pubsub.ModeChangedEvent,
	}, types)
	require.Equal(t, mode.Normal(), last.Mode)
}

func TestSessionIDIsUnique(t *testing.T) {
	a := New(command.Default())
	b := New(command.Default())
	require.NotEmpty(t, a.SessionID())
	require.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestSetTable(t *testing.T) {
	in, buf := newSession(t, "abc")
	press(t, in, "g")
	require.Len(t, in.Pending(), 1)

	in.SetTable(command.MustTable(command.Descriptor{
		ID:       "user.normal.q",
		Sequence: keys.MustParseSequence("q"),
		Op:       command.BufferOp{Selection: command.SelectChar{Count: 1}, Operator: mode.OpDelete},
	}))
	require.Empty(t, in.Pending())
	require.Equal(t, 1, in.Table().Len())

	press(t, in, "x")
	require.Equal(t, "abc", buf.Text())
	press(t, in, "q")
	require.Equal(t, "bc", buf.Text())

	in.SetTable(nil)
	require.Equal(t, 1, in.Table().Len())
}
