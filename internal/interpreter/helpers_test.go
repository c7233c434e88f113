package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
)

// newSession returns an interpreter over the default table attached to a
// buffer holding text.
func newSession(t *testing.T, text string, opts ...Option) (*Interpreter, *cursor.Buffer) {
	t.Helper()
	return newSessionWith(t, command.Default(), cursor.NewBuffer(text), opts...)
}

func newSessionWith(t *testing.T, table *command.Table, buf *cursor.Buffer, opts ...Option) (*Interpreter, *cursor.Buffer) {
	t.Helper()
	in := New(table, opts...)
	in.OnEditorAttached(buf)
	t.Cleanup(in.Shutdown)
	return in, buf
}

// press feeds every key of the description and returns the last outcome.
func press(t *testing.T, in *Interpreter, description string) Outcome {
	t.Helper()
	seq, err := keys.ParseSequence(description)
	require.NoError(t, err)
	var out Outcome
	for _, code := range seq {
		out = in.OnKeyPress(code)
	}
	return out
}

func at(line, column int) cursor.Position {
	return cursor.Position{Line: line, Column: column}
}
