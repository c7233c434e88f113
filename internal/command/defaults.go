package command

import (
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
)

func move(id, seq string, unit cursor.Unit, help string) Descriptor {
	return Descriptor{
		ID:       id,
		Sequence: keys.MustParseSequence(seq),
		Scope:    ScopeNormal,
		Op:       Move{Unit: unit, Count: 1},
		Help:     help,
	}
}

func motion(id, seq string, unit cursor.Unit, help string) Descriptor {
	return Descriptor{
		ID:       id,
		Sequence: keys.MustParseSequence(seq),
		Scope:    ScopePending,
		Op:       BufferOp{Selection: SelectMotion{Unit: unit, Count: 1}},
		Help:     help,
	}
}

// DefaultDescriptors returns the built-in bindings.
func DefaultDescriptors() []Descriptor {
	return []Descriptor{
		move("move.left", "h", cursor.Left, "Move left"),
		move("move.down", "j", cursor.Down, "Move down"),
		move("move.up", "k", cursor.Up, "Move up"),
		move("move.right", "l", cursor.Right, "Move right"),
		move("move.left", "<left>", cursor.Left, "Move left"),
		move("move.down", "<down>", cursor.Down, "Move down"),
		move("move.up", "<up>", cursor.Up, "Move up"),
		move("move.right", "<right>", cursor.Right, "Move right"),
		move("move.line_start", "0", cursor.StartOfLine, "Start of line"),
		move("move.line_end", "$", cursor.EndOfLine, "End of line"),
		move("move.word_forward", "w", cursor.NextWord, "Next word"),
		move("move.word_backward", "b", cursor.PreviousWord, "Previous word"),
		move("move.document_start", "gg", cursor.StartOfDocument, "Start of document"),
		move("move.document_end", "G", cursor.EndOfDocument, "End of document"),
		{
			ID:       "mode.insert",
			Sequence: keys.MustParseSequence("i"),
			Op:       SwitchMode{Target: mode.Insert()},
			Help:     "Insert mode",
		},
		{
			ID:       "operator.delete",
			Sequence: keys.MustParseSequence("d"),
			Op:       SwitchMode{Target: mode.Pending(mode.OpDelete), Anchor: cursor.AnchorKeep},
			Help:     "Delete (waits for a motion)",
		},
		{
			ID:       "operator.yank",
			Sequence: keys.MustParseSequence("y"),
			Op:       SwitchMode{Target: mode.Pending(mode.OpYank), Anchor: cursor.AnchorKeep},
			Help:     "Yank (waits for a motion)",
		},
		{
			ID:       "delete.char",
			Sequence: keys.MustParseSequence("x"),
			Op:       BufferOp{Selection: SelectChar{Count: 1}, Operator: mode.OpDelete},
			Help:     "Cut character",
		},
		{
			ID:       "paste.after",
			Sequence: keys.MustParseSequence("p"),
			Op:       Paste{After: true},
			Help:     "Paste after cursor",
		},
		{
			ID:       "paste.before",
			Sequence: keys.MustParseSequence("P"),
			Op:       Paste{},
			Help:     "Paste before cursor",
		},
		{
			ID:       "search.start",
			Sequence: keys.MustParseSequence("/"),
			Op:       Search{},
			Help:     "Search",
		},
		{
			ID:       "delete.line",
			Sequence: keys.MustParseSequence("d"),
			Scope:    ScopePending,
			Operator: mode.OpDelete,
			Op:       BufferOp{Selection: SelectLine{}, Line: true},
			Help:     "Delete line",
		},
		{
			ID:       "yank.line",
			Sequence: keys.MustParseSequence("y"),
			Scope:    ScopePending,
			Operator: mode.OpYank,
			Op:       BufferOp{Selection: SelectLine{}, Line: true},
			Help:     "Yank line",
		},
		motion("select.left", "h", cursor.Left, "Character to the left"),
		motion("select.right", "l", cursor.Right, "Character to the right"),
		motion("select.word_forward", "w", cursor.NextWord, "To next word"),
		motion("select.word_backward", "b", cursor.PreviousWord, "To previous word"),
		motion("select.line_end", "$", cursor.EndOfLine, "To end of line"),
		motion("select.line_start", "0", cursor.StartOfLine, "To start of line"),
	}
}

// Default returns the built-in table.
func Default() *Table {
	return MustTable(DefaultDescriptors()...)
}
