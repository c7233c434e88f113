// Package command defines the command table: an immutable mapping from key
// sequences to a closed set of operations.
package command

import (
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
)

// Operation is one of Move, SwitchMode, BufferOp, Paste or Search.
// The set is closed; the dispatcher switches over it exhaustively.
type Operation interface {
	// Kind returns a short name used in logs and listings.
	Kind() string
	isOperation()
}

// Move repositions the cursor, or grows the selection, by Count units.
// A zero Count moves once. AnchorDefault defers to the current mode.
type Move struct {
	Unit   cursor.Unit
	Count  int
	Anchor cursor.Anchor
}

// SwitchMode transitions the mode controller. A zero Width requests the
// configured width for Target.
type SwitchMode struct {
	Target mode.Mode
	Anchor cursor.Anchor
	Width  int
}

// BufferOp selects a range, stores it in Register and, for the delete
// operator, removes it. OpNone inherits the operator of the pending mode.
type BufferOp struct {
	Selection Selection
	Register  string
	Operator  mode.Operator
	Line      bool
}

// Paste inserts Register's contents before or after the cursor.
type Paste struct {
	Register string
	After    bool
}

// Search starts an incremental search.
type Search struct{}

func (Move) Kind() string       { return "move" }
func (SwitchMode) Kind() string { return "switch_mode" }
func (BufferOp) Kind() string   { return "buffer_op" }
func (Paste) Kind() string      { return "paste" }
func (Search) Kind() string     { return "search" }

func (Move) isOperation()       {}
func (SwitchMode) isOperation() {}
func (BufferOp) isOperation()   {}
func (Paste) isOperation()      {}
func (Search) isOperation()     {}

// Resolve returns the operator this op applies while in mode m.
func (b BufferOp) Resolve(m mode.Mode) mode.Operator {
	if b.Operator != mode.OpNone {
		return b.Operator
	}
	if m.IsPending() {
		return m.Operator
	}
	return mode.OpNone
}

// Selection materializes the range a BufferOp acts on.
type Selection interface {
	isSelection()
}

// SelectLine selects the cursor's line without its terminator.
type SelectLine struct{}

// SelectChar selects Count characters starting at the cursor.
type SelectChar struct {
	Count int
}

// SelectMotion grows the selection from the cursor by a motion.
type SelectMotion struct {
	Unit  cursor.Unit
	Count int
}

// SelectExisting uses whatever selection earlier moves established.
type SelectExisting struct{}

func (SelectLine) isSelection()     {}
func (SelectChar) isSelection()     {}
func (SelectMotion) isSelection()   {}
func (SelectExisting) isSelection() {}
