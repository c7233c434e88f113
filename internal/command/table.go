package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/register"
)

var (
	ErrEmptySequence     = errors.New("empty key sequence")
	ErrDuplicateSequence = errors.New("duplicate key sequence")
	ErrInvalidEntry      = errors.New("invalid command entry")
)

// Scope is the mode family an entry applies in.
type Scope int

const (
	ScopeNormal Scope = iota
	ScopePending
	ScopeInsert
)

func (s Scope) String() string {
	switch s {
	case ScopeNormal:
		return "normal"
	case ScopePending:
		return "pending"
	case ScopeInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Descriptor binds a key sequence to an operation.
type Descriptor struct {
	// ID is a dotted identifier such as "delete.line", used in logs.
	ID       string
	Sequence keys.Sequence
	Scope    Scope
	// Operator limits a pending entry to one operator. OpNone matches both.
	Operator mode.Operator
	Op       Operation
	Help     string
}

type layer struct {
	scope Scope
	op    mode.Operator
}

// Table is the immutable command table. The zero value is not usable;
// build one with NewTable.
type Table struct {
	entries  map[layer]map[string]Descriptor
	prefixes map[layer]map[string]struct{}
	order    []Descriptor
	maxLen   int
}

// NewTable validates descs and indexes them by sequence and prefix.
func NewTable(descs ...Descriptor) (*Table, error) {
	t := &Table{
		entries:  make(map[layer]map[string]Descriptor),
		prefixes: make(map[layer]map[string]struct{}),
	}
	for _, d := range descs {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("%s %q: %w", d.Scope, d.Sequence, err)
		}
		l := layer{scope: d.Scope, op: d.Operator}
		key := d.Sequence.String()
		if t.entries[l] == nil {
			t.entries[l] = make(map[string]Descriptor)
			t.prefixes[l] = make(map[string]struct{})
		}
		if prev, ok := t.entries[l][key]; ok {
			return nil, fmt.Errorf("%s %q: %w (already bound to %s)", d.Scope, key, ErrDuplicateSequence, prev.ID)
		}
		d.Sequence = slices.Clone(d.Sequence)
		t.entries[l][key] = d
		for i := 1; i < len(d.Sequence); i++ {
			t.prefixes[l][d.Sequence[:i].String()] = struct{}{}
		}
		t.order = append(t.order, d)
		t.maxLen = max(t.maxLen, len(d.Sequence))
	}
	return t, nil
}

// MustTable is NewTable for tables known to be valid.
func MustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic(err)
	}
	return t
}

func validate(d Descriptor) error {
	if len(d.Sequence) == 0 {
		return ErrEmptySequence
	}
	switch d.Scope {
	case ScopeNormal, ScopePending:
	case ScopeInsert:
		if len(d.Sequence) != 1 {
			return fmt.Errorf("%w: insert entries are single keys", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown scope %d", ErrInvalidEntry, d.Scope)
	}
	if d.Operator != mode.OpNone && d.Scope != ScopePending {
		return fmt.Errorf("%w: operator filter outside pending scope", ErrInvalidEntry)
	}
	if d.Operator != mode.OpNone && !mode.Pending(d.Operator).Valid() {
		return fmt.Errorf("%w: unknown operator %d", ErrInvalidEntry, d.Operator)
	}
	return validateOp(d.Op, d.Scope)
}

func validateOp(op Operation, scope Scope) error {
	switch op := op.(type) {
	case Move:
		if !op.Unit.Valid() {
			return fmt.Errorf("%w: unknown unit %d", ErrInvalidEntry, op.Unit)
		}
		if op.Count < 0 {
			return fmt.Errorf("%w: negative count", ErrInvalidEntry)
		}
	case SwitchMode:
		if !op.Target.Valid() {
			return fmt.Errorf("%w: unknown target mode", ErrInvalidEntry)
		}
		if op.Width < 0 {
			return fmt.Errorf("%w: negative width", ErrInvalidEntry)
		}
	case BufferOp:
		if op.Operator == mode.OpNone && scope != ScopePending {
			return fmt.Errorf("%w: buffer op needs an operator outside pending scope", ErrInvalidEntry)
		}
		if op.Operator != mode.OpNone && !mode.Pending(op.Operator).Valid() {
			return fmt.Errorf("%w: unknown operator %d", ErrInvalidEntry, op.Operator)
		}
		if !register.ValidName(op.Register) {
			return fmt.Errorf("%w: register %q", ErrInvalidEntry, op.Register)
		}
		return validateSelection(op.Selection)
	case Paste:
		if !register.ValidName(op.Register) {
			return fmt.Errorf("%w: register %q", ErrInvalidEntry, op.Register)
		}
	case Search:
	case nil:
		return fmt.Errorf("%w: missing operation", ErrInvalidEntry)
	default:
		return fmt.Errorf("%w: unsupported operation %T", ErrInvalidEntry, op)
	}
	return nil
}

func validateSelection(sel Selection) error {
	switch sel := sel.(type) {
	case SelectLine, SelectExisting:
	case SelectChar:
		if sel.Count < 0 {
			return fmt.Errorf("%w: negative count", ErrInvalidEntry)
		}
	case SelectMotion:
		if !sel.Unit.Valid() {
			return fmt.Errorf("%w: unknown unit %d", ErrInvalidEntry, sel.Unit)
		}
		if sel.Count < 0 {
			return fmt.Errorf("%w: negative count", ErrInvalidEntry)
		}
	case nil:
		return fmt.Errorf("%w: missing selection", ErrInvalidEntry)
	default:
		return fmt.Errorf("%w: unsupported selection %T", ErrInvalidEntry, sel)
	}
	return nil
}

// layers returns the lookup chain for m, highest priority first. Pending
// modes consult the operator-specific entries, then the shared pending
// entries, then the normal table.
func layers(m mode.Mode) []layer {
	switch m.Kind {
	case mode.KindInsert:
		return []layer{{scope: ScopeInsert}}
	case mode.KindPending:
		return []layer{
			{scope: ScopePending, op: m.Operator},
			{scope: ScopePending},
			{scope: ScopeNormal},
		}
	default:
		return []layer{{scope: ScopeNormal}}
	}
}

// Match is the result of resolving a key sequence.
type Match int

const (
	// NoMatch means seq neither names nor starts any reachable entry.
	NoMatch Match = iota
	// Exact means seq names an entry.
	Exact
	// Prefix means seq is a strict prefix of an entry and more keys may follow.
	Prefix
)

// Resolve walks the layers of m from the highest priority down. The first
// layer where seq is bound, or is a strict prefix of a binding, decides:
// an exact entry wins over a longer one in the same layer, and a lower
// layer is only consulted when seq means nothing in the ones above it.
func (t *Table) Resolve(m mode.Mode, seq keys.Sequence) (Descriptor, Match) {
	key := seq.String()
	for _, l := range layers(m) {
		if d, ok := t.entries[l][key]; ok {
			return d, Exact
		}
		if _, ok := t.prefixes[l][key]; ok {
			return Descriptor{}, Prefix
		}
	}
	return Descriptor{}, NoMatch
}

// Lookup returns the highest priority entry bound to seq in mode m,
// ignoring longer entries. Dispatch goes through Resolve.
func (t *Table) Lookup(m mode.Mode, seq keys.Sequence) (Descriptor, bool) {
	key := seq.String()
	for _, l := range layers(m) {
		if d, ok := t.entries[l][key]; ok {
			return d, true
		}
	}
	return Descriptor{}, false
}

// HasPrefix reports whether seq is a strict prefix of an entry reachable in m.
func (t *Table) HasPrefix(m mode.Mode, seq keys.Sequence) bool {
	key := seq.String()
	for _, l := range layers(m) {
		if _, ok := t.prefixes[l][key]; ok {
			return true
		}
	}
	return false
}

// MaxLen returns the length of the longest sequence in the table.
func (t *Table) MaxLen() int {
	return t.maxLen
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.order)
}

// Descriptors returns every entry in the order they were given.
func (t *Table) Descriptors() []Descriptor {
	return slices.Clone(t.order)
}

// Entries returns the entries of scope in the order they were given.
func (t *Table) Entries(scope Scope) []Descriptor {
	var out []Descriptor
	for _, d := range t.order {
		if d.Scope == scope {
			out = append(out, d)
		}
	}
	return out
}
