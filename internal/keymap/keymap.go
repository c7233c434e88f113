// Package keymap loads command tables from YAML files.
//
// A keymap file maps key sequences to entries under one section per scope:
//
//	defaults: true
//	normal:
//	  gg: {op: move, unit: start_of_document}
//	  Y:  {op: buffer_op, operator: yank, selection: line, line: true}
//	pending:
//	  d:  {op: buffer_op, only: delete, selection: line, line: true}
//	  e:  {op: buffer_op, selection: motion, unit: next_word}
//	insert:
//	  <ctrl+b>: {op: move, unit: left}
//
// Every symbol is resolved once, when the file is loaded. An unknown
// symbol or key name fails the load with an error naming the sequence.
package keymap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
)

var (
	// ErrUnknownSymbol is returned for an op, unit, anchor, mode, selection
	// or operator name that has no meaning.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrMalformed is returned when the document does not have the keymap shape.
	ErrMalformed = errors.New("malformed keymap")
)

// Entry is one binding as written in a keymap file.
type Entry struct {
	ID        string `yaml:"id,omitempty"`
	Op        string `yaml:"op"`
	Unit      string `yaml:"unit,omitempty"`
	Count     int    `yaml:"count,omitempty"`
	Anchor    string `yaml:"anchor,omitempty"`
	Mode      string `yaml:"mode,omitempty"`
	Width     int    `yaml:"width,omitempty"`
	Selection string `yaml:"selection,omitempty"`
	Register  string `yaml:"register,omitempty"`
	// Operator is the operator of a buffer_op, or of the pending mode a
	// switch_mode enters.
	Operator string `yaml:"operator,omitempty"`
	// Only restricts a pending entry to one operator.
	Only  string `yaml:"only,omitempty"`
	Line  bool   `yaml:"line,omitempty"`
	After bool   `yaml:"after,omitempty"`
	Help  string `yaml:"help,omitempty"`
}

type document struct {
	// Defaults starts from the built-in bindings; entries then replace
	// bindings with the same scope, operator filter and sequence.
	Defaults bool      `yaml:"defaults"`
	Normal   yaml.Node `yaml:"normal"`
	Pending  yaml.Node `yaml:"pending"`
	Insert   yaml.Node `yaml:"insert"`
}

// LoadFile reads the keymap at path and builds its table.
func LoadFile(path string) (*command.Table, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the user's keymap
	if err != nil {
		return nil, fmt.Errorf("open keymap: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("keymap %s: %w", path, err)
	}
	return t, nil
}

// Load reads a keymap document and builds its table.
func Load(r io.Reader) (*command.Table, error) {
	descs, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return command.NewTable(descs...)
}

// Decode reads a keymap document into descriptors, in file order, after
// the built-in ones when the document asks for defaults.
func Decode(r io.Reader) ([]command.Descriptor, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}
		return nil, fmt.Errorf("parse keymap: %w", err)
	}

	var descs []command.Descriptor
	if doc.Defaults {
		descs = command.DefaultDescriptors()
	}

	sections := []struct {
		scope command.Scope
		node  *yaml.Node
	}{
		{command.ScopeNormal, &doc.Normal},
		{command.ScopePending, &doc.Pending},
		{command.ScopeInsert, &doc.Insert},
	}
	seen := make(map[string]bool)
	for _, sec := range sections {
		var err error
		descs, err = decodeSection(descs, seen, sec.scope, sec.node)
		if err != nil {
			return nil, err
		}
	}
	return descs, nil
}

func decodeSection(descs []command.Descriptor, seen map[string]bool, scope command.Scope, node *yaml.Node) ([]command.Descriptor, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return descs, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: section %s must be a mapping (line %d)", ErrMalformed, scope, node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		seq, err := keys.ParseSequence(keyNode.Value)
		if err != nil {
			return nil, fmt.Errorf("%s %q (line %d): %w", scope, keyNode.Value, keyNode.Line, err)
		}

		var e Entry
		if err := valueNode.Decode(&e); err != nil {
			return nil, fmt.Errorf("%s %q (line %d): %w", scope, keyNode.Value, valueNode.Line, err)
		}

		d, remove, err := e.descriptor(scope, seq)
		if err != nil {
			return nil, fmt.Errorf("%s %q (line %d): %w", scope, keyNode.Value, valueNode.Line, err)
		}
		// Within one file a sequence may be bound once per scope and filter.
		id := fmt.Sprintf("%s/%s/%s", d.Scope, d.Operator, d.Sequence)
		if seen[id] {
			return nil, fmt.Errorf("%s %q (line %d): %w", scope, keyNode.Value, keyNode.Line, command.ErrDuplicateSequence)
		}
		seen[id] = true

		descs = slices.DeleteFunc(descs, func(prev command.Descriptor) bool {
			return prev.Scope == d.Scope && prev.Operator == d.Operator && prev.Sequence.Equal(d.Sequence)
		})
		if !remove {
			descs = append(descs, d)
		}
	}
	return descs, nil
}
