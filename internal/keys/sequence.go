package keys

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Sequence is an ordered run of key codes. Its String form is the
// literal path into the command table.
type Sequence []Code

// String concatenates the codes.
func (s Sequence) String() string {
	var b strings.Builder
	for _, c := range s {
		b.WriteString(string(c))
	}
	return b.String()
}

// Append returns a new sequence with c appended; s is never aliased.
func (s Sequence) Append(c Code) Sequence {
	out := make(Sequence, len(s), len(s)+1)
	copy(out, s)
	return append(out, c)
}

// Equal reports whether both sequences hold the same codes.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// ParseSequence splits a key description like "dd", "gg" or "<ctrl+r>x"
// into codes. Bracketed names are resolved with Parse.
func ParseSequence(s string) (Sequence, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty sequence", ErrUnknownKey)
	}
	var seq Sequence
	rest := s
	state := -1
	for len(rest) > 0 {
		if rest[0] == '<' {
			if end := strings.IndexByte(rest, '>'); end > 1 {
				code, err := Parse(rest[:end+1])
				if err != nil {
					return nil, fmt.Errorf("sequence %q: %w", s, err)
				}
				seq = append(seq, code)
				rest = rest[end+1:]
				state = -1
				continue
			}
		}
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		code, err := Parse(cluster)
		if err != nil {
			return nil, fmt.Errorf("sequence %q: %w", s, err)
		}
		seq = append(seq, code)
	}
	return seq, nil
}

// MustParseSequence is ParseSequence for literals known to be valid.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic(err)
	}
	return seq
}
