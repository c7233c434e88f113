// Package register stores yanked and cut text.
package register

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unicode"
)

const (
	// Unnamed is the default register; every write to a named register
	// is mirrored into it.
	Unnamed = `"`
	// BlackHole discards everything written to it.
	BlackHole = "_"
)

// Register holds text and whether it spans whole lines. The two fields are
// always written together.
type Register struct {
	Text   string
	IsLine bool
}

// Empty reports whether the register holds no text.
func (r Register) Empty() bool { return r.Text == "" }

// ValidName reports whether name addresses a register. The empty name is
// the unnamed register.
func ValidName(name string) bool {
	switch name {
	case "", Unnamed, BlackHole:
		return true
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return false
	}
	r := runes[0]
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// Store is the set of registers owned by one interpreter session.
type Store struct {
	mu    sync.RWMutex
	slots map[string]Register
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{slots: make(map[string]Register)}
}

func canonical(name string) string {
	if name == "" {
		return Unnamed
	}
	return name
}

// Set writes text and isLine into name as one value. Uppercase names
// append to their lowercase register; a line register appended to a
// character register turns the result into a line register.
func (s *Store) Set(name, text string, isLine bool) error {
	if !ValidName(name) {
		return fmt.Errorf("register %q: invalid name", name)
	}
	name = canonical(name)
	if name == BlackHole {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value := Register{Text: text, IsLine: isLine}
	if lower := strings.ToLower(name); lower != name {
		name = lower
		if prev, ok := s.slots[name]; ok && prev.Text != "" {
			sep := ""
			if prev.IsLine || isLine {
				sep = "\n"
			}
			value = Register{Text: prev.Text + sep + text, IsLine: prev.IsLine || isLine}
		}
	}
	s.slots[name] = value
	if name != Unnamed {
		s.slots[Unnamed] = value
	}
	return nil
}

// Get returns the register for name. Unset and invalid names yield the
// zero Register; uppercase names read their lowercase register.
func (s *Store) Get(name string) Register {
	if !ValidName(name) {
		return Register{}
	}
	name = strings.ToLower(canonical(name))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[name]
}

// Names returns the set register names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a copy of every set register, keyed by name.
func (s *Store) Snapshot() map[string]Register {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.slots)
}

// Restore writes saved registers back without mirroring or appending.
// Invalid names and the black hole are skipped.
func (s *Store) Restore(saved map[string]Register) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, r := range saved {
		name = canonical(name)
		if !ValidName(name) || name == BlackHole || name != strings.ToLower(name) {
			continue
		}
		s.slots[name] = r
	}
}
