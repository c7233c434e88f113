// Package search holds incremental search state and the matcher it drives.
package search

import "github.com/rivo/uniseg"

// State is the in-progress search: the pattern typed so far and whether
// keys are currently being fed to it.
type State struct {
	pattern string
	active  bool
}

// Start activates the search with an empty pattern.
func (s *State) Start() {
	s.pattern = ""
	s.active = true
}

// Append adds text, normally one grapheme, to the pattern.
func (s *State) Append(text string) {
	s.pattern += text
}

// Backspace drops the last grapheme cluster, so a base letter and its
// combining marks go together. It reports false when the pattern was
// already empty.
func (s *State) Backspace() bool {
	pattern := s.pattern
	if pattern == "" {
		return false
	}
	last := 0
	rest, state := pattern, -1
	for rest != "" {
		last = len(pattern) - len(rest)
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
	}
	s.pattern = pattern[:last]
	return true
}

// Reset clears the pattern and deactivates the search. Commit and cancel
// both end here.
func (s *State) Reset() {
	s.pattern = ""
	s.active = false
}

// Active reports whether keys go to the search.
func (s *State) Active() bool { return s.active }

// Pattern returns the pattern typed so far.
func (s *State) Pattern() string { return s.pattern }
