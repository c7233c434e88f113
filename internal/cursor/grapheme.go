package cursor

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Grapheme classes for word motion.
const (
	classSpace = iota
	classWord
	classPunct
)

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// graphemeOffset converts a grapheme index to a byte offset.
// Indexes past the end clamp to len(s).
func graphemeOffset(s string, idx int) int {
	if idx <= 0 {
		return 0
	}
	n := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		_, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n++
		if n == idx {
			return len(s) - len(rest)
		}
	}
	return len(s)
}

// byteToGrapheme converts a byte offset to the index of the grapheme containing it.
func byteToGrapheme(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(s) {
		return GraphemeCount(s)
	}
	idx := 0
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += len(cluster)
		if offset < pos {
			return idx
		}
		idx++
	}
	return idx
}

// sliceGraphemes returns s[start:end] measured in graphemes.
func sliceGraphemes(s string, start, end int) string {
	if end <= start {
		return ""
	}
	return s[graphemeOffset(s, start):graphemeOffset(s, end)]
}

// graphemes splits s into its clusters.
func graphemes(s string) []string {
	var out []string
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out = append(out, cluster)
	}
	return out
}

// classOf classifies a cluster by its first rune.
func classOf(cluster string) int {
	for _, r := range cluster {
		switch {
		case r == ' ' || r == '\t':
			return classSpace
		case r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r):
			return classWord
		default:
			return classPunct
		}
	}
	return classSpace
}

// DisplayWidth returns the terminal cell width of s.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}
