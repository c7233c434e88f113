package keymap

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/andrei-shtanakov/Vimja/internal/command"
)

// Diff compares two sets of bindings as keymap documents, line by line.
// Added and removed entries are prefixed with "+" and "-"; unchanged
// entries are left out but section headers are kept for orientation.
// Diff returns "" when both encode identically.
func Diff(base, active []command.Descriptor) (string, error) {
	a, err := Encode(base)
	if err != nil {
		return "", err
	}
	b, err := Encode(active)
	if err != nil {
		return "", err
	}
	if string(a) == string(b) {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(string(a), string(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				out.WriteString("-" + line)
			case diffmatchpatch.DiffInsert:
				out.WriteString("+" + line)
			case diffmatchpatch.DiffEqual:
				if !strings.HasPrefix(line, " ") {
					out.WriteString(" " + line)
				}
			}
		}
	}
	return out.String(), nil
}
