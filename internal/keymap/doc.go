package keymap

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/andrei-shtanakov/Vimja/internal/command"
)

var scopes = []command.Scope{command.ScopeNormal, command.ScopePending, command.ScopeInsert}

// Markdown lists descs as one table per scope. Scopes without entries
// are left out.
func Markdown(descs []command.Descriptor) string {
	var b strings.Builder
	for _, scope := range scopes {
		entries := inScope(descs, scope)
		if len(entries) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", title(scope))
		b.WriteString("| Keys | Command | Description |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, d := range entries {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", codeSpan(d.Sequence.String()), label(d), cell(d.Help))
		}
	}
	return b.String()
}

// Plain lists descs as aligned text wrapped to width columns. Help text
// that does not fit continues on indented lines.
func Plain(descs []command.Descriptor, width int) string {
	var keyW, idW int
	for _, d := range descs {
		keyW = max(keyW, runewidth.StringWidth(d.Sequence.String()))
		idW = max(idW, runewidth.StringWidth(label(d)))
	}
	prefix := 2 + keyW + 2 + idW + 2
	helpW := max(width-prefix, 20)

	var b strings.Builder
	for _, scope := range scopes {
		entries := inScope(descs, scope)
		if len(entries) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(scope.String() + "\n")
		for _, d := range entries {
			first, rest, _ := strings.Cut(wordwrap.String(d.Help, helpW), "\n")
			line := "  " + runewidth.FillRight(d.Sequence.String(), keyW) + "  " + runewidth.FillRight(label(d), idW) + "  " + first
			b.WriteString(strings.TrimRight(line, " ") + "\n")
			if rest != "" {
				b.WriteString(indent.String(rest, uint(prefix)) + "\n")
			}
		}
	}
	return b.String()
}

func inScope(descs []command.Descriptor, scope command.Scope) []command.Descriptor {
	var out []command.Descriptor
	for _, d := range descs {
		if d.Scope == scope {
			out = append(out, d)
		}
	}
	return out
}

func title(scope command.Scope) string {
	switch scope {
	case command.ScopePending:
		return "Operator pending"
	case command.ScopeInsert:
		return "Insert"
	default:
		return "Normal"
	}
}

// label names the entry, with its operator filter when it has one.
func label(d command.Descriptor) string {
	id := d.ID
	if id == "" {
		id = d.Op.Kind()
	}
	if only := operatorName(d.Operator); only != "" {
		id += " (" + only + ")"
	}
	return id
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func codeSpan(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}
