package editor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/andrei-shtanakov/Vimja/internal/mode"
)

var (
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#696969"} // Line numbers, hints
	StatusErrorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Failed operations

	// Mode badge backgrounds
	NormalModeColor  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // blue
	InsertModeColor  = lipgloss.AdaptiveColor{Light: "#40A02B", Dark: "#A6E3A1"} // green
	PendingModeColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // yellow

	modeBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"})

	lineNumberStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	statusStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)
	errorStyle      = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Block cursor for wide cursor widths, underline for narrow ones
	blockCursorStyle = lipgloss.NewStyle().Reverse(true)
	barCursorStyle   = lipgloss.NewStyle().Underline(true)

	selectionStyle = lipgloss.NewStyle().Background(lipgloss.AdaptiveColor{Light: "#CCD0DA", Dark: "#45475A"})
	matchStyle     = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}).
			Foreground(lipgloss.Color("#1E1E2E"))
)

// badge renders the status-line mode indicator.
func badge(m mode.Mode) string {
	color := NormalModeColor
	switch m.Kind {
	case mode.KindInsert:
		color = InsertModeColor
	case mode.KindPending:
		color = PendingModeColor
	}
	return modeBadgeStyle.Background(color).Render(m.String())
}
