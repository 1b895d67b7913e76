package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/uno-cli/internal/deck"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	GreenCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CD137")).
			Bold(true)

	BlueCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#54A0FF")).
			Bold(true)

	YellowCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FECA57")).
			Bold(true)

	WildCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2D3436")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// CardStyle returns the style a card is drawn in.
func CardStyle(c deck.Card) lipgloss.Style {
	switch c.Color {
	case deck.Red:
		return RedCardStyle
	case deck.Green:
		return GreenCardStyle
	case deck.Blue:
		return BlueCardStyle
	case deck.Yellow:
		return YellowCardStyle
	default:
		return WildCardStyle
	}
}
