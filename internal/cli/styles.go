// Package cli renders terminal output for the tally commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	accentColor  = lipgloss.Color("#FF6B6B")
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	tokenColor   = lipgloss.Color("#95E1D3")
	subtleColor  = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle renders section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	// SuccessStyle renders completion messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)

	// WarningStyle highlights figures that need attention, such as
	// disagreeing oracles.
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)

	// ErrorStyle renders failures.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	// SubtleStyle renders dates and counts next to the main text.
	SubtleStyle = lipgloss.NewStyle().Foreground(subtleColor)

	// TokenStyle renders a single token or signature.
	TokenStyle = lipgloss.NewStyle().Bold(true).Foreground(tokenColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
)

const (
	ledgerIcon  = "🧾"
	oracleIcon  = "🤖"
	successIcon = "✓"
	errorIcon   = "✗"
)

// FormatTitle prefixes a title with the ledger icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ledgerIcon + " " + title)
}

// FormatSuccess renders a completion message.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(successIcon + " " + message)
}

// FormatError renders an error for the terminal.
func FormatError(message string) string {
	return ErrorStyle.Render(errorIcon + " " + message)
}

// RenderBox draws content under a title inside a rounded border.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title),
		"",
		content,
	))
}
