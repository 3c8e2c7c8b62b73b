package prompt

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	primaryColor = lipgloss.Color("39")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	dangerColor  = lipgloss.Color("196")
	mutedColor   = lipgloss.Color("245")
)

var (
	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1)

	questionStyle = lipgloss.NewStyle().Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	checkedStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	uncheckedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	answerStyle    = lipgloss.NewStyle().Foreground(successColor)
	hintStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle     = lipgloss.NewStyle().Foreground(dangerColor)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Padding(0, 1).
			MarginTop(1)
)

var titleCaser = cases.Title(language.English)

// Title returns s in title case, e.g. "core configuration" becomes
// "Core Configuration".
func Title(s string) string {
	return titleCaser.String(s)
}
