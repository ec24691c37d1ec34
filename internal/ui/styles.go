package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	highlightColor = lipgloss.Color("#60A5FA")
	mutedColor     = lipgloss.Color("#6B7280")
	textColor      = lipgloss.Color("#FFFFFF")
	okColor        = lipgloss.Color("#22C55E")
	dangerColor    = lipgloss.Color("#FF4757")

	progressFrom = "#3B82F6"
	progressTo   = "#22C55E"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
)

func pickerStyles() filepicker.Styles {
	styles := filepicker.DefaultStyles()
	styles.Cursor = lipgloss.NewStyle().Foreground(accentColor)
	styles.Symlink = lipgloss.NewStyle().Foreground(highlightColor)
	styles.Directory = lipgloss.NewStyle().Foreground(highlightColor)
	styles.File = lipgloss.NewStyle().Foreground(textColor)
	styles.Permission = lipgloss.NewStyle().Foreground(mutedColor)
	styles.Selected = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	styles.FileSize = lipgloss.NewStyle().Foreground(mutedColor)
	return styles
}
