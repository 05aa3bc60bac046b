package main

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#9b59b6")
	ColorMuted   = lipgloss.Color("#95a5a6")
	ColorSuccess = lipgloss.Color("#2ecc71")
	ColorWarning = lipgloss.Color("#f39c12")
	ColorError   = lipgloss.Color("#e74c3c")
	ColorInfo    = lipgloss.Color("#3498db")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SubtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	IDStyle = lipgloss.NewStyle().
		Foreground(ColorInfo)

	// WinnerBox frames the champion announcement.
	WinnerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 2)
)
