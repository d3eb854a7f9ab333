package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Primary = lipgloss.Color("#7C3AED")
	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Muted   = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	RenderedStyle = lipgloss.NewStyle().Foreground(Success)
	SkippedStyle  = lipgloss.NewStyle().Foreground(Warning)
	FailedStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(Muted)

	SummaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	NameStyle = lipgloss.NewStyle().Width(16)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "rendered", "completed":
		return RenderedStyle
	case "skipped", "queued", "running", "cancelled":
		return SkippedStyle
	default:
		return FailedStyle
	}
}
