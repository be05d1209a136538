package main

import "github.com/charmbracelet/lipgloss"

var (
	colorSafe    = lipgloss.Color("#04B575")
	colorDanger  = lipgloss.Color("#FF4040")
	colorInfo    = lipgloss.Color("#00BFFF")
	colorMuted   = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)

	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSafe).
			Padding(0, 1)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(0, 1)

	mutedText = lipgloss.NewStyle().Foreground(colorMuted)
)
