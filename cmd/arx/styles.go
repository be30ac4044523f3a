package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorError = lipgloss.Color("#EF4444")
	ColorMuted = lipgloss.Color("#6B7280")
	ColorInfo  = lipgloss.Color("#06B6D4")
)

var (
	LocationStyle = lipgloss.NewStyle().Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	KindStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)
)
