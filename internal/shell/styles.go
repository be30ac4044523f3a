package shell

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary = lipgloss.Color("#8B5CF6")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorIR      = lipgloss.Color("#06B6D4")
	ColorText    = lipgloss.Color("#F8FAFC")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	PromptStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	OutputStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	IRStyle = lipgloss.NewStyle().
		Foreground(ColorIR)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

func render(l Line) string {
	switch l.Kind {
	case LineInput:
		return InputStyle.Render("> " + l.Text)
	case LineIR:
		return IRStyle.Render(l.Text)
	case LineError:
		return ErrorStyle.Render("error: " + l.Text)
	case LineInfo:
		return InfoStyle.Render(l.Text)
	default:
		return OutputStyle.Render(l.Text)
	}
}
