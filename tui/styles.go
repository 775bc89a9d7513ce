package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent = lipgloss.Color("#F25D94")
	ColorGray   = lipgloss.Color("#767676")
	ColorError  = lipgloss.Color("#FF5F5F")
	ColorLight  = lipgloss.Color("#FFFDF5")
)

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorAccent).
	MarginBottom(1)

var placeholderStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorGray).
	Padding(1, 4)

var errorStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true)

var buttonStyle = lipgloss.NewStyle().
	Foreground(ColorLight).
	Background(ColorAccent).
	Padding(0, 2)

var buttonDisabledStyle = buttonStyle.Background(ColorGray)
