package ui

import "github.com/charmbracelet/lipgloss"

// Dracula-ish palette.
var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	hotStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	dimStyle    = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle   = lipgloss.NewStyle().Foreground(colorGray)
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	promptStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// bgStyle maps the -bg hint to a base style for the whole view. "black"
// uses the palette's black so themed terminals keep their tint,
// "trueblack" forces #000000, "default" leaves the terminal alone.
func bgStyle(bg string) lipgloss.Style {
	switch bg {
	case "black":
		return lipgloss.NewStyle().Background(lipgloss.Color("0"))
	case "trueblack":
		return lipgloss.NewStyle().Background(lipgloss.Color("#000000"))
	}
	return lipgloss.NewStyle()
}
