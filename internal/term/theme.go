package term

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the window uses.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			Padding(0, 1)
	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorPink).
			Background(colorSurface0).
			Bold(true)
	consoleStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle)
	consoleTitleStyle = lipgloss.NewStyle().
				Foreground(colorLavender).
				Background(colorMantle).
				Bold(true)
	overlayStyle = lipgloss.NewStyle().Foreground(colorYellow)
	markerStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorOverlay0)
)
