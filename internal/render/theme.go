package render

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles, spinner
	ColorHighlight = "205" // Magenta - active items, overlay borders
	ColorDanger    = "196" // Red - alert dialogs
	ColorMuted     = "241" // Gray - placeholders, disabled items
	ColorText      = "252" // Light gray - normal text
	ColorScrim     = "236" // Dark gray - dimmed content under a modal
)

// Theme holds the styles the painter applies per node kind and state.
type Theme struct {
	Title    lipgloss.Style // box labels
	Section  lipgloss.Style // group headers
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style // focused node or active descendant
	Status   lipgloss.Style // spinner
	Danger   lipgloss.Style
	Border   lipgloss.Style // overlay frame
	Scrim    lipgloss.Style // content beneath a modal overlay

	DimUnderModal bool
}

// DefaultTheme returns the standard palette.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorAccent)),
		Section: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHighlight)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHighlight)).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccent)),
		Danger: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorDanger)),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorHighlight)).
			Padding(0, 1),
		Scrim: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted)).
			Faint(true),
		DimUnderModal: true,
	}
}

// PlainTheme renders without colors or attributes, for tests and dumb
// terminals. Borders are kept.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title:    plain,
		Section:  plain,
		Normal:   plain,
		Muted:    plain,
		Selected: plain,
		Status:   plain,
		Danger:   plain,
		Border:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Scrim:    plain,
	}
}
