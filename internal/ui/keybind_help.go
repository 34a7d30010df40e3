package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"overlaykit/internal/render"
)

// newHelpModel returns a help model styled to match the overlays.
func newHelpModel() help.Model {
	m := help.New()
	m.Styles.ShortKey = lipgloss.NewStyle().
		Foreground(lipgloss.Color(render.ColorHighlight)).
		Bold(true)
	m.Styles.ShortDesc = lipgloss.NewStyle().
		Foreground(lipgloss.Color(render.ColorMuted))
	m.Styles.ShortSeparator = lipgloss.NewStyle().
		Foreground(lipgloss.Color(render.ColorMuted))
	m.Styles.FullKey = m.Styles.ShortKey
	m.Styles.FullDesc = m.Styles.ShortDesc
	m.Styles.FullSeparator = m.Styles.ShortSeparator
	return m
}

// RenderKeybindHelp renders the help bar for km, full or short.
func RenderKeybindHelp(m help.Model, km help.KeyMap, width int, full bool) string {
	m.Width = width
	m.ShowAll = full
	return m.View(km)
}
