// Package status renders the one-line status bar: session phase,
// backend health, and the active theme.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Width int

	Phase      string
	SessionID  string
	EpochCount int

	BackendHealthy bool
	BackendChecked bool
	ThemeName      string
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	glyph := theme.PhaseGlyph(m.Phase)
	phaseStr := lipgloss.NewStyle().Foreground(theme.PhaseColor(m.Phase)).Render(
		fmt.Sprintf("%s %s", glyph, m.Phase))

	sessStr := ""
	if m.SessionID != "" {
		sessStr = theme.StyleDimmed.Render(fmt.Sprintf("  session %s", m.SessionID))
		if m.EpochCount > 0 {
			sessStr += theme.StyleDimmed.Render(fmt.Sprintf("  %d epochs", m.EpochCount))
		}
	}

	var healthStr string
	switch {
	case !m.BackendChecked:
		healthStr = theme.StyleDimmed.Render("backend: probing")
	case m.BackendHealthy:
		healthStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("backend: healthy")
	default:
		healthStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("backend: unreachable")
	}

	themeStr := theme.StyleDimmed.Render("theme: " + m.ThemeName)

	left := " NeuraSect  " + phaseStr + sessStr
	right := healthStr + "  " + themeStr + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().Width(width).Render(left + spacer + right)
}
