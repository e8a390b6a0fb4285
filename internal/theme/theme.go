// Package theme provides the Lip Gloss color palettes and reusable
// styles for the NeuraSect TUI. It is a leaf package with no internal
// imports to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme is one selectable color preset. The five presets mirror the
// pastel palettes of the NeuraSect web app.
type Theme struct {
	ID          string
	Name        string
	Description string

	Primary   lipgloss.Color // headings, selected values
	Secondary lipgloss.Color // accents, sliders
	Loss      lipgloss.Color // training loss series
	ValLoss   lipgloss.Color // validation loss series
	Accuracy  lipgloss.Color // accuracy series
}

// Presets lists all themes in display order.
var Presets = []Theme{
	{
		ID: "sky", Name: "Sky Breeze", Description: "Blue and lilac",
		Primary: lipgloss.Color("#2563eb"), Secondary: lipgloss.Color("#8b5cf6"),
		Loss: lipgloss.Color("#3b82f6"), ValLoss: lipgloss.Color("#9333ea"),
		Accuracy: lipgloss.Color("#06b6d4"),
	},
	{
		ID: "lavender", Name: "Lavender Haze", Description: "Soft purple with blush",
		Primary: lipgloss.Color("#a855f7"), Secondary: lipgloss.Color("#ec4899"),
		Loss: lipgloss.Color("#8b5cf6"), ValLoss: lipgloss.Color("#f472b6"),
		Accuracy: lipgloss.Color("#d8b4fe"),
	},
	{
		ID: "mint", Name: "Fresh Mint", Description: "Minty greens, cool teal",
		Primary: lipgloss.Color("#14b8a6"), Secondary: lipgloss.Color("#22c55e"),
		Loss: lipgloss.Color("#0ea5e9"), ValLoss: lipgloss.Color("#22c55e"),
		Accuracy: lipgloss.Color("#a7f3d0"),
	},
	{
		ID: "peach", Name: "Peach Sorbet", Description: "Warm peach, soft coral",
		Primary: lipgloss.Color("#fb923c"), Secondary: lipgloss.Color("#f97316"),
		Loss: lipgloss.Color("#f97316"), ValLoss: lipgloss.Color("#ec4899"),
		Accuracy: lipgloss.Color("#fed7aa"),
	},
	{
		ID: "sunrise", Name: "Sunrise Glow", Description: "Yellow to pink sunrise",
		Primary: lipgloss.Color("#f59e0b"), Secondary: lipgloss.Color("#fb7185"),
		Loss: lipgloss.Color("#f59e0b"), ValLoss: lipgloss.Color("#fb7185"),
		Accuracy: lipgloss.Color("#38bdf8"),
	},
}

// ByID returns the preset with the given id, falling back to the first
// preset for unknown ids.
func ByID(id string) Theme {
	for _, t := range Presets {
		if t.ID == id {
			return t
		}
	}
	return Presets[0]
}

// Next returns the preset after id, wrapping around.
func Next(id string) Theme {
	for i, t := range Presets {
		if t.ID == id {
			return Presets[(i+1)%len(Presets)]
		}
	}
	return Presets[0]
}

// Phase colors, shared across themes.
var (
	ColorIdle       = lipgloss.Color("#4b5563")
	ColorSubmitting = lipgloss.Color("#7c3aed")
	ColorRunning    = lipgloss.Color("#2563eb")
	ColorCompleted  = lipgloss.Color("#16a34a")
	ColorFailed     = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// PhaseColor returns the color for a lifecycle phase name.
func PhaseColor(phase string) lipgloss.Color {
	switch phase {
	case "idle":
		return ColorIdle
	case "submitting":
		return ColorSubmitting
	case "running":
		return ColorRunning
	case "completed":
		return ColorCompleted
	case "failed":
		return ColorFailed
	default:
		return ColorDimmed
	}
}

// PhaseGlyph returns a Unicode glyph for a lifecycle phase name.
func PhaseGlyph(phase string) string {
	switch phase {
	case "submitting":
		return "◎"
	case "running":
		return "●"
	case "completed":
		return "✓"
	case "failed":
		return "✗"
	default:
		return "○"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
