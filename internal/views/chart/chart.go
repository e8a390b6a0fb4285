// Package chart renders the live training metrics: a sparkline per
// series built from the session's epoch history and an animated epoch
// progress bar.
package chart

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/session"
	"github.com/neurasect/tui/internal/theme"
)

const (
	fps = 30

	// Spring tuning for the progress bar fill.
	angularFrequency = 6.0
	damping          = 0.9
)

var sparkCells = []rune("▁▂▃▄▅▆▇█")

// FrameMsg advances the progress bar animation.
type FrameMsg time.Time

// Model holds the chart state.
type Model struct {
	Width int

	spring harmonica.Spring
	pos    float64 // animated progress fraction
	vel    float64
	target float64
}

// New creates a chart model.
func New() Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(fps), angularFrequency, damping),
	}
}

// Animate returns the command that drives the next animation frame. The
// caller issues it while the session is running and the bar has not yet
// settled.
func Animate() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// SetProgress updates the animation target from the latest snapshot.
func (m *Model) SetProgress(snap session.Snapshot) {
	sess := snap.Session
	if sess == nil || sess.TotalEpochs == 0 {
		m.target = 0
		return
	}
	cur := snap.Current()
	if cur == nil {
		m.target = 0
		return
	}
	m.target = float64(cur.Epoch) / float64(sess.TotalEpochs)
	if m.target > 1 {
		m.target = 1
	}
}

// Step advances the spring one frame. It returns true while the bar is
// still moving and another frame should be scheduled.
func (m *Model) Step() bool {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	const settled = 0.001
	return m.pos-m.target > settled || m.target-m.pos > settled || m.vel > settled || -m.vel > settled
}

// Reset snaps the animation back to zero for a fresh session.
func (m *Model) Reset() {
	m.pos, m.vel, m.target = 0, 0, 0
}

// View renders the chart for the given snapshot.
func (m Model) View(th theme.Theme, snap session.Snapshot) string {
	width := m.Width
	if width < 48 {
		width = 48
	}
	inner := width - 4

	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Training Progress"))

	sess := snap.Session
	if sess == nil || len(sess.History) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("Metrics will appear here once training starts"))
		return theme.StyleBorder.Width(width).Padding(0, 1).Render(
			lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	lines = append(lines, m.progressLine(th, snap, inner))
	lines = append(lines, seriesLine("loss    ", lossSeries(sess.History), th.Loss, inner))
	if vals := valLossSeries(sess.History); len(vals) > 0 {
		lines = append(lines, seriesLine("val_loss", vals, th.ValLoss, inner))
	}
	if accs := accuracySeries(sess.History); len(accs) > 0 {
		lines = append(lines, seriesLine("accuracy", accs, th.Accuracy, inner))
	} else if maes := maeSeries(sess.History); len(maes) > 0 {
		lines = append(lines, seriesLine("mae     ", maes, th.Accuracy, inner))
	}
	lines = append(lines, m.latestLine(snap))

	return theme.StyleBorder.Width(width).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) progressLine(th theme.Theme, snap session.Snapshot, inner int) string {
	sess := snap.Session
	cur := snap.Current()

	barWidth := inner - 16
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(m.pos * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := lipgloss.NewStyle().Foreground(th.Secondary).Render(strings.Repeat("█", filled)) +
		theme.StyleDimmed.Render(strings.Repeat("░", barWidth-filled))

	label := ""
	if cur != nil && sess.TotalEpochs > 0 {
		label = fmt.Sprintf(" %d/%d", cur.Epoch, sess.TotalEpochs)
	} else if cur != nil {
		label = fmt.Sprintf(" epoch %d", cur.Epoch)
	}
	return "epoch    " + bar + theme.StyleDimmed.Render(label)
}

func (m Model) latestLine(snap session.Snapshot) string {
	cur := snap.Current()
	if cur == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("loss %.4f", cur.Loss)}
	if cur.ValLoss != nil {
		parts = append(parts, fmt.Sprintf("val_loss %.4f", *cur.ValLoss))
	}
	if cur.Accuracy != nil {
		parts = append(parts, fmt.Sprintf("acc %.4f", *cur.Accuracy))
	}
	if cur.ValAccuracy != nil {
		parts = append(parts, fmt.Sprintf("val_acc %.4f", *cur.ValAccuracy))
	}
	if cur.MAE != nil {
		parts = append(parts, fmt.Sprintf("mae %.4f", *cur.MAE))
	}
	return theme.StyleDimmed.Render(strings.Join(parts, "  "))
}

// seriesLine renders one metric as a sparkline, downsampled to fit.
func seriesLine(label string, values []float64, color lipgloss.Color, inner int) string {
	width := inner - len(label) - 1
	if width < 8 {
		width = 8
	}
	spark := Sparkline(values, width)
	return label + " " + lipgloss.NewStyle().Foreground(color).Render(spark)
}

// Sparkline maps values onto block characters, scaled to the observed
// min/max. When there are more values than cells, each cell shows the
// mean of its bucket.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	buckets := bucketize(values, width)

	lo, hi := buckets[0], buckets[0]
	for _, v := range buckets {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	var b strings.Builder
	for _, v := range buckets {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkCells)-1))
		}
		b.WriteRune(sparkCells[idx])
	}
	return b.String()
}

func bucketize(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func lossSeries(history []client.ProgressEvent) []float64 {
	out := make([]float64, len(history))
	for i, ev := range history {
		out[i] = ev.Loss
	}
	return out
}

func valLossSeries(history []client.ProgressEvent) []float64 {
	var out []float64
	for _, ev := range history {
		if ev.ValLoss != nil {
			out = append(out, *ev.ValLoss)
		}
	}
	return out
}

func accuracySeries(history []client.ProgressEvent) []float64 {
	var out []float64
	for _, ev := range history {
		if ev.Accuracy != nil {
			out = append(out, *ev.Accuracy)
		}
	}
	return out
}

func maeSeries(history []client.ProgressEvent) []float64 {
	var out []float64
	for _, ev := range history {
		if ev.MAE != nil {
			out = append(out, *ev.MAE)
		}
	}
	return out
}
