// Package form implements the training configuration panel: a column of
// parameter controls adjusted with the arrow keys, mirroring the web
// app's sliders and selects.
package form

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/config"
	"github.com/neurasect/tui/internal/theme"
)

// Field indexes the form controls in display order.
type Field int

const (
	FieldDataset Field = iota
	FieldLayers
	FieldNeurons
	FieldLearningRate
	FieldRegRate
	FieldSplit
	FieldRegularizer
	FieldOptimizer
	FieldActivation
	FieldEpochs
	FieldBatchSize

	fieldCount
)

// KeyMap holds the form-specific key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Decrease key.Binding
	Increase key.Binding
}

// DefaultKeyMap returns the default form key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev field"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next field"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "decrease"),
		),
		Increase: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "increase"),
		),
	}
}

// Model holds the form state.
type Model struct {
	Width int

	keys     KeyMap
	selected Field

	datasets   []string // names from the local asset store
	datasetIdx int

	regularizerIdx int
	optimizerIdx   int
	activationIdx  int

	layers    int
	neurons   int
	lr        float64
	regRate   float64
	split     float64
	epochs    int
	batchSize int
}

// New creates a form seeded from the configured training defaults.
func New(defaults config.TrainingConfig) Model {
	return Model{
		keys:      DefaultKeyMap(),
		layers:    defaults.NumLayers,
		neurons:   defaults.NumNeurons,
		lr:        defaults.LearningRate,
		regRate:   defaults.RegularizationRate,
		split:     defaults.TrainTestSplit,
		epochs:    defaults.Epochs,
		batchSize: defaults.BatchSize,
	}
}

// SetDatasets replaces the dataset choices, keeping the current
// selection when it survives the refresh.
func (m *Model) SetDatasets(names []string) {
	var current string
	if m.datasetIdx < len(m.datasets) {
		current = m.datasets[m.datasetIdx]
	}
	m.datasets = names
	m.datasetIdx = 0
	for i, n := range names {
		if n == current {
			m.datasetIdx = i
			break
		}
	}
}

// Config materializes the form state as a submission payload.
func (m Model) Config() client.TrainingConfig {
	cfg := client.TrainingConfig{
		ModelType:          client.ModelNeuralNetwork,
		NumLayers:          m.layers,
		NumNeurons:         m.neurons,
		LearningRate:       m.lr,
		RegularizationRate: m.regRate,
		TrainTestSplit:     m.split,
		Regularizer:        client.Regularizers[m.regularizerIdx],
		Optimizer:          client.Optimizers[m.optimizerIdx],
		Activation:         client.Activations[m.activationIdx],
		Epochs:             m.epochs,
		BatchSize:          m.batchSize,
	}
	if m.datasetIdx < len(m.datasets) {
		cfg.DatasetID = m.datasets[m.datasetIdx]
	}
	return cfg
}

// Update handles form navigation and value adjustment.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Down):
		m.selected = (m.selected + 1) % fieldCount
	case key.Matches(keyMsg, m.keys.Up):
		m.selected = (m.selected - 1 + fieldCount) % fieldCount
	case key.Matches(keyMsg, m.keys.Increase):
		m.adjust(1)
	case key.Matches(keyMsg, m.keys.Decrease):
		m.adjust(-1)
	}
	return m, nil
}

func (m *Model) adjust(dir int) {
	switch m.selected {
	case FieldDataset:
		m.datasetIdx = cycle(m.datasetIdx, dir, len(m.datasets))
	case FieldLayers:
		m.layers = clampInt(m.layers+dir, 1, 16)
	case FieldNeurons:
		m.neurons = clampInt(m.neurons+dir, 1, 256)
	case FieldLearningRate:
		m.lr = roundTo(clampFloat(m.lr+float64(dir)*0.001, client.MinLearningRate, client.MaxLearningRate), 3)
	case FieldRegRate:
		m.regRate = roundTo(clampFloat(m.regRate+float64(dir)*0.0001, client.MinRegRate, client.MaxRegRate), 4)
	case FieldSplit:
		m.split = roundTo(clampFloat(m.split+float64(dir)*0.05, 0.05, 0.95), 2)
	case FieldRegularizer:
		m.regularizerIdx = cycle(m.regularizerIdx, dir, len(client.Regularizers))
	case FieldOptimizer:
		m.optimizerIdx = cycle(m.optimizerIdx, dir, len(client.Optimizers))
	case FieldActivation:
		m.activationIdx = cycle(m.activationIdx, dir, len(client.Activations))
	case FieldEpochs:
		m.epochs = clampInt(m.epochs+dir*10, 10, 1000)
	case FieldBatchSize:
		m.batchSize = clampInt(m.batchSize+dir*8, 8, 512)
	}
}

// View renders the form. locked greys out the controls while a session
// is submitting or running.
func (m Model) View(th theme.Theme, locked bool) string {
	rows := []struct {
		field Field
		label string
		value string
	}{
		{FieldDataset, "Dataset", m.datasetValue()},
		{FieldLayers, "Layers", fmt.Sprintf("%d", m.layers)},
		{FieldNeurons, "Neurons", fmt.Sprintf("%d", m.neurons)},
		{FieldLearningRate, "Learning rate", fmt.Sprintf("%.3f %s", m.lr, slider(m.lr, client.MinLearningRate, client.MaxLearningRate, th))},
		{FieldRegRate, "Reg. rate", fmt.Sprintf("%.4f %s", m.regRate, slider(m.regRate, client.MinRegRate, client.MaxRegRate, th))},
		{FieldSplit, "Train/test split", fmt.Sprintf("%.2f", m.split)},
		{FieldRegularizer, "Regularizer", string(client.Regularizers[m.regularizerIdx])},
		{FieldOptimizer, "Optimizer", string(client.Optimizers[m.optimizerIdx])},
		{FieldActivation, "Activation", string(client.Activations[m.activationIdx])},
		{FieldEpochs, "Epochs", fmt.Sprintf("%d", m.epochs)},
		{FieldBatchSize, "Batch size", fmt.Sprintf("%d", m.batchSize)},
	}

	labelStyle := theme.StyleDimmed.Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(theme.ColorBright)
	selectedStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Primary)

	var lines []string
	lines = append(lines, theme.StyleHeader.Render("Configure"))
	for _, row := range rows {
		prefix := "  "
		vs := valueStyle
		if !locked && row.field == m.selected {
			prefix = "> "
			vs = selectedStyle
		}
		lines = append(lines, prefix+labelStyle.Render(row.label)+vs.Render(row.value))
	}
	if locked {
		lines = append(lines, theme.StyleDimmed.Render("  (locked while training)"))
	}

	return theme.StyleBorder.Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) datasetValue() string {
	if len(m.datasets) == 0 {
		return "(none imported)"
	}
	return fmt.Sprintf("%s (%d/%d)", m.datasets[m.datasetIdx], m.datasetIdx+1, len(m.datasets))
}

// slider renders a 10-cell fill bar for a bounded value.
func slider(v, lo, hi float64, th theme.Theme) string {
	const cells = 10
	frac := (v - lo) / (hi - lo)
	filled := int(math.Round(frac * cells))
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return lipgloss.NewStyle().Foreground(th.Secondary).Render(bar)
}

func cycle(i, dir, n int) int {
	if n == 0 {
		return 0
	}
	return (i + dir + n) % n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
