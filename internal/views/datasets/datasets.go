// Package datasets provides the asset browser overlay: locally stored
// dataset and model files, with import-from-path and delete.
package datasets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/assets"
	"github.com/neurasect/tui/internal/theme"
)

// LoadedMsg is returned after listing a partition.
type LoadedMsg struct {
	Partition string
	Entries   []assets.Entry
	Err       error
}

// SavedMsg is returned after an import completes.
type SavedMsg struct {
	Partition string
	Name      string
	Err       error
}

// DeletedMsg is returned after a delete completes.
type DeletedMsg struct {
	Partition string
	Name      string
	Err       error
}

// KeyMap holds the browser-specific key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	Import    key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	CancelAdd key.Binding
}

// DefaultKeyMap returns the default browser key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev file"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next file"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch partition"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import file"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete file"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		CancelAdd: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model holds the asset browser state.
type Model struct {
	Width int

	store *assets.Store
	keys  KeyMap

	partition string
	entries   map[string][]assets.Entry
	selected  int

	importing bool
	pathInput textinput.Model

	lastErr string
}

// New creates a browser over the given store.
func New(store *assets.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/file.csv"
	ti.CharLimit = 512
	return Model{
		store:     store,
		keys:      DefaultKeyMap(),
		partition: assets.PartitionDatasets,
		entries:   make(map[string][]assets.Entry),
		pathInput: ti,
	}
}

// Refresh returns commands that reload both partitions.
func (m Model) Refresh() tea.Cmd {
	return tea.Batch(
		m.load(assets.PartitionDatasets),
		m.load(assets.PartitionModels),
	)
}

func (m Model) load(partition string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		entries, err := store.List(partition)
		return LoadedMsg{Partition: partition, Entries: entries, Err: err}
	}
}

// Importing reports whether the path prompt is open, so the parent does
// not treat esc as "close overlay" while typing.
func (m Model) Importing() bool { return m.importing }

// DatasetNames returns the dataset file names for the form's selector.
func (m Model) DatasetNames() []string {
	entries := m.entries[assets.PartitionDatasets]
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Update handles browser input and store results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
			return m, nil
		}
		m.entries[msg.Partition] = msg.Entries
		m.clampSelection()
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
			return m, nil
		}
		m.lastErr = ""
		return m, m.load(msg.Partition)

	case DeletedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
			return m, nil
		}
		m.lastErr = ""
		return m, m.load(msg.Partition)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.importing {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			path := m.pathInput.Value()
			m.importing = false
			m.pathInput.Blur()
			return m, m.importFile(m.partition, path)
		case key.Matches(msg, m.keys.CancelAdd):
			m.importing = false
			m.pathInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if n := len(m.entries[m.partition]); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case key.Matches(msg, m.keys.Up):
		if n := len(m.entries[m.partition]); n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Tab):
		if m.partition == assets.PartitionDatasets {
			m.partition = assets.PartitionModels
		} else {
			m.partition = assets.PartitionDatasets
		}
		m.selected = 0
	case key.Matches(msg, m.keys.Import):
		m.importing = true
		m.pathInput.SetValue("")
		return m, m.pathInput.Focus()
	case key.Matches(msg, m.keys.Delete):
		if entries := m.entries[m.partition]; m.selected < len(entries) {
			return m, m.deleteFile(m.partition, entries[m.selected].Name)
		}
	}
	return m, nil
}

func (m Model) importFile(partition, path string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return SavedMsg{Partition: partition, Name: name, Err: err}
		}
		err = store.Put(partition, name, data)
		return SavedMsg{Partition: partition, Name: name, Err: err}
	}
}

func (m Model) deleteFile(partition, name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		err := store.Delete(partition, name)
		return DeletedMsg{Partition: partition, Name: name, Err: err}
	}
}

func (m *Model) clampSelection() {
	if n := len(m.entries[m.partition]); m.selected >= n {
		m.selected = 0
	}
}

// View renders the browser panel.
func (m Model) View(th theme.Theme) string {
	width := m.Width
	if width < 48 {
		width = 48
	}

	title := theme.StyleHeader.Render("Local Files")
	tabs := m.renderTabs(th)

	var lines []string
	lines = append(lines, title, tabs)

	entries := m.entries[m.partition]
	if len(entries) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  (empty — press i to import)"))
	}
	for i, e := range entries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.ColorBright)
		if i == m.selected {
			prefix = "> "
			style = lipgloss.NewStyle().Bold(true).Foreground(th.Primary)
		}
		lines = append(lines, prefix+style.Render(e.Name)+
			theme.StyleDimmed.Render(fmt.Sprintf("  %s  %s", formatSize(e.Size), e.CreatedAt.Format("2006-01-02 15:04"))))
	}

	if m.importing {
		lines = append(lines, "", "Import into "+m.partition+": "+m.pathInput.View())
	}
	if m.lastErr != "" {
		lines = append(lines, theme.StyleError.Render("  "+m.lastErr))
	}
	lines = append(lines, theme.StyleDimmed.Render("  tab:partition  i:import  x:delete  esc:close"))

	return theme.StyleBorder.Width(width).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderTabs(th theme.Theme) string {
	active := lipgloss.NewStyle().Bold(true).Foreground(th.Primary)
	inactive := theme.StyleDimmed

	ds := inactive.Render("datasets")
	md := inactive.Render("models")
	if m.partition == assets.PartitionDatasets {
		ds = active.Render("datasets")
	} else {
		md = active.Render("models")
	}
	return ds + theme.StyleDimmed.Render(" │ ") + md
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
