// Package app wires the root Bubble Tea model: it owns the session
// reducer, the stream lifecycle, and the sub-views, and routes every
// message through the single Update loop.
package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/assets"
	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/config"
	"github.com/neurasect/tui/internal/session"
	"github.com/neurasect/tui/internal/theme"
	"github.com/neurasect/tui/internal/views/chart"
	"github.com/neurasect/tui/internal/views/datasets"
	"github.com/neurasect/tui/internal/views/form"
	"github.com/neurasect/tui/internal/views/status"
	"github.com/neurasect/tui/internal/views/summary"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayFiles
	OverlaySummary
)

// predictSampleLimit caps the rows sent to the predict endpoint.
const predictSampleLimit = 5

// --- app-level messages ---

// submitResultMsg carries the outcome of the training start call.
type submitResultMsg struct {
	resp *client.TrainingResponse
	err  error
}

// healthMsg carries the startup health probe result.
type healthMsg struct{ err error }

// configSavedMsg carries the outcome of persisting the config.
type configSavedMsg struct{ err error }

// discardedMsg carries the outcome of deleting a terminal session.
type discardedMsg struct{ err error }

// Model is the root Bubble Tea model.
type Model struct {
	http   *client.HTTPClient
	stream *client.StreamClient
	store  *assets.Store

	cfg     *config.Config
	cfgPath string
	theme   theme.Theme

	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	reducer   *session.Reducer
	animating bool

	// notice is a transient footer message for rejected actions,
	// cleared on the next key press.
	notice string

	overlay   Overlay
	statusBar status.Model
	form      form.Model
	chart     chart.Model
	files     datasets.Model
	summary   summary.Model
}

// New creates the root model.
func New(httpClient *client.HTTPClient, store *assets.Store, cfg *config.Config, cfgPath string) Model {
	ctx, cancel := context.WithCancel(context.Background())
	th := theme.ByID(cfg.Theme)
	sb := status.New()
	sb.Phase = session.Idle.String()
	sb.ThemeName = th.Name
	return Model{
		http:      httpClient,
		store:     store,
		cfg:       cfg,
		cfgPath:   cfgPath,
		theme:     th,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		reducer:   session.NewReducer(),
		statusBar: sb,
		form:      form.New(cfg.Training),
		chart:     chart.New(),
		files:     datasets.New(store),
		summary:   summary.New(),
	}
}

// Init probes the backend and loads the local file lists.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.probeHealth(), m.files.Refresh())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.form.Width = msg.Width / 2
		m.chart.Width = msg.Width - msg.Width/2 - 1
		m.files.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case healthMsg:
		m.statusBar.BackendChecked = true
		m.statusBar.BackendHealthy = msg.err == nil
		return m, nil

	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case client.StreamConnectedMsg:
		if m.stream == nil || m.stream.SessionID() != msg.SessionID {
			return m, nil
		}
		return m, m.stream.ReadEvent()

	case client.StreamEventMsg:
		return m.handleStreamEvent(msg)

	case client.StreamClosedMsg:
		if m.stream == nil || m.stream.SessionID() != msg.SessionID {
			return m, nil
		}
		m.stream = nil
		m.reducer.StreamClosed(msg.Err)
		m.syncStatus()
		return m, nil

	case chart.FrameMsg:
		if m.chart.Step() {
			return m, chart.Animate()
		}
		m.animating = false
		return m, nil

	case datasets.LoadedMsg, datasets.SavedMsg, datasets.DeletedMsg:
		var cmd tea.Cmd
		m.files, cmd = m.files.Update(msg)
		m.form.SetDatasets(m.files.DatasetNames())
		return m, cmd

	case summary.StatusLoadedMsg, summary.PredictionsMsg:
		m.summary = m.summary.Update(msg)
		return m, nil

	case configSavedMsg, discardedMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if key.Matches(msg, m.keys.Quit) {
		if m.stream != nil {
			m.stream.Close()
		}
		m.cancel()
		return m, tea.Quit
	}

	switch m.overlay {
	case OverlayFiles:
		if key.Matches(msg, m.keys.Escape) && !m.files.Importing() {
			m.overlay = OverlayNone
			return m, nil
		}
		var cmd tea.Cmd
		m.files, cmd = m.files.Update(msg)
		m.form.SetDatasets(m.files.DatasetNames())
		return m, cmd

	case OverlaySummary:
		return m.handleSummaryKey(msg)
	}

	snap := m.reducer.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Start):
		return m.startTraining()

	case key.Matches(msg, m.keys.Stop):
		if snap.Phase == session.Running {
			// The reducer closes the stream through the installed
			// callback; the pending read resolves to StreamClosedMsg,
			// which is then a post-stop no-op.
			m.reducer.Stop()
			m.stream = nil
			m.syncStatus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Files):
		m.overlay = OverlayFiles
		return m, m.files.Refresh()

	case key.Matches(msg, m.keys.Summary):
		if snap.Session != nil && snap.Session.ID != "" {
			m.overlay = OverlaySummary
		}
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		m.theme = theme.Next(m.theme.ID)
		m.cfg.Theme = m.theme.ID
		m.statusBar.ThemeName = m.theme.Name
		return m, m.saveConfig()
	}

	// Everything else drives the form, which is locked during a run.
	if snap.Phase == session.Idle || snap.Phase.Terminal() {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.reducer.Snapshot()
	sess := snap.Session

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.overlay = OverlayNone
		return m, nil

	case key.Matches(msg, m.keys.Status):
		if sess != nil {
			return m, m.pollStatus(sess.ID)
		}

	case key.Matches(msg, m.keys.Predict):
		if sess != nil && snap.Phase == session.Completed {
			return m, m.predict(sess.ID, sess.Config.DatasetID)
		}

	case key.Matches(msg, m.keys.Discard):
		if sess != nil && (snap.Phase.Terminal() || snap.Phase == session.Idle) {
			id := sess.ID
			m.overlay = OverlayNone
			m.summary.Reset()
			return m, m.discardSession(id)
		}
	}
	return m, nil
}

// startTraining runs the submission flow: reducer transition first (the
// single-flight check lives there), then the network call.
func (m Model) startTraining() (tea.Model, tea.Cmd) {
	cfg := m.form.Config()
	if err := m.reducer.Start(cfg); err != nil {
		return m.withNotice(err.Error()), nil
	}
	m.chart.Reset()
	m.summary.Reset()
	m.syncStatus()

	httpClient := m.http
	return m, func() tea.Msg {
		resp, err := httpClient.StartTraining(cfg)
		return submitResultMsg{resp: resp, err: err}
	}
}

func (m Model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.reducer.SubmitFailed(msg.err)
		m.syncStatus()
		return m, nil
	}

	stream := client.NewStreamClient(m.wsBase(), msg.resp.SessionID)
	m.stream = stream
	m.reducer.Submitted(msg.resp, stream.Close)
	m.syncStatus()
	return m, stream.Connect(m.ctx)
}

func (m Model) handleStreamEvent(msg client.StreamEventMsg) (tea.Model, tea.Cmd) {
	if m.stream == nil || m.stream.SessionID() != msg.SessionID {
		// Event from a superseded stream; drop it.
		return m, nil
	}

	m.reducer.Apply(msg.Event)
	snap := m.reducer.Snapshot()
	m.syncStatus()

	if snap.Phase.Terminal() {
		// The reducer closed the stream; the final ReadEvent resolves
		// the close notification.
		cmd := m.stream.ReadEvent()
		m.stream = nil
		return m, cmd
	}

	m.chart.SetProgress(snap)
	cmds := []tea.Cmd{m.stream.ReadEvent()}
	if !m.animating {
		m.animating = true
		cmds = append(cmds, chart.Animate())
	}
	return m, tea.Batch(cmds...)
}

// --- commands ---

func (m Model) probeHealth() tea.Cmd {
	httpClient := m.http
	return func() tea.Msg {
		_, err := httpClient.Health()
		return healthMsg{err: err}
	}
}

func (m Model) pollStatus(sessionID string) tea.Cmd {
	httpClient := m.http
	return func() tea.Msg {
		st, err := httpClient.GetStatus(sessionID)
		return summary.StatusLoadedMsg{Status: st, Err: err}
	}
}

func (m Model) predict(sessionID, datasetID string) tea.Cmd {
	httpClient := m.http
	store := m.store
	return func() tea.Msg {
		rows, err := store.SampleRows(assets.PartitionDatasets, datasetID, predictSampleLimit)
		if err != nil {
			return summary.PredictionsMsg{Err: err}
		}
		resp, err := httpClient.Predict(sessionID, rows)
		if err != nil {
			return summary.PredictionsMsg{Err: err}
		}
		return summary.PredictionsMsg{Predictions: resp.Predictions}
	}
}

func (m Model) discardSession(sessionID string) tea.Cmd {
	httpClient := m.http
	return func() tea.Msg {
		return discardedMsg{err: httpClient.DeleteSession(sessionID)}
	}
}

func (m Model) saveConfig() tea.Cmd {
	cfg, path := m.cfg, m.cfgPath
	return func() tea.Msg {
		return configSavedMsg{err: cfg.Save(path)}
	}
}

// --- state sync and rendering ---

func (m *Model) syncStatus() {
	snap := m.reducer.Snapshot()
	m.statusBar.Phase = snap.Phase.String()
	if snap.Session != nil {
		m.statusBar.SessionID = snap.Session.ID
		m.statusBar.EpochCount = len(snap.Session.History)
	} else {
		m.statusBar.SessionID = ""
		m.statusBar.EpochCount = 0
	}
}

// withNotice surfaces a rejection (e.g. single-flight violation) without
// touching the reducer state.
func (m Model) withNotice(text string) Model {
	m.statusBar.Phase = m.reducer.Phase().String()
	m.notice = text
	return m
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	snap := m.reducer.Snapshot()

	switch m.overlay {
	case OverlayFiles:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.statusBar.View(),
			m.files.View(m.theme),
		)
	case OverlaySummary:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.statusBar.View(),
			m.summary.View(snap),
		)
	}

	locked := snap.Phase == session.Submitting || snap.Phase == session.Running

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.form.View(m.theme, locked),
		" ",
		m.chart.View(m.theme, snap),
	)

	sections := []string{
		m.statusBar.View(),
		body,
	}
	if snap.Err != "" {
		sections = append(sections, theme.StyleError.Render("  "+snap.Err))
	}
	if m.notice != "" {
		sections = append(sections, theme.StyleError.Render("  "+m.notice))
	}
	sections = append(sections, theme.StyleDimmed.Render(
		"  enter:start  s:stop  f:files  m:model  t:theme  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// wsBase converts the HTTP base URL into the WebSocket scheme, mirroring
// the web client's derivation.
func (m Model) wsBase() string {
	u, err := url.Parse(m.cfg.ServerURL)
	if err != nil {
		return "ws://127.0.0.1:8000"
	}
	scheme := "ws"
	if strings.HasPrefix(u.Scheme, "https") {
		scheme = "wss"
	}
	return scheme + "://" + u.Host
}
