// Package summary provides the model summary overlay: the backend's
// architecture description, tensor shapes, final metrics, and the
// results of status and prediction calls against the session.
package summary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/session"
	"github.com/neurasect/tui/internal/theme"
)

const panelWidth = 72

// StatusLoadedMsg is returned after polling the session status endpoint.
type StatusLoadedMsg struct {
	Status *client.StatusResponse
	Err    error
}

// PredictionsMsg is returned after a prediction call.
type PredictionsMsg struct {
	Predictions [][]float64
	Err         error
}

// Model holds the overlay state.
type Model struct {
	status      *client.StatusResponse
	predictions [][]float64
	lastErr     string
}

// New creates a summary model.
func New() Model {
	return Model{}
}

// Update folds in status and prediction results.
func (m Model) Update(msg interface{}) Model {
	switch msg := msg.(type) {
	case StatusLoadedMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		} else {
			m.status = msg.Status
			m.lastErr = ""
		}
	case PredictionsMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		} else {
			m.predictions = msg.Predictions
			m.lastErr = ""
		}
	}
	return m
}

// Reset clears per-session results when a new session starts.
func (m *Model) Reset() {
	m.status = nil
	m.predictions = nil
	m.lastErr = ""
}

// View renders the overlay for the given snapshot. Returns an empty
// string when there is no session to describe.
func (m Model) View(snap session.Snapshot) string {
	sess := snap.Session
	if sess == nil {
		return ""
	}

	md := m.markdown(snap)
	body, err := renderMarkdown(md)
	if err != nil {
		// Plain text fallback if the terminal renderer fails.
		body = md
	}

	var extra []string
	if m.lastErr != "" {
		extra = append(extra, theme.StyleError.Render(m.lastErr))
	}
	extra = append(extra, theme.StyleDimmed.Render("s:status  p:predict  esc:close"))

	return theme.StyleBorder.Width(panelWidth).Padding(0, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{body}, extra...)...))
}

// markdown assembles the overlay content. The backend's model_summary is
// preformatted Keras output, so it goes in a code fence.
func (m Model) markdown(snap session.Snapshot) string {
	sess := snap.Session

	var b strings.Builder
	fmt.Fprintf(&b, "## Model — session %s\n\n", sess.ID)
	fmt.Fprintf(&b, "**Input shape** `%v` — **output shape** `%v`\n\n", sess.InputShape, sess.OutputShape)

	if sess.ModelSummary != "" {
		b.WriteString("```\n")
		b.WriteString(strings.TrimRight(sess.ModelSummary, "\n"))
		b.WriteString("\n```\n\n")
	}

	if len(sess.Final) > 0 {
		b.WriteString("### Final metrics\n\n")
		b.WriteString(formatFinalMetrics(sess.Final))
		b.WriteString("\n")
	}

	if m.status != nil {
		fmt.Fprintf(&b, "### Status\n\nBackend reports `%s`\n\n", m.status.Status)
	}

	if len(m.predictions) > 0 {
		b.WriteString("### Predictions\n\n")
		for i, row := range m.predictions {
			if i >= 8 {
				fmt.Fprintf(&b, "- … %d more rows\n", len(m.predictions)-i)
				break
			}
			fmt.Fprintf(&b, "- `%v`\n", row)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatFinalMetrics pretty-prints the opaque final_metrics object as a
// bullet list, falling back to raw JSON.
func formatFinalMetrics(raw json.RawMessage) string {
	var metrics map[string]*float64
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return "```json\n" + string(raw) + "\n```\n"
	}
	keys := []string{"loss", "val_loss", "accuracy", "val_accuracy"}
	var b strings.Builder
	for _, k := range keys {
		if v, ok := metrics[k]; ok && v != nil {
			fmt.Fprintf(&b, "- %s: `%.4f`\n", k, *v)
		}
	}
	for k, v := range metrics {
		if !contains(keys, k) && v != nil {
			fmt.Fprintf(&b, "- %s: `%.4f`\n", k, *v)
		}
	}
	return b.String()
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(panelWidth-4),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
