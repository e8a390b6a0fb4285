package summary

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/session"
)

func snapshotWithSession() session.Snapshot {
	return session.Snapshot{
		Phase: session.Completed,
		Session: &session.Session{
			ID:           "sess-1",
			ModelSummary: "Layer (type)  Output Shape  Param #\ndense (Dense) (None, 8)     40\n",
			InputShape:   []int{0, 4},
			OutputShape:  []int{0, 3},
			Final:        json.RawMessage(`{"loss":0.1234,"accuracy":0.9876,"val_loss":null}`),
		},
	}
}

func TestMarkdownSections(t *testing.T) {
	m := New()
	m = m.Update(StatusLoadedMsg{Status: &client.StatusResponse{Status: "completed"}})
	m = m.Update(PredictionsMsg{Predictions: [][]float64{{0.1, 0.2, 0.7}}})

	md := m.markdown(snapshotWithSession())

	for _, want := range []string{
		"session sess-1",
		"dense (Dense)",
		"- loss: `0.1234`",
		"- accuracy: `0.9876`",
		"Backend reports `completed`",
		"### Predictions",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	// Null metrics are skipped rather than printed as zero.
	if strings.Contains(md, "val_loss") {
		t.Errorf("markdown should omit null val_loss:\n%s", md)
	}
}

func TestMarkdownCapsPredictionRows(t *testing.T) {
	m := New()
	rows := make([][]float64, 12)
	for i := range rows {
		rows[i] = []float64{float64(i)}
	}
	m = m.Update(PredictionsMsg{Predictions: rows})

	md := m.markdown(snapshotWithSession())
	if !strings.Contains(md, "… 4 more rows") {
		t.Errorf("markdown should truncate prediction rows:\n%s", md)
	}
}

func TestUpdateKeepsLastError(t *testing.T) {
	m := New()
	m = m.Update(StatusLoadedMsg{Err: errors.New("status poll failed")})
	if m.lastErr != "status poll failed" {
		t.Errorf("lastErr = %q", m.lastErr)
	}

	// A later success clears it.
	m = m.Update(StatusLoadedMsg{Status: &client.StatusResponse{Status: "running"}})
	if m.lastErr != "" {
		t.Errorf("lastErr not cleared: %q", m.lastErr)
	}
}

func TestFormatFinalMetricsFallsBackToRawJSON(t *testing.T) {
	raw := json.RawMessage(`{"nested":{"a":1}}`)
	out := formatFinalMetrics(raw)
	if !strings.Contains(out, "```json") {
		t.Errorf("expected raw JSON fallback, got:\n%s", out)
	}
}

func TestViewWithoutSession(t *testing.T) {
	if got := New().View(session.Snapshot{Phase: session.Idle}); got != "" {
		t.Errorf("View without session = %q, want empty", got)
	}
}
