package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neurasect/tui/internal/client"
	"github.com/neurasect/tui/internal/config"
	"github.com/neurasect/tui/internal/session"
)

func newTestModel() Model {
	return New(client.NewHTTPClient("http://127.0.0.1:8000"), nil, config.Default(), "")
}

func resize(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeSizing(t *testing.T) {
	m := newTestModel()
	if v := m.View(); !strings.Contains(v, "Initializing") {
		t.Errorf("pre-size view = %q", v)
	}
}

func TestViewShowsPanels(t *testing.T) {
	m := resize(newTestModel())
	v := m.View()
	for _, want := range []string{"NeuraSect", "Configure", "Training Progress", "idle"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStartWithoutDatasetShowsNotice(t *testing.T) {
	m := resize(newTestModel())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd != nil {
		t.Error("rejected start must not issue a network command")
	}
	if m.reducer.Phase() != session.Idle {
		t.Errorf("phase = %v, want idle", m.reducer.Phase())
	}
	if !strings.Contains(m.View(), "no dataset selected") {
		t.Error("rejection must be surfaced to the user")
	}
}

func TestThemeCyclePersists(t *testing.T) {
	m := resize(newTestModel())
	before := m.cfg.Theme

	updated, cmd := m.Update(keyMsg("t"))
	m = updated.(Model)
	if m.cfg.Theme == before {
		t.Error("theme did not change")
	}
	if cmd == nil {
		t.Error("theme change must trigger a config save")
	}
	if m.theme.ID != m.cfg.Theme {
		t.Error("active theme and persisted theme diverge")
	}
}

func TestSubmitFailureReturnsToIdle(t *testing.T) {
	m := resize(newTestModel())
	if err := m.reducer.Start(validConfig()); err != nil {
		t.Fatal(err)
	}

	updated, _ := m.Update(submitResultMsg{err: errFake("Dataset 'iris' not found")})
	m = updated.(Model)
	if m.reducer.Phase() != session.Idle {
		t.Errorf("phase = %v, want idle", m.reducer.Phase())
	}
	if !strings.Contains(m.View(), "Dataset 'iris' not found") {
		t.Error("submit failure must surface the server detail")
	}
}

func TestStreamEventFlow(t *testing.T) {
	m := resize(newTestModel())
	if err := m.reducer.Start(validConfig()); err != nil {
		t.Fatal(err)
	}

	updated, cmd := m.Update(submitResultMsg{resp: &client.TrainingResponse{
		SessionID:    "abc123",
		ModelSummary: "Model: sequential",
	}})
	m = updated.(Model)
	if m.reducer.Phase() != session.Running {
		t.Fatalf("phase = %v, want running", m.reducer.Phase())
	}
	if cmd == nil {
		t.Fatal("successful submit must connect the stream")
	}
	if m.stream == nil || m.stream.SessionID() != "abc123" {
		t.Fatal("stream not installed")
	}

	updated, cmd = m.Update(client.StreamEventMsg{
		SessionID: "abc123",
		Event:     client.ProgressEvent{Type: client.EventEpoch, Epoch: 1, Loss: 0.9},
	})
	m = updated.(Model)
	if cmd == nil {
		t.Error("an epoch update must schedule the next read")
	}
	if got := len(m.reducer.Snapshot().Session.History); got != 1 {
		t.Errorf("history has %d entries, want 1", got)
	}

	updated, _ = m.Update(client.StreamEventMsg{
		SessionID: "abc123",
		Event:     client.ProgressEvent{Type: client.EventComplete},
	})
	m = updated.(Model)
	if m.reducer.Phase() != session.Completed {
		t.Errorf("phase = %v, want completed", m.reducer.Phase())
	}
	if m.stream != nil {
		t.Error("stream reference must be dropped after a terminal event")
	}

	// The close notification that follows is a post-terminal no-op.
	updated, _ = m.Update(client.StreamClosedMsg{SessionID: "abc123"})
	m = updated.(Model)
	if m.reducer.Phase() != session.Completed {
		t.Errorf("phase = %v after late close, want completed", m.reducer.Phase())
	}
}

func TestStaleStreamEventDropped(t *testing.T) {
	m := resize(newTestModel())
	if err := m.reducer.Start(validConfig()); err != nil {
		t.Fatal(err)
	}
	updated, _ := m.Update(submitResultMsg{resp: &client.TrainingResponse{SessionID: "abc123"}})
	m = updated.(Model)

	updated, cmd := m.Update(client.StreamEventMsg{
		SessionID: "old-session",
		Event:     client.ProgressEvent{Type: client.EventEpoch, Epoch: 1, Loss: 0.9},
	})
	m = updated.(Model)
	if cmd != nil {
		t.Error("stale event must not schedule a read")
	}
	if got := len(m.reducer.Snapshot().Session.History); got != 0 {
		t.Errorf("history has %d entries from a stale stream, want 0", got)
	}
}

func TestUnexpectedDropFailsSession(t *testing.T) {
	m := resize(newTestModel())
	if err := m.reducer.Start(validConfig()); err != nil {
		t.Fatal(err)
	}
	updated, _ := m.Update(submitResultMsg{resp: &client.TrainingResponse{SessionID: "abc123"}})
	m = updated.(Model)

	updated, _ = m.Update(client.StreamClosedMsg{SessionID: "abc123", Err: errFake("close 1006")})
	m = updated.(Model)
	if m.reducer.Phase() != session.Failed {
		t.Errorf("phase = %v, want failed", m.reducer.Phase())
	}
	if m.stream != nil {
		t.Error("stream reference must be dropped")
	}
}

func TestStopWhileRunning(t *testing.T) {
	m := resize(newTestModel())
	if err := m.reducer.Start(validConfig()); err != nil {
		t.Fatal(err)
	}
	updated, _ := m.Update(submitResultMsg{resp: &client.TrainingResponse{SessionID: "abc123"}})
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("s"))
	m = updated.(Model)
	if m.reducer.Phase() != session.Idle {
		t.Errorf("phase = %v after stop, want idle", m.reducer.Phase())
	}
	if m.stream != nil {
		t.Error("stream reference must be dropped after stop")
	}
}

func validConfig() client.TrainingConfig {
	return client.TrainingConfig{
		DatasetID:          "iris",
		ModelType:          client.ModelNeuralNetwork,
		NumLayers:          2,
		NumNeurons:         8,
		LearningRate:       0.01,
		RegularizationRate: 0.001,
		TrainTestSplit:     0.8,
		Regularizer:        client.RegularizerL2,
		Optimizer:          client.OptimizerAdam,
		Activation:         client.ActivationReLU,
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }
