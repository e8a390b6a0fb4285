package datasets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neurasect/tui/internal/assets"
)

func openStore(t *testing.T) *assets.Store {
	t.Helper()
	store, err := assets.Open(filepath.Join(t.TempDir(), "assets.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes a command and feeds its message back into the model,
// the way the Bubble Tea runtime would.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = m.Update(cmd())
	return m
}

func TestLoadedEntriesAndDatasetNames(t *testing.T) {
	store := openStore(t)
	for _, name := range []string{"iris.csv", "wine.csv"} {
		if err := store.Put(assets.PartitionDatasets, name, []byte("1,2\n")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	m := New(store)
	m = runCmd(t, m, m.load(assets.PartitionDatasets))

	names := m.DatasetNames()
	if len(names) != 2 {
		t.Fatalf("DatasetNames = %v", names)
	}
}

func TestTabSwitchesPartition(t *testing.T) {
	m := New(openStore(t))
	if m.partition != assets.PartitionDatasets {
		t.Fatalf("initial partition = %q", m.partition)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.partition != assets.PartitionModels {
		t.Errorf("partition after tab = %q", m.partition)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.partition != assets.PartitionDatasets {
		t.Errorf("partition after second tab = %q", m.partition)
	}
}

func TestImportFlow(t *testing.T) {
	store := openStore(t)
	path := filepath.Join(t.TempDir(), "iris.csv")
	if err := os.WriteFile(path, []byte("5.1,3.5,1.4,0.2,0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := New(store)
	m, _ = m.Update(keyMsg("i"))
	if !m.Importing() {
		t.Fatal("expected import prompt to open")
	}

	m.pathInput.SetValue(path)
	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Importing() {
		t.Error("import prompt should close on confirm")
	}

	// The save command reports success and triggers a reload.
	saved, ok := cmd().(SavedMsg)
	if !ok || saved.Err != nil {
		t.Fatalf("SavedMsg = %+v", saved)
	}
	if saved.Name != "iris.csv" {
		t.Errorf("saved name = %q", saved.Name)
	}

	entries, err := store.List(assets.PartitionDatasets)
	if err != nil || len(entries) != 1 {
		t.Fatalf("List after import = %v, %v", entries, err)
	}
}

func TestImportMissingFileReportsError(t *testing.T) {
	m := New(openStore(t))
	m, _ = m.Update(keyMsg("i"))
	m.pathInput.SetValue("/does/not/exist.csv")
	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	m = runCmd(t, m, cmd)
	if m.lastErr == "" {
		t.Error("expected lastErr after failed import")
	}
}

func TestEscCancelsImportWithoutClosing(t *testing.T) {
	m := New(openStore(t))
	m, _ = m.Update(keyMsg("i"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Importing() {
		t.Error("esc should cancel the prompt")
	}
	if cmd != nil {
		t.Error("cancel should not emit a command")
	}
}

func TestDeleteSelected(t *testing.T) {
	store := openStore(t)
	if err := store.Put(assets.PartitionDatasets, "old.csv", []byte("1\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	m := New(store)
	m = runCmd(t, m, m.load(assets.PartitionDatasets))

	m, cmd := m.handleKey(keyMsg("x"))
	deleted, ok := cmd().(DeletedMsg)
	if !ok || deleted.Err != nil {
		t.Fatalf("DeletedMsg = %+v", deleted)
	}

	entries, err := store.List(assets.PartitionDatasets)
	if err != nil || len(entries) != 0 {
		t.Fatalf("List after delete = %v, %v", entries, err)
	}
}

func TestSelectionWrapsAndClamps(t *testing.T) {
	m := New(openStore(t))
	m.entries[assets.PartitionDatasets] = []assets.Entry{
		{Name: "a.csv", CreatedAt: time.Now()},
		{Name: "b.csv", CreatedAt: time.Now()},
	}

	m, _ = m.Update(keyMsg("j"))
	if m.selected != 1 {
		t.Errorf("selected = %d after j", m.selected)
	}
	m, _ = m.Update(keyMsg("j"))
	if m.selected != 0 {
		t.Errorf("selected = %d after wrap", m.selected)
	}
	m, _ = m.Update(keyMsg("k"))
	if m.selected != 1 {
		t.Errorf("selected = %d after k", m.selected)
	}

	// A reload that shrinks the list resets the selection.
	m, _ = m.Update(LoadedMsg{Partition: assets.PartitionDatasets, Entries: []assets.Entry{{Name: "a.csv"}}})
	if m.selected != 0 {
		t.Errorf("selected = %d after shrink", m.selected)
	}
}
