package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the top-level keyboard bindings for the TUI.
type KeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Files   key.Binding
	Summary key.Binding
	Status  key.Binding
	Predict key.Binding
	Discard key.Binding
	Theme   key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start training"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop training"),
		),
		Files: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "local files"),
		),
		Summary: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "model summary"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "poll status"),
		),
		Predict: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "predict"),
		),
		Discard: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "discard session"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
