package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the check view.
type KeyMap struct {
	Cancel key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// Hints returns the bindings shown in the hint bar.
func (k KeyMap) Hints() []key.Binding {
	return []key.Binding{k.Cancel}
}
