package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the gallery key bindings with built-in help text.
type KeyMap struct {
	NewPhoto key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NewPhoto: key.NewBinding(
			key.WithKeys("enter", "n", " "),
			key.WithHelp("enter/n", "new cat"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewPhoto, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewPhoto},
		{k.Help, k.Quit},
	}
}
