package dnd

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the list's key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Lift      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	DropLeft  key.Binding
	DropRight key.Binding
}

// DefaultKeyMap returns the default list bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Lift: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "lift"),
		),
		Drop: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "drop"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel drag"),
		),
		DropLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "move to prev lane"),
		),
		DropRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "move to next lane"),
		),
	}
}
