package card

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the card's key bindings.
type KeyMap struct {
	ToggleEdit   key.Binding
	QuickArchive key.Binding
	Delete       key.Binding
	Archive      key.Binding
	Activate     key.Binding
	NextControl  key.Binding
	PrevControl  key.Binding
	CloseEditor  key.Binding
	Unfocus      key.Binding
}

// ShortHelp returns bindings for the mini help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleEdit, k.QuickArchive, k.NextControl, k.Activate}
}

// FullHelp returns bindings for the expanded help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleEdit, k.CloseEditor, k.QuickArchive},
		{k.NextControl, k.PrevControl, k.Activate},
		{k.Delete, k.Archive},
	}
}

// DefaultKeyMap returns the default card bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ToggleEdit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		QuickArchive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("alt+d"),
			key.WithHelp("alt+d", "delete (editing)"),
		),
		Archive: key.NewBinding(
			key.WithKeys("alt+a"),
			key.WithHelp("alt+a", "archive (editing)"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "press"),
		),
		NextControl: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next control"),
		),
		PrevControl: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev control"),
		),
		CloseEditor: key.NewBinding(
			key.WithKeys("esc", "enter"),
			key.WithHelp("esc/enter", "close editor"),
		),
		Unfocus: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "unfocus"),
		),
	}
}
