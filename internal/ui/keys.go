package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/bborn/lanes/internal/card"
	"github.com/bborn/lanes/internal/config"
	"github.com/bborn/lanes/internal/dnd"
)

// KeyMap defines key bindings. List and Card are handed to every lane list
// and card factory.
type KeyMap struct {
	Left         key.Binding
	Right        key.Binding
	New          key.Binding
	ArchiveView  key.Binding
	Restore      key.Binding
	ClearArchive key.Binding
	Back         key.Binding
	Reload       key.Binding
	CycleTheme   key.Binding
	Help         key.Binding
	Quit         key.Binding

	List dnd.KeyMap
	Card card.KeyMap
}

// ShortHelp returns key bindings to show in the mini help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.List.Up, k.List.Down, k.List.Lift, k.Card.ToggleEdit, k.New, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.List.Up, k.List.Down},
		{k.List.Lift, k.List.Drop, k.List.Cancel, k.List.DropLeft, k.List.DropRight},
		{k.Card.ToggleEdit, k.Card.CloseEditor, k.Card.QuickArchive, k.Card.Delete, k.Card.Archive},
		{k.Card.NextControl, k.Card.PrevControl, k.Card.Activate},
		{k.New, k.ArchiveView, k.Reload, k.CycleTheme, k.Help, k.Quit},
	}
}

// editingHelp is the help shown while a card captures keys.
type editingHelp struct{ k card.KeyMap }

func (h editingHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.CloseEditor, h.k.NextControl, h.k.Delete, h.k.Archive}
}

func (h editingHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// archiveHelp is the help shown in the archive view.
type archiveHelp struct{ k KeyMap }

func (h archiveHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.List.Up, h.k.List.Down, h.k.Restore, h.k.ClearArchive, h.k.Back}
}

func (h archiveHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev lane"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next lane"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new item"),
		),
		ArchiveView: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "archive"),
		),
		Restore: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore"),
		),
		ClearArchive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear archive"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "v"),
			key.WithHelp("esc", "back"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		List: dnd.DefaultKeyMap(),
		Card: card.DefaultKeyMap(),
	}
}

// ApplyKeybindingsConfig overrides the bindings named in cfg. Bindings with no
// keys are left alone; an empty help text keeps the original description.
func ApplyKeybindingsConfig(km KeyMap, cfg *config.KeybindingsConfig) KeyMap {
	if cfg == nil {
		return km
	}
	apply := func(b *key.Binding, c *config.KeybindingConfig) {
		if c == nil || len(c.Keys) == 0 {
			return
		}
		desc := c.Help
		if desc == "" {
			desc = b.Help().Desc
		}
		*b = key.NewBinding(
			key.WithKeys(c.Keys...),
			key.WithHelp(helpKey(c.Keys[0]), desc),
		)
	}

	apply(&km.Left, cfg.Left)
	apply(&km.Right, cfg.Right)
	apply(&km.New, cfg.New)
	apply(&km.ArchiveView, cfg.ArchiveView)
	apply(&km.Restore, cfg.Restore)
	apply(&km.ClearArchive, cfg.ClearArchive)
	apply(&km.Reload, cfg.Reload)
	apply(&km.CycleTheme, cfg.CycleTheme)
	apply(&km.Help, cfg.Help)
	apply(&km.Quit, cfg.Quit)

	apply(&km.List.Up, cfg.Up)
	apply(&km.List.Down, cfg.Down)
	apply(&km.List.Lift, cfg.Lift)
	apply(&km.List.Drop, cfg.Drop)

	apply(&km.Card.ToggleEdit, cfg.Edit)
	apply(&km.Card.QuickArchive, cfg.QuickArchive)
	apply(&km.Card.Delete, cfg.DeleteItem)
	apply(&km.Card.Archive, cfg.ArchiveItem)
	apply(&km.Card.NextControl, cfg.NextControl)
	apply(&km.Card.PrevControl, cfg.PrevControl)
	return km
}

func helpKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
