package config

// KeybindingConfig represents a single keybinding configuration.
type KeybindingConfig struct {
	Keys []string `yaml:"keys"` // Key(s) that trigger the action
	Help string   `yaml:"help"` // Help text displayed in the UI
}

// KeybindingsConfig holds all customizable keybindings.
type KeybindingsConfig struct {
	// Board
	Left         *KeybindingConfig `yaml:"left,omitempty"`
	Right        *KeybindingConfig `yaml:"right,omitempty"`
	New          *KeybindingConfig `yaml:"new,omitempty"`
	ArchiveView  *KeybindingConfig `yaml:"archive_view,omitempty"`
	Restore      *KeybindingConfig `yaml:"restore,omitempty"`
	ClearArchive *KeybindingConfig `yaml:"clear_archive,omitempty"`
	Reload       *KeybindingConfig `yaml:"reload,omitempty"`
	CycleTheme   *KeybindingConfig `yaml:"cycle_theme,omitempty"`
	Help         *KeybindingConfig `yaml:"help,omitempty"`
	Quit         *KeybindingConfig `yaml:"quit,omitempty"`

	// Lane list
	Up   *KeybindingConfig `yaml:"up,omitempty"`
	Down *KeybindingConfig `yaml:"down,omitempty"`
	Lift *KeybindingConfig `yaml:"lift,omitempty"`
	Drop *KeybindingConfig `yaml:"drop,omitempty"`

	// Card
	Edit         *KeybindingConfig `yaml:"edit,omitempty"`
	QuickArchive *KeybindingConfig `yaml:"quick_archive,omitempty"`
	DeleteItem   *KeybindingConfig `yaml:"delete_item,omitempty"`
	ArchiveItem  *KeybindingConfig `yaml:"archive_item,omitempty"`
	NextControl  *KeybindingConfig `yaml:"next_control,omitempty"`
	PrevControl  *KeybindingConfig `yaml:"prev_control,omitempty"`
}

// GenerateDefaultKeybindingsYAML returns the default keybindings as a
// commented "keybindings:" block.
//
// Available key formats:
//   - Single keys: "a", "n", "?"
//   - Modified keys: "ctrl+c", "alt+d", "shift+tab"
//   - Special keys: "enter", "esc", "left", "right", "up", "down", " " (space)
func GenerateDefaultKeybindingsYAML() string {
	return `# keybindings:
#   left:
#     keys: ["left", "h"]
#     help: "prev lane"
#   right:
#     keys: ["right", "l"]
#     help: "next lane"
#   up:
#     keys: ["up", "k"]
#     help: "up"
#   down:
#     keys: ["down", "j"]
#     help: "down"
#   lift:
#     keys: [" "]
#     help: "lift"
#   drop:
#     keys: [" ", "enter"]
#     help: "drop"
#   new:
#     keys: ["n"]
#     help: "new item"
#   edit:
#     keys: ["e"]
#     help: "edit"
#   quick_archive:
#     keys: ["a"]
#     help: "archive"
#   delete_item:
#     keys: ["alt+d"]
#     help: "delete (editing)"
#   archive_item:
#     keys: ["alt+a"]
#     help: "archive (editing)"
#   next_control:
#     keys: ["tab"]
#     help: "next control"
#   prev_control:
#     keys: ["shift+tab"]
#     help: "prev control"
#   archive_view:
#     keys: ["v"]
#     help: "archive"
#   restore:
#     keys: ["u"]
#     help: "restore"
#   clear_archive:
#     keys: ["x"]
#     help: "clear archive"
#   reload:
#     keys: ["R"]
#     help: "reload"
#   cycle_theme:
#     keys: ["T"]
#     help: "theme"
#   help:
#     keys: ["?"]
#     help: "help"
#   quit:
#     keys: ["ctrl+c"]
#     help: "quit"
`
}
