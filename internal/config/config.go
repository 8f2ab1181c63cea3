// Package config loads the lanes configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bborn/lanes/internal/view"
)

// Config holds application configuration.
type Config struct {
	// ShowArchiveButton adds a quick-archive button to every card.
	ShowArchiveButton bool   `yaml:"show_archive_button"`
	Theme             string `yaml:"theme,omitempty"`
	HooksDir          string `yaml:"hooks_dir,omitempty"`
	DBPath            string `yaml:"db_path,omitempty"`
	LogPath           string `yaml:"log_path,omitempty"`
	SSH               SSH    `yaml:"ssh,omitempty"`

	Keybindings *KeybindingsConfig `yaml:"keybindings,omitempty"`
	// Styles override the theme's rule for a class, keyed by the full class
	// name (e.g. "kanban-plugin__item-title").
	Styles map[string]view.Rule `yaml:"styles,omitempty"`

	path string
}

// SSH configures `lanes serve`.
type SSH struct {
	Host        string `yaml:"host,omitempty"`
	Port        string `yaml:"port,omitempty"`
	HostKeyPath string `yaml:"host_key_path,omitempty"`
}

// Setting keys stored in the database.
const (
	SettingTheme    = "theme"
	SettingLastLane = "last_lane"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ShowArchiveButton: true,
		Theme:             "default",
		HooksDir:          filepath.Join(configDir(), "hooks"),
		LogPath:           filepath.Join(dataDir(), "lanes.log"),
		SSH: SSH{
			Host:        "localhost",
			Port:        "2323",
			HostKeyPath: filepath.Join(dataDir(), "ssh", "host_ed25519"),
		},
	}
}

// DefaultConfigPath returns the default path of the config file.
func DefaultConfigPath() string {
	if p := os.Getenv("LANES_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.yaml")
}

// Load loads the config from the default path.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads the config at path over the defaults. A missing file is
// not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.HooksDir = expandPath(cfg.HooksDir)
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.LogPath = expandPath(cfg.LogPath)
	cfg.SSH.HostKeyPath = expandPath(cfg.SSH.HostKeyPath)
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// WriteDefault writes the default config file to path unless one exists.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateDefaultConfigYAML()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lanes")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "lanes")
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// GenerateDefaultConfigYAML returns an annotated default config file.
func GenerateDefaultConfigYAML() string {
	return `# lanes configuration

# Show a quick-archive button on every card.
show_archive_button: true

# Color theme: default, nord, gruvbox, catppuccin, onedark
theme: default

# Hook scripts named after events (item.created, item.updated, item.deleted,
# item.archived, item.moved) are run from this directory.
hooks_dir: ~/.config/lanes/hooks

# Database file. LANES_DB_PATH takes precedence.
# db_path: ~/.local/share/lanes/lanes.db

log_path: ~/.local/share/lanes/lanes.log

ssh:
  host: localhost
  port: "2323"
  host_key_path: ~/.local/share/lanes/ssh/host_ed25519

# Style overrides by class name. Later classes on a node win.
# styles:
#   kanban-plugin__item-title:
#     foreground: "#E5C07B"
#     bold: true
#   is-dragging:
#     border: thick
#     border_foreground: "#C678DD"

# Keybindings. Only include the ones you want to change.
` + GenerateDefaultKeybindingsYAML()
}
