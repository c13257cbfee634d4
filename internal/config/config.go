// Package config implements user configuration for termtui, loaded from
// a TOML file in the XDG config directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root user configuration.
type Config struct {
	Terminal    TerminalConfig    `toml:"terminal"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	Keybindings KeybindingsConfig `toml:"keybindings"`
}

// TerminalConfig controls the spawned shell and emulator behavior.
type TerminalConfig struct {
	// Shell is the command to spawn. Empty means $SHELL, falling back
	// to a platform default.
	Shell string `toml:"shell"`
	// ShellArgs is the argument vector passed to the shell.
	ShellArgs []string `toml:"shell_args"`
	// ScrollbackLines bounds the scrollback history per session.
	ScrollbackLines int `toml:"scrollback_lines"`
}

// AppearanceConfig controls rendering.
type AppearanceConfig struct {
	// BorderStyle is one of "rounded", "normal", "thick", "none".
	BorderStyle string `toml:"border_style"`
	// StatusPosition is "top" or "bottom".
	StatusPosition string `toml:"status_position"`
	// ShowTitle renders the child-reported window title in the border.
	ShowTitle bool `toml:"show_title"`
}

// KeybindingsConfig maps action names to key lists per mode.
type KeybindingsConfig struct {
	Session  map[string][]string `toml:"session"`
	CopyMode map[string][]string `toml:"copy_mode"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Shell:           "",
			ScrollbackLines: 10000,
		},
		Appearance: AppearanceConfig{
			BorderStyle:    "rounded",
			StatusPosition: "bottom",
			ShowTitle:      true,
		},
		Keybindings: KeybindingsConfig{
			Session: map[string][]string{
				"enter_copy_mode": {"ctrl+b"},
				"paste":           {"ctrl+shift+v"},
				"toggle_help":     {"ctrl+shift+h"},
				"quit":            {"ctrl+shift+q"},
			},
			CopyMode: map[string][]string{
				"exit":           {"q", "esc"},
				"move_left":      {"h", "left"},
				"move_down":      {"j", "down"},
				"move_up":        {"k", "up"},
				"move_right":     {"l", "right"},
				"line_start":     {"0"},
				"line_end":       {"$"},
				"top":            {"g"},
				"bottom":         {"G"},
				"page_up":        {"pgup"},
				"page_down":      {"pgdown"},
				"half_page_up":   {"ctrl+u"},
				"half_page_down": {"ctrl+d"},
				"word_forward":   {"w"},
				"word_backward":  {"b"},
				"select_char":    {"v"},
				"select_line":    {"V"},
				"toggle_anchor":  {"space"},
				"yank":           {"y", "enter"},
			},
		},
	}
}

// ActionDescriptions maps action names to human-readable descriptions
// for the keybinds listing and help output.
var ActionDescriptions = map[string]string{
	"enter_copy_mode": "Enter copy mode",
	"paste":           "Paste clipboard into the terminal",
	"toggle_help":     "Toggle the keybinding reference",
	"quit":            "Quit",
	"exit":            "Exit copy mode",
	"move_left":       "Move cursor left",
	"move_down":       "Move cursor down",
	"move_up":         "Move cursor up",
	"move_right":      "Move cursor right",
	"line_start":      "Move to start of line",
	"line_end":        "Move to end of line",
	"top":             "Jump to oldest line",
	"bottom":          "Jump to newest line",
	"page_up":         "Page up",
	"page_down":       "Page down",
	"half_page_up":    "Half page up",
	"half_page_down":  "Half page down",
	"word_forward":    "Next word",
	"word_backward":   "Previous word",
	"select_char":     "Start character selection",
	"select_line":     "Start line selection",
	"toggle_anchor":   "Set or clear the selection anchor",
	"yank":            "Copy selection and exit",
}

// ConfigPath returns the path of the user configuration file.
func ConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("termtui", "config.toml"))
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}
	return path, nil
}

// LoadUserConfig loads the user configuration, merging it over the
// defaults. A missing file returns the defaults without error.
func LoadUserConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from xdg
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces empty or invalid values with their defaults so
// a sparse user file still yields a usable config.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Terminal.ScrollbackLines <= 0 {
		c.Terminal.ScrollbackLines = def.Terminal.ScrollbackLines
	}
	if c.Appearance.BorderStyle == "" {
		c.Appearance.BorderStyle = def.Appearance.BorderStyle
	}
	if c.Appearance.StatusPosition == "" {
		c.Appearance.StatusPosition = def.Appearance.StatusPosition
	}
	if c.Keybindings.Session == nil {
		c.Keybindings.Session = def.Keybindings.Session
	} else {
		for action, keys := range def.Keybindings.Session {
			if _, ok := c.Keybindings.Session[action]; !ok {
				c.Keybindings.Session[action] = keys
			}
		}
	}
	if c.Keybindings.CopyMode == nil {
		c.Keybindings.CopyMode = def.Keybindings.CopyMode
	} else {
		for action, keys := range def.Keybindings.CopyMode {
			if _, ok := c.Keybindings.CopyMode[action]; !ok {
				c.Keybindings.CopyMode[action] = keys
			}
		}
	}
}

// WriteDefaultConfig writes the default configuration to the user
// config path, overwriting what is there.
func WriteDefaultConfig() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	header := "# termtui configuration\n# Keys use bubbletea names: ctrl+b, pgup, esc, space, V.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
