package config

import (
	"sort"
	"strings"
)

// KeybindRegistry resolves between action names and key names, built
// from the configured keybinding maps.
type KeybindRegistry struct {
	actionToKeys map[string][]string
	sessionKeys  map[string]string
	copyModeKeys map[string]string
}

// NewKeybindRegistry builds a registry from the config. Later groups do
// not shadow earlier ones; session and copy-mode keys live in separate
// lookup tables because they are active in different modes.
func NewKeybindRegistry(cfg *Config) *KeybindRegistry {
	r := &KeybindRegistry{
		actionToKeys: make(map[string][]string),
		sessionKeys:  make(map[string]string),
		copyModeKeys: make(map[string]string),
	}
	norm := NewKeyNormalizer()
	for action, keys := range cfg.Keybindings.Session {
		r.actionToKeys[action] = keys
		for _, key := range keys {
			for _, k := range norm.NormalizeKey(key) {
				r.sessionKeys[k] = action
			}
		}
	}
	for action, keys := range cfg.Keybindings.CopyMode {
		r.actionToKeys[action] = keys
		for _, key := range keys {
			for _, k := range norm.NormalizeKey(key) {
				r.copyModeKeys[k] = action
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to an action, nil when unbound.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actionToKeys[action]
}

// GetAction returns the action bound to a key in any group, checking
// session bindings first. Empty when the key is unbound.
func (r *KeybindRegistry) GetAction(key string) string {
	if action, ok := r.sessionKeys[key]; ok {
		return action
	}
	return r.copyModeKeys[key]
}

// SessionAction returns the session-mode action for a key, or "".
func (r *KeybindRegistry) SessionAction(key string) string {
	return r.sessionKeys[key]
}

// CopyModeAction returns the copy-mode action for a key, or "".
func (r *KeybindRegistry) CopyModeAction(key string) string {
	return r.copyModeKeys[key]
}

// GetKeysForDisplay returns the keys for an action joined for help
// output, e.g. "q, esc".
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	return strings.Join(r.actionToKeys[action], ", ")
}

// Keybinding is a single row in the keybinds listing.
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection groups related keybindings for display.
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// GetKeybindings returns the keybinding sections for the keybinds
// listing, generated from the registry so user overrides show up.
func GetKeybindings(registry *KeybindRegistry, cfg *Config) []KeybindingSection {
	sections := []KeybindingSection{
		buildSection("SESSION", registry, cfg.Keybindings.Session),
		buildSection("COPY MODE", registry, cfg.Keybindings.CopyMode),
	}
	out := sections[:0]
	for _, s := range sections {
		if len(s.Bindings) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func buildSection(title string, registry *KeybindRegistry, group map[string][]string) KeybindingSection {
	actions := make([]string, 0, len(group))
	for action := range group {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	section := KeybindingSection{Title: title}
	for _, action := range actions {
		keys := registry.GetKeysForDisplay(action)
		if keys == "" {
			continue
		}
		desc := ActionDescriptions[action]
		if desc == "" {
			desc = action
		}
		section.Bindings = append(section.Bindings, Keybinding{Key: keys, Description: desc})
	}
	return section
}

// KeyNormalizer canonicalizes key names so config files can spell keys
// loosely ("Ctrl+A", "Return") while lookups stay exact.
type KeyNormalizer struct {
	aliases map[string][]string
}

// NewKeyNormalizer returns a normalizer with the standard aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string][]string{
			"enter":     {"return"},
			"return":    {"enter"},
			"esc":       {"escape"},
			"escape":    {"esc"},
			"space":     {" "},
			" ":         {"space"},
			"pgup":      {"pageup"},
			"pageup":    {"pgup"},
			"pgdown":    {"pagedown", "pgdn"},
			"pagedown":  {"pgdown"},
			"pgdn":      {"pgdown"},
			"backspace": {"bs"},
		},
	}
}

// NormalizeKey returns the canonical spellings of a key name, the
// normalized form first. A bare single character keeps its case so "V"
// and "v" stay distinct bindings.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	if key == "" {
		return nil
	}
	parts := strings.Split(key, "+")
	last := parts[len(parts)-1]
	for i := 0; i < len(parts)-1; i++ {
		parts[i] = strings.ToLower(parts[i])
	}
	if len(parts) > 1 || len([]rune(last)) > 1 {
		parts[len(parts)-1] = strings.ToLower(last)
	}
	canon := strings.Join(parts, "+")

	out := []string{canon}
	for _, alias := range n.aliases[parts[len(parts)-1]] {
		prefix := strings.Join(parts[:len(parts)-1], "+")
		if prefix != "" {
			out = append(out, prefix+"+"+alias)
		} else {
			out = append(out, alias)
		}
	}
	return out
}

// ValidateKey reports whether a key name is well formed. The second
// return carries the reason when it is not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	if key == "" {
		return false, "empty key"
	}
	parts := strings.Split(key, "+")
	for i, p := range parts {
		if p == "" {
			// "ctrl++" style typos, but allow a literal trailing "+".
			if i == len(parts)-1 && len(parts) == 2 && parts[0] != "" {
				continue
			}
			return false, "empty key component"
		}
	}
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "ctrl", "alt", "shift", "super":
		default:
			return false, "unknown modifier: " + p
		}
	}
	return true, ""
}
