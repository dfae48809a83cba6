package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type GlobalConfig struct {
	// ContactsPath points at a contacts directory (.json or .sqlite). Empty uses the built-in seed list.
	ContactsPath string `json:"contactsPath,omitempty"`

	// Reinsert is where a removed chip goes back into the suggestion list: original|append|name.
	Reinsert string `json:"reinsert,omitempty"`

	Placeholder string `json:"placeholder,omitempty"`

	// Strict surfaces stale-reference clicks as errors in the log instead of ignoring them quietly.
	Strict bool `json:"strict,omitempty"`

	Web    *WebConfig    `json:"web,omitempty"`
	WebTUI *WebTUIConfig `json:"webtui,omitempty"`
	TUI    *TUIConfig    `json:"tui,omitempty"`
}

type WebConfig struct {
	Addr string `json:"addr,omitempty"`
	// SessionTTL is a Go duration string; idle widgets are dropped after it. "0" never drops them.
	SessionTTL string `json:"sessionTtl,omitempty"`
}

type WebTUIConfig struct {
	Addr string `json:"addr,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// Theme forces the palette ("light", "dark", "auto").
	Theme string `json:"theme,omitempty"`
}

const DefaultPlaceholder = "Search for any person..."

func (c *GlobalConfig) PlaceholderOrDefault() string {
	if c == nil || strings.TrimSpace(c.Placeholder) == "" {
		return DefaultPlaceholder
	}
	return c.Placeholder
}

func (c *GlobalConfig) SessionTTL() time.Duration {
	const def = 30 * time.Minute
	if c == nil || c.Web == nil || strings.TrimSpace(c.Web.SessionTTL) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Web.SessionTTL))
	if err != nil || d < 0 {
		return def
	}
	// Zero keeps sessions until the server stops.
	return d
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.contactpicker).
	if v := strings.TrimSpace(os.Getenv("CONTACTPICKER_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".contactpicker"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("store: nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// CLI, TUI and web may write concurrently; a unique temp name + rename keeps the file whole.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// ConfigKeys lists the dotted keys accepted by SetConfigValue.
func ConfigKeys() []string {
	keys := []string{
		"contactsPath",
		"reinsert",
		"placeholder",
		"strict",
		"web.addr",
		"web.sessionTtl",
		"webtui.addr",
		"tui.glyphs",
		"tui.theme",
	}
	sort.Strings(keys)
	return keys
}

// SetConfigValue sets one dotted key. An empty value clears it.
func SetConfigValue(cfg *GlobalConfig, key, value string) error {
	if cfg == nil {
		return errors.New("store: nil config")
	}
	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case "contactsPath":
		cfg.ContactsPath = value
	case "reinsert":
		cfg.Reinsert = strings.ToLower(value)
	case "placeholder":
		cfg.Placeholder = value
	case "strict":
		if value == "" {
			cfg.Strict = false
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("store: strict: %w", err)
		}
		cfg.Strict = b
	case "web.addr":
		if cfg.Web == nil {
			cfg.Web = &WebConfig{}
		}
		cfg.Web.Addr = value
	case "web.sessionTtl":
		if value != "" {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("store: web.sessionTtl: %w", err)
			}
			if d < 0 {
				return errors.New("store: web.sessionTtl must not be negative")
			}
		}
		if cfg.Web == nil {
			cfg.Web = &WebConfig{}
		}
		cfg.Web.SessionTTL = value
	case "webtui.addr":
		if cfg.WebTUI == nil {
			cfg.WebTUI = &WebTUIConfig{}
		}
		cfg.WebTUI.Addr = value
	case "tui.glyphs":
		switch strings.ToLower(value) {
		case "", "unicode", "ascii":
		default:
			return fmt.Errorf("store: tui.glyphs: expected unicode|ascii, got %q", value)
		}
		if cfg.TUI == nil {
			cfg.TUI = &TUIConfig{}
		}
		cfg.TUI.Glyphs = strings.ToLower(value)
	case "tui.theme":
		switch strings.ToLower(value) {
		case "", "light", "dark", "auto":
		default:
			return fmt.Errorf("store: tui.theme: expected light|dark|auto, got %q", value)
		}
		if cfg.TUI == nil {
			cfg.TUI = &TUIConfig{}
		}
		cfg.TUI.Theme = strings.ToLower(value)
	default:
		return fmt.Errorf("store: unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return nil
}
