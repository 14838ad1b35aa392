package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/lexview"
	configFile = "config.json"
)

var testConfigPath string

// SetTestConfigPath redirects ConfigPath for tests.
func SetTestConfigPath(path string) { testConfigPath = path }

// ResetTestConfigPath undoes SetTestConfigPath.
func ResetTestConfigPath() { testConfigPath = "" }

// ConfigPath returns ~/.config/lexview/config.json.
func ConfigPath() string {
	if testConfigPath != "" {
		return testConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(configDir, configFile)
	}
	return filepath.Join(home, configDir, configFile)
}

// rawConfig mirrors Config with pointer fields so that absent keys keep
// their defaults.
type rawConfig struct {
	Cache    *rawCacheConfig   `json:"cache"`
	Lexical  *rawLexicalConfig `json:"lexical"`
	UI       *rawUIConfig      `json:"ui"`
	Keymap   *KeymapConfig     `json:"keymap"`
	Features *FeaturesConfig   `json:"features"`
	Watch    *rawWatchConfig   `json:"watch"`
	State    *StateConfig      `json:"state"`
}

type rawCacheConfig struct {
	CapacityKB *int `json:"capacityKB"`
}

type rawLexicalConfig struct {
	IndentWidth     *int  `json:"indentWidth"`
	IgnoreCase      *bool `json:"ignoreCase"`
	PrettyFormat    *bool `json:"prettyFormat"`
	ShowLineNumbers *bool `json:"showLineNumbers"`
	ShowMetadata    *bool `json:"showMetadata"`
	MaxWidth        *int  `json:"maxWidth"`
	MaxTextSizeMB   *int  `json:"maxTextSizeMB"`
}

type rawUIConfig struct {
	ShowStatusBar *bool        `json:"showStatusBar"`
	Theme         *ThemeConfig `json:"theme"`
}

type rawWatchConfig struct {
	Debounce string `json:"debounce"`
}

// Load reads the config from ConfigPath, falling back to defaults when the
// file does not exist.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path and merges it over Default().
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := mergeConfig(cfg, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.State.DBPath = ExpandPath(cfg.State.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeConfig(cfg *Config, raw *rawConfig) error {
	if c := raw.Cache; c != nil && c.CapacityKB != nil {
		cfg.Cache.CapacityKB = *c.CapacityKB
	}
	if l := raw.Lexical; l != nil {
		setInt(&cfg.Lexical.IndentWidth, l.IndentWidth)
		setBool(&cfg.Lexical.IgnoreCase, l.IgnoreCase)
		setBool(&cfg.Lexical.PrettyFormat, l.PrettyFormat)
		setBool(&cfg.Lexical.ShowLineNumbers, l.ShowLineNumbers)
		setBool(&cfg.Lexical.ShowMetadata, l.ShowMetadata)
		setInt(&cfg.Lexical.MaxWidth, l.MaxWidth)
		setInt(&cfg.Lexical.MaxTextSizeMB, l.MaxTextSizeMB)
	}
	if u := raw.UI; u != nil {
		setBool(&cfg.UI.ShowStatusBar, u.ShowStatusBar)
		if u.Theme != nil {
			if u.Theme.Name != "" {
				cfg.UI.Theme.Name = u.Theme.Name
			}
			for k, v := range u.Theme.Overrides {
				cfg.UI.Theme.Overrides[k] = v
			}
		}
	}
	if raw.Keymap != nil {
		for k, v := range raw.Keymap.Overrides {
			cfg.Keymap.Overrides[k] = v
		}
	}
	if raw.Features != nil {
		for k, v := range raw.Features.Flags {
			cfg.Features.Flags[k] = v
		}
	}
	if w := raw.Watch; w != nil && w.Debounce != "" {
		d, err := time.ParseDuration(w.Debounce)
		if err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
		cfg.Watch.Debounce = d
	}
	if s := raw.State; s != nil && s.DBPath != "" {
		cfg.State.DBPath = s.DBPath
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
