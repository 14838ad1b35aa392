package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Cache    CacheConfig     `json:"cache"`
	Lexical  LexicalConfig   `json:"lexical"`
	UI       UIConfig        `json:"ui"`
	Keymap   KeymapConfig    `json:"keymap"`
	Features FeaturesConfig  `json:"features,omitempty"`
	Watch    saveWatchConfig `json:"watch"`
	State    StateConfig     `json:"state"`
}

type saveWatchConfig struct {
	Debounce string `json:"debounce,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Cache:    cfg.Cache,
		Lexical:  cfg.Lexical,
		UI:       cfg.UI,
		Keymap:   cfg.Keymap,
		Features: cfg.Features,
		Watch: saveWatchConfig{
			Debounce: cfg.Watch.Debounce.String(),
		},
		State: cfg.State,
	}
}

// Save writes the config to ~/.config/lexview/config.json
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sc := toSaveConfig(cfg)
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme.Name = themeName
	return Save(cfg)
}
