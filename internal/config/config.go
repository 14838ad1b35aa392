package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Cache    CacheConfig    `json:"cache"`
	Lexical  LexicalConfig  `json:"lexical"`
	UI       UIConfig       `json:"ui"`
	Keymap   KeymapConfig   `json:"keymap"`
	Features FeaturesConfig `json:"features"`
	Watch    WatchConfig    `json:"watch"`
	State    StateConfig    `json:"state"`
}

// CacheConfig sizes the file cache window.
type CacheConfig struct {
	// CapacityKB is rounded up to 64 KiB and capped at 16 MiB. 0 selects the maximum.
	CapacityKB int `json:"capacityKB"`
}

// LexicalConfig holds parser and layout defaults for the token view.
type LexicalConfig struct {
	IndentWidth     int  `json:"indentWidth"`
	IgnoreCase      bool `json:"ignoreCase"`
	PrettyFormat    bool `json:"prettyFormat"`
	ShowLineNumbers bool `json:"showLineNumbers"`
	ShowMetadata    bool `json:"showMetadata"`
	MaxWidth        int  `json:"maxWidth"`      // 0 wraps at the window width
	MaxTextSizeMB   int  `json:"maxTextSizeMB"` // larger files open in the hex view only
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowStatusBar bool        `json:"showStatusBar"`
	Theme         ThemeConfig `json:"theme"`
}

// ThemeConfig selects the syntax colour scheme.
type ThemeConfig struct {
	Name      string            `json:"name"` // chroma style name
	Overrides map[string]string `json:"overrides"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// FeaturesConfig holds feature flag settings.
type FeaturesConfig struct {
	Flags map[string]bool `json:"flags"`
}

// WatchConfig configures reloading when the viewed file changes.
type WatchConfig struct {
	Debounce time.Duration `json:"debounce"`
}

// StateConfig configures where view state is remembered between runs.
type StateConfig struct {
	DBPath string `json:"dbPath"` // supports ~ expansion
}

const (
	DefaultIndentWidth   = 4
	MaxIndentWidth       = 32
	DefaultMaxTextSizeMB = 64
	DefaultDebounce      = 250 * time.Millisecond
	DefaultTheme         = "monokai"
	maxCapacityKB        = 16 * 1024
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Lexical: LexicalConfig{
			IndentWidth:     DefaultIndentWidth,
			PrettyFormat:    true,
			ShowLineNumbers: true,
			MaxTextSizeMB:   DefaultMaxTextSizeMB,
		},
		UI: UIConfig{
			ShowStatusBar: true,
			Theme: ThemeConfig{
				Name:      DefaultTheme,
				Overrides: make(map[string]string),
			},
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		Features: FeaturesConfig{
			Flags: make(map[string]bool),
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		State: StateConfig{
			DBPath: "~/.local/state/lexview/state.db",
		},
	}
}

// Validate clamps out-of-range values back to usable ones.
func (c *Config) Validate() error {
	if c.Cache.CapacityKB < 0 {
		c.Cache.CapacityKB = 0
	}
	if c.Cache.CapacityKB > maxCapacityKB {
		c.Cache.CapacityKB = maxCapacityKB
	}
	if c.Lexical.IndentWidth < 0 || c.Lexical.IndentWidth > MaxIndentWidth {
		c.Lexical.IndentWidth = DefaultIndentWidth
	}
	if c.Lexical.MaxWidth < 0 {
		c.Lexical.MaxWidth = 0
	}
	if c.Lexical.MaxTextSizeMB <= 0 {
		c.Lexical.MaxTextSizeMB = DefaultMaxTextSizeMB
	}
	if c.Watch.Debounce < 0 {
		c.Watch.Debounce = DefaultDebounce
	}
	if c.UI.Theme.Name == "" {
		c.UI.Theme.Name = DefaultTheme
	}
	return nil
}

// CacheCapacity returns the requested cache capacity in bytes.
func (c *Config) CacheCapacity() int {
	return c.Cache.CapacityKB * 1024
}

// MaxTextSize returns the text decoding limit in bytes.
func (c *Config) MaxTextSize() int64 {
	return int64(c.Lexical.MaxTextSizeMB) * 1024 * 1024
}
