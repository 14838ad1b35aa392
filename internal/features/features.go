package features

import (
	"errors"
	"sync"

	"github.com/wilbur182/lexview/internal/config"
)

// ErrNotInitialized is returned when the feature manager is not initialized.
var ErrNotInitialized = errors.New("feature manager not initialized")

// Feature represents a known feature flag with its default value.
type Feature struct {
	Name        string
	Default     bool
	Description string
}

// Known feature flags.
var (
	// SimilarityHighlight marks tokens that share the cursor token's text.
	SimilarityHighlight = Feature{
		Name:        "similarity_highlight",
		Default:     true,
		Description: "Highlight tokens similar to the one under the cursor",
	}

	// WatchFile reloads the view when the file changes on disk.
	WatchFile = Feature{
		Name:        "watch_file",
		Default:     true,
		Description: "Reload the view when the file changes",
	}

	// PersistState remembers cursor and folds per file between runs.
	PersistState = Feature{
		Name:        "persist_state",
		Default:     true,
		Description: "Remember cursor position and folds per file",
	}
)

var allFeatures = []Feature{
	SimilarityHighlight,
	WatchFile,
	PersistState,
}

var defaultValues = func() map[string]bool {
	m := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		m[f.Name] = f.Default
	}
	return m
}()

// IsKnownFeature returns true if the feature name is registered.
func IsKnownFeature(name string) bool {
	_, ok := defaultValues[name]
	return ok
}

// Manager handles feature flag state.
type Manager struct {
	mu        sync.RWMutex
	cfg       *config.Config
	overrides map[string]bool // CLI overrides take precedence
}

var globalManager *Manager

// Init installs the manager for cfg. Call once at startup after config is loaded.
func Init(cfg *config.Config) {
	globalManager = &Manager{
		cfg:       cfg,
		overrides: make(map[string]bool),
	}
}

// SetOverride sets a CLI override for a feature flag.
func SetOverride(name string, enabled bool) {
	if globalManager == nil {
		return
	}
	globalManager.mu.Lock()
	defer globalManager.mu.Unlock()
	globalManager.overrides[name] = enabled
}

// IsEnabled resolves a flag: CLI override, then config, then default.
func IsEnabled(name string) bool {
	m := globalManager
	if m == nil {
		return defaultValues[name]
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolve(name)
}

// resolve must be called with mu held.
func (m *Manager) resolve(name string) bool {
	if enabled, ok := m.overrides[name]; ok {
		return enabled
	}
	if m.cfg != nil {
		if enabled, ok := m.cfg.Features.Flags[name]; ok {
			return enabled
		}
	}
	return defaultValues[name]
}

// List returns all known features with their current enabled state.
func List() map[string]bool {
	result := make(map[string]bool, len(allFeatures))
	for _, f := range allFeatures {
		result[f.Name] = IsEnabled(f.Name)
	}
	return result
}

// ListAll returns a copy of all known features with metadata.
func ListAll() []Feature {
	result := make([]Feature, len(allFeatures))
	copy(result, allFeatures)
	return result
}

// SetEnabled persists a feature flag in the config file.
func SetEnabled(name string, enabled bool) error {
	m := globalManager
	if m == nil {
		return ErrNotInitialized
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Reload from disk to avoid overwriting changes made since startup.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Features.Flags == nil {
		cfg.Features.Flags = make(map[string]bool)
	}
	cfg.Features.Flags[name] = enabled
	m.cfg.Features.Flags = cfg.Features.Flags

	return config.Save(cfg)
}
