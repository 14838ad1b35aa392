// Package features holds the viewer's feature flags. A flag resolves from a
// command-line override, then the config file, then its compiled-in default.
package features
