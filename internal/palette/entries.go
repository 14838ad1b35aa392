package palette

import (
	"sort"
	"strings"

	"github.com/wilbur182/lexview/internal/keymap"
)

// Layer orders entries: commands of the active view before global ones.
type Layer int

const (
	LayerCurrentMode Layer = iota
	LayerGlobal
)

// Name returns a display name for the layer.
func (l Layer) Name() string {
	switch l {
	case LayerCurrentMode:
		return "Current"
	case LayerGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}

// PaletteEntry is a single searchable command.
type PaletteEntry struct {
	Key         string // display key(s): "f, enter"
	CommandID   string
	Name        string
	Context     string
	Layer       Layer
	Score       int          // fuzzy match score, computed during search
	MatchRanges []MatchRange // for highlighting matches in Name
}

// BuildEntries lists each command bound in activeContext or globally once,
// with all of its keys.
func BuildEntries(km *keymap.Registry, activeContext string) []PaletteEntry {
	seen := make(map[string]bool)
	var entries []PaletteEntry
	for _, ctx := range []string{activeContext, keymap.GlobalContext} {
		for _, b := range km.BindingsForContext(ctx) {
			if seen[b.Command] || b.Command == keymap.CmdPalette {
				continue
			}
			seen[b.Command] = true
			entries = append(entries, bindingToEntry(km, b, activeContext))
		}
	}
	return entries
}

func bindingToEntry(km *keymap.Registry, b keymap.Binding, activeContext string) PaletteEntry {
	entry := PaletteEntry{
		Key:       strings.Join(km.KeysFor(b.Command, b.Context), ", "),
		CommandID: b.Command,
		Context:   b.Context,
		Layer:     LayerGlobal,
	}
	if b.Context == activeContext {
		entry.Layer = LayerCurrentMode
	}
	if cmd, ok := km.GetCommand(b.Command); ok {
		entry.Name = cmd.Name
	}
	if entry.Name == "" {
		entry.Name = formatCommandID(b.Command)
	}
	return entry
}

// formatCommandID converts a command ID to a readable name.
// "fold-all" -> "Fold all"
func formatCommandID(id string) string {
	if id == "" {
		return ""
	}
	words := strings.Split(id, "-")
	if runes := []rune(words[0]); len(runes) > 0 {
		words[0] = strings.ToUpper(string(runes[:1])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}

// SortEntries orders by score descending, then layer, then name.
func SortEntries(entries []PaletteEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		return a.Name < b.Name
	})
}
