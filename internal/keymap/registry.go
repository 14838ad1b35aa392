// Package keymap maps key presses (including two-key sequences such as "g g")
// to command IDs, with per-view contexts and user overrides.
package keymap

import (
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sequenceTimeout = 500 * time.Millisecond

// GlobalContext holds bindings active in every view.
const GlobalContext = "global"

// Command describes a bindable action.
type Command struct {
	ID      string
	Name    string // short description for help
	Context string
}

// Binding maps a key or key sequence to a command.
type Binding struct {
	Key     string // e.g., "tab", "ctrl+g", "g g"
	Command string // Command ID
	Context string // GlobalContext or a view name
}

// Registry manages key bindings and resolves key presses to commands.
type Registry struct {
	commands      map[string]Command   // ID -> Command
	bindings      map[string][]Binding // context -> bindings
	userOverrides map[string]string    // key -> command ID
	pendingKey    string
	pendingTime   time.Time
	now           func() time.Time
	mu            sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:      make(map[string]Command),
		bindings:      make(map[string][]Binding),
		userOverrides: make(map[string]string),
		now:           time.Now,
	}
}

// RegisterCommand adds a command to the registry.
func (r *Registry) RegisterCommand(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.ID] = cmd
}

// RegisterBinding adds a key binding.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// SetUserOverride binds key to commandID ahead of every context. Unknown
// command IDs are reported as false and not stored.
func (r *Registry) SetUserOverride(key, commandID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[commandID]; !ok {
		return false
	}
	r.userOverrides[key] = commandID
	return true
}

// Resolve maps a key press to a command ID. It returns false when the key
// matches nothing or starts a sequence that is still pending.
func (r *Registry) Resolve(key tea.KeyMsg, activeContext string) (string, bool) {
	return r.resolve(KeyString(key), activeContext)
}

func (r *Registry) resolve(keyStr, activeContext string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pendingKey != "" {
		if r.now().Sub(r.pendingTime) < sequenceTimeout {
			seq := r.pendingKey + " " + keyStr
			r.pendingKey = ""
			if id, ok := r.findCommand(seq, activeContext); ok {
				return id, true
			}
			// Sequence didn't match, try just the new key
		} else {
			r.pendingKey = ""
		}
	}

	if r.isSequenceStart(keyStr, activeContext) {
		r.pendingKey = keyStr
		r.pendingTime = r.now()
		return "", false
	}

	return r.findCommand(keyStr, activeContext)
}

// findCommand looks up a command for the given key in order of precedence:
// user overrides, the active context, then global bindings.
func (r *Registry) findCommand(key, activeContext string) (string, bool) {
	if id, ok := r.userOverrides[key]; ok {
		return id, true
	}
	if activeContext != "" && activeContext != GlobalContext {
		if id, ok := r.findInContext(key, activeContext); ok {
			return id, true
		}
	}
	return r.findInContext(key, GlobalContext)
}

func (r *Registry) findInContext(key, context string) (string, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			if _, ok := r.commands[b.Command]; ok {
				return b.Command, true
			}
		}
	}
	return "", false
}

// isSequenceStart checks if this key could start a multi-key sequence.
func (r *Registry) isSequenceStart(key, activeContext string) bool {
	prefix := key + " "

	contexts := []string{GlobalContext}
	if activeContext != "" && activeContext != GlobalContext {
		contexts = append(contexts, activeContext)
	}
	for _, ctx := range contexts {
		for _, b := range r.bindings[ctx] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}
	for k := range r.userOverrides {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// ResetPending clears any pending key sequence.
func (r *Registry) ResetPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingKey = ""
}

// HasPending returns true if there's a pending key sequence.
func (r *Registry) HasPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingKey != "" && r.now().Sub(r.pendingTime) < sequenceTimeout
}

// GetCommand retrieves a command by ID.
func (r *Registry) GetCommand(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// KeysFor returns every key bound to id in context (or globally), with user
// overrides first.
func (r *Registry) KeysFor(id, context string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for k, cmd := range r.userOverrides {
		if cmd == id {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, ctx := range []string{context, GlobalContext} {
		for _, b := range r.bindings[ctx] {
			if b.Command == id {
				keys = append(keys, b.Key)
			}
		}
		if context == GlobalContext {
			break
		}
	}
	return keys
}

// BindingsForContext returns all bindings for a given context.
func (r *Registry) BindingsForContext(context string) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings[context]...)
}

// AllContexts returns all contexts that have bindings, sorted.
func (r *Registry) AllContexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contexts := make([]string, 0, len(r.bindings))
	for ctx := range r.bindings {
		contexts = append(contexts, ctx)
	}
	sort.Strings(contexts)
	return contexts
}

// KeyString converts a tea.KeyMsg to the notation used in bindings.
func KeyString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyRunes:
		if key.Alt {
			return "alt+" + string(key.Runes)
		}
		return string(key.Runes)
	default:
		return key.String()
	}
}
