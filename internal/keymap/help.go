package keymap

import (
	"fmt"
	"strings"
)

// HelpMarkdown renders the bindings of the global context and the given view
// context as markdown tables.
func (r *Registry) HelpMarkdown(context string) string {
	var b strings.Builder
	b.WriteString("# Keys\n")

	sections := []struct {
		title   string
		context string
	}{
		{"General", GlobalContext},
	}
	if context != "" && context != GlobalContext {
		sections = append(sections, struct {
			title   string
			context string
		}{strings.ToUpper(context[:1]) + context[1:] + " view", context})
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n|---|---|\n", s.title)
		seen := make(map[string]bool)
		for _, c := range r.commandsIn(s.context) {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			keys := r.KeysFor(c.ID, s.context)
			if len(keys) == 0 {
				continue
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", strings.Join(keys, "` `"), c.Name)
		}
	}
	return b.String()
}

// commandsIn returns the commands of context in binding order.
func (r *Registry) commandsIn(context string) []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Command
	for _, b := range r.bindings[context] {
		if c, ok := r.commands[b.Command]; ok {
			out = append(out, c)
		}
	}
	return out
}
