package keymap

// Command IDs.
const (
	CmdQuit           = "quit"
	CmdHelp           = "help"
	CmdSwitchView     = "switch-view"
	CmdGoTo           = "goto"
	CmdCopy           = "copy"
	CmdClearSelection = "clear-selection"
	CmdReload         = "reload"
	CmdPalette        = "command-palette"

	CmdLeft     = "move-left"
	CmdRight    = "move-right"
	CmdUp       = "move-up"
	CmdDown     = "move-down"
	CmdPageUp   = "page-up"
	CmdPageDown = "page-down"
	CmdHome     = "line-home"
	CmdEnd      = "line-end"
	CmdFirst    = "first"
	CmdLast     = "last"

	CmdSelectLeft     = "select-left"
	CmdSelectRight    = "select-right"
	CmdSelectUp       = "select-up"
	CmdSelectDown     = "select-down"
	CmdSelectPageUp   = "select-page-up"
	CmdSelectPageDown = "select-page-down"
	CmdSelectHome     = "select-home"
	CmdSelectEnd      = "select-end"

	CmdScrollUp   = "scroll-up"
	CmdScrollDown = "scroll-down"

	CmdFoldToggle     = "fold-toggle"
	CmdFoldAll        = "fold-all"
	CmdExpandAll      = "expand-all"
	CmdNextSimilar    = "next-similar"
	CmdPrevSimilar    = "prev-similar"
	CmdTogglePretty   = "toggle-pretty"
	CmdToggleNumbers  = "toggle-line-numbers"
	CmdToggleMetadata = "toggle-metadata"
	CmdToggleCase     = "toggle-ignore-case"
)

// View contexts.
const (
	ContextLexical = "lexical"
	ContextHex     = "hex"
)

// DefaultCommands lists every command with its help text.
func DefaultCommands() []Command {
	return []Command{
		{CmdQuit, "Quit", GlobalContext},
		{CmdHelp, "Toggle help", GlobalContext},
		{CmdPalette, "Search and run a command", GlobalContext},
		{CmdSwitchView, "Switch between lexical and hex view", GlobalContext},
		{CmdGoTo, "Go to offset or :line", GlobalContext},
		{CmdCopy, "Copy selection", GlobalContext},
		{CmdClearSelection, "Clear selection", GlobalContext},
		{CmdReload, "Reload file", GlobalContext},

		{CmdLeft, "Previous token or byte", GlobalContext},
		{CmdRight, "Next token or byte", GlobalContext},
		{CmdUp, "Line up", GlobalContext},
		{CmdDown, "Line down", GlobalContext},
		{CmdPageUp, "Page up", GlobalContext},
		{CmdPageDown, "Page down", GlobalContext},
		{CmdHome, "Start of line", GlobalContext},
		{CmdEnd, "End of line", GlobalContext},
		{CmdFirst, "Start of file", GlobalContext},
		{CmdLast, "End of file", GlobalContext},

		{CmdSelectLeft, "Extend selection left", GlobalContext},
		{CmdSelectRight, "Extend selection right", GlobalContext},
		{CmdSelectUp, "Extend selection up", GlobalContext},
		{CmdSelectDown, "Extend selection down", GlobalContext},
		{CmdSelectPageUp, "Extend selection a page up", GlobalContext},
		{CmdSelectPageDown, "Extend selection a page down", GlobalContext},
		{CmdSelectHome, "Extend selection to line start", GlobalContext},
		{CmdSelectEnd, "Extend selection to line end", GlobalContext},

		{CmdScrollUp, "Scroll up", GlobalContext},
		{CmdScrollDown, "Scroll down", GlobalContext},

		{CmdFoldToggle, "Fold or expand the block at the cursor", ContextLexical},
		{CmdFoldAll, "Fold all blocks", ContextLexical},
		{CmdExpandAll, "Expand all blocks", ContextLexical},
		{CmdNextSimilar, "Next similar token", ContextLexical},
		{CmdPrevSimilar, "Previous similar token", ContextLexical},
		{CmdTogglePretty, "Toggle pretty and original layout", ContextLexical},
		{CmdToggleNumbers, "Toggle line numbers", ContextLexical},
		{CmdToggleMetadata, "Toggle token metadata", ContextLexical},
		{CmdToggleCase, "Toggle case-insensitive similarity", ContextLexical},
	}
}

// DefaultBindings returns the built-in key bindings.
func DefaultBindings() []Binding {
	g, lx := GlobalContext, ContextLexical
	return []Binding{
		{"q", CmdQuit, g},
		{"ctrl+c", CmdQuit, g},
		{"?", CmdHelp, g},
		{"ctrl+p", CmdPalette, g},
		{"tab", CmdSwitchView, g},
		{":", CmdGoTo, g},
		{"ctrl+g", CmdGoTo, g},
		{"y", CmdCopy, g},
		{"esc", CmdClearSelection, g},
		{"ctrl+r", CmdReload, g},

		{"left", CmdLeft, g},
		{"h", CmdLeft, g},
		{"right", CmdRight, g},
		{"l", CmdRight, g},
		{"up", CmdUp, g},
		{"k", CmdUp, g},
		{"down", CmdDown, g},
		{"j", CmdDown, g},
		{"pgup", CmdPageUp, g},
		{"ctrl+b", CmdPageUp, g},
		{"pgdown", CmdPageDown, g},
		{"ctrl+f", CmdPageDown, g},
		{"home", CmdHome, g},
		{"0", CmdHome, g},
		{"end", CmdEnd, g},
		{"$", CmdEnd, g},
		{"g g", CmdFirst, g},
		{"ctrl+home", CmdFirst, g},
		{"G", CmdLast, g},
		{"ctrl+end", CmdLast, g},

		{"shift+left", CmdSelectLeft, g},
		{"H", CmdSelectLeft, g},
		{"shift+right", CmdSelectRight, g},
		{"L", CmdSelectRight, g},
		{"shift+up", CmdSelectUp, g},
		{"K", CmdSelectUp, g},
		{"shift+down", CmdSelectDown, g},
		{"J", CmdSelectDown, g},
		{"shift+home", CmdSelectHome, g},
		{"shift+end", CmdSelectEnd, g},
		{"ctrl+u", CmdSelectPageUp, g},
		{"ctrl+d", CmdSelectPageDown, g},

		{"ctrl+y", CmdScrollUp, g},
		{"ctrl+e", CmdScrollDown, g},

		{"f", CmdFoldToggle, lx},
		{"enter", CmdFoldToggle, lx},
		{"z c", CmdFoldAll, lx},
		{"z o", CmdExpandAll, lx},
		{"n", CmdNextSimilar, lx},
		{"N", CmdPrevSimilar, lx},
		{"p", CmdTogglePretty, lx},
		{"#", CmdToggleNumbers, lx},
		{"m", CmdToggleMetadata, lx},
		{"i", CmdToggleCase, lx},
	}
}

// NewDefaultRegistry returns a registry with the built-in commands and
// bindings, with overrides (key -> command ID) applied on top. It returns the
// override keys that named unknown commands.
func NewDefaultRegistry(overrides map[string]string) (*Registry, []string) {
	r := NewRegistry()
	for _, c := range DefaultCommands() {
		r.RegisterCommand(c)
	}
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
	var rejected []string
	for key, id := range overrides {
		if !r.SetUserOverride(key, id) {
			rejected = append(rejected, key)
		}
	}
	return r, rejected
}
