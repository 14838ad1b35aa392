// Package palette is a fuzzy command search overlay over the key bindings.
package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/lexview/internal/keymap"
	"github.com/wilbur182/lexview/internal/styles"
)

// CommandSelectedMsg is sent when a command is selected from the palette.
type CommandSelectedMsg struct {
	CommandID string
}

// ClosedMsg is sent when the palette is dismissed without a selection.
type ClosedMsg struct{}

// Model is the command palette state.
type Model struct {
	textInput textinput.Model

	allEntries []PaletteEntry
	filtered   []PaletteEntry
	cursor     int
	offset     int

	width      int
	height     int
	maxVisible int
}

// New creates a new command palette model.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search commands..."
	ti.Prompt = "> "
	ti.CharLimit = 50
	ti.Width = 40

	return Model{
		textInput:  ti,
		maxVisible: 10,
	}
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Reserve rows for the input, the border and the footer.
	m.maxVisible = max(3, height-8)
	m.textInput.Width = max(10, min(50, width-10))
}

// Open rebuilds the entries for activeContext and resets the query.
func (m *Model) Open(km *keymap.Registry, activeContext string) tea.Cmd {
	m.allEntries = BuildEntries(km, activeContext)
	m.textInput.SetValue("")
	m.refilter()
	return m.textInput.Focus()
}

func (m *Model) refilter() {
	m.filtered = FilterEntries(m.allEntries, m.textInput.Value())
	m.cursor = 0
	m.offset = 0
}

// Query returns the current search query.
func (m Model) Query() string { return m.textInput.Value() }

// Filtered returns the currently filtered entries.
func (m Model) Filtered() []PaletteEntry { return m.filtered }

// Cursor returns the current cursor position.
func (m Model) Cursor() int { return m.cursor }

// SelectedEntry returns the currently selected entry, if any.
func (m Model) SelectedEntry() *PaletteEntry {
	if m.cursor >= 0 && m.cursor < len(m.filtered) {
		return &m.filtered[m.cursor]
	}
	return nil
}

// Update handles messages for the palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			m.textInput.Blur()
			return m, func() tea.Msg { return ClosedMsg{} }

		case tea.KeyEnter:
			entry := m.SelectedEntry()
			if entry == nil {
				return m, nil
			}
			id := entry.CommandID
			m.textInput.Blur()
			return m, func() tea.Msg { return CommandSelectedMsg{CommandID: id} }

		case tea.KeyUp, tea.KeyCtrlP:
			m.moveCursor(-1)
			return m, nil

		case tea.KeyDown, tea.KeyCtrlN:
			m.moveCursor(1)
			return m, nil

		case tea.KeyPgUp:
			m.moveCursor(-m.maxVisible)
			return m, nil

		case tea.KeyPgDown:
			m.moveCursor(m.maxVisible)
			return m, nil
		}

		prev := m.textInput.Value()
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		if m.textInput.Value() != prev {
			m.refilter()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// moveCursor moves the cursor by delta, clamping to valid range.
func (m *Model) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.filtered)-1)

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
}

// View renders the palette box contents.
func (m Model) View() string {
	width := max(min(m.width-4, 70), 20)
	var b strings.Builder
	b.WriteString(styles.Title.Render("Commands"))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(styles.Muted.Render("No matching commands"))
	}
	end := min(m.offset+m.maxVisible, len(m.filtered))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderEntry(m.filtered[i], i == m.cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render(fmt.Sprintf("%d commands  ↑/↓ select  enter run  esc close", len(m.filtered))))
	return styles.ModalBox.Render(b.String())
}

func (m Model) renderEntry(e PaletteEntry, selected bool, width int) string {
	keyWidth := 16
	nameWidth := max(width-keyWidth-2, 8)

	name := highlight(e.Name, e.MatchRanges)
	name = ansi.Truncate(name, nameWidth, "…")
	pad := max(nameWidth-ansi.StringWidth(name), 0)
	key := ansi.Truncate(e.Key, keyWidth, "…")

	line := name + strings.Repeat(" ", pad) + "  " + styles.KeyHint.Render(key)
	if selected {
		return styles.Cursor.Render("▸ ") + line
	}
	return "  " + line
}

// highlight renders the matched rune ranges of s in the prompt style.
func highlight(s string, ranges []MatchRange) string {
	if len(ranges) == 0 {
		return styles.Body.Render(s)
	}
	runes := []rune(s)
	var b strings.Builder
	pos := 0
	for _, r := range ranges {
		if r.Start < pos || r.End > len(runes) {
			continue
		}
		b.WriteString(styles.Body.Render(string(runes[pos:r.Start])))
		b.WriteString(styles.Prompt.Render(string(runes[r.Start:r.End])))
		pos = r.End
	}
	b.WriteString(styles.Body.Render(string(runes[pos:])))
	return b.String()
}
