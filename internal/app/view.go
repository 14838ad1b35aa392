package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/lexview/internal/features"
	"github.com/wilbur182/lexview/internal/hexview"
	"github.com/wilbur182/lexview/internal/lexical"
	"github.com/wilbur182/lexview/internal/styles"
	"github.com/wilbur182/lexview/internal/ui"
)

// View renders the screen.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showPalette {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.palette.View())
	}

	w, h := m.contentSize()
	var rows []string
	if m.lexicalActive() {
		rows = m.renderLexical(w, h)
	} else {
		rows = m.renderHex(w, h)
	}
	for i, cell := range ui.RenderScrollbar(m.scrollbar(h)) {
		if i < len(rows) {
			rows[i] += cell
		}
	}
	if m.showMetadata && m.lexicalActive() {
		rows = append(rows, m.renderMetadata())
	}
	if m.cfg.UI.ShowStatusBar {
		rows = append(rows, m.renderStatusBar())
	}
	return strings.Join(rows, "\n")
}

func (m *Model) scrollbar(h int) ui.ScrollbarParams {
	p := ui.ScrollbarParams{VisibleRows: h, TrackHeight: h}
	if m.lexicalActive() {
		_, sy := m.doc.engine.ScrollOffset()
		p.TotalRows, p.ScrollOffset = m.doc.engine.LineCount(), sy
	} else {
		size := m.doc.hex.Size()
		p.TotalRows = int((size + hexview.BytesPerRow - 1) / hexview.BytesPerRow)
		p.ScrollOffset = int(m.doc.hex.Top())
	}
	return p
}

// renderLexical draws the gutter and the positioned tokens.
func (m *Model) renderLexical(w, h int) []string {
	e := m.doc.engine
	g := m.gutterWidth()
	cv := newCanvas(w-g, h)
	similar := features.IsEnabled(features.SimilarityHighlight.Name)

	sx, _ := e.ScrollOffset()
	pretty := e.Settings().PrettyFormat
	for _, it := range e.Items() {
		style := styles.Token(it.Color)
		if it.Kind == lexical.ItemFoldMarker {
			style = styles.FoldMarker
		}
		switch {
		case it.Cursor:
			style = styles.Cursor.Inherit(style)
		case it.Selected:
			style = styles.Selected.Inherit(style)
		case similar && it.Similar:
			style = styles.Similar.Inherit(style)
		}
		cont := it.X
		if !pretty {
			cont = -sx
		}
		cv.putBlock(it.X, it.Y, cont, it.Text, style)
	}
	lines := cv.lines()

	if g == 0 {
		return lines
	}
	_, sy := e.ScrollOffset()
	cur := -1
	if t, err := e.Token(e.Cursor()); err == nil {
		cur = t.Y
	}
	for y := range lines {
		row := sy + y
		num := ""
		if row < e.LineCount() {
			num = fmt.Sprintf("%*d", g-1, row+1)
		}
		gs := styles.Gutter
		if row == cur {
			gs = styles.GutterCurrent
		}
		lines[y] = gs.Render(fmt.Sprintf("%-*s", g, num)) + lines[y]
	}
	return lines
}

// renderHex draws hex rows with the cursor byte and the selection marked in
// both the hex and the ASCII column.
func (m *Model) renderHex(w, h int) []string {
	v := m.doc.hex
	rows, err := v.Rows(h)
	if err != nil {
		m.logger.Warn("hex rows", "err", err)
	}
	start, end, hasSel := v.Selection()
	cur := v.Cursor()

	cv := newCanvas(w, h)
	for y, r := range rows {
		cv.put(0, y, fmt.Sprintf("%08X", r.Offset), styles.HexOffset)
		for i, b := range r.Bytes {
			off := r.Offset + int64(i)
			style := styles.Body
			switch {
			case off == cur:
				style = styles.Cursor
			case hasSel && off >= start && off <= end:
				style = styles.Selected.Inherit(styles.Body)
			}
			cv.put(hexview.HexColumn(i), y, fmt.Sprintf("%02X", b), style)
			ascii := string(rune(printable(b)))
			cv.put(hexview.AsciiColumn(i), y, ascii, style.Inherit(styles.HexASCII))
		}
		cv.put(hexview.AsciiColumn(0)-1, y, "|", styles.Muted)
		cv.put(hexview.AsciiColumn(hexview.BytesPerRow), y, "|", styles.Muted)
	}
	if len(rows) == 0 && v.Size() == 0 {
		cv.put(0, 0, "(empty file)", styles.Muted)
	}
	return cv.lines()
}

func printable(c byte) byte {
	if c >= 32 && c <= 126 {
		return c
	}
	return '.'
}

func (m *Model) renderMetadata() string {
	e := m.doc.engine
	s, err := e.Metadata(e.Cursor())
	if err != nil {
		s = err.Error()
	}
	return styles.Metadata.Render(ansi.Truncate(s, max(m.width-2, 0), "…"))
}

// renderStatusBar shows the view name, the file and the cursor status, or a
// toast in place of the file name.
func (m *Model) renderStatusBar() string {
	c := m.control()
	mode := styles.StatusMode.Render(c.Name())

	middle := " " + m.doc.obj.Name + "  " + m.doc.obj.Format.Name()
	if m.doc.lang != "" {
		middle += "  " + m.doc.lang
	}
	if m.doc.note != "" && m.doc.note != m.doc.obj.Format.Name() {
		middle += "  (" + m.doc.note + ")"
	}
	middleStyle := styles.StatusBar
	if m.statusMsg != "" {
		middle = " " + m.statusMsg
		if m.statusIsError {
			middleStyle = styles.ErrorText.Inherit(styles.StatusBar)
		}
	}
	if m.gotoActive {
		middle = " " + m.gotoInput.View()
	}

	avail := m.width - lipgloss.Width(mode)
	right := c.CursorStatus(max(avail/2, 0)) + " "
	middle = ansi.Truncate(middle, max(avail-lipgloss.Width(right), 0), "…")
	gap := max(avail-lipgloss.Width(middle)-lipgloss.Width(right), 0)

	return mode +
		middleStyle.Render(middle) +
		styles.StatusBar.Render(strings.Repeat(" ", gap)+right)
}

// renderHelp shows the key bindings for the active view in a centered box.
func (m *Model) renderHelp() string {
	width := min(m.width-4, 80)
	lines := m.help.RenderContent(m.keymap.HelpMarkdown(m.context()), width)

	maxLines := max(m.height-4, 1)
	scroll := min(m.helpScroll, max(len(lines)-maxLines, 0))
	end := min(scroll+maxLines, len(lines))
	body := strings.Join(lines[scroll:end], "\n")

	box := styles.ModalBox.Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
