package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/lexview/internal/hexview"
	"github.com/wilbur182/lexview/internal/keymap"
	"github.com/wilbur182/lexview/internal/lexical"
	"github.com/wilbur182/lexview/internal/mouse"
	"github.com/wilbur182/lexview/internal/palette"
)

const (
	toastShort = 2 * time.Second
	toastLong  = 4 * time.Second

	// maxCopyBytes bounds hex view copies to the clipboard.
	maxCopyBytes = 1 << 20

	scrollbarWidth = 1
)

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case FileChangedMsg:
		cmd := m.reload()
		return m, tea.Batch(cmd, m.waitForChange())

	case palette.CommandSelectedMsg:
		m.showPalette = false
		if msg.CommandID == keymap.CmdQuit {
			return m, tea.Quit
		}
		return m, m.runCommand(msg.CommandID)

	case palette.ClosedMsg:
		m.showPalette = false
		return m, nil

	case ToastMsg:
		return m, m.ShowToast(msg.Message, msg.Duration, msg.IsError)

	case toastExpiredMsg:
		m.ClearToast()
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gotoActive {
		return m.handleGotoKey(msg)
	}
	if m.showPalette {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}
	if m.showHelp {
		switch keymap.KeyString(msg) {
		case "up", "k":
			m.helpScroll = max(m.helpScroll-1, 0)
		case "down", "j":
			m.helpScroll++
		case "ctrl+c":
			return m, tea.Quit
		default:
			m.showHelp = false
			m.helpScroll = 0
		}
		return m, nil
	}

	id, ok := m.keymap.Resolve(msg, m.context())
	if !ok {
		return m, nil
	}
	if id == keymap.CmdQuit {
		return m, tea.Quit
	}
	return m, m.runCommand(id)
}

// runCommand executes a command on the active view.
func (m *Model) runCommand(id string) tea.Cmd {
	nav := m.nav()
	var err error
	switch id {
	case keymap.CmdHelp:
		m.showHelp = true
		m.helpScroll = 0
	case keymap.CmdPalette:
		m.showPalette = true
		m.palette.SetSize(m.width, m.height)
		return m.palette.Open(m.keymap, m.context())
	case keymap.CmdSwitchView:
		return m.switchView()
	case keymap.CmdGoTo:
		m.gotoActive = true
		m.gotoInput.SetValue("")
		return m.gotoInput.Focus()
	case keymap.CmdCopy:
		return m.copySelection()
	case keymap.CmdClearSelection:
		if m.lexicalActive() {
			m.doc.engine.ClearSelection()
		} else {
			m.doc.hex.ClearSelection()
		}
	case keymap.CmdReload:
		return m.reload()

	case keymap.CmdLeft, keymap.CmdSelectLeft:
		err = nav.MoveLeft(id == keymap.CmdSelectLeft)
	case keymap.CmdRight, keymap.CmdSelectRight:
		err = nav.MoveRight(id == keymap.CmdSelectRight)
	case keymap.CmdUp, keymap.CmdSelectUp:
		err = nav.MoveUp(1, id == keymap.CmdSelectUp)
	case keymap.CmdDown, keymap.CmdSelectDown:
		err = nav.MoveDown(1, id == keymap.CmdSelectDown)
	case keymap.CmdPageUp, keymap.CmdSelectPageUp:
		err = nav.PageUp(id == keymap.CmdSelectPageUp)
	case keymap.CmdPageDown, keymap.CmdSelectPageDown:
		err = nav.PageDown(id == keymap.CmdSelectPageDown)
	case keymap.CmdHome, keymap.CmdSelectHome:
		err = nav.MoveHome(id == keymap.CmdSelectHome)
	case keymap.CmdEnd, keymap.CmdSelectEnd:
		err = nav.MoveEnd(id == keymap.CmdSelectEnd)
	case keymap.CmdFirst:
		err = nav.MoveToFirst(false)
	case keymap.CmdLast:
		err = nav.MoveToLast(false)
	case keymap.CmdScrollUp:
		m.scroll(0, -1)
	case keymap.CmdScrollDown:
		m.scroll(0, 1)

	default:
		if m.lexicalActive() {
			err = m.runLexicalCommand(id)
		}
	}
	if err != nil {
		return m.ShowToast(err.Error(), toastShort, true)
	}
	return nil
}

// runLexicalCommand executes commands that only apply to the token view.
func (m *Model) runLexicalCommand(id string) error {
	e := m.doc.engine
	switch id {
	case keymap.CmdFoldToggle:
		return e.ToggleFoldAtCursor(false)
	case keymap.CmdFoldAll:
		return e.FoldAll()
	case keymap.CmdExpandAll:
		return e.ExpandAll()
	case keymap.CmdNextSimilar:
		return e.MoveToNextSimilar(false)
	case keymap.CmdPrevSimilar:
		return e.MoveToPrevSimilar(false)
	case keymap.CmdTogglePretty:
		s := e.Settings()
		s.PrettyFormat = !s.PrettyFormat
		return e.SetSettings(s)
	case keymap.CmdToggleNumbers:
		s := e.Settings()
		s.ShowLineNumbers = !s.ShowLineNumbers
		if err := e.SetSettings(s); err != nil {
			return err
		}
		m.resize()
	case keymap.CmdToggleMetadata:
		m.showMetadata = !m.showMetadata
		m.resize()
	case keymap.CmdToggleCase:
		s := e.Settings()
		s.IgnoreCase = !s.IgnoreCase
		return m.preserve(func() error { return e.SetSettings(s) })
	}
	return nil
}

// preserve runs a model rebuild and restores the cursor token offset and the
// folds afterwards.
func (m *Model) preserve(rebuild func() error) error {
	e := m.doc.engine
	folds := e.FoldedOffsets()
	off := -1
	if t, err := e.Token(e.Cursor()); err == nil {
		off = t.Start
	}
	if err := rebuild(); err != nil {
		return err
	}
	e.RestoreFolds(folds)
	if off >= 0 {
		if err := e.GoTo(off); err != nil {
			m.logger.Debug("cursor not restored after rebuild", "offset", off, "err", err)
		}
	}
	return nil
}

func (m *Model) scroll(dx, dy int) {
	if m.lexicalActive() {
		m.doc.engine.Scroll(dx, dy)
		return
	}
	m.doc.hex.Scroll(dy)
}

// switchView toggles between the lexical and hex views, carrying the cursor
// over when offsets map between them.
func (m *Model) switchView() tea.Cmd {
	if m.doc.engine == nil {
		return m.ShowToast("Lexical view unavailable: "+m.doc.note, toastShort, true)
	}
	off := m.doc.cursorFileOffset(m.lexicalActive())
	if m.mode == modeLexical {
		m.mode = modeHex
	} else {
		m.mode = modeLexical
	}
	m.doc.syncTo(m.mode == modeLexical, off)
	m.resize()
	return nil
}

// copySelection copies the lexical selection as text, or the hex selection
// as hex byte pairs.
func (m *Model) copySelection() tea.Cmd {
	var content string
	if m.lexicalActive() {
		content = m.doc.engine.SelectedText()
	} else {
		start, end, ok := m.doc.hex.Selection()
		if ok && end-start+1 > maxCopyBytes {
			return m.ShowToast(fmt.Sprintf("Selection larger than %d bytes", maxCopyBytes), toastShort, true)
		}
		b, err := m.doc.hex.SelectedBytes()
		if err != nil {
			return m.ShowToast("Copy failed: "+err.Error(), toastShort, true)
		}
		content = hexPairs(b)
	}
	if content == "" {
		return nil
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(content); err != nil {
			return ToastMsg{Message: "Copy failed: " + err.Error(), Duration: toastShort, IsError: true}
		}
		return ToastMsg{Message: fmt.Sprintf("Copied %d bytes", len(content)), Duration: toastShort}
	}
}

func hexPairs(b []byte) string {
	var sb strings.Builder
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

func (m Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.gotoActive = false
		m.gotoInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.gotoActive = false
		m.gotoInput.Blur()
		if err := m.goTo(m.gotoInput.Value()); err != nil {
			return m, m.ShowToast(err.Error(), toastShort, true)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

// goTo interprets prompt input: ":N" is a 1-based line (a row in the hex
// view), anything else an offset in decimal or 0x hex.
func (m *Model) goTo(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if line, ok := strings.CutPrefix(input, ":"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return fmt.Errorf("bad line %q", line)
		}
		if m.lexicalActive() {
			return m.doc.engine.GoToLine(n)
		}
		if n < 1 {
			return fmt.Errorf("%w: line %d", hexview.ErrOutOfRange, n)
		}
		return m.doc.hex.GoTo((n - 1) * hexview.BytesPerRow)
	}
	off, err := strconv.ParseInt(input, 0, 64)
	if err != nil {
		return fmt.Errorf("bad offset %q", input)
	}
	return m.control().GoTo(int(off))
}

// reload reopens the file after it changed on disk, keeping the view, the
// cursor offset and the folds where possible.
func (m *Model) reload() tea.Cmd {
	lexicalActive := m.lexicalActive()
	off := m.doc.cursorFileOffset(lexicalActive)
	var folds []int
	if m.doc.engine != nil {
		folds = m.doc.engine.FoldedOffsets()
	}

	doc, err := openDocument(m.path, m.cfg, m.reg, m.logger)
	if err != nil {
		m.logger.Warn("reload failed", "path", m.path, "err", err)
		return m.ShowToast("Reload failed: "+err.Error(), toastLong, true)
	}
	if err := m.doc.close(); err != nil {
		m.logger.Debug("close after reload", "err", err)
	}
	if doc.engine != nil && m.doc.engine != nil {
		s := m.doc.engine.Settings()
		s.Parser = doc.engine.Settings().Parser
		if err := doc.engine.SetSettings(s); err != nil {
			m.logger.Debug("settings not carried over on reload", "path", m.path, "err", err)
		}
		doc.engine.RestoreFolds(folds)
	}
	m.doc = doc
	if doc.engine == nil {
		m.mode = modeHex
	}
	m.resize()
	m.doc.syncTo(m.lexicalActive(), off)
	m.fds.Check("reload")
	return m.ShowToast("Reloaded "+m.doc.obj.Name, toastShort, false)
}

// resize recomputes the content area and passes it to both views.
func (m *Model) resize() {
	w, h := m.contentSize()
	if e := m.doc.engine; e != nil {
		e.Resize(max(w-m.gutterWidth(), 0), h)
	}
	m.doc.hex.Resize(w, h)
}

// contentSize returns the area left for the document after the scrollbar,
// the status bar and the metadata line.
func (m *Model) contentSize() (int, int) {
	h := m.height
	if m.cfg.UI.ShowStatusBar {
		h--
	}
	if m.showMetadata && m.lexicalActive() {
		h--
	}
	return max(m.width-scrollbarWidth, 0), max(h, 0)
}

// gutterWidth is the line number column plus one space, or 0.
func (m *Model) gutterWidth() int {
	if !m.lexicalActive() || !m.doc.engine.Settings().ShowLineNumbers {
		return 0
	}
	return m.doc.engine.LineNumberWidth() + 1
}

// updateHitMap registers the screen regions for mouse hit testing.
func (m *Model) updateHitMap() {
	hm := m.mouse.HitMap
	hm.Clear()
	w, h := m.contentSize()
	g := m.gutterWidth()
	if g > 0 {
		hm.Add(mouse.RegionGutter, 0, 0, g, h)
	}
	hm.Add(mouse.RegionContent, g, 0, w-g, h)
	if m.cfg.UI.ShowStatusBar {
		hm.Add(mouse.RegionStatus, 0, m.height-1, m.width, 1)
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showPalette {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}
	if m.showHelp || m.gotoActive {
		return m, nil
	}
	m.updateHitMap()
	a := m.mouse.HandleMouse(msg)

	var err error
	switch a.Type {
	case mouse.ActionScrollUp, mouse.ActionScrollDown:
		m.scroll(0, a.Delta)
	case mouse.ActionScrollLeft, mouse.ActionScrollRight:
		m.scroll(a.Delta, 0)
	case mouse.ActionClick, mouse.ActionDoubleClick, mouse.ActionDrag:
		if a.Region == nil {
			break
		}
		x, y := a.Region.Local(a.X, a.Y)
		switch a.Region.ID {
		case mouse.RegionContent:
			err = m.clickContent(x, y, a)
		case mouse.RegionGutter:
			if m.lexicalActive() && a.Type != mouse.ActionDrag {
				_, sy := m.doc.engine.ScrollOffset()
				err = m.doc.engine.GoToLine(sy + y + 1)
			}
		case mouse.RegionStatus:
			if a.Type == mouse.ActionClick {
				return m, m.runCommand(keymap.CmdSwitchView)
			}
		}
	}
	if err != nil && !errors.Is(err, lexical.ErrEmptyDocument) {
		return m, m.ShowToast(err.Error(), toastShort, true)
	}
	return m, nil
}

// clickContent moves the cursor to the clicked token or byte. A double-click
// on a token toggles the block it starts or belongs to.
func (m *Model) clickContent(x, y int, a mouse.Action) error {
	if !m.lexicalActive() {
		m.doc.hex.Click(x, y, a.Extend)
		return nil
	}
	e := m.doc.engine
	switch a.Type {
	case mouse.ActionDrag:
		if i := e.TokenAt(x, y); i >= 0 {
			return e.MoveToToken(i, true)
		}
		return nil
	case mouse.ActionDoubleClick:
		if err := e.Click(x, y, false); err != nil {
			return err
		}
		return e.ToggleFoldAtCursor(false)
	}
	return e.Click(x, y, a.Extend)
}
