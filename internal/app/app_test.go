package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/lexview/internal/config"
	"github.com/wilbur182/lexview/internal/keymap"
	"github.com/wilbur182/lexview/internal/object"
	"github.com/wilbur182/lexview/internal/plugin"
)

const goSource = "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestModel(t *testing.T, path string) Model {
	t.Helper()
	cfg := config.Default()
	km, _ := keymap.NewDefaultRegistry(nil)
	m, err := New(Options{
		Path:     path,
		Config:   cfg,
		Registry: object.DefaultRegistry(&plugin.Context{Config: cfg}),
		Keymap:   km,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNew_TextOpensLexicalView(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	if !m.lexicalActive() {
		t.Fatal("expected the lexical view for a Go file")
	}
	if m.control().Name() != "Lexical" {
		t.Errorf("expected Lexical, got %q", m.control().Name())
	}
	if m.doc.lang != "Go" {
		t.Errorf("expected Go, got %q", m.doc.lang)
	}
	if m.context() != keymap.ContextLexical {
		t.Errorf("unexpected context %q", m.context())
	}
}

func TestNew_BinaryOpensHexView(t *testing.T) {
	m := newTestModel(t, writeFile(t, "blob.bin", []byte{0, 1, 2, 3, 0, 0, 0xff}))
	if m.lexicalActive() {
		t.Fatal("expected the hex view for binary data")
	}
	if m.doc.engine != nil {
		t.Error("expected no lexical engine")
	}
	// Switching is refused with a toast.
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if cmd == nil || m.statusMsg == "" || !m.statusIsError {
		t.Error("expected an error toast when the lexical view is unavailable")
	}
	if m.mode != modeHex {
		t.Error("expected to stay in the hex view")
	}
}

func TestSwitchView_CarriesCursor(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	m, _ = send(t, m, runes("G"))
	off := m.doc.cursorFileOffset(true)
	if off <= 0 {
		t.Fatalf("expected a positive offset at the last token, got %d", off)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.mode != modeHex {
		t.Fatal("expected the hex view after tab")
	}
	if m.doc.hex.Cursor() != off {
		t.Errorf("expected hex cursor %d, got %d", off, m.doc.hex.Cursor())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.lexicalActive() {
		t.Fatal("expected the lexical view after a second tab")
	}
	if got := m.doc.cursorFileOffset(true); got != off {
		t.Errorf("expected lexical cursor back at %d, got %d", off, got)
	}
}

func TestGoTo(t *testing.T) {
	data := []byte(strings.Repeat("\x00\x01", 64))
	m := newTestModel(t, writeFile(t, "blob.bin", data))

	tests := []struct {
		input string
		want  int64
	}{
		{"0x10", 16},
		{"33", 33},
		{":3", 32},
		{"  ", 32}, // blank input is ignored
	}
	for _, tt := range tests {
		if err := m.goTo(tt.input); err != nil {
			t.Errorf("goTo(%q) failed: %v", tt.input, err)
		}
		if m.doc.hex.Cursor() != tt.want {
			t.Errorf("goTo(%q): expected cursor %d, got %d", tt.input, tt.want, m.doc.hex.Cursor())
		}
	}
	for _, bad := range []string{"abc", ":x", ":0", "999"} {
		if err := m.goTo(bad); err == nil {
			t.Errorf("goTo(%q): expected an error", bad)
		}
	}
}

func TestGoToPrompt(t *testing.T) {
	m := newTestModel(t, writeFile(t, "blob.bin", make([]byte, 64)))
	m, _ = send(t, m, runes(":"))
	if !m.gotoActive {
		t.Fatal("expected the go to prompt")
	}
	for _, r := range "0x20" {
		m, _ = send(t, m, runes(string(r)))
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.gotoActive {
		t.Error("expected the prompt closed after enter")
	}
	if m.doc.hex.Cursor() != 32 {
		t.Errorf("expected cursor 32, got %d", m.doc.hex.Cursor())
	}
}

func TestHelpAndQuit(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	m, _ = send(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("expected help shown")
	}
	if !strings.Contains(ansi.Strip(m.View()), "Keys") {
		t.Error("expected the help overlay to list keys")
	}
	m, _ = send(t, m, runes("x"))
	if m.showHelp {
		t.Error("expected any other key to close help")
	}

	_, cmd := send(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestToggleMetadataShrinksContent(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	_, h := m.contentSize()
	m, _ = send(t, m, runes("m"))
	if !m.showMetadata {
		t.Fatal("expected metadata shown")
	}
	if _, h2 := m.contentSize(); h2 != h-1 {
		t.Errorf("expected content height %d, got %d", h-1, h2)
	}
	if _, eh := m.doc.engine.Viewport(); eh != h-1 {
		t.Errorf("expected engine viewport height %d, got %d", h-1, eh)
	}
}

func TestView_LayoutAndStatusBar(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 80 {
			t.Errorf("line %d is %d cells wide", i, w)
		}
	}
	status := ansi.Strip(lines[9])
	if !strings.Contains(status, "Lexical") || !strings.Contains(status, "main.go") {
		t.Errorf("unexpected status bar %q", status)
	}
	if !strings.Contains(ansi.Strip(lines[0]), "package") {
		t.Errorf("expected the first token row, got %q", ansi.Strip(lines[0]))
	}
	if !strings.HasPrefix(strings.TrimLeft(ansi.Strip(lines[0]), " "), "1") {
		t.Errorf("expected a line number gutter, got %q", ansi.Strip(lines[0]))
	}
}

func TestView_HexRows(t *testing.T) {
	m := newTestModel(t, writeFile(t, "blob.bin", []byte("AB\x00\x01")))
	lines := strings.Split(m.View(), "\n")
	row := ansi.Strip(lines[0])
	if !strings.HasPrefix(row, "00000000  41 42 00 01") {
		t.Errorf("unexpected hex row %q", row)
	}
	if !strings.Contains(row, "|AB..") {
		t.Errorf("expected the ASCII column, got %q", row)
	}
	if !strings.Contains(ansi.Strip(lines[9]), "Hex") {
		t.Errorf("expected Hex in the status bar, got %q", ansi.Strip(lines[9]))
	}
}

func TestReload_KeepsViewAndPicksUpChanges(t *testing.T) {
	path := writeFile(t, "main.go", []byte(goSource))
	m := newTestModel(t, path)

	changed := goSource + "\nfunc other() {}\n"
	if err := os.WriteFile(path, []byte(changed), 0644); err != nil {
		t.Fatal(err)
	}
	m, cmd := send(t, m, FileChangedMsg{})
	if cmd == nil {
		t.Error("expected a toast command")
	}
	if !m.lexicalActive() {
		t.Fatal("expected the lexical view kept")
	}
	if m.doc.engine.Text() != changed {
		t.Error("expected the new file contents")
	}
	if !strings.HasPrefix(m.statusMsg, "Reloaded") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
}

func TestMouse_StatusBarClickSwitchesView(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	m, _ = send(t, m, tea.MouseMsg{X: 2, Y: 9, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.mode != modeHex {
		t.Error("expected a status bar click to switch to the hex view")
	}
}

func TestMouse_HexClickMovesCursor(t *testing.T) {
	m := newTestModel(t, writeFile(t, "blob.bin", make([]byte, 64)))
	// Second row, byte 2 in the hex column.
	m, _ = send(t, m, tea.MouseMsg{X: 16, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.doc.hex.Cursor() != 18 {
		t.Errorf("expected cursor 18, got %d", m.doc.hex.Cursor())
	}
}

func TestHexPairs(t *testing.T) {
	if got := hexPairs([]byte{0x0a, 0xff, 0x00}); got != "0A FF 00" {
		t.Errorf("unexpected %q", got)
	}
	if got := hexPairs(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestCanvas(t *testing.T) {
	plain := lipgloss.NewStyle()
	tests := []struct {
		name string
		draw func(c *canvas)
		want string
	}{
		{"padding", func(c *canvas) { c.put(2, 0, "ab", plain) }, "  ab    "},
		{"left clip", func(c *canvas) { c.put(-2, 0, "abcdef", plain) }, "cdef    "},
		{"right clip", func(c *canvas) { c.put(5, 0, "abcdef", plain) }, "     abc"},
		{"overlap dropped", func(c *canvas) {
			c.put(0, 0, "abc", plain)
			c.put(1, 0, "X", plain)
		}, "abc     "},
		{"tabs expanded", func(c *canvas) { c.put(0, 0, "\tx", plain) }, "    x   "},
		{"outside", func(c *canvas) { c.put(8, 0, "x", plain) }, "        "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCanvas(8, 1)
			tt.draw(c)
			if got := ansi.Strip(c.line(0)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	c := newCanvas(8, 3)
	c.putBlock(3, 0, 1, "ab\ncd\nef", plain)
	got := c.lines()
	want := []string{"   ab   ", " cd     ", " ef     "}
	for i := range want {
		if ansi.Strip(got[i]) != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], ansi.Strip(got[i]))
		}
	}
}

func TestPalette_RunsSelectedCommand(t *testing.T) {
	m := newTestModel(t, writeFile(t, "main.go", []byte(goSource)))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.showPalette {
		t.Fatal("expected the palette open")
	}
	for _, r := range "switch" {
		m, _ = send(t, m, runes(string(r)))
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	m, _ = send(t, m, cmd())
	if m.showPalette {
		t.Error("expected the palette closed")
	}
	if m.mode != modeHex {
		t.Error("expected the selected command to switch views")
	}
}

func TestSyncTo_LogsFailedCursorMove(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.Default()
	km, _ := keymap.NewDefaultRegistry(nil)
	m, err := New(Options{
		Path:     writeFile(t, "data.bin", []byte{0, 1, 2, 3}),
		Config:   cfg,
		Registry: object.DefaultRegistry(&plugin.Context{Config: cfg}),
		Keymap:   km,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	m.doc.syncTo(false, 99)
	if m.doc.hex.Cursor() != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", m.doc.hex.Cursor())
	}
	if !strings.Contains(buf.String(), "cursor sync failed") || !strings.Contains(buf.String(), "view=hex") {
		t.Errorf("expected a debug log for the failed sync, got %q", buf.String())
	}
}
