package palette

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/lexview/internal/keymap"
)

func TestFuzzyMatch_EmptyQuery(t *testing.T) {
	score, ranges := FuzzyMatch("", "fold-all")
	if score != 0 || ranges != nil {
		t.Errorf("empty query should return 0 and nil, got %d %v", score, ranges)
	}
}

func TestFuzzyMatch_ExactMatch(t *testing.T) {
	score, ranges := FuzzyMatch("fold", "fold")
	if score <= 0 {
		t.Errorf("exact match should have positive score, got %d", score)
	}
	if len(ranges) != 1 || ranges[0].Start != 0 || ranges[0].End != 4 {
		t.Errorf("exact match should have single range [0,4], got %v", ranges)
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	score, ranges := FuzzyMatch("xyz", "fold")
	if score != 0 || ranges != nil {
		t.Errorf("no match should return 0 and nil, got %d %v", score, ranges)
	}
}

func TestFuzzyMatch_CaseInsensitive(t *testing.T) {
	score1, _ := FuzzyMatch("FOLD", "fold")
	score2, _ := FuzzyMatch("fold", "FOLD")
	if score1 <= 0 || score2 <= 0 {
		t.Errorf("case insensitive match should work, got scores %d, %d", score1, score2)
	}
}

func TestFuzzyMatch_WordStartBonus(t *testing.T) {
	score1, _ := FuzzyMatch("fa", "fold-all")
	score2, _ := FuzzyMatch("ol", "fold-all")
	if score1 <= score2 {
		t.Errorf("word start matches should score higher: fa=%d, ol=%d", score1, score2)
	}
}

func TestFuzzyMatch_ConsecutiveBonus(t *testing.T) {
	score1, _ := FuzzyMatch("fol", "fold")
	score2, _ := FuzzyMatch("fld", "fold")
	if score1 <= score2 {
		t.Errorf("consecutive matches should score higher: fol=%d, fld=%d", score1, score2)
	}
}

func TestScoreEntry(t *testing.T) {
	current := PaletteEntry{Name: "Fold all", Key: "z c", Layer: LayerCurrentMode}
	global := PaletteEntry{Name: "Fold all", Key: "z c", Layer: LayerGlobal}
	ScoreEntry(&current, "fold")
	ScoreEntry(&global, "fold")
	if current.Score <= global.Score {
		t.Errorf("current mode should score higher than global: %d vs %d", current.Score, global.Score)
	}
	if len(current.MatchRanges) == 0 {
		t.Error("name match should populate MatchRanges")
	}

	byKey := PaletteEntry{Name: "Go to", Key: "ctrl+g", Layer: LayerGlobal}
	ScoreEntry(&byKey, "ctrl")
	if byKey.Score <= 0 {
		t.Errorf("key match should give positive score, got %d", byKey.Score)
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []PaletteEntry{
		{Name: "Quit", Layer: LayerGlobal},
		{Name: "Fold all", Layer: LayerCurrentMode},
		{Name: "Fold or expand", Layer: LayerCurrentMode},
	}
	all := FilterEntries(entries, "")
	if len(all) != 3 || all[0].Layer != LayerCurrentMode {
		t.Errorf("empty query should keep all, current first: %v", all)
	}
	if got := FilterEntries(entries, "xyz"); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
	got := FilterEntries(entries, "fa")
	if len(got) == 0 || got[0].Name != "Fold all" {
		t.Errorf("expected Fold all first, got %v", got)
	}
}

func TestBuildEntries(t *testing.T) {
	km, _ := keymap.NewDefaultRegistry(nil)
	entries := BuildEntries(km, keymap.ContextLexical)

	byID := make(map[string]PaletteEntry)
	for _, e := range entries {
		if _, dup := byID[e.CommandID]; dup {
			t.Errorf("duplicate entry for %s", e.CommandID)
		}
		byID[e.CommandID] = e
	}
	fold, ok := byID[keymap.CmdFoldToggle]
	if !ok {
		t.Fatal("expected the fold command in the lexical palette")
	}
	if fold.Layer != LayerCurrentMode || !strings.Contains(fold.Key, "enter") {
		t.Errorf("unexpected fold entry %+v", fold)
	}
	if byID[keymap.CmdQuit].Layer != LayerGlobal {
		t.Error("expected quit in the global layer")
	}
	if _, ok := byID[keymap.CmdPalette]; ok {
		t.Error("the palette should not list itself")
	}

	hex := BuildEntries(km, keymap.ContextHex)
	for _, e := range hex {
		if e.CommandID == keymap.CmdFoldToggle {
			t.Error("fold commands do not belong to the hex palette")
		}
	}
}

func TestModel_SearchAndSelect(t *testing.T) {
	km, _ := keymap.NewDefaultRegistry(nil)
	m := New()
	m.SetSize(80, 24)
	m.Open(km, keymap.ContextLexical)
	if len(m.Filtered()) == 0 {
		t.Fatal("expected entries after open")
	}

	for _, r := range "expand" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if m.Query() != "expand" {
		t.Fatalf("unexpected query %q", m.Query())
	}
	if e := m.SelectedEntry(); e == nil || e.CommandID != keymap.CmdExpandAll {
		t.Fatalf("expected expand-all selected, got %+v", e)
	}
	if !strings.Contains(ansi.Strip(m.View()), "Expand") {
		t.Error("expected the entry in the view")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	sel, ok := cmd().(CommandSelectedMsg)
	if !ok || sel.CommandID != keymap.CmdExpandAll {
		t.Errorf("unexpected message %#v", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(ClosedMsg); !ok {
		t.Error("expected ClosedMsg on esc")
	}
}

func TestModel_CursorClamps(t *testing.T) {
	km, _ := keymap.NewDefaultRegistry(nil)
	m := New()
	m.SetSize(80, 12)
	m.Open(km, keymap.ContextHex)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 0 {
		t.Errorf("expected cursor 0, got %d", m.Cursor())
	}
	for range 200 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor() != len(m.Filtered())-1 {
		t.Errorf("expected cursor at the last entry, got %d", m.Cursor())
	}
}
