package lexical

import (
	"errors"
	"testing"
)

func TestFold_RoundTrip(t *testing.T) {
	e := newTestEngine(t, "a {\nb c\n}\nd")
	beforeVisible := visibleSet(e)
	beforePos := positions(e)

	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if equalInts(visibleSet(e), beforeVisible) {
		t.Fatal("expected folding to hide tokens")
	}
	if err := e.SetFoldStatus(0, Expanded, false); err != nil {
		t.Fatal(err)
	}

	if !equalInts(visibleSet(e), beforeVisible) {
		t.Errorf("visible set after round trip: got %v, want %v", visibleSet(e), beforeVisible)
	}
	after := positions(e)
	for i := range beforePos {
		if after[i] != beforePos[i] {
			t.Errorf("token %d: position %v after round trip, want %v", i, after[i], beforePos[i])
		}
	}
}

func TestFold_RoundTripKeepsFilteredTokensHidden(t *testing.T) {
	s := DefaultSettings(fixedParser{blocks: []Block{{TokenStart: 2, TokenEnd: 7}}})
	e := newTestEngineWith(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8", s)
	if err := e.UpdateVisibilityStatus(4, 5, false); err != nil {
		t.Fatal(err)
	}
	before := visibleSet(e)
	if want := []int{0, 1, 2, 3, 5, 6, 7, 8}; !equalInts(before, want) {
		t.Fatalf("expected visible %v, got %v", want, before)
	}

	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SetFoldStatus(0, Expanded, false); err != nil {
		t.Fatal(err)
	}
	if !equalInts(visibleSet(e), before) {
		t.Errorf("visible set after round trip: got %v, want %v", visibleSet(e), before)
	}

	if err := e.FoldAll(); err != nil {
		t.Fatal(err)
	}
	if err := e.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	if !equalInts(visibleSet(e), before) {
		t.Errorf("visible set after fold all and expand all: got %v, want %v", visibleSet(e), before)
	}

	e.RestoreFolds([]int{e.tokens[2].Start})
	if !e.IsFolded(0) {
		t.Fatal("expected block 0 folded after restore")
	}
	if err := e.SetFoldStatus(0, Expanded, false); err != nil {
		t.Fatal(err)
	}
	if !equalInts(visibleSet(e), before) {
		t.Errorf("visible set after restoring folds: got %v, want %v", visibleSet(e), before)
	}
}

func TestUpdateVisibilityStatus_ShowInsideFoldedBlock(t *testing.T) {
	s := DefaultSettings(fixedParser{blocks: []Block{{TokenStart: 1, TokenEnd: 3}}})
	e := newTestEngineWith(t, "a b c d e", s)
	if err := e.UpdateVisibilityStatus(2, 3, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateVisibilityStatus(2, 3, true); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 4}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected the fold to keep token 2 hidden, got %v", visibleSet(e))
	}
	if err := e.SetFoldStatus(0, Expanded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 3, 4}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected all tokens visible after expanding, got %v", visibleSet(e))
	}
}

func TestFold_EndMarkerStaysVisible(t *testing.T) {
	e := newTestEngine(t, "a {\nb c\n}\nd")
	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 4, 5}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected visible %v, got %v", want, visibleSet(e))
	}
	if !e.IsFolded(0) {
		t.Error("expected block 0 folded")
	}
}

func TestFold_WithoutEndMarkerHidesEnd(t *testing.T) {
	s := DefaultSettings(fixedParser{blocks: []Block{{TokenStart: 1, TokenEnd: 3}}})
	e := newTestEngineWith(t, "a b c d e", s)
	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 4}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected visible %v, got %v", want, visibleSet(e))
	}
}

// Outer block A covers tokens 2..7, inner block B covers 3..5, neither has an
// end marker. Expanding A while B stays folded must keep B's interior hidden.
// B's start token 3 is shown again with its fold marker: a folded block always
// keeps its start token visible, so only 4 and 5 stay hidden.
func TestFold_ExpandKeepsNestedFoldHidden(t *testing.T) {
	s := DefaultSettings(fixedParser{blocks: []Block{
		{TokenStart: 2, TokenEnd: 7},
		{TokenStart: 3, TokenEnd: 5},
	}})
	e := newTestEngineWith(t, "t0 t1 t2 t3 t4 t5 t6 t7 t8", s)

	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 8}; !equalInts(visibleSet(e), want) {
		t.Fatalf("after folding A: expected visible %v, got %v", want, visibleSet(e))
	}

	if err := e.SetFoldStatus(1, Folded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 8}; !equalInts(visibleSet(e), want) {
		t.Fatalf("folding hidden B changed visibility: got %v", visibleSet(e))
	}
	if !e.IsFolded(1) {
		t.Fatal("expected B to record its folded state")
	}

	if err := e.SetFoldStatus(0, Expanded, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 2, 3, 6, 7, 8}; !equalInts(visibleSet(e), want) {
		t.Errorf("after expanding A: expected visible %v, got %v", want, visibleSet(e))
	}
}

func TestFold_RecursiveReverseUsesRootState(t *testing.T) {
	e := newTestEngine(t, "a { b { c } d { e } }")
	if e.BlockCount() != 3 {
		t.Fatalf("expected 3 blocks, got %d", e.BlockCount())
	}
	// Fold one child so the children disagree with the root.
	if err := e.SetFoldStatus(1, Folded, false); err != nil {
		t.Fatal(err)
	}

	if err := e.SetFoldStatus(0, Reverse, true); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !e.IsFolded(i) {
			t.Errorf("block %d: expected folded after recursive reverse of an expanded root", i)
		}
	}

	if err := e.SetFoldStatus(0, Reverse, true); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if e.IsFolded(i) {
			t.Errorf("block %d: expected expanded after second recursive reverse", i)
		}
	}
	if len(visibleSet(e)) != e.Len() {
		t.Errorf("expected all tokens visible, got %v", visibleSet(e))
	}
}

func TestFold_MovesCursorOutOfHiddenRange(t *testing.T) {
	e := newTestEngine(t, "a {\nb c\n}\nd")
	c := indexOf(t, e, "c")
	if err := e.MoveToToken(c, false); err != nil {
		t.Fatal(err)
	}
	if err := e.SetFoldStatus(0, Folded, false); err != nil {
		t.Fatal(err)
	}
	if e.Cursor() != 1 {
		t.Errorf("expected cursor on the block start, got %d", e.Cursor())
	}
}

func TestToggleFoldAtCursor(t *testing.T) {
	e := newTestEngine(t, "a {\nb\n}")
	b := indexOf(t, e, "b")
	if err := e.MoveToToken(b, false); err != nil {
		t.Fatal(err)
	}
	if err := e.ToggleFoldAtCursor(false); err != nil {
		t.Fatal(err)
	}
	if !e.IsFolded(0) {
		t.Fatal("expected enclosing block folded")
	}
	if err := e.ToggleFoldAtCursor(false); err != nil {
		t.Fatal(err)
	}
	if e.IsFolded(0) {
		t.Error("expected block expanded again")
	}

	if got := e.BlockAt(0); got != NoBlock {
		t.Errorf("expected NoBlock for token outside blocks, got %d", got)
	}
}

func TestSetFoldStatus_Errors(t *testing.T) {
	e := newTestEngine(t, "a {\nb\n}")
	if err := e.SetFoldStatus(5, Folded, false); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if err := e.SetFoldStatus(0, FoldStatus(9), false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestFoldAllExpandAll(t *testing.T) {
	e := newTestEngine(t, "a { b { c } } d")
	if err := e.FoldAll(); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 1, 6, 7}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected visible %v, got %v", want, visibleSet(e))
	}
	if err := e.ExpandAll(); err != nil {
		t.Fatal(err)
	}
	if len(visibleSet(e)) != e.Len() {
		t.Errorf("expected everything visible, got %v", visibleSet(e))
	}
}

func TestRestoreFolds_AfterReparse(t *testing.T) {
	text := "a { b } c { d }"
	e := newTestEngine(t, text)
	if err := e.SetFoldStatus(1, Folded, false); err != nil {
		t.Fatal(err)
	}
	offs := e.FoldedOffsets()
	if len(offs) != 1 || offs[0] != 10 {
		t.Fatalf("expected folded offsets [10], got %v", offs)
	}

	if err := e.SetText(text); err != nil {
		t.Fatal(err)
	}
	if e.IsFolded(1) {
		t.Fatal("expected reparse to reset folds")
	}
	e.RestoreFolds(offs)
	if e.IsFolded(0) || !e.IsFolded(1) {
		t.Errorf("expected only block 1 folded, got %v %v", e.IsFolded(0), e.IsFolded(1))
	}
}

func TestUpdateVisibilityStatus(t *testing.T) {
	e := newTestEngine(t, "a b c d")
	if err := e.UpdateVisibilityStatus(1, 3, false); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 3}; !equalInts(visibleSet(e), want) {
		t.Errorf("expected visible %v, got %v", want, visibleSet(e))
	}
	if err := e.UpdateVisibilityStatus(3, 9, true); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	if err := e.UpdateVisibilityStatus(0, 4, false); err != nil {
		t.Fatal(err)
	}
	if !e.NoItemsVisible() {
		t.Error("expected no items visible after hiding everything")
	}
	if err := e.MoveRight(false); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}
