package lexical

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ItemKind distinguishes what an Item draws.
type ItemKind uint8

const (
	ItemToken ItemKind = iota
	ItemFoldMarker
)

// Item is one drawable element in viewport coordinates.
type Item struct {
	Kind       ItemKind
	TokenIndex int // for fold markers, the block's start token
	BlockIndex int // for fold markers, or NoBlock
	Text       string
	X, Y       int
	Width      int
	Height     int
	Color      TokenColor
	Cursor     bool
	Selected   bool
	Similar    bool
}

// Items returns everything that intersects the viewport, in token order.
func (e *Engine) Items() []Item {
	if e.noItemsVisible || e.width <= 0 || e.height <= 0 {
		return nil
	}
	cur := &e.tokens[e.cursor]
	var items []Item
	for i := range e.tokens {
		t := &e.tokens[i]
		if !t.IsVisible() || t.Width == 0 {
			continue
		}
		if t.Y >= e.scrollY+e.height {
			break
		}
		if e.intersects(t.X, t.Y, t.Width, t.Height) {
			items = append(items, Item{
				Kind:       ItemToken,
				TokenIndex: i,
				BlockIndex: t.BlockID,
				Text:       t.Text(e.text),
				X:          t.X - e.scrollX,
				Y:          t.Y - e.scrollY,
				Width:      t.Width,
				Height:     t.Height,
				Color:      t.Color,
				Cursor:     i == e.cursor,
				Selected:   e.selection.Contains(i),
				Similar:    i != e.cursor && Similar(cur, t),
			})
		}
		if t.IsBlockStarter() && t.IsFolded() {
			b := &e.blocks[t.BlockID]
			msg := b.foldMessage()
			w := textWidth(msg)
			if b.MarkerY >= 0 && e.intersects(b.MarkerX, b.MarkerY, w, 1) {
				items = append(items, Item{
					Kind:       ItemFoldMarker,
					TokenIndex: i,
					BlockIndex: t.BlockID,
					Text:       msg,
					X:          b.MarkerX - e.scrollX,
					Y:          b.MarkerY - e.scrollY,
					Width:      w,
					Height:     1,
					Color:      ColorComment,
					Selected:   e.selection.Contains(i),
				})
			}
		}
	}
	return items
}

func (e *Engine) intersects(x, y, w, h int) bool {
	return x < e.scrollX+e.width && x+w > e.scrollX &&
		y < e.scrollY+e.height && y+max(h, 1) > e.scrollY
}

// TokenAt returns the token under viewport cell (x, y), or -1. A click on a
// fold marker resolves to the block's start token.
func (e *Engine) TokenAt(x, y int) int {
	if e.noItemsVisible {
		return -1
	}
	ax, ay := x+e.scrollX, y+e.scrollY
	for i := range e.tokens {
		t := &e.tokens[i]
		if !t.IsVisible() {
			continue
		}
		if t.Y > ay {
			break
		}
		if ay >= t.Y && ay < t.Y+max(t.Height, 1) && ax >= t.X && ax < t.X+t.Width {
			return i
		}
		if t.IsBlockStarter() && t.IsFolded() {
			b := &e.blocks[t.BlockID]
			if ay == b.MarkerY && ax >= b.MarkerX && ax < b.MarkerX+textWidth(b.foldMessage()) {
				return i
			}
		}
	}
	return -1
}

// Click moves the cursor to the token under viewport cell (x, y). Clicking a
// fold marker toggles that block.
func (e *Engine) Click(x, y int, selected bool) error {
	i := e.TokenAt(x, y)
	if i < 0 {
		return nil
	}
	t := &e.tokens[i]
	if t.IsBlockStarter() && t.IsFolded() {
		b := &e.blocks[t.BlockID]
		if y+e.scrollY == b.MarkerY && x+e.scrollX >= b.MarkerX {
			if err := e.SetFoldStatus(t.BlockID, Expanded, false); err != nil {
				return err
			}
		}
	}
	return e.MoveToToken(i, selected)
}

// SelectedText returns the source text spanned by the selection, or the
// cursor token's text when nothing is selected.
func (e *Engine) SelectedText() string {
	if e.noItemsVisible {
		return ""
	}
	if e.selection.Empty() {
		return e.tokens[e.cursor].Text(e.text)
	}
	return e.text[e.tokens[e.selection.Start].Start:e.tokens[e.selection.End].End]
}

// CursorInfo summarizes the cursor position for status displays.
type CursorInfo struct {
	Token, Tokens  int // 1-based index and count
	Line, Lines    int // 1-based row and row count
	Column         int // 1-based
	Offset         int // byte offset of the cursor token
	SelectedTokens int
	SelectedBytes  int
	Color          TokenColor
}

// CursorInfo returns the cursor summary. It is the zero value for an empty
// document.
func (e *Engine) CursorInfo() CursorInfo {
	if e.noItemsVisible {
		return CursorInfo{}
	}
	t := &e.tokens[e.cursor]
	info := CursorInfo{
		Token:  e.cursor + 1,
		Tokens: len(e.tokens),
		Line:   t.Y + 1,
		Lines:  e.lineCount,
		Column: t.X + 1,
		Offset: t.Start,
		Color:  t.Color,
	}
	if !e.selection.Empty() {
		info.SelectedTokens = e.selection.End - e.selection.Start + 1
		info.SelectedBytes = e.tokens[e.selection.End].End - e.tokens[e.selection.Start].Start
	}
	return info
}

// CursorStatus formats CursorInfo to fit in width cells.
func (e *Engine) CursorStatus(width int) string {
	if e.noItemsVisible {
		return runewidth.Truncate("empty", width, "…")
	}
	info := e.CursorInfo()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ln %d/%d  Col %d  Tok %d/%d  Ofs %d",
		info.Line, info.Lines, info.Column, info.Token, info.Tokens, info.Offset)
	if info.SelectedTokens > 0 {
		fmt.Fprintf(&sb, "  Sel %d (%d bytes)", info.SelectedTokens, info.SelectedBytes)
	}
	if width <= 0 {
		return sb.String()
	}
	return runewidth.Truncate(sb.String(), width, "…")
}

// Metadata describes token i for inspection panels.
func (e *Engine) Metadata(i int) (string, error) {
	t, err := e.Token(i)
	if err != nil {
		return "", err
	}
	s := fmt.Sprintf("token %d  type %d  [%d,%d)  %s  hash %016x  status %s",
		i, t.Type, t.Start, t.End, t.Color, t.Hash, t.Status)
	if t.HasBlock() {
		b := &e.blocks[t.BlockID]
		s += fmt.Sprintf("  block %d [%d,%d]", t.BlockID, b.TokenStart, b.TokenEnd)
	}
	return s, nil
}
