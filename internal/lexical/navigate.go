package lexical

import (
	"fmt"
	"sort"
)

func (e *Engine) nextVisible(i int) int {
	for j := i + 1; j < len(e.tokens); j++ {
		if e.tokens[j].IsVisible() {
			return j
		}
	}
	return -1
}

func (e *Engine) prevVisible(i int) int {
	for j := i - 1; j >= 0; j-- {
		if e.tokens[j].IsVisible() {
			return j
		}
	}
	return -1
}

// closestVisible prefers the nearest visible token at or before i, which for a
// hidden token is usually the start of the folded block hiding it.
func (e *Engine) closestVisible(i int) int {
	if i >= len(e.tokens) {
		i = len(e.tokens) - 1
	}
	if i >= 0 && e.tokens[i].IsVisible() {
		return i
	}
	if j := e.prevVisible(i); j >= 0 {
		return j
	}
	if j := e.nextVisible(i); j >= 0 {
		return j
	}
	return 0
}

// MoveToToken puts the cursor on token i. With selected, the selection is
// extended from its anchor to i; otherwise any selection is cleared.
func (e *Engine) MoveToToken(i int, selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if i < 0 || i >= len(e.tokens) {
		return fmt.Errorf("%w: token %d of %d", ErrOutOfRange, i, len(e.tokens))
	}
	if !e.tokens[i].IsVisible() {
		i = e.closestVisible(i)
	}
	if selected {
		if e.selection.Empty() {
			e.anchor = e.cursor
		}
		e.selection = Selection{Start: min(e.anchor, i), End: max(e.anchor, i)}
	} else {
		e.selection = NoSelection
		e.anchor = i
	}
	e.cursor = i
	e.currentHash = e.tokens[i].Hash
	e.EnsureCurrentItemIsVisible()
	return nil
}

// MoveToClosestVisibleToken moves to token i, or to the closest visible token
// if i is hidden.
func (e *Engine) MoveToClosestVisibleToken(i int, selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	return e.MoveToToken(e.closestVisible(max(i, 0)), selected)
}

// MoveRight moves to the next visible token. At the last token it does nothing.
func (e *Engine) MoveRight(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if j := e.nextVisible(e.cursor); j >= 0 {
		return e.MoveToToken(j, selected)
	}
	return nil
}

// MoveLeft moves to the previous visible token. At the first token it does nothing.
func (e *Engine) MoveLeft(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if j := e.prevVisible(e.cursor); j >= 0 {
		return e.MoveToToken(j, selected)
	}
	return nil
}

// lineAbove returns the visible token on the previous row closest to the
// column of token i, or -1.
func (e *Engine) lineAbove(i int) int {
	cur := &e.tokens[i]
	j := i - 1
	for ; j >= 0; j-- {
		if t := &e.tokens[j]; t.IsVisible() && t.Y < cur.Y {
			break
		}
	}
	if j < 0 {
		return -1
	}
	row, best := e.tokens[j].Y, j
	for k := j; k >= 0; k-- {
		t := &e.tokens[k]
		if !t.IsVisible() {
			continue
		}
		if t.Y != row {
			break
		}
		best = k
		if t.X <= cur.X {
			break
		}
	}
	return best
}

// lineBelow returns the visible token on the next row closest to the column
// of token i, or -1.
func (e *Engine) lineBelow(i int) int {
	cur := &e.tokens[i]
	bottom := cur.Y + max(cur.Height, 1) - 1
	j := i + 1
	for ; j < len(e.tokens); j++ {
		if t := &e.tokens[j]; t.IsVisible() && t.Y > bottom {
			break
		}
	}
	if j >= len(e.tokens) {
		return -1
	}
	row, best := e.tokens[j].Y, j
	for k := j + 1; k < len(e.tokens); k++ {
		t := &e.tokens[k]
		if !t.IsVisible() {
			continue
		}
		if t.Y != row || t.X > cur.X {
			break
		}
		best = k
	}
	return best
}

// MoveUp moves up by times rows, stopping early at the first row.
func (e *Engine) MoveUp(times int, selected bool) error {
	return e.moveRows(times, selected, e.lineAbove)
}

// MoveDown moves down by times rows, stopping early at the last row.
func (e *Engine) MoveDown(times int, selected bool) error {
	return e.moveRows(times, selected, e.lineBelow)
}

func (e *Engine) moveRows(times int, selected bool, step func(int) int) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if times < 1 {
		times = 1
	}
	target := e.cursor
	for n := 0; n < times; n++ {
		j := step(target)
		if j < 0 {
			break
		}
		target = j
	}
	if target == e.cursor {
		return nil
	}
	return e.MoveToToken(target, selected)
}

// PageUp moves up by one viewport height.
func (e *Engine) PageUp(selected bool) error {
	return e.MoveUp(max(e.height-1, 1), selected)
}

// PageDown moves down by one viewport height.
func (e *Engine) PageDown(selected bool) error {
	return e.MoveDown(max(e.height-1, 1), selected)
}

// MoveHome moves to the first visible token on the cursor's row.
func (e *Engine) MoveHome(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	row, target := e.tokens[e.cursor].Y, e.cursor
	for j := e.cursor - 1; j >= 0; j-- {
		t := &e.tokens[j]
		if !t.IsVisible() {
			continue
		}
		if t.Y != row {
			break
		}
		target = j
	}
	return e.MoveToToken(target, selected)
}

// MoveEnd moves to the last visible token on the cursor's row.
func (e *Engine) MoveEnd(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	row, target := e.tokens[e.cursor].Y, e.cursor
	for j := e.cursor + 1; j < len(e.tokens); j++ {
		t := &e.tokens[j]
		if !t.IsVisible() {
			continue
		}
		if t.Y != row {
			break
		}
		target = j
	}
	return e.MoveToToken(target, selected)
}

// MoveToFirst moves to the first visible token.
func (e *Engine) MoveToFirst(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	return e.MoveToToken(e.closestVisibleForward(0), selected)
}

// MoveToLast moves to the last visible token.
func (e *Engine) MoveToLast(selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	return e.MoveToToken(e.closestVisible(len(e.tokens)-1), selected)
}

func (e *Engine) closestVisibleForward(i int) int {
	if e.tokens[i].IsVisible() {
		return i
	}
	if j := e.nextVisible(i); j >= 0 {
		return j
	}
	return e.closestVisible(i)
}

// MoveToNextSimilar moves to the next visible token with the cursor token's
// similarity hash. It does not wrap.
func (e *Engine) MoveToNextSimilar(selected bool) error {
	return e.moveSimilar(1, selected)
}

// MoveToPrevSimilar moves to the previous visible token with the cursor
// token's similarity hash. It does not wrap.
func (e *Engine) MoveToPrevSimilar(selected bool) error {
	return e.moveSimilar(-1, selected)
}

func (e *Engine) moveSimilar(dir int, selected bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	cur := &e.tokens[e.cursor]
	for j := e.cursor + dir; j >= 0 && j < len(e.tokens); j += dir {
		if t := &e.tokens[j]; t.IsVisible() && Similar(cur, t) {
			return e.MoveToToken(j, selected)
		}
	}
	return nil
}

// EnsureCurrentItemIsVisible scrolls the minimum amount that brings the cursor
// token into the viewport.
func (e *Engine) EnsureCurrentItemIsVisible() {
	if e.noItemsVisible || e.width <= 0 || e.height <= 0 {
		return
	}
	t := &e.tokens[e.cursor]
	w, h := max(t.Width, 1), max(t.Height, 1)
	if t.X < e.scrollX {
		e.scrollX = t.X
	} else if t.X+w > e.scrollX+e.width {
		e.scrollX = min(t.X+w-e.width, t.X)
	}
	if t.Y < e.scrollY {
		e.scrollY = t.Y
	} else if t.Y+h > e.scrollY+e.height {
		e.scrollY = min(t.Y+h-e.height, t.Y)
	}
	e.scrollX = max(e.scrollX, 0)
	e.scrollY = max(e.scrollY, 0)
}

// tokenIndexAt returns the token containing byte offset off, or the first
// token after it, or len(tokens).
func (e *Engine) tokenIndexAt(off int) int {
	j := sort.Search(len(e.tokens), func(i int) bool { return e.tokens[i].Start > off })
	if j > 0 && e.tokens[j-1].End > off {
		return j - 1
	}
	return j
}

// expandAround expands every folded block that hides token i, outermost first.
func (e *Engine) expandAround(i int) bool {
	changed := false
	for j := range e.blocks {
		b := &e.blocks[j]
		if b.TokenStart >= i {
			break
		}
		start := &e.tokens[b.TokenStart]
		if start.IsFolded() && b.Hides(i) {
			start.Status.SetFolded(false)
			changed = true
		}
	}
	if changed {
		e.applyVisibility()
	}
	return changed
}

// GoTo moves the cursor to the token containing byte offset off, or the
// first one after it, expanding any folded blocks that hide it.
func (e *Engine) GoTo(off int) error {
	if len(e.tokens) == 0 {
		return ErrEmptyDocument
	}
	if off < 0 {
		return fmt.Errorf("%w: offset %d", ErrOutOfRange, off)
	}
	i := e.tokenIndexAt(off)
	if i >= len(e.tokens) {
		return fmt.Errorf("%w: no token at or after offset %d", ErrOutOfRange, off)
	}
	if e.expandAround(i) {
		e.visibilityChanged()
	}
	return e.MoveToClosestVisibleToken(i, false)
}

// GoToLine moves to the first visible token on the given 1-based row.
func (e *Engine) GoToLine(line int) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if line < 1 || line > e.lineCount {
		return fmt.Errorf("%w: line %d of %d", ErrOutOfRange, line, e.lineCount)
	}
	for i := range e.tokens {
		if t := &e.tokens[i]; t.IsVisible() && t.Y+max(t.Height, 1) > line-1 {
			return e.MoveToToken(i, false)
		}
	}
	return e.MoveToLast(false)
}

// Select selects every token overlapping the byte range [off, off+size),
// expanding folded blocks that hide its first token.
func (e *Engine) Select(off, size int) error {
	if len(e.tokens) == 0 {
		return ErrEmptyDocument
	}
	if size <= 0 || off < 0 {
		return fmt.Errorf("%w: select %d bytes at %d", ErrInvalidArgument, size, off)
	}
	first := e.tokenIndexAt(off)
	if first >= len(e.tokens) || e.tokens[first].Start >= off+size {
		return fmt.Errorf("%w: no token in [%d,%d)", ErrOutOfRange, off, off+size)
	}
	last := sort.Search(len(e.tokens), func(i int) bool { return e.tokens[i].Start >= off+size }) - 1

	if e.expandAround(first) {
		e.visibilityChanged()
	}
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	first = e.closestVisibleForward(first)
	last = e.closestVisible(last)
	if last < first {
		last = first
	}
	e.cursor, e.anchor = first, first
	e.selection = Selection{Start: first, End: last}
	e.currentHash = e.tokens[first].Hash
	e.EnsureCurrentItemIsVisible()
	return nil
}

// ClearSelection drops the selection and keeps the cursor.
func (e *Engine) ClearSelection() {
	e.selection = NoSelection
	e.anchor = e.cursor
}
