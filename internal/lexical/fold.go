package lexical

import "fmt"

// SetFoldStatus folds, expands or toggles block. With recursive set, every
// block nested inside it receives the same target state as block itself, so a
// recursive Reverse applies the negation of block's prior state throughout.
func (e *Engine) SetFoldStatus(block int, status FoldStatus, recursive bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	if block < 0 || block >= len(e.blocks) {
		return fmt.Errorf("%w: block %d of %d", ErrOutOfRange, block, len(e.blocks))
	}
	b := &e.blocks[block]
	start := &e.tokens[b.TokenStart]

	var fold bool
	switch status {
	case Folded:
		fold = true
	case Expanded:
		fold = false
	case Reverse:
		fold = !start.IsFolded()
	default:
		return fmt.Errorf("%w: fold status %d", ErrInvalidArgument, status)
	}

	start.Status.SetFolded(fold)
	if recursive {
		for i := block + 1; i < len(e.blocks) && e.blocks[i].TokenStart <= b.TokenEnd; i++ {
			e.tokens[e.blocks[i].TokenStart].Status.SetFolded(fold)
		}
	}

	// A block inside a folded ancestor only records its state.
	e.applyVisibility()
	e.logger.Debug("fold status changed", "block", block, "status", status, "recursive", recursive, "folded", fold)
	e.visibilityChanged()
	return nil
}

// IsFolded reports whether block i is folded.
func (e *Engine) IsFolded(block int) bool {
	if block < 0 || block >= len(e.blocks) {
		return false
	}
	return e.tokens[e.blocks[block].TokenStart].IsFolded()
}

// ToggleFoldAtCursor toggles the innermost block that starts at or contains
// the cursor token.
func (e *Engine) ToggleFoldAtCursor(recursive bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	block := e.BlockAt(e.cursor)
	if block == NoBlock {
		return nil
	}
	return e.SetFoldStatus(block, Reverse, recursive)
}

// BlockAt returns the block started by token i, or else the innermost block
// containing it, or NoBlock.
func (e *Engine) BlockAt(i int) int {
	if i < 0 || i >= len(e.tokens) {
		return NoBlock
	}
	if t := &e.tokens[i]; t.IsBlockStarter() {
		return t.BlockID
	}
	found := NoBlock
	for j := range e.blocks {
		b := &e.blocks[j]
		if b.TokenStart > i {
			break
		}
		if b.Contains(i) {
			found = j
		}
	}
	return found
}

// FoldAll folds every block.
func (e *Engine) FoldAll() error {
	return e.setAllFolded(true)
}

// ExpandAll expands every block.
func (e *Engine) ExpandAll() error {
	return e.setAllFolded(false)
}

func (e *Engine) setAllFolded(fold bool) error {
	if e.noItemsVisible {
		return ErrEmptyDocument
	}
	for i := range e.blocks {
		e.tokens[e.blocks[i].TokenStart].Status.SetFolded(fold)
	}
	e.applyVisibility()
	e.visibilityChanged()
	return nil
}

// UpdateVisibilityStatus hides tokens in [start, end) or shows them again and
// relayouts. Shown tokens inside a folded block stay hidden until it expands,
// and hidden tokens stay hidden when a block around them expands.
func (e *Engine) UpdateVisibilityStatus(start, end int, visible bool) error {
	if len(e.tokens) == 0 {
		return ErrEmptyDocument
	}
	if start < 0 || end > len(e.tokens) || start > end {
		return fmt.Errorf("%w: token range [%d,%d) of %d", ErrOutOfRange, start, end, len(e.tokens))
	}
	for i := start; i < end; i++ {
		e.tokens[i].Status.set(statusFiltered, !visible)
	}
	e.applyVisibility()
	e.visibilityChanged()
	return nil
}

// applyVisibility derives every token's visible flag from the filter flags
// and the folded blocks.
func (e *Engine) applyVisibility() {
	for i := range e.tokens {
		st := &e.tokens[i].Status
		st.SetVisible(!st.isFiltered())
	}
	hiddenTo := 0
	for i := range e.blocks {
		b := &e.blocks[i]
		// Nested inside a range that is already hidden.
		if b.TokenStart < hiddenTo || !e.tokens[b.TokenStart].IsFolded() {
			continue
		}
		from, to := b.hiddenRange()
		for j := from; j < to; j++ {
			e.tokens[j].Status.SetVisible(false)
		}
		hiddenTo = to
	}
}

// FoldedOffsets returns the source offsets of the start tokens of all folded
// blocks, for restoring folds after a reload.
func (e *Engine) FoldedOffsets() []int {
	var offs []int
	for i := range e.blocks {
		if t := &e.tokens[e.blocks[i].TokenStart]; t.IsFolded() {
			offs = append(offs, t.Start)
		}
	}
	return offs
}

// RestoreFolds folds exactly the blocks whose start tokens begin at the given
// offsets. Offsets that match no block are ignored.
func (e *Engine) RestoreFolds(offsets []int) {
	if e.noItemsVisible || len(offsets) == 0 {
		return
	}
	want := make(map[int]bool, len(offsets))
	for _, off := range offsets {
		want[off] = true
	}
	for i := range e.blocks {
		t := &e.tokens[e.blocks[i].TokenStart]
		t.Status.SetFolded(want[t.Start])
	}
	e.applyVisibility()
	e.visibilityChanged()
}

// visibilityChanged relayouts and keeps the cursor on a visible token.
func (e *Engine) visibilityChanged() {
	e.noItemsVisible = true
	for i := range e.tokens {
		if e.tokens[i].IsVisible() {
			e.noItemsVisible = false
			break
		}
	}
	if e.noItemsVisible {
		e.lineCount = 0
		return
	}
	e.layout()
	if !e.tokens[e.cursor].IsVisible() {
		e.cursor = e.closestVisible(e.cursor)
		e.anchor = e.cursor
		e.selection = NoSelection
		e.currentHash = e.tokens[e.cursor].Hash
	}
	e.clampSelection()
	e.EnsureCurrentItemIsVisible()
}

// clampSelection drops a selection whose ends are no longer visible.
func (e *Engine) clampSelection() {
	if e.selection.Empty() {
		return
	}
	if !e.tokens[e.selection.Start].IsVisible() || !e.tokens[e.selection.End].IsVisible() {
		e.selection = NoSelection
		e.anchor = e.cursor
	}
}
