package lexical

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// textWidth returns the display width of a single line, with tabs counted as
// tabWidth cells.
func textWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tabWidth
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

// tokenSize measures a token's text: the widest line, the number of lines and
// the width of the last line.
func tokenSize(s string) (width, height, lastWidth int) {
	s = strings.TrimSuffix(s, "\n")
	height = 1
	for {
		line, rest, more := strings.Cut(s, "\n")
		lastWidth = textWidth(strings.TrimSuffix(line, "\r"))
		if lastWidth > width {
			width = lastWidth
		}
		if !more {
			break
		}
		height++
		s = rest
	}
	if width == 0 {
		width = 1
		if height == 1 {
			lastWidth = 1
		}
	}
	return width, height, lastWidth
}

// layout recomputes positions for every token and fold marker.
func (e *Engine) layout() {
	for i := range e.blocks {
		b := &e.blocks[i]
		b.MarkerX, b.MarkerY = -1, -1
	}
	if e.settings.PrettyFormat {
		e.prettyLayout()
	} else {
		e.originalLayout()
	}
	e.lineNrWidth = digits(e.lineCount)
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

// collapse gives tokens in [from, to) a zero footprint at (x, y).
func (e *Engine) collapse(from, to, x, y int) {
	for i := from; i < to && i < len(e.tokens); i++ {
		t := &e.tokens[i]
		t.X, t.Y, t.Width, t.Height = x, y, 0, 0
	}
}

// wrapWidth is the column at which pretty layout starts a new line, or 0.
func (e *Engine) wrapWidth() int {
	if e.settings.MaxWidth > 0 {
		return e.settings.MaxWidth
	}
	return e.width
}

// prettyLayout places tokens by nesting depth. Indented blocks start and end
// on their own lines; a folded block occupies a single line made of its start
// token, the fold message and the end marker if it has one.
func (e *Engine) prettyLayout() {
	indent := e.settings.IndentWidth
	limit := e.wrapWidth()

	var open []int // indices of blocks being laid out, innermost last
	depth := 0
	x, y := 0, 0
	empty := true
	maxY := -1

	newLine := func() {
		if !empty {
			y++
		}
		x = depth * indent
		empty = true
	}
	closeBlock := func() {
		b := &e.blocks[open[len(open)-1]]
		open = open[:len(open)-1]
		if b.Align == BlockAlignIndent {
			depth--
			newLine()
		}
	}
	place := func(t *Token, w, h, lastW int) {
		if limit > 0 && !empty && x+w > limit {
			newLine()
		}
		t.X, t.Y, t.Width, t.Height = x, y, w, h
		empty = false
		if h > 1 {
			y += h - 1
			x = t.X + lastW
		} else {
			x += w
		}
		if y > maxY {
			maxY = y
		}
	}

	for i := 0; i < len(e.tokens); {
		for len(open) > 0 && e.blocks[open[len(open)-1]].TokenEnd < i {
			closeBlock()
		}
		t := &e.tokens[i]
		if !t.IsVisible() {
			e.collapse(i, i+1, x, y)
			i++
			continue
		}
		if len(open) > 0 {
			if b := &e.blocks[open[len(open)-1]]; b.HasEndMarker && b.TokenEnd == i {
				closeBlock()
			}
		}

		if t.Align&AlignNewLineBefore != 0 {
			newLine()
		} else if !empty && t.Align&AlignSpaceBefore != 0 {
			x++
		}
		w, h, lastW := tokenSize(t.Text(e.text))
		place(t, w, h, lastW)
		spaced := false
		if t.Align&AlignSpaceAfter != 0 {
			x++
			spaced = true
		}

		if t.IsBlockStarter() {
			b := &e.blocks[t.BlockID]
			b.LeftHighlightMargin = t.X
			if t.IsFolded() {
				if !spaced {
					x++
				}
				b.MarkerX, b.MarkerY = x, y
				x += textWidth(b.foldMessage())
				from, to := b.hiddenRange()
				e.collapse(from, to, b.MarkerX, b.MarkerY)
				if b.HasEndMarker {
					if end := &e.tokens[b.TokenEnd]; end.IsVisible() {
						x++
						ew, eh, elast := tokenSize(end.Text(e.text))
						end.X, end.Y, end.Width, end.Height = x, y, ew, eh
						if eh > 1 {
							y += eh - 1
							x = end.X + elast
						} else {
							x += ew
						}
						if y > maxY {
							maxY = y
						}
					} else {
						e.collapse(b.TokenEnd, b.TokenEnd+1, x, y)
					}
				}
				i = b.TokenEnd + 1
				newLine()
				continue
			}
			if b.TokenEnd > b.TokenStart {
				open = append(open, t.BlockID)
				if b.Align == BlockAlignIndent {
					depth++
					newLine()
				}
			}
		}
		if t.Align&AlignNewLineAfter != 0 {
			newLine()
		}
		i++
	}
	e.lineCount = maxY + 1
}

// textCursor walks the decoded text forward, tracking line and column.
type textCursor struct {
	text      string
	off       int
	line, col int
}

// advance moves to byte offset off and returns its line and display column.
func (c *textCursor) advance(off int) (line, col int) {
	for c.off < off && c.off < len(c.text) {
		r, size := utf8.DecodeRuneInString(c.text[c.off:])
		switch r {
		case '\n':
			c.line++
			c.col = 0
		case '\r':
		case '\t':
			c.col += tabWidth
		default:
			c.col += runewidth.RuneWidth(r)
		}
		c.off += size
	}
	return c.line, c.col
}

// originalLayout keeps each token at its source line and column. A folded
// block collapses to one row; rows below it move up by the lines it hid.
func (e *Engine) originalLayout() {
	cur := textCursor{text: e.text}
	shift := 0  // source lines removed by folds so far
	xLine := -1 // source line whose columns are shifted by xShift
	xShift := 0
	pendingRow := -1 // row for the first visible token after a folded block
	maxY := -1

	for i := 0; i < len(e.tokens); {
		t := &e.tokens[i]
		line, col := cur.advance(t.Start)
		if !t.IsVisible() {
			e.collapse(i, i+1, col, line-shift)
			i++
			continue
		}
		if pendingRow >= 0 {
			shift = line - pendingRow
			if line != xLine {
				xLine = -1
			}
			pendingRow = -1
		}
		if line == xLine {
			col += xShift
		}
		w, h, _ := tokenSize(t.Text(e.text))
		t.X, t.Y, t.Width, t.Height = col, line-shift, w, h
		if last := t.Y + h - 1; last > maxY {
			maxY = last
		}

		if t.IsBlockStarter() && t.IsFolded() {
			b := &e.blocks[t.BlockID]
			b.LeftHighlightMargin = t.X
			b.MarkerX, b.MarkerY = t.X+w+1, t.Y
			endX := b.MarkerX + textWidth(b.foldMessage())
			from, to := b.hiddenRange()
			e.collapse(from, to, b.MarkerX, b.MarkerY)
			if b.HasEndMarker && e.tokens[b.TokenEnd].IsVisible() {
				end := &e.tokens[b.TokenEnd]
				eline, ecol := cur.advance(end.Start)
				ew, eh, _ := tokenSize(end.Text(e.text))
				end.X, end.Y, end.Width, end.Height = endX+1, t.Y, ew, eh
				shift = eline - t.Y
				xLine, xShift = eline, end.X-ecol
				if last := end.Y + eh - 1; last > maxY {
					maxY = last
				}
			} else {
				pendingRow = t.Y + 1
			}
			i = b.TokenEnd + 1
			continue
		}
		if t.IsBlockStarter() {
			e.blocks[t.BlockID].LeftHighlightMargin = t.X
		}
		i++
	}
	e.lineCount = maxY + 1
}
