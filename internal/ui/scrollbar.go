// Package ui holds small rendering helpers shared by the views.
package ui

import "github.com/wilbur182/lexview/internal/styles"

// ScrollbarParams configures a vertical scrollbar rendering.
type ScrollbarParams struct {
	TotalRows    int // rows in the whole document
	ScrollOffset int // first visible row
	VisibleRows  int // rows that fit in the viewport
	TrackHeight  int // height of the scrollbar track in terminal rows
}

// Thumb returns the first track row of the thumb and its size. size is 0 when
// everything fits.
func Thumb(p ScrollbarParams) (pos, size int) {
	if p.TrackHeight < 1 || p.TotalRows <= p.VisibleRows {
		return 0, 0
	}

	size = min(max(p.VisibleRows*p.TrackHeight/p.TotalRows, 1), p.TrackHeight)

	maxOffset := max(p.TotalRows-p.VisibleRows, 1)
	pos = p.ScrollOffset * (p.TrackHeight - size) / maxOffset
	pos = min(max(pos, 0), p.TrackHeight-size)
	return pos, size
}

// RenderScrollbar returns one styled cell per track row. Rows are spaces when
// all content is visible, so the column width stays fixed.
func RenderScrollbar(p ScrollbarParams) []string {
	if p.TrackHeight < 1 {
		return nil
	}
	lines := make([]string, p.TrackHeight)
	pos, size := Thumb(p)
	if size == 0 {
		for i := range lines {
			lines[i] = " "
		}
		return lines
	}

	track := styles.ScrollTrack.Render("│")
	thumb := styles.ScrollThumb.Render("┃")
	for i := range lines {
		if i >= pos && i < pos+size {
			lines[i] = thumb
		} else {
			lines[i] = track
		}
	}
	return lines
}
