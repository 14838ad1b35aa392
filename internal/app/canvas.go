package app

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// segment is styled text at a column of one row.
type segment struct {
	x     int
	text  string
	style lipgloss.Style
}

// canvas collects styled segments for a fixed number of rows and clips them
// to the width.
type canvas struct {
	width int
	rows  [][]segment
}

func newCanvas(width, height int) *canvas {
	return &canvas{width: width, rows: make([][]segment, height)}
}

// put places a single line of text at (x, y), clipped to the canvas.
func (c *canvas) put(x, y int, text string, style lipgloss.Style) {
	if y < 0 || y >= len(c.rows) || text == "" {
		return
	}
	text = strings.ReplaceAll(strings.TrimRight(text, "\r"), "\t", "    ")
	w := runewidth.StringWidth(text)
	if x+w <= 0 || x >= c.width {
		return
	}
	if x < 0 {
		text = runewidth.TruncateLeft(text, -x, "")
		x = 0
		w = runewidth.StringWidth(text)
	}
	if x+w > c.width {
		text = runewidth.Truncate(text, c.width-x, "")
	}
	c.rows[y] = append(c.rows[y], segment{x: x, text: text, style: style})
}

// putBlock places multi-line text; lines after the first start at column
// cont.
func (c *canvas) putBlock(x, y, cont int, text string, style lipgloss.Style) {
	for i, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if i == 0 {
			c.put(x, y, line, style)
		} else {
			c.put(cont, y+i, line, style)
		}
	}
}

// line renders row y, padding gaps with spaces. Segments overlapping an
// earlier one are dropped.
func (c *canvas) line(y int) string {
	segs := c.rows[y]
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].x < segs[j].x })
	var sb strings.Builder
	col := 0
	for _, s := range segs {
		if s.x < col {
			continue
		}
		sb.WriteString(strings.Repeat(" ", s.x-col))
		sb.WriteString(s.style.Render(s.text))
		col = s.x + runewidth.StringWidth(s.text)
	}
	if col < c.width {
		sb.WriteString(strings.Repeat(" ", c.width-col))
	}
	return sb.String()
}

// lines renders every row.
func (c *canvas) lines() []string {
	out := make([]string, len(c.rows))
	for y := range c.rows {
		out[y] = c.line(y)
	}
	return out
}
