// Package hexview is a byte-oriented view over a file cache: 16 bytes per
// row with an offset column and an ASCII column.
package hexview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/wilbur182/lexview/internal/filecache"
)

// BytesPerRow is the number of bytes shown on each row.
const BytesPerRow = 16

const (
	offsetWidth = 10 // "%08X" plus two spaces
	asciiStart  = offsetWidth + BytesPerRow*3 + 1 + 1
)

var (
	// ErrEmpty is returned when navigating an empty file.
	ErrEmpty = errors.New("file is empty")

	// ErrOutOfRange indicates an offset outside the file.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidArgument indicates a malformed request.
	ErrInvalidArgument = errors.New("invalid argument")
)

// View shows a file as hex rows. It reads through the cache on demand.
type View struct {
	cache *filecache.Cache
	size  int64

	cursor int64
	anchor int64
	sel    [2]int64 // inclusive byte range, sel[0] < 0 when empty
	top    int64    // first visible row

	width, height int
}

// New creates a view over cache.
func New(cache *filecache.Cache) *View {
	return &View{
		cache: cache,
		size:  cache.Size(),
		sel:   [2]int64{-1, -1},
	}
}

// Name identifies the view.
func (v *View) Name() string { return "Hex" }

// Size returns the file size.
func (v *View) Size() int64 { return v.size }

// Cursor returns the byte offset under the cursor.
func (v *View) Cursor() int64 { return v.cursor }

// Selection returns the selected byte range [start, end] and whether any.
func (v *View) Selection() (start, end int64, ok bool) {
	return v.sel[0], v.sel[1], v.sel[0] >= 0
}

// Resize sets the viewport size in cells.
func (v *View) Resize(width, height int) {
	v.width, v.height = max(width, 0), max(height, 0)
	v.ensureVisible()
}

func (v *View) rowCount() int64 {
	return (v.size + BytesPerRow - 1) / BytesPerRow
}

// GoTo moves the cursor to byte offset and clears the selection.
func (v *View) GoTo(offset int) error {
	if v.size == 0 {
		return ErrEmpty
	}
	if offset < 0 || int64(offset) >= v.size {
		return fmt.Errorf("%w: %d of %d bytes", ErrOutOfRange, offset, v.size)
	}
	v.moveTo(int64(offset), false)
	return nil
}

// Select selects size bytes starting at offset, clipped to the file.
func (v *View) Select(offset, size int) error {
	if v.size == 0 {
		return ErrEmpty
	}
	if size <= 0 {
		return fmt.Errorf("%w: select %d bytes", ErrInvalidArgument, size)
	}
	if offset < 0 || int64(offset) >= v.size {
		return fmt.Errorf("%w: %d of %d bytes", ErrOutOfRange, offset, v.size)
	}
	end := min(int64(offset)+int64(size), v.size) - 1
	v.cursor, v.anchor = int64(offset), int64(offset)
	v.sel = [2]int64{int64(offset), end}
	v.ensureVisible()
	return nil
}

// Move shifts the cursor by delta bytes, clamped to the file.
func (v *View) Move(delta int64, selected bool) error {
	if v.size == 0 {
		return ErrEmpty
	}
	v.moveTo(min(max(v.cursor+delta, 0), v.size-1), selected)
	return nil
}

func (v *View) MoveLeft(selected bool) error  { return v.Move(-1, selected) }
func (v *View) MoveRight(selected bool) error { return v.Move(1, selected) }

func (v *View) MoveUp(times int, selected bool) error {
	return v.Move(-int64(max(times, 1))*BytesPerRow, selected)
}

func (v *View) MoveDown(times int, selected bool) error {
	return v.Move(int64(max(times, 1))*BytesPerRow, selected)
}

func (v *View) PageUp(selected bool) error   { return v.MoveUp(max(v.height-1, 1), selected) }
func (v *View) PageDown(selected bool) error { return v.MoveDown(max(v.height-1, 1), selected) }

// MoveHome moves to the first byte of the cursor's row.
func (v *View) MoveHome(selected bool) error {
	return v.Move(-(v.cursor % BytesPerRow), selected)
}

// MoveEnd moves to the last byte of the cursor's row.
func (v *View) MoveEnd(selected bool) error {
	return v.Move(BytesPerRow-1-v.cursor%BytesPerRow, selected)
}

func (v *View) MoveToFirst(selected bool) error { return v.Move(-v.cursor, selected) }
func (v *View) MoveToLast(selected bool) error  { return v.Move(v.size, selected) }

// ClearSelection drops the selection and keeps the cursor.
func (v *View) ClearSelection() {
	v.sel = [2]int64{-1, -1}
	v.anchor = v.cursor
}

func (v *View) moveTo(off int64, selected bool) {
	if selected {
		if v.sel[0] < 0 {
			v.anchor = v.cursor
		}
		v.sel = [2]int64{min(v.anchor, off), max(v.anchor, off)}
	} else {
		v.sel = [2]int64{-1, -1}
		v.anchor = off
	}
	v.cursor = off
	v.ensureVisible()
}

func (v *View) ensureVisible() {
	if v.height <= 0 {
		return
	}
	row := v.cursor / BytesPerRow
	if row < v.top {
		v.top = row
	} else if row >= v.top+int64(v.height) {
		v.top = row - int64(v.height) + 1
	}
}

// Scroll moves the viewport by dy rows.
func (v *View) Scroll(dy int) {
	v.top = min(max(v.top+int64(dy), 0), max(v.rowCount()-1, 0))
}

// Top returns the first visible row.
func (v *View) Top() int64 { return v.top }

// Row is one rendered line of the view.
type Row struct {
	Offset int64
	Bytes  []byte
	Text   string
}

// Rows returns up to n rows starting at the first visible row. All rows are
// read with a single cache request.
func (v *View) Rows(n int) ([]Row, error) {
	if v.size == 0 || n <= 0 {
		return nil, nil
	}
	start := v.top * BytesPerRow
	if start >= v.size {
		return nil, nil
	}
	span := int(min(int64(n)*BytesPerRow, v.size-start))
	data, err := v.cache.Get(start, span)
	if err != nil {
		return nil, fmt.Errorf("hex rows at %d: %w", start, err)
	}
	rows := make([]Row, 0, n)
	for i := 0; i < len(data); i += BytesPerRow {
		chunk := append([]byte(nil), data[i:min(i+BytesPerRow, len(data))]...)
		off := start + int64(i)
		rows = append(rows, Row{Offset: off, Bytes: chunk, Text: FormatRow(off, chunk)})
	}
	return rows, nil
}

// Lines returns the text of up to n visible rows.
func (v *View) Lines(n int) ([]string, error) {
	rows, err := v.Rows(n)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Text
	}
	return lines, nil
}

// FormatRow renders offset, hex bytes and printable ASCII for one row.
func FormatRow(offset int64, chunk []byte) string {
	var b strings.Builder
	b.Grow(asciiStart + BytesPerRow + 2)
	fmt.Fprintf(&b, "%08X  ", offset)
	for i := 0; i < BytesPerRow; i++ {
		if i < len(chunk) {
			fmt.Fprintf(&b, "%02X ", chunk[i])
		} else {
			b.WriteString("   ")
		}
		if i == 7 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" |")
	for _, c := range chunk {
		b.WriteByte(printable(c))
	}
	b.WriteString(strings.Repeat(" ", BytesPerRow-len(chunk)))
	b.WriteByte('|')
	return b.String()
}

func printable(c byte) byte {
	if c >= 32 && c <= 126 {
		return c
	}
	return '.'
}

// HexColumn returns the column of byte i of a row in the hex area.
func HexColumn(i int) int {
	col := offsetWidth + i*3
	if i > 7 {
		col++
	}
	return col
}

// AsciiColumn returns the column of byte i of a row in the ASCII area.
func AsciiColumn(i int) int { return asciiStart + 1 + i }

// OffsetAt maps a viewport cell to a byte offset, or -1.
func (v *View) OffsetAt(x, y int) int64 {
	if y < 0 || x < 0 {
		return -1
	}
	row := v.top + int64(y)
	idx := -1
	switch {
	case x >= AsciiColumn(0) && x < AsciiColumn(BytesPerRow):
		idx = x - AsciiColumn(0)
	case x >= offsetWidth && x < asciiStart:
		for i := BytesPerRow - 1; i >= 0; i-- {
			if x >= HexColumn(i) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return -1
	}
	off := row*BytesPerRow + int64(idx)
	if off >= v.size {
		return -1
	}
	return off
}

// Click moves the cursor to the byte under viewport cell (x, y).
func (v *View) Click(x, y int, selected bool) {
	if off := v.OffsetAt(x, y); off >= 0 {
		v.moveTo(off, selected)
	}
}

// SelectedBytes returns a copy of the selection, or of the cursor byte.
func (v *View) SelectedBytes() ([]byte, error) {
	if v.size == 0 {
		return nil, ErrEmpty
	}
	start, end, ok := v.Selection()
	if !ok {
		start, end = v.cursor, v.cursor
	}
	return v.cache.CopyToBuffer(start, int(end-start+1))
}

// CursorStatus summarizes the cursor position in at most width cells.
func (v *View) CursorStatus(width int) string {
	if v.size == 0 {
		return "empty"
	}
	s := fmt.Sprintf("Ofs 0x%08X (%d/%d)", v.cursor, v.cursor, v.size)
	if start, end := v.cache.Window(); v.cursor >= start && v.cursor < end {
		s += fmt.Sprintf("  Byte 0x%02X", v.cache.Byte(v.cursor, 0))
	}
	if start, end, ok := v.Selection(); ok {
		s += fmt.Sprintf("  Sel %d bytes", end-start+1)
	}
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
