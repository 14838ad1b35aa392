// Package filecache provides random-access reads over a file of any size
// through a fixed-size sliding window.
//
// A Cache keeps one contiguous window of the file resident. Requests that fall
// inside the window are served as zero-copy views of the internal buffer;
// requests that miss trigger one seek and one bulk read of a new window.
// A Cache is not safe for concurrent use.
package filecache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
)

const (
	// MinCapacity is the smallest window size and the rounding granularity.
	MinCapacity = 64 * 1024

	// MaxCapacity is the largest window size, also used when Init gets 0.
	MaxCapacity = 16 * 1024 * 1024
)

// Cache is a bounded sliding-window byte cache over a Store.
// The zero value is an uninitialized cache; call Init before use.
type Cache struct {
	store    Store
	fileSize int64
	start    int64 // window start (inclusive)
	end      int64 // window end (exclusive)
	pos      int64 // position following the last returned view
	buf      []byte
	capacity int
	refills  int
	logger   *slog.Logger
}

// NormalizeCapacity returns the effective window size for a requested capacity:
// 0 selects MaxCapacity, anything else is rounded up to a multiple of
// MinCapacity and clamped to MaxCapacity.
func NormalizeCapacity(capacity int) int {
	if capacity <= 0 {
		return MaxCapacity
	}
	n := (capacity + MinCapacity - 1) / MinCapacity * MinCapacity
	if n > MaxCapacity {
		n = MaxCapacity
	}
	return n
}

// SetLogger sets the logger used for refill diagnostics. A nil logger discards.
func (c *Cache) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Init takes ownership of store and sizes the window. It may be called once.
// On failure the store is left open and still belongs to the caller.
func (c *Cache) Init(store Store, capacity int) error {
	if c.capacity != 0 {
		return ErrAlreadyInitialized
	}
	if store == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrInvalidArgument, capacity)
	}
	size, err := store.Size()
	if err != nil {
		return fmt.Errorf("%w: size: %v", ErrReadFailure, err)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrReadFailure, size)
	}

	c.capacity = NormalizeCapacity(capacity)
	c.store = store
	c.fileSize = size
	c.start, c.end, c.pos = 0, 0, 0

	// Small files never need a full-capacity buffer.
	bufSize := int64(c.capacity)
	if size < bufSize {
		bufSize = size
	}
	c.buf = make([]byte, bufSize)
	return nil
}

// Close releases the backing store. The cache cannot be reused afterwards.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.buf = nil
	c.start, c.end = 0, 0
	return err
}

// Size returns the file size captured at Init.
func (c *Cache) Size() int64 { return c.fileSize }

// Capacity returns the effective window size, or 0 before Init.
func (c *Cache) Capacity() int { return c.capacity }

// Pos returns the position immediately following the last returned view.
func (c *Cache) Pos() int64 { return c.pos }

// SetPos moves the cursor used by GetNext.
func (c *Cache) SetPos(pos int64) { c.pos = pos }

// Window returns the resident byte range [start, end).
func (c *Cache) Window() (start, end int64) { return c.start, c.end }

// Refills returns how many times the window has been reloaded from the store.
func (c *Cache) Refills() int { return c.refills }

// Get returns a view of up to size bytes starting at offset. The view aliases
// the internal buffer and is only valid until the next call on the cache.
// Near the end of the file the view is shorter than size; that is not an error.
func (c *Cache) Get(offset int64, size int) ([]byte, error) {
	if c.store == nil {
		return nil, ErrNotInitialized
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: requested size %d", ErrInvalidArgument, size)
	}
	if offset < 0 || offset >= c.fileSize {
		return nil, fmt.Errorf("%w: offset %d, file size %d", ErrOutOfRange, offset, c.fileSize)
	}

	if view, ok := c.resident(offset, size); ok {
		return view, nil
	}
	if err := c.refill(offset, size); err != nil {
		return nil, err
	}
	if view, ok := c.resident(offset, size); ok {
		return view, nil
	}

	// Request larger than the window: hand out what fits.
	c.pos = c.end
	return c.buf[offset-c.start : c.end-c.start], nil
}

// GetNext is Get at the current cursor position.
func (c *Cache) GetNext(size int) ([]byte, error) {
	return c.Get(c.pos, size)
}

// resident serves a request from the current window if it is fully covered,
// or if the window reaches end of file and covers the request's start.
func (c *Cache) resident(offset int64, size int) ([]byte, bool) {
	if offset < c.start || offset >= c.end {
		return nil, false
	}
	if offset+int64(size) <= c.end {
		c.pos = offset + int64(size)
		return c.buf[offset-c.start : offset-c.start+int64(size)], true
	}
	if c.end == c.fileSize {
		c.pos = c.fileSize
		return c.buf[offset-c.start : c.end-c.start], true
	}
	return nil, false
}

// refill loads a window that contains offset. When the whole file fits, the
// window is the whole file. Otherwise the window is exactly capacity bytes and
// is shifted back by the unused slack so that the bytes before the request stay
// resident.
func (c *Cache) refill(offset int64, size int) error {
	var start, end int64
	capacity := int64(c.capacity)
	if c.fileSize <= capacity {
		start, end = 0, c.fileSize
	} else {
		sz := int64(size)
		if rem := c.fileSize - offset; sz > rem {
			sz = rem
		}
		if sz > capacity {
			sz = capacity
		}
		slack := capacity - sz
		if slack <= offset {
			start = offset - slack
		} else {
			start = 0
		}
		end = start + capacity
		if end > c.fileSize {
			end = c.fileSize
		}
	}

	c.refills++
	if err := c.store.Seek(start); err != nil {
		c.reset()
		return fmt.Errorf("%w: seek %d: %v", ErrReadFailure, start, err)
	}
	if _, err := io.ReadFull(c.store, c.buf[:end-start]); err != nil {
		c.reset()
		return fmt.Errorf("%w: read [%d,%d): %v", ErrReadFailure, start, end, err)
	}
	c.start, c.end = start, end

	if c.logger != nil {
		c.logger.Debug("file cache refill", "start", start, "end", end, "offset", offset, "size", size)
	}
	return nil
}

// reset drops the window so no partially filled buffer is ever served.
func (c *Cache) reset() {
	c.start, c.end = 0, 0
}

// Copy fills dst with exactly len(dst) bytes from offset. It fails with
// ErrShortRead rather than copying fewer bytes.
func (c *Cache) Copy(dst []byte, offset int64) error {
	if len(dst) == 0 {
		return fmt.Errorf("%w: empty destination", ErrInvalidArgument)
	}
	view, err := c.Get(offset, len(dst))
	if err != nil {
		return fmt.Errorf("copy %d bytes at %d: %w", len(dst), offset, err)
	}
	if len(view) != len(dst) {
		return fmt.Errorf("%w: wanted %d bytes at %d, only %d available", ErrShortRead, len(dst), offset, len(view))
	}
	copy(dst, view)
	return nil
}

// CopyToBuffer returns a newly allocated copy of size bytes from offset.
func (c *Cache) CopyToBuffer(offset int64, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: requested size %d", ErrInvalidArgument, size)
	}
	b := make([]byte, size)
	if err := c.Copy(b, offset); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadValue decodes a fixed-size value (a struct of fixed-size fields, or a
// pointer to a number) stored at offset using the given byte order.
func (c *Cache) ReadValue(offset int64, order binary.ByteOrder, v any) error {
	size := binary.Size(v)
	if size <= 0 {
		return fmt.Errorf("%w: %T has no fixed size", ErrInvalidArgument, v)
	}
	b, err := c.CopyToBuffer(offset, size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), order, v)
}

// Byte returns the byte at offset if it is already resident, or def otherwise.
// It never touches the backing store.
func (c *Cache) Byte(offset int64, def byte) byte {
	if offset >= c.start && offset < c.end {
		return c.buf[offset-c.start]
	}
	return def
}
