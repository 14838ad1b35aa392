package filecache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// memStore is an in-memory Store that counts reads and can inject failures.
type memStore struct {
	data     []byte
	pos      int64
	reads    int
	seeks    int
	failRead bool
	failSeek bool
	failSize bool
	closed   bool
}

func newMemStore(n int) *memStore {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return &memStore{data: data}
}

func (m *memStore) Read(p []byte) (int, error) {
	m.reads++
	if m.failRead {
		return 0, errors.New("disk on fire")
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memStore) Seek(offset int64) error {
	m.seeks++
	if m.failSeek {
		return errors.New("seek refused")
	}
	m.pos = offset
	return nil
}

func (m *memStore) Size() (int64, error) {
	if m.failSize {
		return 0, errors.New("no size")
	}
	return int64(len(m.data)), nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

func newCache(t *testing.T, store *memStore, capacity int) *Cache {
	t.Helper()
	c := &Cache{}
	if err := c.Init(store, capacity); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return c
}

func checkWindow(t *testing.T, c *Cache) {
	t.Helper()
	start, end := c.Window()
	if start < 0 || start > end || end > c.Size() {
		t.Fatalf("window [%d,%d) violates bounds for size %d", start, end, c.Size())
	}
	if end-start > int64(c.Capacity()) {
		t.Fatalf("window [%d,%d) exceeds capacity %d", start, end, c.Capacity())
	}
}

func TestNormalizeCapacity(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MaxCapacity},
		{1, MinCapacity},
		{MinCapacity, MinCapacity},
		{MinCapacity + 1, 2 * MinCapacity},
		{3*MinCapacity - 5, 3 * MinCapacity},
		{MaxCapacity, MaxCapacity},
		{MaxCapacity + 1, MaxCapacity},
		{1 << 30, MaxCapacity},
	}
	for _, tt := range tests {
		if got := NormalizeCapacity(tt.in); got != tt.want {
			t.Errorf("NormalizeCapacity(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInit_Twice(t *testing.T) {
	c := newCache(t, newMemStore(10), 0)
	if err := c.Init(newMemStore(10), 0); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestInit_SizeFailure(t *testing.T) {
	store := newMemStore(10)
	store.failSize = true
	c := &Cache{}
	if err := c.Init(store, 0); !errors.Is(err, ErrReadFailure) {
		t.Errorf("expected ErrReadFailure, got %v", err)
	}
	// A failed Init leaves the cache usable for another attempt.
	if err := c.Init(newMemStore(10), 0); err != nil {
		t.Errorf("second Init after failure: %v", err)
	}
}

func TestInit_NilStore(t *testing.T) {
	c := &Cache{}
	if err := c.Init(nil, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGet_NotInitialized(t *testing.T) {
	c := &Cache{}
	if _, err := c.Get(0, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestGet_InvalidRequests(t *testing.T) {
	c := newCache(t, newMemStore(10), 0)

	if _, err := c.Get(0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Get(0,0): expected ErrInvalidArgument, got %v", err)
	}
	if view, err := c.Get(10, 4); !errors.Is(err, ErrOutOfRange) || view != nil {
		t.Errorf("Get(10,4): expected empty view and ErrOutOfRange, got %v %v", view, err)
	}
	if _, err := c.Get(-1, 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Get(-1,4): expected ErrOutOfRange, got %v", err)
	}
}

func TestScenarioSmallFile(t *testing.T) {
	store := &memStore{data: []byte("0123456789")}
	c := newCache(t, store, 0)

	view, err := c.Get(3, 4)
	if err != nil {
		t.Fatalf("Get(3,4): %v", err)
	}
	if string(view) != "3456" {
		t.Errorf("Get(3,4) = %q, want %q", view, "3456")
	}
	if start, end := c.Window(); start != 0 || end != 10 {
		t.Errorf("window = [%d,%d), want [0,10)", start, end)
	}
	if c.Pos() != 7 {
		t.Errorf("pos = %d, want 7", c.Pos())
	}

	view, err = c.Get(8, 4)
	if err != nil {
		t.Fatalf("Get(8,4): %v", err)
	}
	if string(view) != "89" {
		t.Errorf("Get(8,4) = %q, want %q", view, "89")
	}
	if c.Pos() != 10 {
		t.Errorf("pos at end of file = %d, want 10", c.Pos())
	}
	if c.Refills() != 1 {
		t.Errorf("refills = %d, want 1 for a file that fits", c.Refills())
	}
}

func TestGet_MatchesStore(t *testing.T) {
	const size = 5*MinCapacity + 123
	store := newMemStore(size)
	c := newCache(t, store, MinCapacity)

	offsets := []int64{0, 17, MinCapacity - 3, 2 * MinCapacity, size - 1, size - 40, 3*MinCapacity + 9, 1}
	sizes := []int{1, 40, 4096, MinCapacity, 2 * MinCapacity}
	for _, off := range offsets {
		for _, n := range sizes {
			view, err := c.Get(off, n)
			if err != nil {
				t.Fatalf("Get(%d,%d): %v", off, n, err)
			}
			want := int64(n)
			if rem := int64(size) - off; want > rem {
				want = rem
			}
			if want > MinCapacity {
				want = MinCapacity
			}
			if int64(len(view)) != want {
				t.Fatalf("Get(%d,%d) length = %d, want %d", off, n, len(view), want)
			}
			if !bytes.Equal(view, store.data[off:off+want]) {
				t.Fatalf("Get(%d,%d) returned wrong bytes", off, n)
			}
			checkWindow(t, c)
		}
	}
}

func TestGet_CacheHitDoesNotRead(t *testing.T) {
	store := newMemStore(4 * MinCapacity)
	c := newCache(t, store, MinCapacity)

	first, err := c.Get(1000, 100)
	if err != nil {
		t.Fatal(err)
	}
	firstCopy := append([]byte(nil), first...)
	reads := store.reads

	second, err := c.Get(1000, 100)
	if err != nil {
		t.Fatal(err)
	}
	if store.reads != reads {
		t.Errorf("second Get hit the store: reads %d -> %d", reads, store.reads)
	}
	if !bytes.Equal(firstCopy, second) {
		t.Error("consecutive Get calls returned different bytes")
	}
}

func TestGet_SequentialStrides(t *testing.T) {
	const capacity = MinCapacity
	size := 3*capacity + 100
	store := newMemStore(size)
	c := newCache(t, store, capacity)

	strides := 0
	for off := int64(0); off < int64(size); off += capacity {
		before := c.Refills()
		view, err := c.Get(off, capacity)
		if err != nil {
			t.Fatalf("Get(%d): %v", off, err)
		}
		if !bytes.Equal(view, store.data[off:off+int64(len(view))]) {
			t.Fatalf("stride at %d returned wrong bytes", off)
		}
		if got := c.Refills() - before; got > 1 {
			t.Fatalf("stride at %d caused %d refills", off, got)
		}
		strides++
	}
	if c.Refills() > strides {
		t.Errorf("refills = %d for %d strides", c.Refills(), strides)
	}
}

func TestGet_WindowBiasedBackward(t *testing.T) {
	store := newMemStore(4 * MinCapacity)
	c := newCache(t, store, MinCapacity)

	if _, err := c.Get(2*MinCapacity, 1024); err != nil {
		t.Fatal(err)
	}
	start, end := c.Window()
	wantStart := int64(2*MinCapacity) - (MinCapacity - 1024)
	if start != wantStart || end != wantStart+MinCapacity {
		t.Errorf("window = [%d,%d), want [%d,%d)", start, end, wantStart, wantStart+MinCapacity)
	}

	// The bytes just before the request are still resident.
	reads := store.reads
	if _, err := c.Get(2*MinCapacity-500, 500); err != nil {
		t.Fatal(err)
	}
	if store.reads != reads {
		t.Error("read before the previous request caused a refill")
	}
}

func TestGet_NearStartClampsToZero(t *testing.T) {
	store := newMemStore(4 * MinCapacity)
	c := newCache(t, store, MinCapacity)
	if _, err := c.Get(100, 10); err != nil {
		t.Fatal(err)
	}
	if start, end := c.Window(); start != 0 || end != MinCapacity {
		t.Errorf("window = [%d,%d), want [0,%d)", start, end, MinCapacity)
	}
}

func TestGet_ReadFailureResetsWindow(t *testing.T) {
	store := newMemStore(4 * MinCapacity)
	c := newCache(t, store, MinCapacity)
	if _, err := c.Get(0, 10); err != nil {
		t.Fatal(err)
	}

	store.failRead = true
	if _, err := c.Get(3*MinCapacity, 10); !errors.Is(err, ErrReadFailure) {
		t.Fatalf("expected ErrReadFailure, got %v", err)
	}
	if start, end := c.Window(); start != 0 || end != 0 {
		t.Errorf("window after failure = [%d,%d), want empty", start, end)
	}

	// Recovery once the store works again.
	store.failRead = false
	view, err := c.Get(3*MinCapacity, 10)
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if !bytes.Equal(view, store.data[3*MinCapacity:3*MinCapacity+10]) {
		t.Error("wrong bytes after recovery")
	}
}

func TestGet_SeekFailure(t *testing.T) {
	store := newMemStore(100)
	store.failSeek = true
	c := newCache(t, store, 0)
	if _, err := c.Get(0, 10); !errors.Is(err, ErrReadFailure) {
		t.Errorf("expected ErrReadFailure, got %v", err)
	}
	if start, end := c.Window(); start != 0 || end != 0 {
		t.Errorf("window = [%d,%d), want empty", start, end)
	}
}

func TestGet_LargerThanCapacity(t *testing.T) {
	store := newMemStore(4 * MinCapacity)
	c := newCache(t, store, MinCapacity)
	view, err := c.Get(10, 3*MinCapacity)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != MinCapacity {
		t.Errorf("len = %d, want %d", len(view), MinCapacity)
	}
	if _, end := c.Window(); c.Pos() != end {
		t.Errorf("pos = %d, want window end %d", c.Pos(), end)
	}
}

func TestGetNext(t *testing.T) {
	store := &memStore{data: []byte("abcdefghij")}
	c := newCache(t, store, 0)

	var got []byte
	for c.Pos() < c.Size() {
		view, err := c.GetNext(3)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, view...)
	}
	if string(got) != "abcdefghij" {
		t.Errorf("GetNext walk = %q", got)
	}
}

func TestCopy(t *testing.T) {
	store := &memStore{data: []byte("0123456789")}
	c := newCache(t, store, 0)

	dst := make([]byte, 4)
	if err := c.Copy(dst, 2); err != nil {
		t.Fatal(err)
	}
	if string(dst) != "2345" {
		t.Errorf("Copy = %q", dst)
	}

	dst = make([]byte, 4)
	if err := c.Copy(dst, 8); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
	if err := c.Copy(dst, 20); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestCopyToBuffer(t *testing.T) {
	store := &memStore{data: []byte("0123456789")}
	c := newCache(t, store, 0)

	b, err := c.CopyToBuffer(5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "56789" {
		t.Errorf("CopyToBuffer = %q", b)
	}
	// The copy is independent of the internal buffer.
	b[0] = 'x'
	if view, _ := c.Get(5, 1); view[0] != '5' {
		t.Error("CopyToBuffer aliased the internal buffer")
	}

	if _, err := c.CopyToBuffer(7, 5); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
}

func TestReadValue(t *testing.T) {
	type header struct {
		Magic   uint16
		Version uint16
		Length  uint32
	}
	var raw bytes.Buffer
	raw.WriteString("xx")
	_ = binary.Write(&raw, binary.LittleEndian, header{Magic: 0x5A4D, Version: 3, Length: 99})

	c := newCache(t, &memStore{data: raw.Bytes()}, 0)
	var h header
	if err := c.ReadValue(2, binary.LittleEndian, &h); err != nil {
		t.Fatal(err)
	}
	if h.Magic != 0x5A4D || h.Version != 3 || h.Length != 99 {
		t.Errorf("ReadValue = %+v", h)
	}
	if err := c.ReadValue(6, binary.LittleEndian, &h); !errors.Is(err, ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", err)
	}
}

func TestByte(t *testing.T) {
	c := newCache(t, &memStore{data: []byte("abc")}, 0)
	if got := c.Byte(1, '?'); got != '?' {
		t.Errorf("Byte before any read = %q, want default", got)
	}
	if _, err := c.Get(0, 1); err != nil {
		t.Fatal(err)
	}
	if got := c.Byte(1, '?'); got != 'b' {
		t.Errorf("Byte(1) = %q, want 'b'", got)
	}
}

func TestClose(t *testing.T) {
	store := newMemStore(10)
	c := newCache(t, store, 0)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !store.closed {
		t.Error("Close did not close the store")
	}
	if _, err := c.Get(0, 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Get after Close: expected ErrNotInitialized, got %v", err)
	}
	if err := c.Init(newMemStore(10), 0); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("Init after Close: expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestEmptyFile(t *testing.T) {
	c := newCache(t, &memStore{}, 0)
	if _, err := c.Get(0, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for empty file, got %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("hello, window"), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	c := &Cache{}
	if err := c.Init(store, 0); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	view, err := c.Get(7, 100)
	if err != nil {
		t.Fatal(err)
	}
	if string(view) != "window" {
		t.Errorf("Get = %q", view)
	}
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func TestReadSeekStore(t *testing.T) {
	store := NewReadSeekStore(nopCloser{bytes.NewReader([]byte("0123456789abcdef"))})
	c := &Cache{}
	if err := c.Init(store, 0); err != nil {
		t.Fatal(err)
	}
	if c.Size() != 16 {
		t.Errorf("Size = %d", c.Size())
	}
	view, err := c.Get(10, 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(view) != "abc" {
		t.Errorf("Get = %q", view)
	}
}
