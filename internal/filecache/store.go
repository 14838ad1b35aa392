package filecache

import (
	"io"
	"os"
)

// Store is a seekable, sized byte source. The cache takes exclusive ownership
// of a Store handed to Init and closes it on Close.
type Store interface {
	io.Reader
	io.Closer

	// Seek moves the read position to an absolute offset.
	Seek(offset int64) error

	// Size reports the total number of bytes in the store.
	Size() (int64, error)
}

// fileStore implements Store for local files.
type fileStore struct {
	file *os.File
}

// OpenFile opens a local file as a read-only Store.
func OpenFile(path string) (Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileStore{file: f}, nil
}

func (s *fileStore) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

func (s *fileStore) Seek(offset int64) error {
	_, err := s.file.Seek(offset, io.SeekStart)
	return err
}

func (s *fileStore) Size() (int64, error) {
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *fileStore) Close() error {
	return s.file.Close()
}

// readSeekStore adapts an io.ReadSeekCloser to Store.
type readSeekStore struct {
	rs io.ReadSeekCloser
}

// NewReadSeekStore wraps rs as a Store. The size is found by seeking to the end.
func NewReadSeekStore(rs io.ReadSeekCloser) Store {
	return &readSeekStore{rs: rs}
}

func (s *readSeekStore) Read(p []byte) (int, error) {
	return s.rs.Read(p)
}

func (s *readSeekStore) Seek(offset int64) error {
	_, err := s.rs.Seek(offset, io.SeekStart)
	return err
}

func (s *readSeekStore) Size() (int64, error) {
	cur, err := s.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	size, err := s.rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.rs.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

func (s *readSeekStore) Close() error {
	return s.rs.Close()
}
