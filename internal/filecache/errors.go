package filecache

import "errors"

// Lifecycle errors
var (
	// ErrNotInitialized is returned when the cache is used before Init or after Close.
	ErrNotInitialized = errors.New("file cache not initialized")

	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("file cache already initialized")
)

// Request errors
var (
	// ErrInvalidArgument indicates a zero-length request or a malformed parameter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates an offset at or beyond the end of the file.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrShortRead indicates that fewer bytes are available than a strict copy demands.
	ErrShortRead = errors.New("short read")
)

// Backing store errors
var (
	// ErrReadFailure wraps a seek, read or size failure of the backing store.
	ErrReadFailure = errors.New("backing store read failed")
)
