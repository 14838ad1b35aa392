package lexical

import "errors"

var (
	// ErrEmptyDocument is returned by navigation and folding when there are no tokens.
	ErrEmptyDocument = errors.New("document has no tokens")

	// ErrInvalidArgument indicates malformed settings, parser output or requests.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates an offset, line, token or block index outside the document.
	ErrOutOfRange = errors.New("out of range")
)
