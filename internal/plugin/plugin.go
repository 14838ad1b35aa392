// Package plugin defines format plugins: components that recognize a file's
// format from its first bytes and build a format instance over its cache.
package plugin

import (
	"errors"

	"github.com/wilbur182/lexview/internal/filecache"
	"github.com/wilbur182/lexview/internal/lexical"
)

// ErrNoFormat is returned when no registered plugin accepts a file.
var ErrNoFormat = errors.New("no format plugin accepts the file")

// Plugin recognizes one file format.
type Plugin interface {
	ID() string
	Init(ctx *Context) error
	// Validate inspects the file header (up to HeaderSize bytes) and the
	// lower-case extension including the dot.
	Validate(header []byte, ext string) bool
	// Create builds an instance reading through cache. The instance must not
	// close the cache.
	Create(cache *filecache.Cache, name string) (Instance, error)
}

// Instance is an opened file in a particular format.
type Instance interface {
	Name() string
}

// TextSource is implemented by instances that decode to text and can be
// shown in the lexical view.
type TextSource interface {
	Instance
	Text() (string, error)
	Language() string
	Parser() lexical.Parser
}

// HeaderSize is how many leading bytes plugins get to validate.
const HeaderSize = 4096

// OffsetMapper is implemented by text sources whose decoded offsets can be
// mapped to file offsets, so the lexical and hex views can share a cursor.
type OffsetMapper interface {
	FileOffset(textOffset int) (int64, bool)
	TextOffset(fileOffset int64) (int, bool)
}
