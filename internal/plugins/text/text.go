// Package text is the format plugin for UTF-8 and UTF-16 text files.
package text

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/wilbur182/lexview/internal/filecache"
	"github.com/wilbur182/lexview/internal/lexical"
	"github.com/wilbur182/lexview/internal/plugin"
	"github.com/wilbur182/lexview/internal/syntax"
)

const (
	pluginID = "text"

	// DefaultMaxSize applies when no config is available.
	DefaultMaxSize = 64 << 20
)

// ErrTooLarge is returned by Text for files above the configured limit.
var ErrTooLarge = errors.New("file too large to decode as text")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Plugin recognizes text files.
type Plugin struct {
	maxSize int64
	logger  *slog.Logger
}

// New creates the text plugin.
func New() *Plugin {
	return &Plugin{maxSize: DefaultMaxSize}
}

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return pluginID }

// Init implements plugin.Plugin.
func (p *Plugin) Init(ctx *plugin.Context) error {
	if ctx == nil {
		return nil
	}
	if ctx.Config != nil {
		p.maxSize = ctx.Config.MaxTextSize()
	}
	p.logger = ctx.Logger
	return nil
}

// Validate accepts a byte order mark, or a header that is valid UTF-8 apart
// from a rune cut off at its end and is not binary.
func (p *Plugin) Validate(header []byte, _ string) bool {
	if bytes.HasPrefix(header, bomUTF8) || bytes.HasPrefix(header, bomUTF16LE) || bytes.HasPrefix(header, bomUTF16BE) {
		return true
	}
	if syntax.IsBinary(header) {
		return false
	}
	return utf8.Valid(trimPartialRune(header))
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of b.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < 0x80 {
			return b
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

// Create implements plugin.Plugin.
func (p *Plugin) Create(cache *filecache.Cache, name string) (plugin.Instance, error) {
	head, err := readHead(cache)
	if err != nil {
		return nil, err
	}
	d := &Document{
		cache:   cache,
		name:    name,
		maxSize: p.maxSize,
		logger:  p.logger,
	}
	switch {
	case bytes.HasPrefix(head, bomUTF16LE):
		d.enc, d.encName = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "UTF-16LE"
	case bytes.HasPrefix(head, bomUTF16BE):
		d.enc, d.encName = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "UTF-16BE"
	case bytes.HasPrefix(head, bomUTF8):
		d.enc, d.encName, d.skip = unicode.UTF8BOM, "UTF-8 BOM", len(bomUTF8)
	default:
		d.encName = "UTF-8"
	}
	return d, nil
}

func readHead(cache *filecache.Cache) ([]byte, error) {
	if cache.Size() == 0 {
		return nil, nil
	}
	view, err := cache.Get(0, plugin.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return bytes.Clone(view), nil
}

// Document is a text file decoded to UTF-8.
type Document struct {
	cache   *filecache.Cache
	name    string
	maxSize int64
	enc     encoding.Encoding // nil for plain UTF-8
	encName string
	skip    int // BOM bytes before the first decoded byte of UTF-8 text
	logger  *slog.Logger

	text   string
	loaded bool
	parser *syntax.Parser
}

// Name implements plugin.Instance.
func (d *Document) Name() string { return "Text (" + d.encName + ")" }

// Encoding returns the detected encoding name.
func (d *Document) Encoding() string { return d.encName }

// FileOffset maps a decoded text offset to a file offset. UTF-16 offsets do
// not map byte for byte.
func (d *Document) FileOffset(textOffset int) (int64, bool) {
	if strings.HasPrefix(d.encName, "UTF-16") {
		return 0, false
	}
	return int64(textOffset + d.skip), true
}

// TextOffset is the inverse of FileOffset.
func (d *Document) TextOffset(fileOffset int64) (int, bool) {
	if strings.HasPrefix(d.encName, "UTF-16") || fileOffset < int64(d.skip) {
		return 0, false
	}
	return int(fileOffset) - d.skip, true
}

// Text reads the whole file through the cache and decodes it. The result is
// kept for later calls.
func (d *Document) Text() (string, error) {
	if d.loaded {
		return d.text, nil
	}
	size := d.cache.Size()
	if size > d.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, d.maxSize)
	}

	raw, err := d.readAll(size)
	if err != nil {
		return "", err
	}
	if d.enc != nil {
		raw, err = d.enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", d.encName, err)
		}
	}
	d.text = strings.ToValidUTF8(string(raw), "�")
	d.loaded = true
	return d.text, nil
}

// readAll streams the file sequentially in capacity-sized strides so every
// stride costs exactly one refill.
func (d *Document) readAll(size int64) ([]byte, error) {
	buf := make([]byte, 0, size)
	d.cache.SetPos(0)
	for int64(len(buf)) < size {
		view, err := d.cache.GetNext(d.cache.Capacity())
		if err != nil {
			return nil, fmt.Errorf("read text at %d: %w", len(buf), err)
		}
		if len(view) == 0 {
			return nil, fmt.Errorf("read text at %d: %w", len(buf), io.ErrUnexpectedEOF)
		}
		buf = append(buf, view...)
	}
	if d.logger != nil {
		d.logger.Debug("text loaded", "name", d.name, "bytes", size, "refills", d.cache.Refills())
	}
	return buf, nil
}

// Language returns the detected language name.
func (d *Document) Language() string {
	return d.Parser().Name()
}

// Parser returns the syntax parser for the document, detecting the language
// from the file name and the first bytes.
func (d *Document) Parser() lexical.Parser {
	if d.parser == nil {
		head := d.text
		if !d.loaded {
			if b, err := readHead(d.cache); err == nil {
				head = string(b)
			}
		}
		if len(head) > plugin.HeaderSize {
			head = head[:plugin.HeaderSize]
		}
		d.parser = syntax.ForFile(d.name, []byte(head))
	}
	return d.parser
}
