package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/wilbur182/lexview/internal/config"
	"github.com/wilbur182/lexview/internal/hexview"
	"github.com/wilbur182/lexview/internal/lexical"
	"github.com/wilbur182/lexview/internal/object"
	"github.com/wilbur182/lexview/internal/plugin"
	"github.com/wilbur182/lexview/internal/plugins/text"
)

// document is an opened file with its views. engine is nil when the file
// cannot be shown as tokens; note then says why.
type document struct {
	obj    *object.Object
	engine *lexical.Engine
	hex    *hexview.View
	mapper plugin.OffsetMapper
	lang   string
	note   string
	logger *slog.Logger
}

// openDocument opens path and builds both views. A file that fails to decode
// or parse still opens in the hex view.
func openDocument(path string, cfg *config.Config, reg *plugin.Registry, logger *slog.Logger) (*document, error) {
	obj, err := object.Open(path, reg, object.Options{CacheSize: cfg.CacheCapacity(), Logger: logger})
	if err != nil {
		return nil, err
	}
	doc := &document{obj: obj, hex: hexview.New(obj.Cache), logger: logger}

	ts, ok := obj.Text()
	if !ok {
		doc.note = obj.Format.Name()
		return doc, nil
	}
	doc.lang = ts.Language()
	doc.mapper, _ = ts.(plugin.OffsetMapper)

	src, err := ts.Text()
	switch {
	case errors.Is(err, text.ErrTooLarge):
		doc.note = "too large for the lexical view"
		return doc, nil
	case err != nil:
		logger.Warn("text decode failed", "path", path, "err", err)
		doc.note = "decode failed"
		return doc, nil
	}

	settings := lexical.Settings{
		Parser:          ts.Parser(),
		IndentWidth:     cfg.Lexical.IndentWidth,
		IgnoreCase:      cfg.Lexical.IgnoreCase,
		PrettyFormat:    cfg.Lexical.PrettyFormat,
		MaxWidth:        cfg.Lexical.MaxWidth,
		ShowLineNumbers: cfg.Lexical.ShowLineNumbers,
	}
	engine, err := lexical.New(src, settings, lexical.WithLogger(logger))
	if err != nil {
		logger.Warn("lexical model failed", "path", path, "err", err)
		doc.note = fmt.Sprintf("parse failed: %v", err)
		return doc, nil
	}
	doc.engine = engine
	return doc, nil
}

// cursorFileOffset returns the file offset under the active view's cursor.
func (d *document) cursorFileOffset(lexicalActive bool) int64 {
	if lexicalActive && d.engine != nil && !d.engine.NoItemsVisible() {
		t, err := d.engine.Token(d.engine.Cursor())
		if err == nil && d.mapper != nil {
			if off, ok := d.mapper.FileOffset(t.Start); ok {
				return off
			}
		}
		return -1
	}
	return d.hex.Cursor()
}

// syncTo moves the target view's cursor to the file offset off.
func (d *document) syncTo(lexicalActive bool, off int64) {
	if off < 0 {
		return
	}
	if lexicalActive {
		if d.engine == nil || d.mapper == nil {
			return
		}
		if toff, ok := d.mapper.TextOffset(off); ok {
			if err := d.engine.GoTo(toff); err != nil {
				d.logger.Debug("cursor sync failed", "view", "lexical", "offset", off, "err", err)
			}
		}
		return
	}
	if err := d.hex.GoTo(int(off)); err != nil {
		d.logger.Debug("cursor sync failed", "view", "hex", "offset", off, "err", err)
	}
}

func (d *document) close() error {
	return d.obj.Close()
}
