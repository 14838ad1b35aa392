// Package object opens files for viewing: it owns a file cache over the
// backing store and the format instance resolved through the plugin registry.
package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/wilbur182/lexview/internal/filecache"
	"github.com/wilbur182/lexview/internal/plugin"
	"github.com/wilbur182/lexview/internal/plugins/raw"
	"github.com/wilbur182/lexview/internal/plugins/text"
)

// Options configures Open.
type Options struct {
	CacheSize int // cache capacity in bytes; 0 selects the maximum
	Logger    *slog.Logger
}

// Object is an opened file. It exclusively owns its cache.
type Object struct {
	Name   string
	Path   string
	Cache  *filecache.Cache
	Format plugin.Instance
	Plugin string // ID of the plugin that created Format
}

// DefaultRegistry returns a registry with the built-in formats: text first,
// raw as the fallback.
func DefaultRegistry(ctx *plugin.Context) *plugin.Registry {
	reg := plugin.NewRegistry(ctx)
	_ = reg.Register(text.New())
	_ = reg.Register(raw.New())
	return reg
}

// Open opens the file at path and resolves its format.
func Open(path string, reg *plugin.Registry, opts Options) (*Object, error) {
	store, err := filecache.OpenFile(path)
	if err != nil {
		return nil, err
	}
	obj, err := OpenStore(store, filepath.Base(path), reg, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	obj.Path = path
	return obj, nil
}

// OpenStore builds an Object over an already opened store. The store is
// closed on failure.
func OpenStore(store filecache.Store, name string, reg *plugin.Registry, opts Options) (*Object, error) {
	cache := &filecache.Cache{}
	cache.SetLogger(opts.Logger)
	if err := cache.Init(store, opts.CacheSize); err != nil {
		store.Close()
		return nil, err
	}

	var header []byte
	if cache.Size() > 0 {
		view, err := cache.Get(0, plugin.HeaderSize)
		if err != nil {
			cache.Close()
			return nil, fmt.Errorf("read header: %w", err)
		}
		header = bytes.Clone(view)
	}

	p, err := reg.Match(header, strings.ToLower(filepath.Ext(name)))
	if err != nil {
		cache.Close()
		return nil, err
	}
	inst, err := p.Create(cache, name)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("%s plugin: %w", p.ID(), err)
	}
	if opts.Logger != nil {
		opts.Logger.Debug("object opened", "name", name, "size", cache.Size(), "format", inst.Name())
	}
	return &Object{
		Name:   name,
		Cache:  cache,
		Format: inst,
		Plugin: p.ID(),
	}, nil
}

// Size returns the file size.
func (o *Object) Size() int64 { return o.Cache.Size() }

// Text returns the format's text capability, if any.
func (o *Object) Text() (plugin.TextSource, bool) {
	ts, ok := o.Format.(plugin.TextSource)
	return ts, ok
}

// Close releases the format instance and the cache.
func (o *Object) Close() error {
	var errs []error
	if c, ok := o.Format.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, o.Cache.Close())
	return errors.Join(errs...)
}
