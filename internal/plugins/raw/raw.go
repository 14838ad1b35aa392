// Package raw is the fallback format plugin. It accepts any file and offers
// only the hex view.
package raw

import (
	"fmt"

	"github.com/wilbur182/lexview/internal/filecache"
	"github.com/wilbur182/lexview/internal/plugin"
)

// Plugin accepts every file.
type Plugin struct{}

// New creates the raw plugin.
func New() *Plugin { return &Plugin{} }

func (*Plugin) ID() string { return "raw" }

func (*Plugin) Init(*plugin.Context) error { return nil }

// Validate accepts everything; register this plugin last.
func (*Plugin) Validate([]byte, string) bool { return true }

// Create implements plugin.Plugin.
func (*Plugin) Create(cache *filecache.Cache, name string) (plugin.Instance, error) {
	return &Blob{name: name, size: cache.Size()}, nil
}

// Blob is an uninterpreted file.
type Blob struct {
	name string
	size int64
}

// Name implements plugin.Instance.
func (b *Blob) Name() string {
	return fmt.Sprintf("Binary (%d bytes)", b.size)
}
