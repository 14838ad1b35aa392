package plugin

import (
	"log/slog"

	"github.com/wilbur182/lexview/internal/config"
)

// Context provides shared resources to plugins during initialization.
type Context struct {
	Config *config.Config
	Logger *slog.Logger
}
