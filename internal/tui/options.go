package tui

import (
	"github.com/pablasso/planfirst/internal/config"
	"go.uber.org/zap"
)

// Options configures TUI startup.
type Options struct {
	// Root is the project root holding .planfirst/. An empty root, or one
	// without .planfirst/, shows the not-initialized screen.
	Root string

	Config *config.Config
	Logger *zap.Logger
}
