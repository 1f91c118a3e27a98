package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/planfirst/internal/config"
	"github.com/pablasso/planfirst/internal/plan"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by commands that need a .planfirst directory.
var ErrNotInitialized = errors.New("planfirst is not initialized. Run 'planfirst init' first")

// Env is what every command needs to know about the invocation. The root
// command fills it in before any subcommand runs.
type Env struct {
	Root   string
	Config *config.Config
	Logger *zap.Logger
	Fs     afero.Fs
}

// NewEnv returns an Env for root with default configuration, a no-op logger
// and the OS file system.
func NewEnv(root string) *Env {
	cfg := config.Default()
	return &Env{
		Root:   root,
		Config: &cfg,
		Logger: zap.NewNop(),
		Fs:     afero.NewOsFs(),
	}
}

// FindRoot walks up from start looking for a .planfirst directory and
// returns the directory containing it.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, plan.Dir)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialized
		}
		dir = parent
	}
}

// IsInitialized reports whether the project root has a .planfirst directory.
func (e *Env) IsInitialized() bool {
	info, err := os.Stat(filepath.Join(e.Root, plan.Dir))
	return err == nil && info.IsDir()
}

// RequireInitialized returns ErrNotInitialized when the project has no
// .planfirst directory.
func (e *Env) RequireInitialized() error {
	if !e.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// LoadPlan resolves a plan reference and loads it.
func (e *Env) LoadPlan(ref string) (string, *plan.Plan, error) {
	if err := e.RequireInitialized(); err != nil {
		return "", nil, err
	}
	dir, err := plan.FindPlanFolder(e.Root, ref)
	if err != nil {
		return "", nil, err
	}
	p, err := plan.LoadPlan(dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load plan %s: %w", ref, err)
	}
	return dir, p, nil
}
