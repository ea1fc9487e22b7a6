package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/logger"
)

// WorkArea is the run's working directory. Stage outputs, captured logs and
// resource links live directly in it; the engine's transient scratch space
// lives in its "work" subdirectory, which is removed when the run ends unless
// the job is in debug mode.
type WorkArea struct {
	root   string
	keep   bool
	logger *logger.Logger
}

// NewWorkArea creates a work area rooted at dir. When keep is true, Cleanup
// leaves the scratch directory in place for inspection.
func NewWorkArea(dir string, keep bool, log *logger.Logger) *WorkArea {
	return &WorkArea{
		root:   NormalizePath(dir),
		keep:   keep,
		logger: log,
	}
}

// EnsureBaseDir ensures the working directory exists
func (w *WorkArea) EnsureBaseDir() error {
	return EnsureDir(w.root)
}

// GetPath returns a path under the working directory
func (w *WorkArea) GetPath(relativePath string) string {
	return NormalizePath(filepath.Join(w.root, relativePath))
}

// ScratchDir returns the engine's transient work directory
func (w *WorkArea) ScratchDir() string {
	return w.GetPath(constants.ScratchDirName)
}

// CreateStageDir creates the output directory for a stage. A relative name
// is taken relative to the working directory.
func (w *WorkArea) CreateStageDir(name string) (string, error) {
	dir := NormalizePath(name)
	if !filepath.IsAbs(dir) {
		dir = w.GetPath(name)
	}
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create stage directory: %w", err)
	}
	w.logger.Debug("Created stage directory: %s", dir)
	return dir, nil
}

// Cleanup removes the scratch directory unless the area is kept
func (w *WorkArea) Cleanup() error {
	scratch := w.ScratchDir()
	if w.keep {
		w.logger.Info("Debug mode: keeping work area %s", scratch)
		return nil
	}
	if err := os.RemoveAll(scratch); err != nil {
		w.logger.Warn("Failed to remove work area: %s, error: %v", scratch, err)
		return fmt.Errorf("failed to remove work area %s: %w", scratch, err)
	}
	w.logger.Debug("Removed work area: %s", scratch)
	return nil
}
