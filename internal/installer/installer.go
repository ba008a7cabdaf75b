package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/logging"
	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
)

// Installer owns the library directory.
type Installer struct {
	LibDir string
	// Owner is applied recursively after install; empty skips the step.
	Owner string
	// Registry is the registry loaded at startup. Its entries are the ones
	// marked executable, even when the new tree ships a different manifest.
	Registry *registry.Registry
	Ops      platform.Ops
	Logger   *log.Logger
}

// InstallFrom makes extractedRoot the library directory. The previous
// library is removed first, so a failure after that point leaves no library
// rather than a stale one. Marking commands executable is best effort.
func (i *Installer) InstallFrom(ctx context.Context, extractedRoot string) error {
	logger := logging.OrDiscard(i.Logger)

	if err := i.RemoveLibrary(ctx); err != nil {
		return err
	}

	if err := i.Ops.MkdirAll(ctx, filepath.Dir(i.LibDir)); err != nil {
		return fmt.Errorf("creating library parent: %w", err)
	}
	logger.Debug("moving library into place", "from", extractedRoot, "to", i.LibDir)
	if err := i.Ops.Move(ctx, extractedRoot, i.LibDir); err != nil {
		return fmt.Errorf("installing library: %w", err)
	}

	if i.Owner != "" {
		if err := i.Ops.Chown(ctx, i.LibDir, i.Owner, true); err != nil {
			return fmt.Errorf("setting library owner: %w", err)
		}
	}

	for _, e := range i.Registry.Entries() {
		path := e.Resolve(i.LibDir)
		if err := i.Ops.MarkExecutable(ctx, path); err != nil {
			logger.Warn("could not mark command executable", "command", e.Name, "path", path, "err", err)
		}
	}
	return nil
}

// RemoveLibrary deletes the library directory. A missing library is fine.
func (i *Installer) RemoveLibrary(ctx context.Context) error {
	logging.OrDiscard(i.Logger).Debug("removing library", "dir", i.LibDir)
	if err := i.Ops.RemoveAll(ctx, i.LibDir); err != nil {
		return fmt.Errorf("removing library: %w", err)
	}
	return nil
}
