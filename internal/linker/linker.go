package linker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/logging"
	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
)

var (
	// ErrUnknownCommand is returned when aliasing a name the registry lacks.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrConflict is returned when the alias path holds something other
	// than a symlink.
	ErrConflict = errors.New("alias path is occupied by a file that is not a symlink")
)

// Linker creates and removes aliases for registry entries.
type Linker struct {
	LibDir string
	BinDir string
	// Owner is applied to each new link without following it; empty skips.
	Owner    string
	Registry *registry.Registry
	Ops      platform.Ops
	Logger   *log.Logger
}

// LinkPath returns the alias path for name.
func (l *Linker) LinkPath(name string) string {
	return filepath.Join(l.BinDir, name)
}

// Alias points <bin>/<name> at the command's executable. An existing symlink
// is replaced; an existing regular file or directory is left alone and
// reported as ErrConflict.
func (l *Linker) Alias(ctx context.Context, name string) error {
	entry, ok := l.Registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return l.AliasEntry(ctx, entry)
}

// AliasEntry links entry without consulting the registry. Install uses it
// for the bootstrap command, which must be linked even when the startup
// manifest omits it.
func (l *Linker) AliasEntry(ctx context.Context, entry registry.Entry) error {
	logger := logging.OrDiscard(l.Logger)
	name := entry.Name
	link := l.LinkPath(name)
	target := entry.Resolve(l.LibDir)

	info, err := os.Lstat(link)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		logger.Debug("replacing existing link", "link", link)
		if err := l.Ops.Remove(ctx, link); err != nil {
			return fmt.Errorf("removing stale alias %s: %w", name, err)
		}
	case err == nil:
		return fmt.Errorf("%w: %s", ErrConflict, link)
	case errors.Is(err, fs.ErrNotExist):
		if err := l.Ops.MkdirAll(ctx, l.BinDir); err != nil {
			return fmt.Errorf("creating %s: %w", l.BinDir, err)
		}
	default:
		return fmt.Errorf("inspecting %s: %w", link, err)
	}

	logger.Debug("linking", "link", link, "target", target)
	if err := l.Ops.Symlink(ctx, target, link); err != nil {
		return fmt.Errorf("creating alias %s: %w", name, err)
	}
	if l.Owner != "" {
		if err := l.Ops.Chown(ctx, link, l.Owner, false); err != nil {
			if rmErr := l.Ops.Remove(ctx, link); rmErr != nil {
				logger.Warn("could not remove alias after chown failed", "link", link, "err", rmErr)
			}
			return fmt.Errorf("setting alias owner: %w", err)
		}
	}
	return nil
}

// Unalias removes the alias for name and reports whether a link was
// deleted. Names outside the registry and missing links are silently
// ignored. A non-symlink at the alias path is never removed.
func (l *Linker) Unalias(ctx context.Context, name string) (bool, error) {
	logger := logging.OrDiscard(l.Logger)
	if !l.Registry.Has(name) {
		logger.Debug("not a registered command, nothing to unalias", "name", name)
		return false, nil
	}

	link := l.LinkPath(name)
	info, err := os.Lstat(link)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspecting %s: %w", link, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		logger.Warn("leaving file that is not a symlink", "path", link)
		return false, nil
	}

	if err := l.Ops.Remove(ctx, link); err != nil {
		return false, fmt.Errorf("removing alias %s: %w", name, err)
	}
	return true, nil
}

// UnaliasAll unaliases every registry entry in registry order and returns
// how many links were deleted. Failures are logged and collected; the loop
// never stops early.
func (l *Linker) UnaliasAll(ctx context.Context) (int, []error) {
	var (
		removed int
		errs    []error
	)
	for _, name := range l.Registry.Names() {
		ok, err := l.Unalias(ctx, name)
		if err != nil {
			logging.OrDiscard(l.Logger).Warn("could not remove alias", "name", name, "err", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			removed++
		}
	}
	return removed, errs
}
