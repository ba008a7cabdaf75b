package platform

import (
	"context"
	"errors"
	"fmt"
)

// ErrPermissionDenied classifies mutations refused for lack of privilege.
var ErrPermissionDenied = errors.New("permission denied")

// PermissionError reports a mutation that failed for lack of privilege.
// errors.Is(err, ErrPermissionDenied) holds for it.
type PermissionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Is makes PermissionError match ErrPermissionDenied.
func (e *PermissionError) Is(target error) bool { return target == ErrPermissionDenied }

// Ops is the set of mutations the installer, linker and completion
// generator need. Paths are absolute.
type Ops interface {
	// MkdirAll creates path and any missing parents.
	MkdirAll(ctx context.Context, path string) error
	// RemoveAll removes path recursively. A missing path is not an error.
	RemoveAll(ctx context.Context, path string) error
	// Move renames src to dst. An existing file at dst is replaced; an
	// existing directory is not.
	Move(ctx context.Context, src, dst string) error
	// Chown sets ownership to owner ("user:group", "user" or ":group")
	// without following symlinks.
	Chown(ctx context.Context, path, owner string, recursive bool) error
	// MarkExecutable adds execute permission for everyone.
	MarkExecutable(ctx context.Context, path string) error
	// Symlink creates link pointing at target.
	Symlink(ctx context.Context, target, link string) error
	// Remove deletes a single file or symlink. A missing path is not an error.
	Remove(ctx context.Context, path string) error
}

// Silencer runs a command quietly and reports its exit code.
// runtime.Runner satisfies it.
type Silencer interface {
	Silent(ctx context.Context, dir string, argv []string) (int, error)
}

// New returns the Ops implementation for the requested privilege level.
func New(elevate bool, prefix []string, runner Silencer) Ops {
	if elevate {
		return &Privileged{Prefix: prefix, Runner: runner}
	}
	return Native{}
}
