package platform

import (
	"context"
	"fmt"

	"github.com/comame/cli-tools/internal/runtime"
)

// Privileged runs every mutation as a coreutils command behind Prefix
// (for example ["sudo"]). Any non-zero exit is reported as a
// PermissionError: elevation is only chosen when the current user lacks
// the rights, so refusal is the expected failure mode.
type Privileged struct {
	Prefix []string
	Runner Silencer
}

var _ Ops = (*Privileged)(nil)

func (p *Privileged) MkdirAll(ctx context.Context, path string) error {
	return p.run(ctx, "mkdir", path, "mkdir", "-p", "--", path)
}

func (p *Privileged) RemoveAll(ctx context.Context, path string) error {
	return p.run(ctx, "remove", path, "rm", "-rf", "--", path)
}

func (p *Privileged) Move(ctx context.Context, src, dst string) error {
	// -T treats dst as the final name instead of moving src inside it.
	return p.run(ctx, "move", src, "mv", "-T", "--", src, dst)
}

func (p *Privileged) Chown(ctx context.Context, path, owner string, recursive bool) error {
	if recursive {
		return p.run(ctx, "chown", path, "chown", "-R", "-P", "--", owner, path)
	}
	return p.run(ctx, "chown", path, "chown", "-h", "--", owner, path)
}

func (p *Privileged) MarkExecutable(ctx context.Context, path string) error {
	return p.run(ctx, "chmod", path, "chmod", "a+x", "--", path)
}

func (p *Privileged) Symlink(ctx context.Context, target, link string) error {
	return p.run(ctx, "symlink", link, "ln", "-s", "--", target, link)
}

func (p *Privileged) Remove(ctx context.Context, path string) error {
	return p.run(ctx, "remove", path, "rm", "-f", "--", path)
}

func (p *Privileged) run(ctx context.Context, op, path string, argv ...string) error {
	full := make([]string, 0, len(p.Prefix)+len(argv))
	full = append(full, p.Prefix...)
	full = append(full, argv...)

	code, err := p.Runner.Silent(ctx, "", full)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
	if code != 0 {
		return &PermissionError{
			Op:   op,
			Path: path,
			Err:  fmt.Errorf("%s exited with status %d", runtime.FormatCommand(full), code),
		}
	}
	return nil
}
