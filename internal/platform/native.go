package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

// Native performs mutations with direct system calls as the current user.
type Native struct{}

var _ Ops = Native{}

func (Native) MkdirAll(_ context.Context, path string) error {
	return classify("mkdir", path, os.MkdirAll(path, 0755))
}

func (Native) RemoveAll(_ context.Context, path string) error {
	return classify("remove", path, os.RemoveAll(path))
}

func (Native) Move(_ context.Context, src, dst string) error {
	if info, err := os.Lstat(dst); err == nil && info.IsDir() {
		return fmt.Errorf("move %s: destination %s is an existing directory", src, dst)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	// Scratch space often lives on a different filesystem (tmpfs).
	if !errors.Is(err, syscall.EXDEV) {
		return classify("move", src, err)
	}
	partial := dst + ".partial"
	_ = os.RemoveAll(partial)
	if err := copyTree(src, partial); err != nil {
		_ = os.RemoveAll(partial)
		return classify("copy", src, err)
	}
	if err := os.Rename(partial, dst); err != nil {
		_ = os.RemoveAll(partial)
		return classify("move", partial, err)
	}
	return classify("remove", src, os.RemoveAll(src))
}

func (Native) Chown(_ context.Context, path, owner string, recursive bool) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	uid, gid, err := LookupOwner(owner)
	if err != nil {
		return err
	}
	if !recursive {
		return classify("chown", path, os.Lchown(path, uid, gid))
	}
	return filepath.WalkDir(path, func(p string, _ fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return classify("chown", p, walkErr)
		}
		return classify("chown", p, os.Lchown(p, uid, gid))
	})
}

func (Native) MarkExecutable(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return classify("chmod", path, err)
	}
	return classify("chmod", path, Chmod(path, info.Mode().Perm()|0111))
}

func (Native) Symlink(_ context.Context, target, link string) error {
	return classify("symlink", link, CreateSymlink(target, link))
}

func (Native) Remove(_ context.Context, path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return classify("remove", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("remove %s: is a directory", path)
	}
	return classify("remove", path, os.Remove(path))
}

// LookupOwner resolves "user:group", "user" or ":group" to numeric ids.
// Numeric names are accepted as-is; an omitted part resolves to -1 (unchanged).
func LookupOwner(owner string) (uid, gid int, err error) {
	uid, gid = -1, -1
	name, group, _ := strings.Cut(owner, ":")
	if name == "" && group == "" {
		return 0, 0, fmt.Errorf("invalid owner %q", owner)
	}

	if name != "" {
		if uid, err = strconv.Atoi(name); err != nil {
			u, lookupErr := user.Lookup(name)
			if lookupErr != nil {
				return 0, 0, fmt.Errorf("resolving user %q: %w", name, lookupErr)
			}
			if uid, err = strconv.Atoi(u.Uid); err != nil {
				return 0, 0, fmt.Errorf("user %q has non-numeric uid %q", name, u.Uid)
			}
		}
	}
	if group != "" {
		if gid, err = strconv.Atoi(group); err != nil {
			g, lookupErr := user.LookupGroup(group)
			if lookupErr != nil {
				return 0, 0, fmt.Errorf("resolving group %q: %w", group, lookupErr)
			}
			if gid, err = strconv.Atoi(g.Gid); err != nil {
				return 0, 0, fmt.Errorf("group %q has non-numeric gid %q", group, g.Gid)
			}
		}
	}
	return uid, gid, nil
}

// classify wraps err with the operation, promoting permission failures to
// PermissionError.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return &PermissionError{Op: op, Path: path, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, path, err)
}

// copyTree recursively copies src to dst keeping modes and symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(p)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(p, target, info.Mode().Perm())
		}
		// Sockets, devices and pipes have no place in a snapshot.
		return nil
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
