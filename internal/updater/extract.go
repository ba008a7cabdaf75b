package updater

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Unpack extracts the zip archive at archivePath into dir, replacing
// anything already there, and returns the path of the archive's single
// top-level directory. Entries that would land outside dir are rejected.
func (f *Fetcher) Unpack(archivePath, dir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	tops := make(map[string]bool)
	var links []*zip.File
	for _, zf := range r.File {
		name := strings.TrimPrefix(filepath.FromSlash(zf.Name), string(filepath.Separator))
		if name == "" || filepath.Clean(name) == "." {
			continue
		}
		if !filepath.IsLocal(name) {
			return "", fmt.Errorf("archive entry %q escapes the extraction directory", zf.Name)
		}
		top, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(name)), "/")
		tops[top] = true

		// Links are created once every file and directory is in place.
		if zf.Mode()&fs.ModeSymlink != 0 {
			links = append(links, zf)
			continue
		}
		if err := extractEntry(zf, filepath.Join(dir, name)); err != nil {
			return "", err
		}
	}
	for _, zf := range links {
		name := strings.TrimPrefix(filepath.FromSlash(zf.Name), string(filepath.Separator))
		if err := extractSymlink(zf, dir, filepath.Clean(name)); err != nil {
			return "", err
		}
	}

	if len(tops) != 1 {
		return "", fmt.Errorf("archive must contain exactly one top-level directory, found %d", len(tops))
	}
	var root string
	for top := range tops {
		root = filepath.Join(dir, top)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("archive top-level entry %s is not a directory", filepath.Base(root))
	}

	f.logger.Debug("archive unpacked", "root", root, "entries", len(r.File))
	return root, nil
}

func extractEntry(zf *zip.File, dest string) error {
	mode := zf.Mode()
	if mode.IsDir() {
		return os.MkdirAll(dest, dirPerm(mode))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", zf.Name, err)
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", zf.Name, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile is subject to umask; restore the archived bits.
	return os.Chmod(dest, perm)
}

func dirPerm(mode fs.FileMode) fs.FileMode {
	if p := mode.Perm(); p != 0 {
		return p | 0700
	}
	return 0755
}

// extractSymlink recreates a symlink entry whose body is the link target.
// The link's parent must be a real directory inside dir, and the target is
// walked one component at a time so it can neither leave dir nor pass
// through another link.
func extractSymlink(zf *zip.File, dir, name string) error {
	parent := filepath.Dir(name)
	if err := checkRealPath(dir, parent); err != nil {
		return fmt.Errorf("archive link %q: %w", zf.Name, err)
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", zf.Name, err)
	}
	data, err := io.ReadAll(io.LimitReader(rc, 4096))
	rc.Close()
	if err != nil {
		return fmt.Errorf("reading link %s: %w", zf.Name, err)
	}
	target := string(data)
	if filepath.IsAbs(target) {
		return fmt.Errorf("archive link %q points to absolute path %q", zf.Name, target)
	}
	if err := checkLinkTarget(dir, filepath.Join(dir, parent), target); err != nil {
		return fmt.Errorf("archive link %q: %w", zf.Name, err)
	}

	dest := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", zf.Name, err)
	}
	if err := os.Symlink(target, dest); err != nil {
		return fmt.Errorf("creating link %s: %w", zf.Name, err)
	}
	return nil
}

// checkRealPath fails if any existing component of rel under dir is a symlink.
func checkRealPath(dir, rel string) error {
	cur := dir
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "" || part == "." {
			continue
		}
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("path crosses link %s", filepath.ToSlash(strings.TrimPrefix(cur, dir+string(filepath.Separator))))
		}
	}
	return nil
}

// checkLinkTarget resolves target from the real directory parent. Only the
// final component may be an existing link, and ".." is refused once the walk
// reaches a component that does not exist yet.
func checkLinkTarget(dir, parent, target string) error {
	var parts []string
	for _, part := range strings.Split(filepath.ToSlash(target), "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}

	cur := parent
	missing := false
	for i, part := range parts {
		if part == ".." {
			if missing {
				return errLinkEscape
			}
			cur = filepath.Dir(cur)
		} else {
			cur = filepath.Join(cur, part)
			if !missing {
				info, err := os.Lstat(cur)
				switch {
				case errors.Is(err, fs.ErrNotExist):
					missing = true
				case err != nil:
					return err
				case info.Mode()&fs.ModeSymlink != 0 && i < len(parts)-1:
					return fmt.Errorf("target passes through link %s", part)
				}
			}
		}
		if !within(dir, cur) {
			return errLinkEscape
		}
	}
	return nil
}

var errLinkEscape = errors.New("target escapes the extraction directory")

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && filepath.IsLocal(rel)
}
