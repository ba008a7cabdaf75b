package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CreateSymlink creates link pointing at target. An existing symlink at link
// is replaced; any other existing file is left alone and reported.
func CreateSymlink(target, link string) error {
	err := os.Symlink(target, link)
	if err == nil || !errors.Is(err, fs.ErrExist) {
		return err
	}
	isLink, lerr := IsSymlink(link)
	if lerr != nil {
		return lerr
	}
	if !isLink {
		return fmt.Errorf("%s exists and is not a symlink: %w", link, fs.ErrExist)
	}
	if err := os.Remove(link); err != nil {
		return err
	}
	return os.Symlink(target, link)
}

// ReadSymlinkTarget returns the target of a symlink.
func ReadSymlinkTarget(path string) (string, error) {
	return os.Readlink(path)
}

// IsSymlink reports whether path is itself a symlink. A missing path returns
// an error wrapping fs.ErrNotExist.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}
