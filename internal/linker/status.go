package linker

import (
	"os"
	"path/filepath"

	"github.com/comame/cli-tools/internal/platform"
)

// State describes what is found at an alias path.
type State int

const (
	// Missing means nothing exists at the alias path.
	Missing State = iota
	// Linked means a symlink points at the command's executable.
	Linked
	// Dangling means the symlink is ours but the executable is absent.
	Dangling
	// Foreign means a regular file, or a symlink pointing elsewhere.
	Foreign
)

func (s State) String() string {
	switch s {
	case Linked:
		return "linked"
	case Dangling:
		return "dangling"
	case Foreign:
		return "foreign"
	default:
		return "missing"
	}
}

// AliasStatus is the observed state of one registry entry's alias.
type AliasStatus struct {
	Name   string
	Link   string
	Target string
	State  State
}

// Status reports the alias state of every registry entry, in registry order.
func (l *Linker) Status() []AliasStatus {
	entries := l.Registry.Entries()
	out := make([]AliasStatus, 0, len(entries))
	for _, e := range entries {
		st := AliasStatus{Name: e.Name, Link: l.LinkPath(e.Name), Target: e.Resolve(l.LibDir)}
		st.State = inspect(st.Link, st.Target)
		out = append(out, st)
	}
	return out
}

func inspect(link, want string) State {
	got, err := platform.ReadSymlinkTarget(link)
	if err != nil {
		if _, statErr := os.Lstat(link); statErr == nil {
			return Foreign
		}
		return Missing
	}
	if !filepath.IsAbs(got) {
		got = filepath.Join(filepath.Dir(link), got)
	}
	if filepath.Clean(got) != filepath.Clean(want) {
		return Foreign
	}
	if _, err := os.Stat(want); err != nil {
		return Dangling
	}
	return Linked
}
