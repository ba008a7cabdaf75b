package registry

import (
	"fmt"
	"path/filepath"

	"github.com/comame/cli-tools/internal/branding"
)

// Entry maps a command name to its executable path relative to the library root.
type Entry struct {
	Name string
	Path string
}

// Registry is the set of registered commands in manifest order.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	entries  []Entry
	index    map[string]int
	fallback bool
}

// New builds a registry from entries, rejecting duplicate names and paths
// that escape the library root.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("command name must not be empty")
		}
		if _, dup := r.index[e.Name]; dup {
			return nil, fmt.Errorf("command %q is defined more than once", e.Name)
		}
		if err := ValidatePath(e.Path); err != nil {
			return nil, fmt.Errorf("command %q: %w", e.Name, err)
		}
		r.index[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Fallback returns the single-entry registry that maps the tool's own name
// to its entry point.
func Fallback() *Registry {
	return &Registry{
		entries:  []Entry{BootstrapEntry()},
		index:    map[string]int{branding.CLIName(): 0},
		fallback: true,
	}
}

// BootstrapEntry is the tool's own registry entry.
func BootstrapEntry() Entry {
	return Entry{Name: branding.CLIName(), Path: branding.BootstrapPath()}
}

// ValidatePath checks that rel is a non-empty path that stays inside the
// library root once cleaned.
func ValidatePath(rel string) error {
	if rel == "" {
		return fmt.Errorf("path must not be empty")
	}
	p := filepath.FromSlash(rel)
	if filepath.IsAbs(p) || !filepath.IsLocal(p) {
		return fmt.Errorf("path %q escapes the library root", rel)
	}
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Entries returns a copy of all entries in manifest order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns the registered command names in manifest order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.entries) }

// IsFallback reports whether this registry is the bootstrap fallback.
func (r *Registry) IsFallback() bool { return r.fallback }

// Resolve returns the entry's executable path under libDir.
func (e Entry) Resolve(libDir string) string {
	return filepath.Join(libDir, filepath.FromSlash(e.Path))
}
