package linker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
)

// newTestLinker builds a linker over a build/lint registry with both
// scripts present in a temp library.
func newTestLinker(t *testing.T) *Linker {
	t.Helper()
	tmp := t.TempDir()
	libDir := filepath.Join(tmp, "lib")
	binDir := filepath.Join(tmp, "bin")

	for _, rel := range []string{"tools/build.sh", "tools/lint.sh"} {
		path := filepath.Join(libDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	reg, err := registry.Parse([]byte(`{"build": "tools/build.sh", "lint": "tools/lint.sh"}`))
	if err != nil {
		t.Fatal(err)
	}
	return &Linker{LibDir: libDir, BinDir: binDir, Registry: reg, Ops: platform.Native{}}
}

func TestAliasUnaliasRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := newTestLinker(t)

	if err := l.Alias(ctx, "build"); err != nil {
		t.Fatalf("Alias(build): %v", err)
	}
	target, err := os.Readlink(filepath.Join(l.BinDir, "build"))
	if err != nil {
		t.Fatalf("alias not created: %v", err)
	}
	if want := filepath.Join(l.LibDir, "tools", "build.sh"); target != want {
		t.Errorf("target = %q, want %q", target, want)
	}

	removed, err := l.Unalias(ctx, "build")
	if err != nil {
		t.Fatalf("Unalias(build): %v", err)
	}
	if !removed {
		t.Error("Unalias(build) reported nothing removed")
	}
	if _, err := os.Lstat(filepath.Join(l.BinDir, "build")); !os.IsNotExist(err) {
		t.Error("alias still present after unalias")
	}
}

func TestAliasUnknownCommand(t *testing.T) {
	l := newTestLinker(t)
	err := l.Alias(context.Background(), "missing")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v, want ErrUnknownCommand", err)
	}
	if _, err := os.Lstat(filepath.Join(l.BinDir, "missing")); !os.IsNotExist(err) {
		t.Error("alias created for unknown command")
	}
}

func TestAliasReplacesExistingLink(t *testing.T) {
	ctx := context.Background()
	l := newTestLinker(t)
	link := filepath.Join(l.BinDir, "lint")
	if err := os.MkdirAll(l.BinDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("/old/location/lint.sh", link); err != nil {
		t.Fatal(err)
	}

	if err := l.Alias(ctx, "lint"); err != nil {
		t.Fatalf("Alias(lint): %v", err)
	}
	target, _ := os.Readlink(link)
	if want := filepath.Join(l.LibDir, "tools", "lint.sh"); target != want {
		t.Errorf("target = %q, want %q", target, want)
	}
}

func TestAliasConflictWithRegularFile(t *testing.T) {
	l := newTestLinker(t)
	link := filepath.Join(l.BinDir, "build")
	if err := os.MkdirAll(l.BinDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(link, []byte("someone else's build"), 0755); err != nil {
		t.Fatal(err)
	}

	err := l.Alias(context.Background(), "build")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if data, _ := os.ReadFile(link); string(data) != "someone else's build" {
		t.Error("existing file was modified")
	}
}

func TestUnaliasIsNoOpForUnknownAndMissing(t *testing.T) {
	ctx := context.Background()
	l := newTestLinker(t)

	if removed, err := l.Unalias(ctx, "not-registered"); err != nil || removed {
		t.Errorf("Unalias(unknown) = %v, %v", removed, err)
	}
	if removed, err := l.Unalias(ctx, "lint"); err != nil || removed {
		t.Errorf("Unalias(never aliased) = %v, %v", removed, err)
	}
}

func TestUnaliasLeavesRegularFile(t *testing.T) {
	l := newTestLinker(t)
	path := filepath.Join(l.BinDir, "build")
	if err := os.MkdirAll(l.BinDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0755); err != nil {
		t.Fatal(err)
	}

	removed, err := l.Unalias(context.Background(), "build")
	if err != nil {
		t.Fatalf("Unalias: %v", err)
	}
	if removed {
		t.Error("Unalias reported a regular file as removed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("regular file removed: %v", err)
	}
}

type flakyOps struct {
	platform.Native
	failRemove string
}

func (f *flakyOps) Remove(ctx context.Context, path string) error {
	if filepath.Base(path) == f.failRemove {
		return &platform.PermissionError{Op: "remove", Path: path, Err: os.ErrPermission}
	}
	return f.Native.Remove(ctx, path)
}

type chownFailOps struct {
	platform.Native
}

func (chownFailOps) Chown(_ context.Context, path, _ string, _ bool) error {
	return &platform.PermissionError{Op: "chown", Path: path, Err: os.ErrPermission}
}

func TestAliasRemovesLinkWhenChownFails(t *testing.T) {
	l := newTestLinker(t)
	l.Owner = "root:root"
	l.Ops = chownFailOps{}

	err := l.Alias(context.Background(), "build")
	if !errors.Is(err, platform.ErrPermissionDenied) {
		t.Fatalf("Alias err = %v, want ErrPermissionDenied", err)
	}
	if _, err := os.Lstat(filepath.Join(l.BinDir, "build")); !os.IsNotExist(err) {
		t.Error("alias left in place after chown failed")
	}
}

func TestUnaliasAllContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	l := newTestLinker(t)
	for _, name := range []string{"build", "lint"} {
		if err := l.Alias(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	l.Ops = &flakyOps{failRemove: "build"}
	removed, errs := l.UnaliasAll(ctx)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	if !errors.Is(errs[0], platform.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", errs[0])
	}
	if _, err := os.Lstat(filepath.Join(l.BinDir, "lint")); !os.IsNotExist(err) {
		t.Error("lint alias not removed after build failed")
	}
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	l := newTestLinker(t)
	if err := l.Alias(ctx, "build"); err != nil {
		t.Fatal(err)
	}

	got := l.Status()
	want := []State{Linked, Missing}
	if len(got) != len(want) {
		t.Fatalf("Status() returned %d entries, want %d", len(got), len(want))
	}
	for i, st := range got {
		if st.State != want[i] {
			t.Errorf("%s: state = %s, want %s", st.Name, st.State, want[i])
		}
	}

	if err := os.Remove(filepath.Join(l.LibDir, "tools", "build.sh")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(l.BinDir, "lint"), nil, 0755); err != nil {
		t.Fatal(err)
	}
	got = l.Status()
	if got[0].State != Dangling {
		t.Errorf("build: state = %s, want dangling", got[0].State)
	}
	if got[1].State != Foreign {
		t.Errorf("lint: state = %s, want foreign", got[1].State)
	}
}

func TestAliasEntryOutsideRegistry(t *testing.T) {
	l := newTestLinker(t)
	entry := registry.BootstrapEntry()

	if err := l.AliasEntry(context.Background(), entry); err != nil {
		t.Fatalf("AliasEntry: %v", err)
	}
	target, err := os.Readlink(filepath.Join(l.BinDir, entry.Name))
	if err != nil {
		t.Fatalf("bootstrap alias not created: %v", err)
	}
	if want := filepath.Join(l.LibDir, entry.Path); target != want {
		t.Errorf("target = %q, want %q", target, want)
	}
}
