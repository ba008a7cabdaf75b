package completion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
	"mvdan.cc/sh/v3/syntax"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	reg, err := registry.Parse([]byte(`{"build": "tools/build.sh", "lint": "tools/lint.sh"}`))
	if err != nil {
		t.Fatal(err)
	}
	tmp := t.TempDir()
	return &Generator{
		CLIName:       "cli-tools",
		Registry:      reg,
		ScratchDir:    filepath.Join(tmp, "scratch"),
		CompletionDir: filepath.Join(tmp, "etc", "bash_completion.d"),
		Ops:           platform.Native{},
	}
}

func TestOptionsOrder(t *testing.T) {
	g := newTestGenerator(t)
	got := strings.Join(Options(g.Registry), " ")
	want := "build lint install update uninstall alias unalias completion rm-completion help"
	if got != want {
		t.Errorf("Options() = %q, want %q", got, want)
	}
}

func TestScript(t *testing.T) {
	g := newTestGenerator(t)
	script, err := g.Script()
	if err != nil {
		t.Fatalf("Script: %v", err)
	}

	wantWords := "words=(build lint install update uninstall alias unalias completion rm-completion help)"
	if !strings.Contains(script, wantWords) {
		t.Errorf("script missing %q:\n%s", wantWords, script)
	}
	if !strings.Contains(script, "complete -F _cli_tools_complete cli-tools") {
		t.Errorf("script missing complete registration:\n%s", script)
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "completion"); err != nil {
		t.Errorf("script does not parse: %v", err)
	}
}

func TestScriptIsDeterministic(t *testing.T) {
	g := newTestGenerator(t)
	first, err := g.Script()
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Script()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Script() output differs between calls")
	}
}

func TestScriptFallbackRegistry(t *testing.T) {
	g := newTestGenerator(t)
	g.Registry = registry.Fallback()
	script, err := g.Script()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "words=(cli-tools install ") {
		t.Errorf("fallback script does not start with the bootstrap command:\n%s", script)
	}
}

func TestInstallAndRemove(t *testing.T) {
	ctx := context.Background()
	g := newTestGenerator(t)

	if err := g.Install(ctx); err != nil {
		t.Fatalf("Install: %v", err)
	}
	data, err := os.ReadFile(g.Path())
	if err != nil {
		t.Fatalf("installed script missing: %v", err)
	}
	if !strings.Contains(string(data), "build lint") {
		t.Errorf("installed script content unexpected:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(g.ScratchDir, "cli-tools.completion")); !os.IsNotExist(err) {
		t.Error("staged script left in scratch")
	}

	// Reinstalling regenerates in place.
	if err := g.Install(ctx); err != nil {
		t.Fatalf("second Install: %v", err)
	}

	if err := g.Remove(ctx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(g.Path()); !os.IsNotExist(err) {
		t.Error("script still installed after Remove")
	}
	if err := g.Remove(ctx); err != nil {
		t.Errorf("Remove with nothing installed: %v", err)
	}
}

type moveFailOps struct {
	platform.Native
}

func (moveFailOps) Move(_ context.Context, src, _ string) error {
	return &platform.PermissionError{Op: "move", Path: src, Err: os.ErrPermission}
}

func TestInstallKeepsPreviousScriptWhenMoveFails(t *testing.T) {
	ctx := context.Background()
	g := newTestGenerator(t)
	if err := os.MkdirAll(g.CompletionDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(g.Path(), []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	g.Ops = moveFailOps{}
	if err := g.Install(ctx); err == nil {
		t.Fatal("expected error")
	}
	data, err := os.ReadFile(g.Path())
	if err != nil {
		t.Fatalf("previous script removed: %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("script = %q, want the previous one", data)
	}
}

func TestFuncName(t *testing.T) {
	tests := map[string]string{
		"cli-tools": "_cli_tools_complete",
		"ct":        "_ct_complete",
		"my.tool":   "_my_tool_complete",
	}
	for in, want := range tests {
		if got := funcName(in); got != want {
			t.Errorf("funcName(%q) = %q, want %q", in, got, want)
		}
	}
}
