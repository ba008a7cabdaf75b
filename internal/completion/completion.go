package completion

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
	"github.com/comame/cli-tools/internal/logging"
	"github.com/comame/cli-tools/internal/platform"
	"github.com/comame/cli-tools/internal/registry"
	"mvdan.cc/sh/v3/syntax"
)

//go:embed templates/bash.tmpl
var templateFS embed.FS

// Verbs are the built-in verbs offered after the registered commands.
// The rm shorthand is not offered.
var Verbs = []string{
	"install", "update", "uninstall", "alias", "unalias",
	"completion", "rm-completion", "help",
}

// Generator renders and installs the completion script.
type Generator struct {
	CLIName       string
	Registry      *registry.Registry
	ScratchDir    string
	CompletionDir string
	// Owner is applied to the installed file; empty skips.
	Owner  string
	Ops    platform.Ops
	Logger *log.Logger
}

type scriptData struct {
	CLIName string
	Func    string
	Command string
	Words   string
}

// Options returns the completion words: registry names in registry order,
// then Verbs.
func Options(reg *registry.Registry) []string {
	return append(reg.Names(), Verbs...)
}

// Script renders the completion script. The result is syntax-checked as
// bash before it is returned.
func (g *Generator) Script() (string, error) {
	tmplBytes, err := fs.ReadFile(templateFS, "templates/bash.tmpl")
	if err != nil {
		return "", fmt.Errorf("reading completion template: %w", err)
	}
	tmpl, err := template.New("bash").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("parsing completion template: %w", err)
	}

	opts := Options(g.Registry)
	words := make([]string, len(opts))
	for i, w := range opts {
		if words[i], err = quote(w); err != nil {
			return "", err
		}
	}
	command, err := quote(g.CLIName)
	if err != nil {
		return "", err
	}

	data := scriptData{
		CLIName: g.CLIName,
		Func:    funcName(g.CLIName),
		Command: command,
		Words:   strings.Join(words, " "),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering completion script: %w", err)
	}

	script := buf.String()
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(script), g.CLIName+".completion"); err != nil {
		return "", fmt.Errorf("generated completion script is not valid bash: %w", err)
	}
	return script, nil
}

// Path is where the script is installed.
func (g *Generator) Path() string {
	return filepath.Join(g.CompletionDir, g.CLIName)
}

// Install writes the script to scratch space, then moves it over any
// previous script. A failed move leaves the previous script in place.
func (g *Generator) Install(ctx context.Context) error {
	logger := logging.OrDiscard(g.Logger)
	script, err := g.Script()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.ScratchDir, 0755); err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	staged := filepath.Join(g.ScratchDir, g.CLIName+".completion")
	if err := os.WriteFile(staged, []byte(script), 0644); err != nil {
		return fmt.Errorf("writing completion script: %w", err)
	}

	target := g.Path()
	if err := g.Ops.MkdirAll(ctx, g.CompletionDir); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	logger.Debug("installing completion script", "from", staged, "to", target)
	if err := g.Ops.Move(ctx, staged, target); err != nil {
		return fmt.Errorf("installing completion script: %w", err)
	}
	if g.Owner != "" {
		if err := g.Ops.Chown(ctx, target, g.Owner, false); err != nil {
			return fmt.Errorf("setting completion script owner: %w", err)
		}
	}
	return nil
}

// Remove deletes the installed script. A missing script is fine.
func (g *Generator) Remove(ctx context.Context) error {
	target := g.Path()
	if _, err := os.Lstat(target); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := g.Ops.Remove(ctx, target); err != nil {
		return fmt.Errorf("removing completion script: %w", err)
	}
	return nil
}

func quote(word string) (string, error) {
	q, err := syntax.Quote(word, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quoting %q for completion: %w", word, err)
	}
	return q, nil
}

// funcName derives a bash function name from the command name.
func funcName(cli string) string {
	var b strings.Builder
	b.WriteString("_")
	for _, r := range cli {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	b.WriteString("_complete")
	return b.String()
}
