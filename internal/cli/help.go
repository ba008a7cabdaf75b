package cli

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/comame/cli-tools/internal/branding"
	"github.com/spf13/cobra"
)

//go:embed help.txt
var helpText string

var helpTmpl = template.Must(template.New("help").Parse(helpText))

func (a *App) newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show help",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printHelp(cmd.OutOrStdout())
		},
	}
}

// printHelp writes the usage text followed by a footer listing the
// registered commands with their alias state, and the build.
func (a *App) printHelp(w io.Writer) error {
	data := struct {
		Name        string
		DisplayName string
		Description string
		BinDir      string
		Repo        string
	}{branding.CLIName(), branding.DisplayName(), branding.Description(), a.Config.BinDir, branding.GitHubRepo()}
	if err := helpTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering help: %w", err)
	}

	p := newPrinter()
	fmt.Fprintln(w)
	if a.Registry.IsFallback() {
		fmt.Fprintf(w, "Not installed yet. Run '%s install'.\n", branding.CLIName())
	} else {
		p.Fprintf(w, msgRegistered, a.Registry.Len())
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, st := range a.Linker.Status() {
			fmt.Fprintf(tw, "  %s\t%s\n", st.Name, st.State)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, versionString(a.Build))
	return nil
}

func versionString(b BuildInfo) string {
	v := strings.TrimSpace(b.Version)
	if v == "" || v == "dev" {
		return branding.CLIName() + " dev (built from source)"
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", branding.CLIName(), v, b.Commit, b.Date)
}
