package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/comame/cli-tools/internal/branding"
	"github.com/comame/cli-tools/internal/config"
	"github.com/comame/cli-tools/internal/dispatch"
	"github.com/comame/cli-tools/internal/logging"
	"github.com/comame/cli-tools/internal/platform"
	"github.com/spf13/cobra"
)

// Execute runs the dispatcher over os.Args and returns the process exit code.
func Execute(version, commit, date string) int {
	build := BuildInfo{Version: version, Commit: commit, Date: date}
	streams := Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	return Main(context.Background(), os.Args[1:], build, streams)
}

// Main loads the configuration from the config file and environment, then
// runs args. Fatal errors are printed as "Error: <message>" and exit 1.
func Main(ctx context.Context, args []string, build BuildInfo, streams Streams) int {
	cfg, err := config.Load(config.FilePath())
	if err != nil {
		printError(streams.Stderr, err)
		return 1
	}
	logger := logging.New(streams.Stderr, branding.CLIName(), cfg.LogLevel)
	return NewApp(cfg, build, streams, logger).Run(ctx, args)
}

// Run routes args and returns the exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	d := dispatch.Route(args, a.Registry)
	a.Logger.Debug("routed", "kind", d.Kind, "name", d.Name)

	switch d.Kind {
	case dispatch.Command:
		return a.runCommand(ctx, d)
	case dispatch.Verb:
		return a.runVerb(ctx, args)
	default:
		if err := a.printHelp(a.stdout); err != nil {
			printError(a.stderr, err)
			return 1
		}
		return 0
	}
}

// runCommand hands the terminal to a registered executable and reports its
// exit code as ours.
func (a *App) runCommand(ctx context.Context, d dispatch.Decision) int {
	path := d.Entry.Resolve(a.Config.LibDir)
	if _, err := os.Stat(path); err == nil && !platform.IsExecutable(path) {
		a.Logger.Warn("command is not executable, reinstall to repair", "command", d.Name, "path", path)
	}
	argv := append([]string{path}, d.Args...)
	code, err := a.Runner.Attached(ctx, argv)
	if err != nil {
		printError(a.stderr, fmt.Errorf("running %s: %w", d.Name, err))
	}
	return code
}

func (a *App) runVerb(ctx context.Context, args []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := a.newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		printError(a.stderr, err)
		return 1
	}
	return 0
}

func (a *App) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           branding.CLIName(),
		Short:         branding.Description(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetIn(a.Runner.Stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(
		a.newInstallCmd("install", "Download the latest tools and install them"),
		a.newInstallCmd("update", "Replace the installed tools with the latest version"),
		a.newUninstallCmd(),
		a.newAliasCmd(),
		a.newUnaliasCmd(),
		a.newCompletionCmd(),
		a.newRmCompletionCmd(),
	)
	root.SetHelpCommand(a.newHelpCmd())
	return root
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
