package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/comame/cli-tools/internal/branding"
	"github.com/comame/cli-tools/internal/registry"
	"github.com/spf13/cobra"
)

// newInstallCmd builds install and update, which are the same operation:
// fetch, unpack, tear down the old install, install the new tree and link
// the bootstrap command.
func (a *App) newInstallCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

The archive is downloaded and unpacked in scratch space first. Nothing
installed is touched until that succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.install(cmd.Context(), cmd)
		},
	}
}

func (a *App) install(ctx context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	cli := branding.CLIName()
	scratch := a.Config.ScratchDir
	archive := filepath.Join(scratch, cli+"-download.zip")
	extractDir := filepath.Join(scratch, "extract")
	defer a.cleanScratch(archive, extractDir)

	fmt.Fprintf(out, "Downloading %s\n", a.Config.ArchiveURL)
	if err := a.Fetcher.Fetch(ctx, a.Config.ArchiveURL, archive); err != nil {
		return err
	}
	root, err := a.Fetcher.Unpack(archive, extractDir)
	if err != nil {
		return fmt.Errorf("unpacking archive: %w", err)
	}

	// Aliases come down before the library so none is left dangling.
	a.Linker.UnaliasAll(ctx)
	if err := a.Installer.InstallFrom(ctx, root); err != nil {
		return err
	}

	bootstrap := a.bootstrapEntry()
	if err := a.Linker.AliasEntry(ctx, bootstrap); err != nil {
		return err
	}

	fmt.Fprintf(out, "Installed %s to %s\n", cli, a.Config.LibDir)
	fmt.Fprintf(out, "Linked %s\n", a.Linker.LinkPath(bootstrap.Name))
	return nil
}

// bootstrapEntry is the startup registry's entry for the dispatcher itself,
// or the built-in default when the manifest does not list it.
func (a *App) bootstrapEntry() registry.Entry {
	def := registry.BootstrapEntry()
	if e, ok := a.Registry.Lookup(def.Name); ok {
		return e
	}
	return def
}

func (a *App) cleanScratch(paths ...string) {
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			a.Logger.Debug("leaving scratch file", "path", p, "err", err)
		}
	}
}
