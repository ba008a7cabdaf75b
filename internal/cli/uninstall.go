package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the library and every alias",
		Long: `Remove every alias of a registered command, then the library directory.
Failures are reported as warnings; uninstall always finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			removed, _ := a.Linker.UnaliasAll(ctx)

			if err := a.Installer.RemoveLibrary(ctx); err != nil {
				a.Logger.Warn("could not remove library", "dir", a.Config.LibDir, "err", err)
			}

			p := newPrinter()
			p.Fprintf(cmd.OutOrStdout(), msgUnaliased, removed)
			p.Fprintf(cmd.OutOrStdout(), msgRemovedLibrary, a.Config.LibDir)
			return nil
		},
	}
}
