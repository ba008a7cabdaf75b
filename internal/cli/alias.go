package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newAliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <name>",
		Short: "Link a registered command into the binary directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := a.Linker.Alias(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s\n", a.Linker.LinkPath(name))
			return nil
		},
	}
}

func (a *App) newUnaliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unalias <name>...",
		Aliases: []string{"rm"},
		Short:   "Remove the link for a registered command",
		Long: `Remove the link for each named command. Names that are not registered,
and commands that were never linked, are ignored.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, err := a.Linker.Unalias(cmd.Context(), name); err != nil {
					a.Logger.Warn("could not remove alias", "name", name, "err", err)
				}
			}
			return nil
		},
	}
}
