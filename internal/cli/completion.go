package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Install bash completion for registered commands and verbs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Completion.Install(cmd.Context()); err != nil {
				a.Logger.Error("could not install completion", "err", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed completion to %s\n", a.Completion.Path())
			return nil
		},
	}
}

func (a *App) newRmCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-completion",
		Short: "Remove the installed bash completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Completion.Remove(cmd.Context()); err != nil {
				a.Logger.Warn("could not remove completion", "err", err)
			}
			return nil
		},
	}
}
