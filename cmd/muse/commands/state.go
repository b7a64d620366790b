package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/muse/internal/app"
)

func (c *CLI) newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the persisted pipeline state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			return c.app.State(cmd.Context(), cmd.OutOrStdout(), app.StateOptions{
				ConfigPath: configPath,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to muse.yaml (default: discover upward from the working directory)")
	return cmd
}
