package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/muse/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the configured directories and track assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			once, _ := cmd.Flags().GetBool("once")
			quiet, _ := cmd.Flags().GetBool("quiet")

			return c.app.Run(cmd.Context(), app.RunOptions{
				ConfigPath: configPath,
				Once:       once,
				Quiet:      quiet,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to muse.yaml (default: discover upward from the working directory)")
	cmd.Flags().Bool("once", false, "Reconcile with the directory contents and exit instead of watching")
	cmd.Flags().BoolP("quiet", "q", false, "Move log output into .muse/debug.log")
	return cmd
}
