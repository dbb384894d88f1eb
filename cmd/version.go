package cmd

import (
	"github.com/spf13/cobra"

	"github.com/webbreaker/webinspect/version"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the version",
		Args:  cobra.NoArgs,
		// The version doesn't need a config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			version.PrintVersion(cmd.OutOrStdout())
		},
	}
}
