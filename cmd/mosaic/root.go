package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	cmdCtx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "mosaic",
		Short:         "Tri-state video tagging and playlist service",
		Long:          "Mosaic tags a directory of video files with tri-state labels,\nanswers label expressions over the library, and serves curated\nplaylists over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := cmdCtx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(cmdCtx))
	rootCmd.AddCommand(newQueryCommand(cmdCtx))
	rootCmd.AddCommand(newLibraryCommand(cmdCtx))
	rootCmd.AddCommand(newConfigCommand(cmdCtx))

	return rootCmd
}
