package cmd

import (
	"github.com/spf13/cobra"

	"movie-file-service/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{}
	rootCmd.AddCommand(api(config))
	rootCmd.AddCommand(worker(config))
	return rootCmd
}
