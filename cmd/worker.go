package cmd

import (
	"github.com/spf13/cobra"

	"movie-file-service/config"
	"movie-file-service/server"
)

func worker(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "start the transcode queue worker",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunWorker(config)
		},
	}
}
