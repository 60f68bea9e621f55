package cmd

import (
	"github.com/spf13/cobra"

	"movie-file-service/config"
	"movie-file-service/server"
)

func api(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "start the upload and file lifecycle API",
		Run: func(cmd *cobra.Command, args []string) {
			server.RunAPI(config)
		},
	}
}
