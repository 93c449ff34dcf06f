package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"

	"github.com/slacklinehq/slackline/internal/app"
	"github.com/slacklinehq/slackline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "slackline",
	Short:         "Real-time chat backend with live query push",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
