package main

import (
	"github.com/spf13/cobra"

	"github.com/govalyteams/sheetdesk/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the sheetdesk API server",
	Long: `Starts the sheetdesk API server. Configuration is read from the
environment (PORT, JWT_SECRET, STORE_BACKEND, MONGO_URI, REDIS_ADDR, ...).

	sheetdesk serve
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := setup(ctx)
		if err != nil {
			return err
		}

		srv, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
