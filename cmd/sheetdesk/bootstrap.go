package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govalyteams/sheetdesk/internal/app"
	"github.com/govalyteams/sheetdesk/internal/pkg/config"
	"github.com/govalyteams/sheetdesk/pkg/logger"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Creates the first CEO account when none exists",
	Long: `Creates the first CEO account in an empty identity store. It does
nothing if any account already exists.

	sheetdesk bootstrap --username root --password secret
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		ctx := cmd.Context()
		cfg, _, err := setup(ctx)
		if err != nil {
			return err
		}
		if cfg.Store.Backend == config.BackendMemory {
			return errors.New("bootstrap needs a persistent store, set STORE_BACKEND=mongo")
		}
		if username == "" {
			username = cfg.Bootstrap.Username
		}
		if password == "" {
			password = cfg.Bootstrap.Password
		}
		// New would bootstrap on its own; do it explicitly instead.
		cfg.Bootstrap = config.BootstrapConfig{}

		a, err := app.New(ctx, cfg, logger.Component("bootstrap"))
		if err != nil {
			return err
		}
		defer func() { _ = a.Close(ctx) }()

		account, created, err := a.Bootstrap(ctx, username, password)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintln(cmd.OutOrStdout(), "accounts already exist, nothing to do")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created CEO %s (%s)\n", account.Username, account.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().String("username", "", "username of the CEO account (default $BOOTSTRAP_USERNAME)")
	bootstrapCmd.Flags().String("password", "", "password of the CEO account (default $BOOTSTRAP_PASSWORD)")
}
