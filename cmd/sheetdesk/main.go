package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/govalyteams/sheetdesk/internal/pkg/config"
	"github.com/govalyteams/sheetdesk/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "sheetdesk",
	Short:         "Role-gated catalog of shared spreadsheets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sheetdesk: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// setup loads configuration from the environment and initialises the
// process logger from it.
func setup(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "sheetdesk",
	})
	return cfg, log, nil
}
