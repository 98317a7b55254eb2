package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/investsync/internal/config"
	"github.com/aristath/investsync/internal/di"
	"github.com/aristath/investsync/pkg/logger"
)

// app carries state shared by every command
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	output string

	// wire builds the container; replaced in tests
	wire func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*di.Container, error)
}

func newRootCmd() *cobra.Command {
	a := &app{wire: di.Wire}
	var logLevel string

	root := &cobra.Command{
		Use:   "investsync",
		Short: "Incremental brokerage data sync into a columnar store",
		Long: `investsync reads instruments, candles and account data from the brokerage
REST gateway and appends rows that the target store does not hold yet.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			a.cfg = cfg
			a.log = logger.New(logger.Config{
				Level:  cfg.LogLevel,
				Pretty: cfg.LogPretty,
				Output: os.Stderr,
			})
			logger.SetGlobalLogger(a.log)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatTable, "output format: table or json")

	root.AddCommand(
		newSyncCmd(a),
		newAccountsCmd(a),
		newPortfolioCmd(a),
		newOperationsCmd(a),
		newMoneyCmd(a),
		newRateCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// container wires every dependency after checking the provider token
func (a *app) container(ctx context.Context) (*di.Container, error) {
	if err := a.cfg.RequireToken(); err != nil {
		return nil, err
	}
	return a.wire(ctx, a.cfg, a.log)
}

func (a *app) closeContainer(c *di.Container) {
	if err := c.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close resources")
	}
}
