package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/investsync/internal/di"
	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/projection"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the run journal and the target tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := di.InitializeDatabases(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			ensurer, ok := c.Store.(domain.TableEnsurer)
			if !ok {
				return fmt.Errorf("store %T cannot create tables", c.Store)
			}
			if err := ensurer.EnsureTable(ctx, a.cfg.Sync.InstrumentsTable, projection.InstrumentColumns); err != nil {
				return err
			}
			if err := ensurer.EnsureTable(ctx, a.cfg.Sync.CandlesTable, projection.CandleColumns); err != nil {
				return err
			}

			a.log.Info().
				Str("instruments", a.cfg.Sync.InstrumentsTable).
				Str("candles", a.cfg.Sync.CandlesTable).
				Msg("Tables ready")
			return nil
		},
	}
}
