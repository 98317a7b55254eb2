package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Append new instruments or candles to the store",
	}
	cmd.AddCommand(newSyncInstrumentsCmd(a), newSyncCandlesCmd(a))
	return cmd
}

func newSyncInstrumentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "instruments",
		Short: "Append bonds, shares, ETFs and futures not yet in the instruments table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(a.output); err != nil {
				return err
			}
			c, err := a.container(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			report, err := c.Engine.SyncInstruments(cmd.Context())
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), report, a.output); perr != nil {
					return perr
				}
			}
			return err
		},
	}
}

func newSyncCandlesCmd(a *app) *cobra.Command {
	var (
		figis []string
		table string
	)

	cmd := &cobra.Command{
		Use:   "candles",
		Short: "Append candles of the last lookback window per figi",
		Long: `Append candles of the configured lookback window for each figi. A figi the
provider fails on is reported and the remaining figis are still synced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(a.output); err != nil {
				return err
			}
			c, err := a.container(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			report, err := c.Engine.SyncCandles(cmd.Context(), figis, table)
			if report != nil {
				if perr := printReport(cmd.OutOrStdout(), report, a.output); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d figis failed", failed, len(report.Items))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&figis, "figi", nil, "figi to sync (repeatable, defaults to CANDLE_FIGIS)")
	cmd.Flags().StringVar(&table, "table", "", "target table (defaults to CANDLES_TABLE)")
	return cmd
}
