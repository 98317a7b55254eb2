package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/projection"
)

func newAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts the token can read",
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

			accounts, err := c.Resolver.Accessible(cmd.Context())
			if err != nil {
				return err
			}

			batch := domain.NewBatch("id", "name", "type", "access_level", "opened_date")
			for _, acc := range accounts {
				batch.Append(acc.ID, acc.Name, acc.Type, string(acc.AccessLevel), projection.Naive(acc.OpenedDate))
			}
			return printBatch(cmd.OutOrStdout(), batch, a.output)
		},
	}
}

// accountReport fetches the batch of one account
type accountReport func(ctx context.Context, c accountsService, accountID string) (domain.Batch, error)

type accountsService interface {
	Portfolio(ctx context.Context, accountID string) (domain.Batch, error)
	Operations(ctx context.Context, accountID string) (domain.Batch, error)
	Money(ctx context.Context, accountID string) (domain.Batch, error)
}

// newAccountReportCmd builds a per-account command. Without an argument every
// accessible account is reported.
func newAccountReportCmd(a *app, use, short string, report accountReport) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [account-id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(a.output); err != nil {
				return err
			}
			c, err := a.container(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			ids := args
			if len(ids) == 0 {
				if ids, err = c.Resolver.ListAccessible(cmd.Context()); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, id := range ids {
				batch, err := report(cmd.Context(), c.Accounts, id)
				if errors.Is(err, domain.ErrNoData) {
					a.log.Info().Str("account_id", id).Msgf("No %s data", use)
					continue
				}
				if err != nil {
					return fmt.Errorf("account %s: %w", id, err)
				}
				if len(ids) > 1 && a.output == formatTable {
					fmt.Fprintf(out, "# %s\n", id)
				}
				if err := printBatch(out, batch, a.output); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPortfolioCmd(a *app) *cobra.Command {
	return newAccountReportCmd(a, "portfolio", "Show positions with commission and sell estimates",
		func(ctx context.Context, s accountsService, id string) (domain.Batch, error) {
			return s.Portfolio(ctx, id)
		})
}

func newOperationsCmd(a *app) *cobra.Command {
	return newAccountReportCmd(a, "operations", "Show the full operations history",
		func(ctx context.Context, s accountsService, id string) (domain.Batch, error) {
			return s.Operations(ctx, id)
		})
}

func newMoneyCmd(a *app) *cobra.Command {
	return newAccountReportCmd(a, "money", "Show cash balances in the reporting currency",
		func(ctx context.Context, s accountsService, id string) (domain.Batch, error) {
			return s.Money(ctx, id)
		})
}

func newRateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Show the current USD rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.container(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeContainer(c)

			rate, ok := c.Accounts.USDRate(cmd.Context())
			if !ok {
				return fmt.Errorf("USD rate unavailable")
			}
			if a.output == formatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]float64{"usd": rate})
			}
			fmt.Fprintln(cmd.OutOrStdout(), rate)
			return nil
		},
	}
}
