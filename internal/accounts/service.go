package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/money"
	"github.com/aristath/investsync/internal/projection"
)

// HistoryStart is the earliest date requested for operation history.
var HistoryStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// Service builds portfolio, operation and cash reports. Each call samples
// its own exchange rate; reports are transient and never persisted.
type Service struct {
	provider domain.AccountsProvider
	rates    domain.RateSource
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new account report service
func NewService(provider domain.AccountsProvider, rates domain.RateSource, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		rates:    rates,
		now:      time.Now,
		log:      log.With().Str("service", "accounts").Logger(),
	}
}

func (s *Service) projector() *projection.Projector {
	rates := money.NewRates(s.rates, s.log)
	return projection.NewProjector(money.NewNormalizer(rates, s.log))
}

// Portfolio returns the holdings of accountID in reporting currency.
// domain.ErrNoData is returned for an empty portfolio.
func (s *Service) Portfolio(ctx context.Context, accountID string) (domain.Batch, error) {
	positions, err := s.provider.GetPortfolio(ctx, accountID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to get portfolio of %s: %w", accountID, err)
	}
	return s.projector().Portfolio(ctx, positions)
}

// Operations returns the full operation history of accountID.
func (s *Service) Operations(ctx context.Context, accountID string) (domain.Batch, error) {
	ops, err := s.provider.GetOperations(ctx, accountID, HistoryStart, s.now().UTC())
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to get operations of %s: %w", accountID, err)
	}
	return s.projector().Operations(ctx, accountID, ops)
}

// Money returns the cash balances of accountID in reporting currency.
func (s *Service) Money(ctx context.Context, accountID string) (domain.Batch, error) {
	positions, err := s.provider.GetPositions(ctx, accountID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to get positions of %s: %w", accountID, err)
	}
	if positions == nil {
		return domain.Batch{}, domain.ErrNoData
	}
	return s.projector().Money(ctx, positions.Money)
}

// USDRate samples the current USD rate. ok is false when the provider
// could not supply one.
func (s *Service) USDRate(ctx context.Context) (float64, bool) {
	return money.NewRates(s.rates, s.log).USD(ctx)
}
