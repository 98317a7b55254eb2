package domain

import (
	"context"
	"iter"
	"time"
)

// RateSource looks up last trade prices. It is used once per run for the
// USD exchange rate.
type RateSource interface {
	GetLastPrices(ctx context.Context, figis []string) ([]LastPrice, error)
}

// InstrumentsProvider lists reference data for the four instrument kinds.
type InstrumentsProvider interface {
	Shares(ctx context.Context, status InstrumentStatus) ([]Share, error)
	Bonds(ctx context.Context, status InstrumentStatus) ([]Bond, error)
	ETFs(ctx context.Context, status InstrumentStatus) ([]ETF, error)
	Futures(ctx context.Context, status InstrumentStatus) ([]Future, error)
}

// CandlesProvider streams candles of one instrument. The provider owns
// paging; the sequence is finite and ordered by time.
type CandlesProvider interface {
	IterateCandles(ctx context.Context, figi string, from, to time.Time, interval CandleInterval) iter.Seq2[Candle, error]
}

// AccountsProvider reads accounts and their holdings.
type AccountsProvider interface {
	GetAccounts(ctx context.Context) ([]Account, error)
	GetPortfolio(ctx context.Context, accountID string) ([]PortfolioPosition, error)
	GetOperations(ctx context.Context, accountID string, from, to time.Time) ([]Operation, error)
	GetPositions(ctx context.Context, accountID string) (*Positions, error)
}

// Provider is the full brokerage data capability.
type Provider interface {
	RateSource
	InstrumentsProvider
	CandlesProvider
	AccountsProvider
}
