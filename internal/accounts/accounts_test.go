package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/domain"
)

// mockProvider implements domain.AccountsProvider and domain.RateSource for testing
type mockProvider struct {
	getAccountsFn   func(ctx context.Context) ([]domain.Account, error)
	getPortfolioFn  func(ctx context.Context, accountID string) ([]domain.PortfolioPosition, error)
	getOperationsFn func(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error)
	getPositionsFn  func(ctx context.Context, accountID string) (*domain.Positions, error)
	rateCalls       int
}

func (m *mockProvider) GetAccounts(ctx context.Context) ([]domain.Account, error) {
	return m.getAccountsFn(ctx)
}

func (m *mockProvider) GetPortfolio(ctx context.Context, accountID string) ([]domain.PortfolioPosition, error) {
	return m.getPortfolioFn(ctx, accountID)
}

func (m *mockProvider) GetOperations(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error) {
	return m.getOperationsFn(ctx, accountID, from, to)
}

func (m *mockProvider) GetPositions(ctx context.Context, accountID string) (*domain.Positions, error) {
	return m.getPositionsFn(ctx, accountID)
}

func (m *mockProvider) GetLastPrices(_ context.Context, figis []string) ([]domain.LastPrice, error) {
	m.rateCalls++
	return []domain.LastPrice{{Figi: figis[0], Price: domain.NewQuantity(90, 0)}}, nil
}

func cell(t *testing.T, b domain.Batch, row int, column string) any {
	t.Helper()
	idx := b.ColumnIndex(column)
	require.GreaterOrEqual(t, idx, 0, "missing column %s", column)
	return b.Rows[row][idx]
}

func TestResolver_FiltersNoAccessAndKeepsOrder(t *testing.T) {
	calls := 0
	provider := &mockProvider{
		getAccountsFn: func(ctx context.Context) ([]domain.Account, error) {
			calls++
			return []domain.Account{
				{ID: "3", AccessLevel: domain.AccessLevelReadOnly},
				{ID: "1", AccessLevel: domain.AccessLevelNoAccess},
				{ID: "2", AccessLevel: domain.AccessLevelFullAccess},
				{ID: "4", AccessLevel: domain.AccessLevelUnspecified},
			}, nil
		},
	}
	resolver := NewResolver(provider, zerolog.Nop())

	ids, err := resolver.ListAccessible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "4"}, ids)

	// Not cached: every call reaches the provider.
	_, err = resolver.ListAccessible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestResolver_PropagatesProviderError(t *testing.T) {
	provider := &mockProvider{
		getAccountsFn: func(ctx context.Context) ([]domain.Account, error) {
			return nil, &domain.RequestError{Code: 16, TrackingID: "abc"}
		},
	}

	_, err := NewResolver(provider, zerolog.Nop()).ListAccessible(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsRequestError(err))
}

func TestService_Portfolio(t *testing.T) {
	provider := &mockProvider{
		getPortfolioFn: func(ctx context.Context, accountID string) ([]domain.PortfolioPosition, error) {
			assert.Equal(t, "2000", accountID)
			return []domain.PortfolioPosition{{
				Figi:                 "BBG000BPH459",
				InstrumentType:       "share",
				Quantity:             domain.NewQuantity(2, 0),
				AveragePositionPrice: domain.NewMoney(10, 0, domain.CurrencyUSD),
				ExpectedYield:        domain.NewQuantity(1, 0),
				CurrentPrice:         domain.NewMoney(11, 0, domain.CurrencyUSD),
			}}, nil
		},
	}
	svc := NewService(provider, provider, zerolog.Nop())

	b, err := svc.Portfolio(context.Background(), "2000")
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
	assert.InDelta(t, 990.0, cell(t, b, 0, "current_price"), 1e-9)
	assert.InDelta(t, 90.0, cell(t, b, 0, "expected_yield"), 1e-9)
	assert.InDelta(t, 1980.0, cell(t, b, 0, "sell_sum"), 1e-9)
	assert.Equal(t, 1, provider.rateCalls)
}

func TestService_PortfolioEmptyIsNoData(t *testing.T) {
	provider := &mockProvider{
		getPortfolioFn: func(ctx context.Context, accountID string) ([]domain.PortfolioPosition, error) {
			return nil, nil
		},
	}

	_, err := NewService(provider, provider, zerolog.Nop()).Portfolio(context.Background(), "2000")
	assert.ErrorIs(t, err, domain.ErrNoData)
	assert.Zero(t, provider.rateCalls)
}

func TestService_OperationsRequestFullHistory(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	provider := &mockProvider{
		getOperationsFn: func(ctx context.Context, accountID string, from, to time.Time) ([]domain.Operation, error) {
			assert.Equal(t, HistoryStart, from)
			assert.Equal(t, now, to)
			return []domain.Operation{{
				ID:       "op1",
				Currency: "usd",
				Payment:  domain.NewMoney(-100, 0, domain.CurrencyUSD),
				Price:    domain.NewMoney(50, 0, domain.CurrencyUSD),
				Quantity: 2,
			}}, nil
		},
	}
	svc := NewService(provider, provider, zerolog.Nop())
	svc.now = func() time.Time { return now }

	b, err := svc.Operations(context.Background(), "2000")
	require.NoError(t, err)
	assert.Equal(t, "2000", cell(t, b, 0, "acc"))
	assert.InDelta(t, -100.0, cell(t, b, 0, "payment"), 1e-9)
	assert.InDelta(t, 50.0, cell(t, b, 0, "price"), 1e-9)
	assert.Zero(t, provider.rateCalls)
}

func TestService_Money(t *testing.T) {
	provider := &mockProvider{
		getPositionsFn: func(ctx context.Context, accountID string) (*domain.Positions, error) {
			return &domain.Positions{Money: []domain.Quantity{
				domain.NewMoney(1000, 500000000, domain.CurrencyRUB),
				domain.NewMoney(10, 0, domain.CurrencyUSD),
			}}, nil
		},
	}

	b, err := NewService(provider, provider, zerolog.Nop()).Money(context.Background(), "2000")
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	assert.InDelta(t, 1000.5, cell(t, b, 0, "quantity"), 1e-9)
	assert.InDelta(t, 900.0, cell(t, b, 1, "quantity"), 1e-9)
}

func TestService_MoneyProviderError(t *testing.T) {
	provider := &mockProvider{
		getPositionsFn: func(ctx context.Context, accountID string) (*domain.Positions, error) {
			return nil, errors.New("boom")
		},
	}

	_, err := NewService(provider, provider, zerolog.Nop()).Money(context.Background(), "2000")
	assert.ErrorContains(t, err, "failed to get positions of 2000")
}

func TestService_USDRate(t *testing.T) {
	provider := &mockProvider{}
	rate, ok := NewService(provider, provider, zerolog.Nop()).USDRate(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 90.0, rate)
}
