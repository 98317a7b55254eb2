// Package money converts provider fixed-point quantities into reporting
// currency floats.
package money

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

// USDRateFigi is the instrument whose last price is the USD/RUB rate.
const USDRateFigi = "USD000UTSTOM"

// Rates holds the exchange rate for one synchronization run. The rate is
// fetched on first use, kept for the rest of the run, and never shared
// between runs. A failed fetch leaves it unset so the next caller retries.
type Rates struct {
	source  domain.RateSource
	log     zerolog.Logger
	mu      sync.Mutex
	usd     float64
	fetches int
}

// NewRates creates an unset rate holder for a run
func NewRates(source domain.RateSource, log zerolog.Logger) *Rates {
	return &Rates{
		source: source,
		log:    log.With().Str("component", "rates").Logger(),
	}
}

// USD returns the USD to reporting currency rate, fetching it if this run has
// not cached one yet. ok is false when the rate is unavailable.
func (r *Rates) USD(ctx context.Context) (rate float64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// A zero rate counts as unset.
	if r.usd != 0 {
		return r.usd, true
	}
	if r.source == nil {
		return 0, false
	}

	r.fetches++
	prices, err := r.source.GetLastPrices(ctx, []string{USDRateFigi})
	if err != nil {
		event := r.log.Error().Err(err).Str("figi", USDRateFigi)
		if reqErr, ok := domain.AsRequestError(err); ok {
			event = event.Str("tracking_id", reqErr.TrackingID).Str("code", reqErr.CodeName())
		}
		event.Msg("Failed to fetch USD rate")
		return 0, false
	}
	if len(prices) == 0 {
		r.log.Warn().Str("figi", USDRateFigi).Msg("No last price returned for USD rate")
		return 0, false
	}

	r.usd = prices[0].Price.Value()
	if r.usd == 0 {
		return 0, false
	}

	r.log.Info().Float64("rate", r.usd).Msg("Fetched USD rate")
	return r.usd, true
}

// Cached returns the rate without fetching.
func (r *Rates) Cached() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usd, r.usd != 0
}

// Fetches counts upstream rate lookups issued during this run.
func (r *Rates) Fetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}
