package money

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

// Normalizer turns quantities into floats, converting USD-tagged values
// into the reporting currency with the run's cached rate.
type Normalizer struct {
	rates *Rates
	log   zerolog.Logger
}

// NewNormalizer creates a normalizer bound to one run's rates
func NewNormalizer(rates *Rates, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		rates: rates,
		log:   log.With().Str("component", "normalizer").Logger(),
	}
}

// Normalize returns units + nano/1e9. With convert set, a USD-tagged value is
// multiplied by the rate. When the rate is unavailable the value is returned
// unconverted and a warning is logged.
func (n *Normalizer) Normalize(ctx context.Context, q domain.Quantity, convert bool) float64 {
	v := q.Value()
	if !convert {
		return v
	}
	return n.Convert(ctx, v, q.Currency)
}

// Convert applies the reporting currency rate to an already normalized value
// denominated in currency.
func (n *Normalizer) Convert(ctx context.Context, v float64, currency domain.Currency) float64 {
	switch currency {
	case domain.CurrencyUSD:
		rate, ok := n.rates.USD(ctx)
		if !ok {
			n.log.Warn().
				Float64("value", v).
				Str("currency", string(currency)).
				Msg("USD rate unavailable, value left unconverted")
			return v
		}
		return v * rate
	default:
		return v
	}
}

// Rates exposes the run's rate holder.
func (n *Normalizer) Rates() *Rates {
	return n.rates
}
