package tinkoff

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/aristath/investsync/internal/domain"
)

const marketDataService = "MarketDataService"

// GetLastPrices returns the last trade price of each figi.
func (c *Client) GetLastPrices(ctx context.Context, figis []string) ([]domain.LastPrice, error) {
	var resp lastPricesResponse
	if err := c.invoke(ctx, marketDataService, "GetLastPrices", lastPricesRequest{Figi: figis}, &resp); err != nil {
		return nil, fmt.Errorf("failed to get last prices: %w", err)
	}

	out := make([]domain.LastPrice, 0, len(resp.LastPrices))
	for _, p := range resp.LastPrices {
		out = append(out, domain.LastPrice{Figi: p.Figi, Price: p.Price.toDomain(), Time: p.Time})
	}
	return out, nil
}

// GetCandles issues a single candles request. The window must not exceed
// the interval's MaxRange.
func (c *Client) GetCandles(ctx context.Context, figi string, from, to time.Time, interval domain.CandleInterval) ([]domain.Candle, error) {
	req := candlesRequest{
		Figi:     figi,
		From:     from.UTC(),
		To:       to.UTC(),
		Interval: string(interval),
	}

	var resp candlesResponse
	if err := c.invoke(ctx, marketDataService, "GetCandles", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to get candles for %s: %w", figi, err)
	}
	return transformCandles(resp.Candles), nil
}

// IterateCandles walks [from, to) in chunks no wider than the interval
// allows and yields candles in ascending time order. Candles repeated at a
// chunk boundary are skipped. The first error ends the sequence.
func (c *Client) IterateCandles(ctx context.Context, figi string, from, to time.Time, interval domain.CandleInterval) iter.Seq2[domain.Candle, error] {
	return func(yield func(domain.Candle, error) bool) {
		step := interval.MaxRange()
		if step <= 0 {
			yield(domain.Candle{}, fmt.Errorf("unsupported candle interval %q", interval))
			return
		}

		var last time.Time
		for start := from; start.Before(to); start = start.Add(step) {
			end := start.Add(step)
			if end.After(to) {
				end = to
			}

			candles, err := c.GetCandles(ctx, figi, start, end, interval)
			if err != nil {
				yield(domain.Candle{}, err)
				return
			}

			for _, candle := range candles {
				if !last.IsZero() && !candle.Time.After(last) {
					continue
				}
				last = candle.Time
				if !yield(candle, nil) {
					return
				}
			}
		}
	}
}
