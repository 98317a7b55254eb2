// Package candles bounds historical candle requests to a trailing window.
package candles

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/domain"
)

// DefaultLookback is the trailing window synced per run.
const DefaultLookback = 365 * 24 * time.Hour

// ErrConsumed is yielded when a candle sequence is ranged over a second time.
var ErrConsumed = errors.New("candle sequence already consumed")

// Window is a half-open historical range.
type Window struct {
	From time.Time
	To   time.Time
}

// Config holds fetcher defaults
type Config struct {
	Lookback time.Duration
	Interval domain.CandleInterval
}

// Fetcher produces candle sequences from the provider.
type Fetcher struct {
	provider domain.CandlesProvider
	lookback time.Duration
	interval domain.CandleInterval
	now      func() time.Time
	log      zerolog.Logger
}

// NewFetcher creates a fetcher; zero config values fall back to a 365 day
// lookback and 1 minute bars.
func NewFetcher(provider domain.CandlesProvider, cfg Config, log zerolog.Logger) *Fetcher {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.Interval == "" {
		cfg.Interval = domain.CandleInterval1Min
	}
	return &Fetcher{
		provider: provider,
		lookback: cfg.Lookback,
		interval: cfg.Interval,
		now:      time.Now,
		log:      log.With().Str("component", "candle_fetcher").Logger(),
	}
}

// Interval returns the default bar granularity.
func (f *Fetcher) Interval() domain.CandleInterval {
	return f.interval
}

// DefaultWindow returns now minus the lookback through now.
func (f *Fetcher) DefaultWindow() Window {
	now := f.now().UTC()
	return Window{From: now.Add(-f.lookback), To: now}
}

// Fetch returns the candles of figi over the default window and interval.
func (f *Fetcher) Fetch(ctx context.Context, figi string) iter.Seq2[domain.Candle, error] {
	w := f.DefaultWindow()
	return f.FetchWindow(ctx, figi, w, f.interval)
}

// FetchWindow returns the candles of figi over w at the given interval. The
// sequence can be ranged over once; call again to re-issue the fetch.
func (f *Fetcher) FetchWindow(ctx context.Context, figi string, w Window, interval domain.CandleInterval) iter.Seq2[domain.Candle, error] {
	if interval == "" {
		interval = f.interval
	}
	f.log.Debug().
		Str("figi", figi).
		Time("from", w.From).
		Time("to", w.To).
		Str("interval", string(interval)).
		Msg("Fetching candles")

	return once(f.provider.IterateCandles(ctx, figi, w.From, w.To, interval))
}

// once guards seq so a second range yields ErrConsumed instead of
// silently re-issuing provider calls.
func once(seq iter.Seq2[domain.Candle, error]) iter.Seq2[domain.Candle, error] {
	var used atomic.Bool
	return func(yield func(domain.Candle, error) bool) {
		if used.Swap(true) {
			yield(domain.Candle{}, ErrConsumed)
			return
		}
		seq(yield)
	}
}
