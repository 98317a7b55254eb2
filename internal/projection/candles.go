package projection

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/aristath/investsync/internal/domain"
)

// Candles drains the candle sequence of one instrument into rows. The key
// column is filled after the timestamps of the whole batch are canonical.
// An empty sequence yields domain.ErrNoData; a sequence error aborts the
// projection.
func (p *Projector) Candles(ctx context.Context, figi string, candles iter.Seq2[domain.Candle, error]) (domain.Batch, error) {
	var rows [][]field
	for c, err := range candles {
		if err != nil {
			return domain.Batch{}, fmt.Errorf("failed to read candles for %s: %w", figi, err)
		}
		rows = append(rows, []field{
			{CandleFigiColumn, figi},
			{"time", c.Time},
			{"volume", c.Volume},
			{"open", p.norm.Normalize(ctx, c.Open, true)},
			{"close", p.norm.Normalize(ctx, c.Close, true)},
			{"high", p.norm.Normalize(ctx, c.High, true)},
			{"low", p.norm.Normalize(ctx, c.Low, true)},
			{CandleKeyColumn, nil},
		})
	}
	if len(rows) == 0 {
		return domain.Batch{}, domain.ErrNoData
	}

	b := build(rows)
	canonicalizeTimes(b, "time")

	timeIdx := b.ColumnIndex("time")
	keyIdx := b.ColumnIndex(CandleKeyColumn)
	for _, row := range b.Rows {
		t, _ := row[timeIdx].(time.Time)
		row[keyIdx] = CandleKey(figi, t)
	}
	return b, nil
}
