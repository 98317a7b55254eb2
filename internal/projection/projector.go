// Package projection flattens provider entities into store-compatible rows.
//
// Every monetary field goes through the run's money.Normalizer. Instrument and
// position fields are converted into the reporting currency; operation
// payments and prices keep their original currency.
package projection

import (
	"time"

	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/money"
)

// canonicalTimeLayout renders a canonical timestamp inside a candle key.
const canonicalTimeLayout = "2006-01-02 15:04:05"

// Projector maps entities to rows for one run.
type Projector struct {
	norm       *money.Normalizer
	commission float64
}

// NewProjector creates a projector using the run's normalizer
func NewProjector(norm *money.Normalizer) *Projector {
	return &Projector{
		norm:       norm,
		commission: DefaultCommission,
	}
}

// WithCommission overrides the commission rate used for position estimates.
func (p *Projector) WithCommission(rate float64) *Projector {
	p.commission = rate
	return p
}

// Normalizer returns the normalizer the projector converts with.
func (p *Projector) Normalizer() *money.Normalizer {
	return p.norm
}

// field is one named value of a row under construction.
type field struct {
	name  string
	value any
}

// build turns per-entity field lists into a batch. All lists share a layout.
func build(rows [][]field) domain.Batch {
	if len(rows) == 0 {
		return domain.Batch{}
	}
	columns := make([]string, len(rows[0]))
	for i, f := range rows[0] {
		columns[i] = f.name
	}
	b := domain.Batch{Columns: columns, Rows: make([][]any, 0, len(rows))}
	for _, fs := range rows {
		values := make([]any, len(fs))
		for i, f := range fs {
			values[i] = f.value
		}
		b.Rows = append(b.Rows, values)
	}
	return b
}

// Naive converts t into the canonical timezone-naive form: the UTC wall
// clock with no zone offset or monotonic reading. The zero time maps to nil.
func Naive(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// canonicalizeTimes rewrites the named time columns of the whole batch.
func canonicalizeTimes(b domain.Batch, columns ...string) {
	for _, c := range columns {
		b.Map(c, func(v any) any {
			switch t := v.(type) {
			case time.Time:
				return Naive(t)
			default:
				return v
			}
		})
	}
}

// CandleKey is the identity of a candle row: figi followed by the canonical timestamp.
func CandleKey(figi string, t time.Time) string {
	return figi + t.UTC().Format(canonicalTimeLayout)
}
