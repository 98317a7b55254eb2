package projection

import (
	"context"

	"github.com/aristath/investsync/internal/domain"
)

// Portfolio projects the holdings of an account into reporting currency.
// Positions with zero quantity are kept.
func (p *Projector) Portfolio(ctx context.Context, positions []domain.PortfolioPosition) (domain.Batch, error) {
	if len(positions) == 0 {
		return domain.Batch{}, domain.ErrNoData
	}

	b := domain.NewBatch(PortfolioColumns...)
	for _, pos := range positions {
		quantity := p.norm.Normalize(ctx, pos.Quantity, true)
		price := p.norm.Normalize(ctx, pos.CurrentPrice, true)
		nkd := p.norm.Normalize(ctx, pos.CurrentNkd, true)
		currency := pos.AveragePositionPrice.Currency

		// Expected yield is an untagged quotation; it follows the position currency.
		expectedYield := p.norm.Convert(ctx, pos.ExpectedYield.Value(), currency)

		b.Append(
			pos.Figi,
			quantity,
			expectedYield,
			pos.InstrumentType,
			p.norm.Normalize(ctx, pos.AveragePositionPrice, true),
			price,
			string(currency),
			nkd,
			(price+nkd)*quantity,
			price*quantity*p.commission,
		)
	}
	return b, nil
}

// Operations projects the operation history of an account. Payments and
// prices stay in the operation currency.
func (p *Projector) Operations(ctx context.Context, accountID string, ops []domain.Operation) (domain.Batch, error) {
	if len(ops) == 0 {
		return domain.Batch{}, domain.ErrNoData
	}

	b := domain.NewBatch(OperationColumns...)
	for _, o := range ops {
		b.Append(
			accountID,
			o.Date,
			o.Type,
			o.OperationType,
			o.Currency,
			o.InstrumentType,
			o.Figi,
			o.Quantity,
			o.State,
			p.norm.Normalize(ctx, o.Payment, false),
			p.norm.Normalize(ctx, o.Price, false),
		)
	}
	return b, nil
}

// Money projects the cash balances of an account into reporting currency.
func (p *Projector) Money(ctx context.Context, cash []domain.Quantity) (domain.Batch, error) {
	if len(cash) == 0 {
		return domain.Batch{}, domain.ErrNoData
	}

	b := domain.NewBatch(MoneyColumns...)
	for _, c := range cash {
		b.Append(string(c.Currency), p.norm.Normalize(ctx, c, true))
	}
	return b, nil
}
