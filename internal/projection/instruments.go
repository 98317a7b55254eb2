package projection

import (
	"context"

	"github.com/aristath/investsync/internal/domain"
)

func (p *Projector) head(ctx context.Context, in domain.Instrument, withIsin bool) []field {
	fs := []field{
		{"figi", in.Figi},
		{"ticker", in.Ticker},
		{"class_code", in.ClassCode},
	}
	if withIsin {
		fs = append(fs, field{"isin", in.Isin})
	}
	return append(fs,
		field{"lot", in.Lot},
		field{"currency", in.Currency},
		field{"klong", p.norm.Normalize(ctx, in.Klong, true)},
		field{"kshort", p.norm.Normalize(ctx, in.Kshort, true)},
		field{"dlong", p.norm.Normalize(ctx, in.Dlong, true)},
		field{"dshort", p.norm.Normalize(ctx, in.Dshort, true)},
		field{"dlong_min", p.norm.Normalize(ctx, in.DlongMin, true)},
		field{"dshort_min", p.norm.Normalize(ctx, in.DshortMin, true)},
		field{"short_enabled_flag", in.ShortEnabledFlag},
		field{"name", in.Name},
		field{"exchange", in.Exchange},
	)
}

func (p *Projector) tail(ctx context.Context, in domain.Instrument) []field {
	return []field{
		{"country_of_risk", in.CountryOfRisk},
		{"country_of_risk_name", in.CountryOfRiskName},
		{"sector", in.Sector},
		{"trading_status", in.TradingStatus},
		{"otc_flag", in.OtcFlag},
		{"buy_available_flag", in.BuyAvailableFlag},
		{"sell_available_flag", in.SellAvailableFlag},
		{"min_price_increment", p.norm.Normalize(ctx, in.MinPriceIncrement, true)},
		{"api_trade_available_flag", in.APITradeAvailableFlag},
		{"uid", in.UID},
		{"real_exchange", in.RealExchange},
		{"position_uid", in.PositionUID},
		{"for_iis_flag", in.ForIisFlag},
		{FirstMinuteCandleColumn, in.First1MinCandleDate},
		{FirstDayCandleColumn, in.First1DayCandleDate},
		{KindColumn, nil},
	}
}

// finishInstruments stamps the kind tag and canonicalizes the candle date
// columns across the whole batch.
func finishInstruments(rows [][]field, kind domain.InstrumentKind) (domain.Batch, error) {
	if len(rows) == 0 {
		return domain.Batch{}, domain.ErrNoData
	}
	b := build(rows)
	b.Set(KindColumn, string(kind))
	canonicalizeTimes(b, FirstMinuteCandleColumn, FirstDayCandleColumn)
	return b, nil
}

// Shares projects share reference records.
func (p *Projector) Shares(ctx context.Context, shares []domain.Share) (domain.Batch, error) {
	rows := make([][]field, 0, len(shares))
	for _, s := range shares {
		fs := p.head(ctx, s.Instrument, true)
		fs = append(fs,
			field{"issue_size", s.IssueSize},
			field{"issue_size_plan", s.IssueSizePlan},
			field{"nominal", p.norm.Normalize(ctx, s.Nominal, true)},
			field{"div_yield_flag", s.DivYieldFlag},
			field{"share_type", s.ShareType},
		)
		rows = append(rows, append(fs, p.tail(ctx, s.Instrument)...))
	}
	return finishInstruments(rows, domain.KindShare)
}

// Bonds projects bond reference records.
func (p *Projector) Bonds(ctx context.Context, bonds []domain.Bond) (domain.Batch, error) {
	rows := make([][]field, 0, len(bonds))
	for _, b := range bonds {
		fs := p.head(ctx, b.Instrument, true)
		fs = append(fs,
			field{"coupon_quantity_per_year", b.CouponQuantityPerYear},
			field{"nominal", p.norm.Normalize(ctx, b.Nominal, true)},
			field{"placement_price", p.norm.Normalize(ctx, b.PlacementPrice, true)},
			field{"aci_value", p.norm.Normalize(ctx, b.AciValue, true)},
			field{"issue_kind", b.IssueKind},
			field{"issue_size", b.IssueSize},
			field{"issue_size_plan", b.IssueSizePlan},
			field{"floating_coupon_flag", b.FloatingCouponFlag},
			field{"perpetual_flag", b.PerpetualFlag},
			field{"amortization_flag", b.AmortizationFlag},
		)
		rows = append(rows, append(fs, p.tail(ctx, b.Instrument)...))
	}
	return finishInstruments(rows, domain.KindBond)
}

// ETFs projects exchange traded fund reference records.
func (p *Projector) ETFs(ctx context.Context, etfs []domain.ETF) (domain.Batch, error) {
	rows := make([][]field, 0, len(etfs))
	for _, e := range etfs {
		fs := p.head(ctx, e.Instrument, true)
		fs = append(fs,
			field{"fixed_commission", p.norm.Normalize(ctx, e.FixedCommission, true)},
			field{"focus_type", e.FocusType},
			field{"num_shares", p.norm.Normalize(ctx, e.NumShares, true)},
			field{"rebalancing_freq", e.RebalancingFreq},
		)
		rows = append(rows, append(fs, p.tail(ctx, e.Instrument)...))
	}
	return finishInstruments(rows, domain.KindETF)
}

// Futures projects futures reference records. Futures carry no ISIN.
func (p *Projector) Futures(ctx context.Context, futures []domain.Future) (domain.Batch, error) {
	rows := make([][]field, 0, len(futures))
	for _, f := range futures {
		fs := p.head(ctx, f.Instrument, false)
		fs = append(fs,
			field{"futures_type", f.FuturesType},
			field{"asset_type", f.AssetType},
			field{"basic_asset", f.BasicAsset},
			field{"basic_asset_size", p.norm.Normalize(ctx, f.BasicAssetSize, true)},
			field{"basic_asset_position_uid", f.BasicAssetPositionUID},
		)
		rows = append(rows, append(fs, p.tail(ctx, f.Instrument)...))
	}
	return finishInstruments(rows, domain.KindFuture)
}
