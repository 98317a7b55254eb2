package tinkoff

import (
	"strings"
	"time"

	"github.com/aristath/investsync/internal/domain"
)

func (q quotation) toDomain() domain.Quantity {
	return domain.NewQuantity(int64(q.Units), q.Nano)
}

func (m moneyValue) toDomain() domain.Quantity {
	return domain.NewMoney(int64(m.Units), m.Nano, domain.Currency(strings.ToLower(m.Currency)))
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (w instrumentWire) toDomain() domain.Instrument {
	return domain.Instrument{
		Figi:                  w.Figi,
		Ticker:                w.Ticker,
		ClassCode:             w.ClassCode,
		Isin:                  w.Isin,
		Lot:                   w.Lot,
		Currency:              w.Currency,
		Klong:                 w.Klong.toDomain(),
		Kshort:                w.Kshort.toDomain(),
		Dlong:                 w.Dlong.toDomain(),
		Dshort:                w.Dshort.toDomain(),
		DlongMin:              w.DlongMin.toDomain(),
		DshortMin:             w.DshortMin.toDomain(),
		ShortEnabledFlag:      w.ShortEnabledFlag,
		Name:                  w.Name,
		Exchange:              w.Exchange,
		CountryOfRisk:         w.CountryOfRisk,
		CountryOfRiskName:     w.CountryOfRiskName,
		Sector:                w.Sector,
		TradingStatus:         w.TradingStatus,
		OtcFlag:               w.OtcFlag,
		BuyAvailableFlag:      w.BuyAvailableFlag,
		SellAvailableFlag:     w.SellAvailableFlag,
		MinPriceIncrement:     w.MinPriceIncrement.toDomain(),
		APITradeAvailableFlag: w.APITradeAvailableFlag,
		UID:                   w.UID,
		RealExchange:          w.RealExchange,
		PositionUID:           w.PositionUID,
		ForIisFlag:            w.ForIisFlag,
		First1MinCandleDate:   timeValue(w.First1MinCandleDate),
		First1DayCandleDate:   timeValue(w.First1DayCandleDate),
	}
}

func transformShares(in []shareWire) []domain.Share {
	out := make([]domain.Share, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Share{
			Instrument:    w.instrumentWire.toDomain(),
			IssueSize:     int64(w.IssueSize),
			IssueSizePlan: int64(w.IssueSizePlan),
			Nominal:       w.Nominal.toDomain(),
			DivYieldFlag:  w.DivYieldFlag,
			ShareType:     w.ShareType,
		})
	}
	return out
}

func transformBonds(in []bondWire) []domain.Bond {
	out := make([]domain.Bond, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Bond{
			Instrument:            w.instrumentWire.toDomain(),
			CouponQuantityPerYear: w.CouponQuantityPerYear,
			Nominal:               w.Nominal.toDomain(),
			PlacementPrice:        w.PlacementPrice.toDomain(),
			AciValue:              w.AciValue.toDomain(),
			IssueKind:             w.IssueKind,
			IssueSize:             int64(w.IssueSize),
			IssueSizePlan:         int64(w.IssueSizePlan),
			FloatingCouponFlag:    w.FloatingCouponFlag,
			PerpetualFlag:         w.PerpetualFlag,
			AmortizationFlag:      w.AmortizationFlag,
		})
	}
	return out
}

func transformETFs(in []etfWire) []domain.ETF {
	out := make([]domain.ETF, 0, len(in))
	for _, w := range in {
		out = append(out, domain.ETF{
			Instrument:      w.instrumentWire.toDomain(),
			FixedCommission: w.FixedCommission.toDomain(),
			FocusType:       w.FocusType,
			NumShares:       w.NumShares.toDomain(),
			RebalancingFreq: w.RebalancingFreq,
		})
	}
	return out
}

func transformFutures(in []futureWire) []domain.Future {
	out := make([]domain.Future, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Future{
			Instrument:            w.instrumentWire.toDomain(),
			FuturesType:           w.FuturesType,
			AssetType:             w.AssetType,
			BasicAsset:            w.BasicAsset,
			BasicAssetSize:        w.BasicAssetSize.toDomain(),
			BasicAssetPositionUID: w.BasicAssetPositionUID,
		})
	}
	return out
}

func transformCandles(in []candleWire) []domain.Candle {
	out := make([]domain.Candle, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Candle{
			Time:       w.Time,
			Open:       w.Open.toDomain(),
			High:       w.High.toDomain(),
			Low:        w.Low.toDomain(),
			Close:      w.Close.toDomain(),
			Volume:     int64(w.Volume),
			IsComplete: w.IsComplete,
		})
	}
	return out
}

func transformAccounts(in []accountWire) []domain.Account {
	out := make([]domain.Account, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Account{
			ID:          w.ID,
			Type:        w.Type,
			Name:        w.Name,
			Status:      w.Status,
			OpenedDate:  timeValue(w.OpenedDate),
			AccessLevel: domain.AccessLevel(w.AccessLevel),
		})
	}
	return out
}

func transformPortfolio(in []portfolioPositionWire) []domain.PortfolioPosition {
	out := make([]domain.PortfolioPosition, 0, len(in))
	for _, w := range in {
		out = append(out, domain.PortfolioPosition{
			Figi:                 w.Figi,
			InstrumentType:       w.InstrumentType,
			Quantity:             w.Quantity.toDomain(),
			AveragePositionPrice: w.AveragePositionPrice.toDomain(),
			ExpectedYield:        w.ExpectedYield.toDomain(),
			CurrentNkd:           w.CurrentNkd.toDomain(),
			CurrentPrice:         w.CurrentPrice.toDomain(),
		})
	}
	return out
}

func transformOperations(in []operationWire) []domain.Operation {
	out := make([]domain.Operation, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Operation{
			ID:             w.ID,
			Date:           w.Date,
			Type:           w.Type,
			OperationType:  w.OperationType,
			Currency:       w.Currency,
			InstrumentType: w.InstrumentType,
			Figi:           w.Figi,
			Quantity:       int64(w.Quantity),
			State:          w.State,
			Payment:        w.Payment.toDomain(),
			Price:          w.Price.toDomain(),
		})
	}
	return out
}

func transformMoney(in []moneyValue) []domain.Quantity {
	out := make([]domain.Quantity, 0, len(in))
	for _, m := range in {
		out = append(out, m.toDomain())
	}
	return out
}
