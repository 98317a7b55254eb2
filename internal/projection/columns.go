package projection

import "github.com/aristath/investsync/internal/domain"

// Identity and tag columns.
const (
	InstrumentKeyColumn = "figi"
	CandleKeyColumn     = "map"
	CandleFigiColumn    = "figi"
	KindColumn          = "instrument_type"

	FirstMinuteCandleColumn = "first_1min_candle_date"
	FirstDayCandleColumn    = "first_1day_candle_date"
)

// DefaultCommission is the broker fee rate applied to position value.
const DefaultCommission = 0.0025

// InstrumentColumns is the union layout of all four instrument kinds.
var InstrumentColumns = []domain.Column{
	{Name: "figi", Type: domain.ColumnText, Indexed: true},
	{Name: "ticker", Type: domain.ColumnText},
	{Name: "class_code", Type: domain.ColumnText},
	{Name: "isin", Type: domain.ColumnText},
	{Name: "lot", Type: domain.ColumnInt},
	{Name: "currency", Type: domain.ColumnText},
	{Name: "klong", Type: domain.ColumnFloat},
	{Name: "kshort", Type: domain.ColumnFloat},
	{Name: "dlong", Type: domain.ColumnFloat},
	{Name: "dshort", Type: domain.ColumnFloat},
	{Name: "dlong_min", Type: domain.ColumnFloat},
	{Name: "dshort_min", Type: domain.ColumnFloat},
	{Name: "short_enabled_flag", Type: domain.ColumnBool},
	{Name: "name", Type: domain.ColumnText},
	{Name: "exchange", Type: domain.ColumnText},
	{Name: "coupon_quantity_per_year", Type: domain.ColumnInt},
	{Name: "nominal", Type: domain.ColumnFloat},
	{Name: "placement_price", Type: domain.ColumnFloat},
	{Name: "aci_value", Type: domain.ColumnFloat},
	{Name: "issue_kind", Type: domain.ColumnText},
	{Name: "issue_size", Type: domain.ColumnInt},
	{Name: "issue_size_plan", Type: domain.ColumnInt},
	{Name: "floating_coupon_flag", Type: domain.ColumnBool},
	{Name: "perpetual_flag", Type: domain.ColumnBool},
	{Name: "amortization_flag", Type: domain.ColumnBool},
	{Name: "div_yield_flag", Type: domain.ColumnBool},
	{Name: "share_type", Type: domain.ColumnText},
	{Name: "fixed_commission", Type: domain.ColumnFloat},
	{Name: "focus_type", Type: domain.ColumnText},
	{Name: "num_shares", Type: domain.ColumnFloat},
	{Name: "rebalancing_freq", Type: domain.ColumnText},
	{Name: "futures_type", Type: domain.ColumnText},
	{Name: "asset_type", Type: domain.ColumnText},
	{Name: "basic_asset", Type: domain.ColumnText},
	{Name: "basic_asset_size", Type: domain.ColumnFloat},
	{Name: "basic_asset_position_uid", Type: domain.ColumnText},
	{Name: "country_of_risk", Type: domain.ColumnText},
	{Name: "country_of_risk_name", Type: domain.ColumnText},
	{Name: "sector", Type: domain.ColumnText},
	{Name: "trading_status", Type: domain.ColumnText},
	{Name: "otc_flag", Type: domain.ColumnBool},
	{Name: "buy_available_flag", Type: domain.ColumnBool},
	{Name: "sell_available_flag", Type: domain.ColumnBool},
	{Name: "min_price_increment", Type: domain.ColumnFloat},
	{Name: "api_trade_available_flag", Type: domain.ColumnBool},
	{Name: "uid", Type: domain.ColumnText},
	{Name: "real_exchange", Type: domain.ColumnText},
	{Name: "position_uid", Type: domain.ColumnText},
	{Name: "for_iis_flag", Type: domain.ColumnBool},
	{Name: FirstMinuteCandleColumn, Type: domain.ColumnTime},
	{Name: FirstDayCandleColumn, Type: domain.ColumnTime},
	{Name: KindColumn, Type: domain.ColumnText},
}

// CandleColumns is the candle table layout.
var CandleColumns = []domain.Column{
	{Name: "figi", Type: domain.ColumnText, Indexed: true},
	{Name: "time", Type: domain.ColumnTime},
	{Name: "volume", Type: domain.ColumnInt},
	{Name: "open", Type: domain.ColumnFloat},
	{Name: "close", Type: domain.ColumnFloat},
	{Name: "high", Type: domain.ColumnFloat},
	{Name: "low", Type: domain.ColumnFloat},
	{Name: CandleKeyColumn, Type: domain.ColumnText, Indexed: true},
}

// PortfolioColumns is the portfolio report layout.
var PortfolioColumns = []string{
	"figi", "quantity", "expected_yield", "instrument_type", "average_buy_price",
	"current_price", "currency", "current_nkd", "sell_sum", "comission",
}

// OperationColumns is the operations report layout.
var OperationColumns = []string{
	"acc", "date", "type", "otype", "currency", "instrument_type",
	"figi", "quantity", "state", "payment", "price",
}

// MoneyColumns is the cash positions report layout.
var MoneyColumns = []string{"currency", "quantity"}
