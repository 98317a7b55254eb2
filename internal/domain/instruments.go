package domain

import "time"

// InstrumentKind is the classification tag stamped onto projected instrument rows.
type InstrumentKind string

const (
	KindShare  InstrumentKind = "share"
	KindBond   InstrumentKind = "bond"
	KindETF    InstrumentKind = "etf"
	KindFuture InstrumentKind = "future"
)

// InstrumentKinds lists the kinds in the order they are concatenated during a sync.
var InstrumentKinds = []InstrumentKind{KindBond, KindShare, KindETF, KindFuture}

// InstrumentStatus filters instrument listings.
type InstrumentStatus string

const (
	InstrumentStatusUnspecified InstrumentStatus = "INSTRUMENT_STATUS_UNSPECIFIED"
	// InstrumentStatusBase selects instruments available for trading through the API.
	InstrumentStatusBase InstrumentStatus = "INSTRUMENT_STATUS_BASE"
	InstrumentStatusAll  InstrumentStatus = "INSTRUMENT_STATUS_ALL"
)

// Instrument holds the reference fields shared by every instrument kind.
type Instrument struct {
	Figi                  string
	Ticker                string
	ClassCode             string
	Isin                  string
	Lot                   int32
	Currency              string
	Klong                 Quantity
	Kshort                Quantity
	Dlong                 Quantity
	Dshort                Quantity
	DlongMin              Quantity
	DshortMin             Quantity
	ShortEnabledFlag      bool
	Name                  string
	Exchange              string
	CountryOfRisk         string
	CountryOfRiskName     string
	Sector                string
	TradingStatus         string
	OtcFlag               bool
	BuyAvailableFlag      bool
	SellAvailableFlag     bool
	MinPriceIncrement     Quantity
	APITradeAvailableFlag bool
	UID                   string
	RealExchange          string
	PositionUID           string
	ForIisFlag            bool
	First1MinCandleDate   time.Time
	First1DayCandleDate   time.Time
}

// Share is an equity instrument.
type Share struct {
	Instrument
	IssueSize     int64
	IssueSizePlan int64
	Nominal       Quantity
	DivYieldFlag  bool
	ShareType     string
}

// Bond is a fixed income instrument.
type Bond struct {
	Instrument
	CouponQuantityPerYear int32
	Nominal               Quantity
	PlacementPrice        Quantity
	AciValue              Quantity
	IssueKind             string
	IssueSize             int64
	IssueSizePlan         int64
	FloatingCouponFlag    bool
	PerpetualFlag         bool
	AmortizationFlag      bool
}

// ETF is an exchange traded fund.
type ETF struct {
	Instrument
	FixedCommission Quantity
	FocusType       string
	NumShares       Quantity
	RebalancingFreq string
}

// Future is a futures contract.
type Future struct {
	Instrument
	FuturesType           string
	AssetType             string
	BasicAsset            string
	BasicAssetSize        Quantity
	BasicAssetPositionUID string
}
