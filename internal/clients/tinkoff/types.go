package tinkoff

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// int64String decodes proto3 JSON int64 values, which the gateway sends
// as strings, while also accepting bare numbers.
type int64String int64

func (v *int64String) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid int64 value %q: %w", data, err)
	}
	*v = int64String(n)
	return nil
}

func (v int64String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatInt(int64(v), 10) + `"`), nil
}

type quotation struct {
	Units int64String `json:"units"`
	Nano  int32       `json:"nano"`
}

type moneyValue struct {
	Currency string      `json:"currency"`
	Units    int64String `json:"units"`
	Nano     int32       `json:"nano"`
}

type instrumentsRequest struct {
	InstrumentStatus string `json:"instrumentStatus"`
}

// instrumentWire holds the fields common to every instrument kind.
type instrumentWire struct {
	Figi                  string     `json:"figi"`
	Ticker                string     `json:"ticker"`
	ClassCode             string     `json:"classCode"`
	Isin                  string     `json:"isin"`
	Lot                   int32      `json:"lot"`
	Currency              string     `json:"currency"`
	Klong                 quotation  `json:"klong"`
	Kshort                quotation  `json:"kshort"`
	Dlong                 quotation  `json:"dlong"`
	Dshort                quotation  `json:"dshort"`
	DlongMin              quotation  `json:"dlongMin"`
	DshortMin             quotation  `json:"dshortMin"`
	ShortEnabledFlag      bool       `json:"shortEnabledFlag"`
	Name                  string     `json:"name"`
	Exchange              string     `json:"exchange"`
	CountryOfRisk         string     `json:"countryOfRisk"`
	CountryOfRiskName     string     `json:"countryOfRiskName"`
	Sector                string     `json:"sector"`
	TradingStatus         string     `json:"tradingStatus"`
	OtcFlag               bool       `json:"otcFlag"`
	BuyAvailableFlag      bool       `json:"buyAvailableFlag"`
	SellAvailableFlag     bool       `json:"sellAvailableFlag"`
	MinPriceIncrement     quotation  `json:"minPriceIncrement"`
	APITradeAvailableFlag bool       `json:"apiTradeAvailableFlag"`
	UID                   string     `json:"uid"`
	RealExchange          string     `json:"realExchange"`
	PositionUID           string     `json:"positionUid"`
	ForIisFlag            bool       `json:"forIisFlag"`
	First1MinCandleDate   *time.Time `json:"first1minCandleDate"`
	First1DayCandleDate   *time.Time `json:"first1dayCandleDate"`
}

type shareWire struct {
	instrumentWire
	IssueSize     int64String `json:"issueSize"`
	IssueSizePlan int64String `json:"issueSizePlan"`
	Nominal       moneyValue  `json:"nominal"`
	DivYieldFlag  bool        `json:"divYieldFlag"`
	ShareType     string      `json:"shareType"`
}

type bondWire struct {
	instrumentWire
	CouponQuantityPerYear int32       `json:"couponQuantityPerYear"`
	Nominal               moneyValue  `json:"nominal"`
	PlacementPrice        moneyValue  `json:"placementPrice"`
	AciValue              moneyValue  `json:"aciValue"`
	IssueKind             string      `json:"issueKind"`
	IssueSize             int64String `json:"issueSize"`
	IssueSizePlan         int64String `json:"issueSizePlan"`
	FloatingCouponFlag    bool        `json:"floatingCouponFlag"`
	PerpetualFlag         bool        `json:"perpetualFlag"`
	AmortizationFlag      bool        `json:"amortizationFlag"`
}

type etfWire struct {
	instrumentWire
	FixedCommission quotation `json:"fixedCommission"`
	FocusType       string    `json:"focusType"`
	NumShares       quotation `json:"numShares"`
	RebalancingFreq string    `json:"rebalancingFreq"`
}

type futureWire struct {
	instrumentWire
	FuturesType           string    `json:"futuresType"`
	AssetType             string    `json:"assetType"`
	BasicAsset            string    `json:"basicAsset"`
	BasicAssetSize        quotation `json:"basicAssetSize"`
	BasicAssetPositionUID string    `json:"basicAssetPositionUid"`
}

type sharesResponse struct {
	Instruments []shareWire `json:"instruments"`
}

type bondsResponse struct {
	Instruments []bondWire `json:"instruments"`
}

type etfsResponse struct {
	Instruments []etfWire `json:"instruments"`
}

type futuresResponse struct {
	Instruments []futureWire `json:"instruments"`
}

type lastPricesRequest struct {
	Figi []string `json:"figi"`
}

type lastPriceWire struct {
	Figi  string    `json:"figi"`
	Price quotation `json:"price"`
	Time  time.Time `json:"time"`
}

type lastPricesResponse struct {
	LastPrices []lastPriceWire `json:"lastPrices"`
}

type candlesRequest struct {
	Figi     string    `json:"figi"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Interval string    `json:"interval"`
}

type candleWire struct {
	Open       quotation   `json:"open"`
	High       quotation   `json:"high"`
	Low        quotation   `json:"low"`
	Close      quotation   `json:"close"`
	Volume     int64String `json:"volume"`
	Time       time.Time   `json:"time"`
	IsComplete bool        `json:"isComplete"`
}

type candlesResponse struct {
	Candles []candleWire `json:"candles"`
}

type accountWire struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	OpenedDate  *time.Time `json:"openedDate"`
	AccessLevel string     `json:"accessLevel"`
}

type accountsResponse struct {
	Accounts []accountWire `json:"accounts"`
}

type accountRequest struct {
	AccountID string `json:"accountId"`
}

type portfolioPositionWire struct {
	Figi                 string     `json:"figi"`
	InstrumentType       string     `json:"instrumentType"`
	Quantity             quotation  `json:"quantity"`
	AveragePositionPrice moneyValue `json:"averagePositionPrice"`
	ExpectedYield        quotation  `json:"expectedYield"`
	CurrentNkd           moneyValue `json:"currentNkd"`
	CurrentPrice         moneyValue `json:"currentPrice"`
}

type portfolioResponse struct {
	Positions []portfolioPositionWire `json:"positions"`
}

type operationsRequest struct {
	AccountID string    `json:"accountId"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	State     string    `json:"state"`
	Figi      string    `json:"figi,omitempty"`
}

type operationWire struct {
	ID             string      `json:"id"`
	Currency       string      `json:"currency"`
	Payment        moneyValue  `json:"payment"`
	Price          moneyValue  `json:"price"`
	State          string      `json:"state"`
	Quantity       int64String `json:"quantity"`
	Figi           string      `json:"figi"`
	InstrumentType string      `json:"instrumentType"`
	Date           time.Time   `json:"date"`
	Type           string      `json:"type"`
	OperationType  string      `json:"operationType"`
}

type operationsResponse struct {
	Operations []operationWire `json:"operations"`
}

type positionsResponse struct {
	Money   []moneyValue `json:"money"`
	Blocked []moneyValue `json:"blocked"`
}
