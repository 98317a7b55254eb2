package domain

import (
	"fmt"
	"strings"
	"time"
)

// CandleInterval is the bar granularity requested from the provider.
type CandleInterval string

const (
	CandleInterval1Min  CandleInterval = "CANDLE_INTERVAL_1_MIN"
	CandleInterval5Min  CandleInterval = "CANDLE_INTERVAL_5_MIN"
	CandleInterval15Min CandleInterval = "CANDLE_INTERVAL_15_MIN"
	CandleIntervalHour  CandleInterval = "CANDLE_INTERVAL_HOUR"
	CandleIntervalDay   CandleInterval = "CANDLE_INTERVAL_DAY"
	CandleIntervalWeek  CandleInterval = "CANDLE_INTERVAL_WEEK"
	CandleIntervalMonth CandleInterval = "CANDLE_INTERVAL_MONTH"
)

// intervalLimits is the widest window the provider accepts in a single
// candles request for each interval.
var intervalLimits = map[CandleInterval]time.Duration{
	CandleInterval1Min:  24 * time.Hour,
	CandleInterval5Min:  24 * time.Hour,
	CandleInterval15Min: 24 * time.Hour,
	CandleIntervalHour:  7 * 24 * time.Hour,
	CandleIntervalDay:   365 * 24 * time.Hour,
	CandleIntervalWeek:  2 * 365 * 24 * time.Hour,
	CandleIntervalMonth: 10 * 365 * 24 * time.Hour,
}

var intervalAliases = map[string]CandleInterval{
	"1m":    CandleInterval1Min,
	"1min":  CandleInterval1Min,
	"5m":    CandleInterval5Min,
	"5min":  CandleInterval5Min,
	"15m":   CandleInterval15Min,
	"15min": CandleInterval15Min,
	"1h":    CandleIntervalHour,
	"hour":  CandleIntervalHour,
	"1d":    CandleIntervalDay,
	"day":   CandleIntervalDay,
	"1w":    CandleIntervalWeek,
	"week":  CandleIntervalWeek,
	"month": CandleIntervalMonth,
}

// MaxRange returns the per-request window limit for the interval.
func (i CandleInterval) MaxRange() time.Duration {
	return intervalLimits[i]
}

// Valid reports whether the interval is one the provider understands.
func (i CandleInterval) Valid() bool {
	_, ok := intervalLimits[i]
	return ok
}

// ParseCandleInterval accepts either the provider enum name or a short alias like "1m".
func ParseCandleInterval(s string) (CandleInterval, error) {
	s = strings.TrimSpace(s)
	if i := CandleInterval(strings.ToUpper(s)); i.Valid() {
		return i, nil
	}
	if i, ok := intervalAliases[strings.ToLower(s)]; ok {
		return i, nil
	}
	return "", fmt.Errorf("unknown candle interval %q", s)
}

// Candle is one provider price bar.
type Candle struct {
	Time       time.Time
	Open       Quantity
	High       Quantity
	Low        Quantity
	Close      Quantity
	Volume     int64
	IsComplete bool
}

// LastPrice is the most recent trade price of an instrument.
type LastPrice struct {
	Figi  string
	Price Quantity
	Time  time.Time
}
