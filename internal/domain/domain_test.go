package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_Value(t *testing.T) {
	testCases := []struct {
		name     string
		q        Quantity
		expected float64
	}{
		{"whole", NewQuantity(12, 0), 12},
		{"fraction", NewQuantity(12, 500000000), 12.5},
		{"negative", NewQuantity(-3, -250000000), -3.25},
		{"only nano", NewQuantity(0, 1), 1e-9},
		{"zero", Quantity{}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.q.Value())
		})
	}
}

func TestQuantity_Decimal(t *testing.T) {
	assert.Equal(t, "114.25", NewQuantity(114, 250000000).Decimal().String())
	assert.Equal(t, "-0.000000001", NewQuantity(0, -1).Decimal().String())
	assert.Equal(t, 0.3, NewQuantity(0, 300000000).Value())
}

func TestQuantity_Tagged(t *testing.T) {
	assert.False(t, NewQuantity(1, 0).Tagged())
	assert.True(t, NewMoney(1, 0, CurrencyUSD).Tagged())
}

func TestParseCandleInterval(t *testing.T) {
	i, err := ParseCandleInterval("CANDLE_INTERVAL_1_MIN")
	require.NoError(t, err)
	assert.Equal(t, CandleInterval1Min, i)

	i, err = ParseCandleInterval("1h")
	require.NoError(t, err)
	assert.Equal(t, CandleIntervalHour, i)

	i, err = ParseCandleInterval("candle_interval_day")
	require.NoError(t, err)
	assert.Equal(t, CandleIntervalDay, i)

	_, err = ParseCandleInterval("fortnight")
	assert.Error(t, err)
}

func TestCandleInterval_MaxRange(t *testing.T) {
	assert.Equal(t, int64(24), int64(CandleInterval1Min.MaxRange().Hours()))
	assert.Zero(t, CandleInterval("bogus").MaxRange())
}

func TestRequestError(t *testing.T) {
	err := &RequestError{TrackingID: "abc123", Code: 8, Message: "limit exceeded"}

	assert.Equal(t, "RESOURCE_EXHAUSTED", err.CodeName())
	assert.Contains(t, err.Error(), "tracking_id=abc123")

	wrapped := fmt.Errorf("failed to fetch candles: %w", err)
	got, ok := AsRequestError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "abc123", got.TrackingID)
	assert.True(t, IsRequestError(wrapped))
	assert.False(t, IsRequestError(errors.New("disk full")))
}

func TestRequestError_UnknownCode(t *testing.T) {
	err := &RequestError{Code: 99, Err: errors.New("boom")}
	assert.Equal(t, "CODE_99", err.CodeName())
	assert.Contains(t, err.Error(), "boom")
}
