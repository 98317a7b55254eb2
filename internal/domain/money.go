package domain

import "github.com/shopspring/decimal"

// Currency is a lowercase ISO currency code as reported by the provider.
// The zero value means the quantity carries no currency tag.
type Currency string

const (
	CurrencyNone Currency = ""
	CurrencyRUB  Currency = "rub"
	CurrencyUSD  Currency = "usd"
)

// ReportingCurrency is the currency all converted values are expressed in.
const ReportingCurrency = CurrencyRUB

// nanoExp is the decimal exponent of the nano part.
const nanoExp = -9

// Quantity is a fixed-point provider value: whole units plus a nano (1e-9)
// fraction with the same sign. A quantity decoded from a money value carries
// its currency; plain quotations leave Currency empty.
type Quantity struct {
	Units    int64
	Nano     int32
	Currency Currency
}

// Decimal returns the exact value units + nano/1e9.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(q.Units, 0).Add(decimal.New(int64(q.Nano), nanoExp))
}

// Value reconstructs the float value units + nano/1e9 without any conversion.
// The sum is formed exactly and rounded once.
func (q Quantity) Value() float64 {
	return q.Decimal().InexactFloat64()
}

// Tagged reports whether the quantity carries a currency.
func (q Quantity) Tagged() bool {
	return q.Currency != CurrencyNone
}

// IsZero reports whether both parts are zero.
func (q Quantity) IsZero() bool {
	return q.Units == 0 && q.Nano == 0
}

// NewQuantity builds an untagged quantity.
func NewQuantity(units int64, nano int32) Quantity {
	return Quantity{Units: units, Nano: nano}
}

// NewMoney builds a currency-tagged quantity.
func NewMoney(units int64, nano int32, currency Currency) Quantity {
	return Quantity{Units: units, Nano: nano, Currency: currency}
}
