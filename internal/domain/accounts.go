package domain

import "time"

// AccessLevel describes what the current credential may do with an account.
type AccessLevel string

const (
	AccessLevelUnspecified AccessLevel = "ACCOUNT_ACCESS_LEVEL_UNSPECIFIED"
	AccessLevelFullAccess  AccessLevel = "ACCOUNT_ACCESS_LEVEL_FULL_ACCESS"
	AccessLevelReadOnly    AccessLevel = "ACCOUNT_ACCESS_LEVEL_READ_ONLY"
	AccessLevelNoAccess    AccessLevel = "ACCOUNT_ACCESS_LEVEL_NO_ACCESS"
)

// Account is a brokerage account visible to the credential.
type Account struct {
	ID          string
	Type        string
	Name        string
	Status      string
	OpenedDate  time.Time
	AccessLevel AccessLevel
}

// PortfolioPosition is one holding of an account.
type PortfolioPosition struct {
	Figi                 string
	InstrumentType       string
	Quantity             Quantity
	AveragePositionPrice Quantity
	ExpectedYield        Quantity
	CurrentNkd           Quantity
	CurrentPrice         Quantity
}

// Operation is a historical trade or cash movement of an account.
type Operation struct {
	ID             string
	Date           time.Time
	Type           string
	OperationType  string
	Currency       string
	InstrumentType string
	Figi           string
	Quantity       int64
	State          string
	Payment        Quantity
	Price          Quantity
}

// Positions holds the cash balances of an account. Each entry is currency tagged.
type Positions struct {
	Money   []Quantity
	Blocked []Quantity
}
