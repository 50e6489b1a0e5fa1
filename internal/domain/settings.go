package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a user never configured one
const DefaultCurrency = "USD"

// UserSettings are the user-configured defaults used to seed a forecast
type UserSettings struct {
	UserID         uuid.UUID
	Currency       string
	SalaryPerMonth decimal.Decimal
}

// PositionValue is the valuation of a single position in the user's currency
type PositionValue struct {
	AssetID uuid.UUID
	Type    AssetType
	Price   decimal.Decimal // per unit, asset currency
	Value   decimal.Decimal // price * quantity, user currency

	GrowthPercent float64 // price change since purchase
}

// PortfolioValuation is the current value of a user's portfolio
type PortfolioValuation struct {
	Currency     string
	Total        decimal.Decimal
	Distribution map[AssetType]decimal.Decimal
	Positions    []PositionValue
}
