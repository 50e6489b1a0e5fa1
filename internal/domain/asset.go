package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetType represents the kind of asset a position holds
type AssetType string

const (
	AssetTypeStocks     AssetType = "stocks"
	AssetTypeBonds      AssetType = "bonds"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeRealEstate AssetType = "real-estate"
	AssetTypeSavings    AssetType = "savings"
	AssetTypeOther      AssetType = "other"
)

// AssetTypes lists every supported asset type in display order
var AssetTypes = []AssetType{
	AssetTypeStocks,
	AssetTypeBonds,
	AssetTypeCrypto,
	AssetTypeRealEstate,
	AssetTypeSavings,
	AssetTypeOther,
}

// Valid reports whether t is one of the supported asset types
func (t AssetType) Valid() bool {
	for _, known := range AssetTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseAssetType converts a stored asset type into an AssetType.
// The storage layer historically used "real_estate" as well, both are accepted.
func ParseAssetType(s string) (AssetType, error) {
	if s == "real_estate" {
		return AssetTypeRealEstate, nil
	}
	t := AssetType(s)
	if !t.Valid() {
		return "", errors.New("invalid asset type: " + s)
	}
	return t, nil
}

// AssetPosition is the subset of an asset record the forecast engine reads.
// It is owned by the external asset store.
type AssetPosition struct {
	ID            uuid.UUID
	Name          string
	Type          AssetType
	Currency      string
	PurchasePrice decimal.Decimal
	CurrentPrice  *decimal.Decimal // NULL until the price updater ran
	Quantity      *decimal.Decimal // NULL means 1
	PurchaseDate  *time.Time
	BondSettings  *BondSettings // only meaningful for AssetTypeBonds
}

// Validate ensures the position adheres to domain rules
func (p *AssetPosition) Validate() error {
	if !p.Type.Valid() {
		return errors.New("invalid asset type: " + string(p.Type))
	}
	if p.PurchasePrice.IsNegative() {
		return errors.New("purchase price must not be negative")
	}
	if p.Quantity != nil && p.Quantity.IsNegative() {
		return errors.New("quantity must not be negative")
	}
	if p.BondSettings != nil {
		if p.Type != AssetTypeBonds {
			return errors.New("bond settings must reference a bonds asset")
		}
		return p.BondSettings.Validate()
	}
	return nil
}

// EffectiveQuantity returns the quantity, defaulting to 1
func (p *AssetPosition) EffectiveQuantity() decimal.Decimal {
	if p.Quantity == nil {
		return decimal.NewFromInt(1)
	}
	return *p.Quantity
}

// EffectivePrice returns the current price, falling back to the purchase price
func (p *AssetPosition) EffectivePrice() decimal.Decimal {
	if p.CurrentPrice == nil {
		return p.PurchasePrice
	}
	return *p.CurrentPrice
}

// InvestedAmount is purchase price times quantity
func (p *AssetPosition) InvestedAmount() decimal.Decimal {
	return p.PurchasePrice.Mul(p.EffectiveQuantity())
}

// CurrentValue is the effective price times quantity
func (p *AssetPosition) CurrentValue() decimal.Decimal {
	return p.EffectivePrice().Mul(p.EffectiveQuantity())
}

// IsBond reports whether the bond accrual model applies to this position
func (p *AssetPosition) IsBond() bool {
	return p.Type == AssetTypeBonds && p.BondSettings != nil
}

// GrowthPercent returns the signed price change since purchase, in percent.
// A missing or zero current price yields 0, a zero purchase price is treated as 1.
func (p *AssetPosition) GrowthPercent() float64 {
	if p.CurrentPrice == nil || p.CurrentPrice.IsZero() {
		return 0
	}
	purchase := p.PurchasePrice
	if purchase.IsZero() {
		purchase = decimal.NewFromInt(1)
	}
	growth := p.CurrentPrice.Sub(purchase).Div(purchase).Mul(decimal.NewFromInt(100))
	return growth.Round(2).InexactFloat64()
}

// BondRate is the annual coupon rate, in percent, configured for one reset period
type BondRate struct {
	Rate float64 `json:"rate"`
}

// BondSettings holds the bond-specific configuration of a bonds position.
// JSON field names follow the stored bond_settings document.
type BondSettings struct {
	CapitalizationOfInterest         bool             `json:"capitalizationOfInterest"`
	CapitalizationFrequencyMonths    *int             `json:"capitalizationFrequency,omitempty"`
	MaturityDate                     *time.Time       `json:"maturityDate,omitempty"`
	InterestRateResetFrequencyMonths int              `json:"interestRateResetsFrequency"` // 0 = at maturity
	InterestRates                    map[int]BondRate `json:"interestRates,omitempty"`     // 1-based period index
}

// Validate ensures the bond settings adhere to domain rules
func (s *BondSettings) Validate() error {
	if s.InterestRateResetFrequencyMonths < 0 {
		return errors.New("interest rate reset frequency must not be negative")
	}
	if s.CapitalizationFrequencyMonths != nil && *s.CapitalizationFrequencyMonths <= 0 {
		return errors.New("capitalization frequency must be positive")
	}
	for index := range s.InterestRates {
		if index < 1 {
			return errors.New("interest rate period index must start at 1")
		}
	}
	return nil
}
