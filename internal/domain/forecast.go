package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// RateUnit tells whether a growth rate is expressed per month or per year
type RateUnit string

const (
	RateUnitMonthly RateUnit = "MONTHLY"
	RateUnitAnnual  RateUnit = "ANNUAL"
)

// Forecast horizon bounds, in years
const (
	MinYearsAhead = 1
	MaxYearsAhead = 50
)

// ForecastParameters holds the user-tunable projection assumptions.
// All rates are percentages (5 means 5%).
type ForecastParameters struct {
	YearsAhead                      int
	GrowthRatePercent               float64
	GrowthRateUnit                  RateUnit
	AutoGrowthRate                  bool // derive GrowthRatePercent from history
	AnnualInflationPercent          float64
	ContributionAmount              decimal.Decimal // per month, >= 0
	AnnualContributionGrowthPercent float64         // salary increase applied once a year
	UseNominalValues                bool
}

// DefaultForecastParameters returns the parameters a new forecast starts from
func DefaultForecastParameters() ForecastParameters {
	return ForecastParameters{
		YearsAhead:                      10,
		GrowthRatePercent:               0,
		GrowthRateUnit:                  RateUnitMonthly,
		AutoGrowthRate:                  true,
		AnnualInflationPercent:          2.5,
		ContributionAmount:              decimal.Zero,
		AnnualContributionGrowthPercent: 3,
		UseNominalValues:                true,
	}
}

// Normalize clamps the parameters into their valid ranges.
// Out-of-range input is corrected, never rejected. NaN or infinite rates
// fall back to their defaults.
func (p ForecastParameters) Normalize() ForecastParameters {
	defaults := DefaultForecastParameters()
	if !isFinite(p.GrowthRatePercent) {
		p.GrowthRatePercent = defaults.GrowthRatePercent
	}
	if !isFinite(p.AnnualInflationPercent) {
		p.AnnualInflationPercent = defaults.AnnualInflationPercent
	}
	if !isFinite(p.AnnualContributionGrowthPercent) {
		p.AnnualContributionGrowthPercent = defaults.AnnualContributionGrowthPercent
	}
	if p.YearsAhead < MinYearsAhead {
		p.YearsAhead = MinYearsAhead
	}
	if p.YearsAhead > MaxYearsAhead {
		p.YearsAhead = MaxYearsAhead
	}
	if p.ContributionAmount.IsNegative() {
		p.ContributionAmount = decimal.Zero
	}
	if p.GrowthRateUnit != RateUnitAnnual {
		p.GrowthRateUnit = RateUnitMonthly
	}
	return p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Months returns the forecast horizon in months
func (p ForecastParameters) Months() int {
	return p.YearsAhead * 12
}

// ContributionSchedule is a periodic contribution that grows once every 12 periods
type ContributionSchedule struct {
	BaseAmount          decimal.Decimal
	AnnualGrowthPercent float64
}

// ForecastPoint is one simulated period of a projection.
// RealValue is nil when the projection is expressed in nominal values.
type ForecastPoint struct {
	Timestamp    time.Time
	NominalValue decimal.Decimal
	RealValue    *decimal.Decimal
	LaborIncome  decimal.Decimal // contributions paid in during the period
	CapitalGains decimal.Decimal // market growth during the period
}

// Value returns the real value when present, otherwise the nominal value
func (p ForecastPoint) Value() decimal.Decimal {
	if p.RealValue != nil {
		return *p.RealValue
	}
	return p.NominalValue
}

// ForecastSummary breaks a projection down for display
type ForecastSummary struct {
	StartValue         decimal.Decimal
	TotalContributions decimal.Decimal
	ContributionGrowth decimal.Decimal
	PrincipalGrowth    decimal.Decimal
	FinalValue         decimal.Decimal
	TotalGrowthPercent float64
}

// WarningCode identifies why an input was flagged
type WarningCode string

const (
	WarningAggressiveMonthlyRate WarningCode = "aggressive_monthly_rate"
	WarningAggressiveAnnualRate  WarningCode = "aggressive_annual_rate"
)

// Warning flags an assumption the caller should surface. Computation still happens.
type Warning struct {
	Code    WarningCode
	Message string
	Value   float64
}
