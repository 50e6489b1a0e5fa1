package seeder

import (
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

// DefaultSavingsRatePercent is the share of the monthly salary assumed to be invested
const DefaultSavingsRatePercent = 20

// ParameterSeeder builds the starting forecast parameters of a user
type ParameterSeeder struct {
	annualInflationPercent float64
}

// NewParameterSeeder creates a new ParameterSeeder instance.
// annualInflationPercent replaces the built-in default inflation assumption.
func NewParameterSeeder(annualInflationPercent float64) *ParameterSeeder {
	return &ParameterSeeder{
		annualInflationPercent: annualInflationPercent,
	}
}

// Seed returns the default parameters with the contribution derived from the user's salary.
// Logic:
//   - Start from domain.DefaultForecastParameters
//   - Inflation uses the configured default
//   - ContributionAmount = DefaultSavingsRatePercent of SalaryPerMonth, rounded to cents
//
// Nil settings or a non-positive salary leave the contribution at zero.
func (s *ParameterSeeder) Seed(settings *domain.UserSettings) domain.ForecastParameters {
	params := domain.DefaultForecastParameters()
	params.AnnualInflationPercent = s.annualInflationPercent

	if settings == nil || !settings.SalaryPerMonth.IsPositive() {
		return params
	}

	share := decimal.NewFromInt(DefaultSavingsRatePercent).Div(decimal.NewFromInt(100))
	params.ContributionAmount = settings.SalaryPerMonth.Mul(share).Round(2)

	return params
}
