package summary

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/projection"
)

// Input carries the projection assumptions the breakdown is recomputed from
type Input struct {
	StartValue         decimal.Decimal
	MonthlyRatePercent float64
	Months             int
	ContributionAmount decimal.Decimal // per month
}

// Summarize breaks a projection down into contributions, contribution growth and principal growth.
// Logic:
//   - TotalContributions = sum of LaborIncome over every point but the first
//   - PrincipalGrowth = start * (1+r)^months - start
//   - ContributionGrowth = future value of the contributions - TotalContributions
//   - FinalValue = nominal value of the last point
//   - TotalGrowthPercent = (final - start) / start * 100, 0 when start <= 0
func Summarize(points []domain.ForecastPoint, in Input) domain.ForecastSummary {
	summary := domain.ForecastSummary{
		StartValue:         in.StartValue,
		TotalContributions: decimal.Zero,
		ContributionGrowth: decimal.Zero,
		PrincipalGrowth:    decimal.Zero,
		FinalValue:         in.StartValue,
	}

	for i, point := range points {
		if i == 0 {
			continue
		}
		summary.TotalContributions = summary.TotalContributions.Add(point.LaborIncome)
	}
	if len(points) > 0 {
		summary.FinalValue = points[len(points)-1].NominalValue
	}

	start := in.StartValue.InexactFloat64()
	principal := start*projection.GrowthMultiplier(in.MonthlyRatePercent, in.Months) - start
	summary.PrincipalGrowth = projection.ToDecimal(principal)

	contributionsFV := projection.ContributionsFutureValue(in.ContributionAmount, in.MonthlyRatePercent, in.Months)
	summary.ContributionGrowth = projection.ToDecimal(contributionsFV).Sub(summary.TotalContributions)

	if in.StartValue.IsPositive() {
		growth := summary.FinalValue.Sub(in.StartValue).Div(in.StartValue).Mul(decimal.NewFromInt(100))
		summary.TotalGrowthPercent = growth.Round(2).InexactFloat64()
	}

	return summary
}

// Formatted is a summary rendered for display in a currency
type Formatted struct {
	Currency           string
	StartValue         string
	TotalContributions string
	ContributionGrowth string
	PrincipalGrowth    string
	FinalValue         string
	TotalGrowthPercent string
}

// Format renders every amount of the summary with the currency's symbol, separators and fraction.
// Unknown currency codes fall back to domain.DefaultCurrency.
func Format(summary domain.ForecastSummary, currency string) Formatted {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(domain.DefaultCurrency)
	}

	render := func(amount decimal.Decimal) string {
		minor := amount.Shift(int32(cur.Fraction)).Round(0)
		return cur.Formatter().Format(minor.IntPart())
	}

	return Formatted{
		Currency:           cur.Code,
		StartValue:         render(summary.StartValue),
		TotalContributions: render(summary.TotalContributions),
		ContributionGrowth: render(summary.ContributionGrowth),
		PrincipalGrowth:    render(summary.PrincipalGrowth),
		FinalValue:         render(summary.FinalValue),
		TotalGrowthPercent: fmt.Sprintf("%.2f%%", summary.TotalGrowthPercent),
	}
}
