package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/bond"
	"github.com/simaogato/networth-backend/internal/usecase/growth"
	"github.com/simaogato/networth-backend/internal/usecase/projection"
	"github.com/simaogato/networth-backend/internal/usecase/summary"
)

// Projection is the output of one forecast run
type Projection struct {
	Monthly            []domain.ForecastPoint // one point per month, first point is now
	Yearly             []domain.ForecastPoint // labor income versus capital gains per year
	MonthlyRatePercent float64
	Warnings           []domain.Warning
}

// EstimateGrowthRate returns the historical monthly growth rate, in percent.
// Snapshots are used when they span at least two calendar days, positions otherwise.
func EstimateGrowthRate(snapshots []domain.PortfolioSnapshot, positions []domain.AssetPosition, now time.Time) (float64, error) {
	if growth.HasHistory(snapshots) {
		return growth.EstimateFromSnapshots(snapshots)
	}
	return growth.EstimateFromPositions(positions, now), nil
}

// RunProjection projects startValue over the parameters' horizon.
// Parameters are normalized first. The growth rate is used as given: callers
// wanting the automatic rate set it from EstimateGrowthRate beforehand.
func RunProjection(params domain.ForecastParameters, startValue decimal.Decimal, now time.Time) Projection {
	params = params.Normalize()
	rate := projection.MonthlyRate(params.GrowthRatePercent, params.GrowthRateUnit)

	monthly := projection.Project(
		now,
		startValue,
		rate,
		params.Months(),
		domain.ContributionSchedule{BaseAmount: params.ContributionAmount},
		params.AnnualInflationPercent,
		params.UseNominalValues,
	)

	yearly := projection.Yearly(projection.YearlyInput{
		Now:                             now,
		StartValue:                      startValue,
		MonthlyRatePercent:              rate,
		Years:                           params.YearsAhead,
		Contribution:                    params.ContributionAmount,
		AnnualContributionGrowthPercent: params.AnnualContributionGrowthPercent,
	})

	return Projection{
		Monthly:            monthly,
		Yearly:             yearly,
		MonthlyRatePercent: rate,
		Warnings:           projection.Warnings(params.GrowthRatePercent, params.GrowthRateUnit),
	}
}

// SummarizeProjection breaks monthly projection points down for display
func SummarizeProjection(points []domain.ForecastPoint, params domain.ForecastParameters, startValue decimal.Decimal) domain.ForecastSummary {
	params = params.Normalize()
	return summary.Summarize(points, summary.Input{
		StartValue:         startValue,
		MonthlyRatePercent: projection.MonthlyRate(params.GrowthRatePercent, params.GrowthRateUnit),
		Months:             max(len(points)-1, 0),
		ContributionAmount: params.ContributionAmount,
	})
}

// ComputeBondValue returns the value of a bond position at evaluationDate
func ComputeBondValue(settings *domain.BondSettings, purchasePrice decimal.Decimal, purchaseDate, evaluationDate time.Time) decimal.Decimal {
	return bond.Value(settings, purchasePrice, purchaseDate, evaluationDate)
}
