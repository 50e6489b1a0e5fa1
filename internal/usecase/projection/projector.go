package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

const (
	// MonthsPerYear is the number of compounding sub-periods in a year
	MonthsPerYear = 12

	// AggressiveMonthlyRatePercent is the monthly rate above which a warning is raised
	AggressiveMonthlyRatePercent = 5

	// AggressiveAnnualRatePercent is the annual rate above which a warning is raised
	AggressiveAnnualRatePercent = 50
)

// MonthlyInput configures a closed-form monthly projection
type MonthlyInput struct {
	Start                  time.Time
	StartValue             decimal.Decimal
	MonthlyRatePercent     float64
	Months                 int
	Contribution           decimal.Decimal // paid at the end of every month
	AnnualInflationPercent float64
	Nominal                bool
}

// YearlyInput configures an iterative year-by-year projection
type YearlyInput struct {
	Now                             time.Time
	StartValue                      decimal.Decimal
	MonthlyRatePercent              float64
	Years                           int
	Contribution                    decimal.Decimal // monthly amount during the first year
	AnnualContributionGrowthPercent float64
}

// MonthlyRateFromAnnual converts an annual rate into the equivalent compounded monthly rate.
// Both rates are percentages.
func MonthlyRateFromAnnual(annualPercent float64) float64 {
	return (math.Pow(1+annualPercent/100, 1.0/MonthsPerYear) - 1) * 100
}

// MonthlyRate returns the monthly rate, in percent, for a rate expressed in unit
func MonthlyRate(ratePercent float64, unit domain.RateUnit) float64 {
	if unit == domain.RateUnitAnnual {
		return MonthlyRateFromAnnual(ratePercent)
	}
	return ratePercent
}

// MonthlyInflation converts an annual inflation rate into the simple monthly rate, in percent
func MonthlyInflation(annualPercent float64) float64 {
	return annualPercent / MonthsPerYear
}

// Warnings flags aggressive growth assumptions. The projection still uses them.
func Warnings(ratePercent float64, unit domain.RateUnit) []domain.Warning {
	var warnings []domain.Warning

	if unit == domain.RateUnitAnnual {
		if math.Abs(ratePercent) > AggressiveAnnualRatePercent {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarningAggressiveAnnualRate,
				Message: fmt.Sprintf("annual growth rate of %.2f%% exceeds %d%%", ratePercent, AggressiveAnnualRatePercent),
				Value:   ratePercent,
			})
		}
		return warnings
	}

	if math.Abs(ratePercent) > AggressiveMonthlyRatePercent {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarningAggressiveMonthlyRate,
			Message: fmt.Sprintf("monthly growth rate of %.2f%% exceeds %d%%", ratePercent, AggressiveMonthlyRatePercent),
			Value:   ratePercent,
		})
	}
	return warnings
}

// Monthly projects a starting value month by month using the closed-form compound
// interest and annuity future value formulas.
// The first point is the starting value at in.Start; one point follows per month.
// Logic:
//   - principal = start * (1+r)^m
//   - contributions = C * ((1+r)^m - 1) / r, or C * m when r = 0
//   - real = nominal / (1+i)^m when in.Nominal is false
func Monthly(in MonthlyInput) []domain.ForecastPoint {
	months := max(in.Months, 0)
	points := make([]domain.ForecastPoint, 0, months+1)

	start := in.StartValue.InexactFloat64()
	contribution := in.Contribution.InexactFloat64()
	rate := in.MonthlyRatePercent / 100
	inflation := MonthlyInflation(in.AnnualInflationPercent) / 100

	points = append(points, newPoint(in.Start, start, 1, 0, 0, !in.Nominal))

	previous := start
	for m := 1; m <= months; m++ {
		growth := math.Pow(1+rate, float64(m))
		nominal := start*growth + annuityFutureValue(contribution, rate, m)

		point := newPoint(
			domain.AddMonths(in.Start, m),
			nominal,
			math.Pow(1+inflation, float64(m)),
			contribution,
			nominal-previous-contribution,
			!in.Nominal,
		)
		points = append(points, point)
		previous = nominal
	}

	return points
}

// Yearly simulates the projection one year at a time for the labor income versus
// capital gains breakdown. Values are nominal.
// Logic:
//  1. A year-0 point carries the current value
//  2. From year 2 on, the monthly contribution grows by the annual contribution growth
//  3. Each month: pool += contribution, then pool *= (1+r)
//  4. LaborIncome = contribution * 12, CapitalGains = end - start - LaborIncome
func Yearly(in YearlyInput) []domain.ForecastPoint {
	years := max(in.Years, 0)
	points := make([]domain.ForecastPoint, 0, years+1)

	pool := in.StartValue.InexactFloat64()
	contribution := in.Contribution.InexactFloat64()
	rate := in.MonthlyRatePercent / 100
	salaryIncrease := in.AnnualContributionGrowthPercent / 100

	points = append(points, newPoint(in.Now, pool, 1, 0, 0, false))

	for y := 1; y <= years; y++ {
		if y > 1 {
			contribution *= 1 + salaryIncrease
		}

		startOfYear := pool
		for m := 0; m < MonthsPerYear; m++ {
			pool += contribution
			pool *= 1 + rate
		}

		laborIncome := contribution * MonthsPerYear
		points = append(points, newPoint(
			in.Now.AddDate(y, 0, 0),
			pool,
			0,
			laborIncome,
			pool-startOfYear-laborIncome,
			false,
		))
	}

	return points
}

// Project runs a projection over periods months with a contribution schedule.
// A schedule without growth uses the closed form; a growing schedule is iterated
// month by month with the contribution compounding every 12 periods.
func Project(
	start time.Time,
	startValue decimal.Decimal,
	monthlyRatePercent float64,
	periods int,
	contribution domain.ContributionSchedule,
	annualInflationPercent float64,
	nominal bool,
) []domain.ForecastPoint {
	if contribution.AnnualGrowthPercent == 0 {
		return Monthly(MonthlyInput{
			Start:                  start,
			StartValue:             startValue,
			MonthlyRatePercent:     monthlyRatePercent,
			Months:                 periods,
			Contribution:           contribution.BaseAmount,
			AnnualInflationPercent: annualInflationPercent,
			Nominal:                nominal,
		})
	}

	periods = max(periods, 0)
	points := make([]domain.ForecastPoint, 0, periods+1)

	pool := startValue.InexactFloat64()
	amount := contribution.BaseAmount.InexactFloat64()
	rate := monthlyRatePercent / 100
	inflation := MonthlyInflation(annualInflationPercent) / 100
	growth := contribution.AnnualGrowthPercent / 100

	points = append(points, newPoint(start, pool, 1, 0, 0, !nominal))

	for m := 1; m <= periods; m++ {
		if m > 1 && (m-1)%MonthsPerYear == 0 {
			amount *= 1 + growth
		}

		previous := pool
		pool = pool*(1+rate) + amount

		points = append(points, newPoint(
			domain.AddMonths(start, m),
			pool,
			math.Pow(1+inflation, float64(m)),
			amount,
			pool-previous-amount,
			!nominal,
		))
	}

	return points
}

// GrowthMultiplier is (1+r)^months for a monthly rate in percent
func GrowthMultiplier(monthlyRatePercent float64, months int) float64 {
	return math.Pow(1+monthlyRatePercent/100, float64(max(months, 0)))
}

// ContributionsFutureValue is the annuity future value of months end-of-month
// payments at a monthly rate in percent
func ContributionsFutureValue(payment decimal.Decimal, monthlyRatePercent float64, months int) float64 {
	return annuityFutureValue(payment.InexactFloat64(), monthlyRatePercent/100, max(months, 0))
}

// annuityFutureValue is the future value of m end-of-month payments compounding at rate
func annuityFutureValue(payment, rate float64, m int) float64 {
	if payment == 0 {
		return 0
	}
	if rate == 0 {
		return payment * float64(m)
	}
	return payment * (math.Pow(1+rate, float64(m)) - 1) / rate
}

// newPoint builds a forecast point. deflator is the cumulative inflation factor,
// only used when withReal is true.
func newPoint(at time.Time, nominal, deflator, laborIncome, capitalGains float64, withReal bool) domain.ForecastPoint {
	point := domain.ForecastPoint{
		Timestamp:    at,
		NominalValue: ToDecimal(nominal),
		LaborIncome:  ToDecimal(laborIncome),
		CapitalGains: ToDecimal(capitalGains),
	}
	if withReal {
		realValue := nominal
		if deflator > 0 {
			realValue = nominal / deflator
		}
		value := ToDecimal(realValue)
		point.RealValue = &value
	}
	return point
}

// ToDecimal converts a float result, saturating overflowed values so extreme
// assumptions never panic
func ToDecimal(v float64) decimal.Decimal {
	switch {
	case math.IsNaN(v):
		return decimal.Zero
	case math.IsInf(v, 1):
		return decimal.NewFromFloat(math.MaxFloat64)
	case math.IsInf(v, -1):
		return decimal.NewFromFloat(-math.MaxFloat64)
	}
	return decimal.NewFromFloat(v)
}
