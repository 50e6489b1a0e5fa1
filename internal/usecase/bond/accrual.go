package bond

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

const (
	// PlaceholderRate is the annual rate, in percent, given to periods nobody configured
	PlaceholderRate = 4.5

	monthsPerYear = 12
	daysPerYear   = 365
)

// MonthsBetween returns the number of calendar months from one date to another.
// A started month counts as a whole month. Returns 0 when to is not after from.
func MonthsBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*monthsPerYear + int(to.Month()-from.Month())
	if to.Day() > from.Day() {
		months++
	}
	return max(months, 0)
}

// PeriodsUntil returns how many interest rate periods a bond has between purchase and maturity.
// A reset frequency of 0 means the rate is fixed until maturity: exactly one period.
func PeriodsUntil(purchaseDate, maturityDate time.Time, resetFrequencyMonths int) int {
	if resetFrequencyMonths <= 0 {
		return 1
	}
	months := MonthsBetween(purchaseDate, maturityDate)
	return (months + resetFrequencyMonths - 1) / resetFrequencyMonths
}

// ReconcileRates builds the rate mapping for periods 1..periods.
// Rates already configured for an index are kept, missing indices get PlaceholderRate
// and indices beyond periods are dropped.
func ReconcileRates(existing map[int]domain.BondRate, periods int) map[int]domain.BondRate {
	rates := make(map[int]domain.BondRate, periods)
	for index := 1; index <= periods; index++ {
		if rate, ok := existing[index]; ok {
			rates[index] = rate
			continue
		}
		rates[index] = domain.BondRate{Rate: PlaceholderRate}
	}
	return rates
}

// Reconfigure re-derives the rate mapping after the maturity date or the reset
// frequency changed. Settings without a maturity date are returned unchanged.
func Reconfigure(settings domain.BondSettings, purchaseDate time.Time) domain.BondSettings {
	if settings.MaturityDate == nil {
		return settings
	}
	periods := PeriodsUntil(purchaseDate, *settings.MaturityDate, settings.InterestRateResetFrequencyMonths)
	settings.InterestRates = ReconcileRates(settings.InterestRates, periods)
	return settings
}

// RateForPeriod returns the annual rate, in percent, applying to a 1-based period.
// An unconfigured period uses the rate of the last configured period, and
// PlaceholderRate when no period is configured at all.
func RateForPeriod(rates map[int]domain.BondRate, index int) float64 {
	if rate, ok := rates[index]; ok {
		return rate.Rate
	}
	last := 0
	for i := range rates {
		if i > last {
			last = i
		}
	}
	if last == 0 {
		return PlaceholderRate
	}
	return rates[last].Rate
}

// Value computes the value of a bond position at evaluationDate.
// Logic:
//  1. Walk from the purchase date through rate resets, capitalization dates, the evaluation date and maturity
//  2. Each segment accrues principal * rate * periodYears * segmentDays/periodDays
//  3. With capitalization of interest, accrued interest joins the principal on every capitalization date
//  4. Without it, interest is kept aside and never compounds
//
// Accrual stops at maturity. Missing settings or maturity, or an evaluation date
// before purchase, yield the purchase price.
func Value(settings *domain.BondSettings, purchasePrice decimal.Decimal, purchaseDate, evaluationDate time.Time) decimal.Decimal {
	if settings == nil || settings.MaturityDate == nil {
		return purchasePrice
	}
	maturity := *settings.MaturityDate
	if !evaluationDate.After(purchaseDate) || !maturity.After(purchaseDate) {
		return purchasePrice
	}

	end := evaluationDate
	if end.After(maturity) {
		end = maturity
	}

	capitalizationFrequency := 0
	if settings.CapitalizationOfInterest && settings.CapitalizationFrequencyMonths != nil {
		capitalizationFrequency = *settings.CapitalizationFrequencyMonths
	}

	principal := purchasePrice.InexactFloat64()
	accrued := 0.0
	current := purchaseDate
	period := 1

	for current.Before(end) {
		periodStart, periodEnd, periodYears := periodBounds(settings, purchaseDate, maturity, period)
		if !current.Before(periodEnd) {
			period++
			continue
		}

		next := periodEnd
		var capitalizeAt time.Time
		if capitalizationFrequency > 0 {
			capitalizeAt = nextBoundary(purchaseDate, current, capitalizationFrequency)
			if capitalizeAt.Before(next) {
				next = capitalizeAt
			}
		}
		if end.Before(next) {
			next = end
		}

		rate := RateForPeriod(settings.InterestRates, period) / 100
		share := days(current, next) / days(periodStart, periodEnd)
		accrued += principal * rate * periodYears * share

		if capitalizationFrequency > 0 && next.Equal(capitalizeAt) {
			principal += accrued
			accrued = 0
		}
		current = next
	}

	return decimal.NewFromFloat(principal + accrued)
}

// MaturityValue computes the value the bond will have on its maturity date
func MaturityValue(settings *domain.BondSettings, purchasePrice decimal.Decimal, purchaseDate time.Time) decimal.Decimal {
	if settings == nil || settings.MaturityDate == nil {
		return purchasePrice
	}
	return Value(settings, purchasePrice, purchaseDate, *settings.MaturityDate)
}

// periodBounds returns the start, end and length in years of a 1-based rate period.
// A bond without rate resets has a single period running until maturity.
func periodBounds(settings *domain.BondSettings, purchaseDate, maturity time.Time, period int) (time.Time, time.Time, float64) {
	frequency := settings.InterestRateResetFrequencyMonths
	if frequency <= 0 {
		return purchaseDate, maturity, days(purchaseDate, maturity) / daysPerYear
	}
	periodStart := domain.AddMonths(purchaseDate, (period-1)*frequency)
	periodEnd := domain.AddMonths(purchaseDate, period*frequency)
	return periodStart, periodEnd, float64(frequency) / monthsPerYear
}

// nextBoundary returns the first anchor + k*frequency months strictly after t
func nextBoundary(anchor, t time.Time, frequency int) time.Time {
	k := max(MonthsBetween(anchor, t)/frequency, 1)
	for {
		boundary := domain.AddMonths(anchor, k*frequency)
		if boundary.After(t) {
			return boundary
		}
		k++
	}
}

func days(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
