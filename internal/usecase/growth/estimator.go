package growth

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/simaogato/networth-backend/internal/domain"
)

const (
	// DaysPerMonth is the average month length used to convert day gaps into months
	DaysPerMonth = 30.44

	// MinGapDays is the minimum distance between two snapshots used as a pair
	MinGapDays = 7

	// OutlierGrowthPercent marks a pair as a deposit or withdrawal, not organic growth
	OutlierGrowthPercent = 50

	// MaxMonthlyRatePercent bounds every estimate to [-MaxMonthlyRatePercent, MaxMonthlyRatePercent]
	MaxMonthlyRatePercent = 10

	minElapsedMonths = 0.1
)

// EstimateFromSnapshots derives a representative monthly growth rate, in percent,
// from a chronologically ordered series of portfolio snapshots.
// Logic:
//  1. Deduplicate by calendar day (first snapshot of the day wins)
//  2. Keep only snapshots at least MinGapDays apart
//  3. Compute a monthly rate per consecutive pair, dropping pairs that moved by OutlierGrowthPercent or more
//  4. Return the median rate, clamped and rounded to 2 decimals
//
// Returns an *domain.InvalidInputError if timestamps go backwards.
func EstimateFromSnapshots(snapshots []domain.PortfolioSnapshot) (float64, error) {
	if err := domain.ValidateSnapshots(snapshots); err != nil {
		return 0, err
	}

	unique := dedupeByDay(snapshots)
	if len(unique) < 2 {
		return 0, nil
	}

	filtered := filterByGap(unique)

	rates := make([]float64, 0, len(filtered)-1)
	for i := 1; i < len(filtered); i++ {
		prev := filtered[i-1].TotalValue.InexactFloat64()
		curr := filtered[i].TotalValue.InexactFloat64()
		if prev <= 0 {
			continue
		}

		growthPct := (curr - prev) / prev * 100
		if math.Abs(growthPct) >= OutlierGrowthPercent {
			continue
		}

		elapsed := monthsBetween(filtered[i-1].Timestamp, filtered[i].Timestamp)
		rates = append(rates, growthPct/elapsed)
	}

	if len(rates) == 0 {
		return overallRate(filtered[0], filtered[len(filtered)-1]), nil
	}

	return round2(clamp(median(rates))), nil
}

// EstimateFromPositions derives a monthly growth rate, in percent, from the gain of
// a static list of positions spread over their invested-amount weighted holding period.
// Used when no snapshot history exists.
func EstimateFromPositions(positions []domain.AssetPosition, now time.Time) float64 {
	if len(positions) == 0 {
		return 0
	}

	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero
	monthsHeld := make([]float64, 0, len(positions))
	weights := make([]float64, 0, len(positions))

	for i := range positions {
		invested := positions[i].InvestedAmount()
		totalInvested = totalInvested.Add(invested)
		totalCurrent = totalCurrent.Add(positions[i].CurrentValue())

		if positions[i].PurchaseDate == nil {
			continue
		}
		held := now.Sub(*positions[i].PurchaseDate).Hours() / 24 / DaysPerMonth
		monthsHeld = append(monthsHeld, math.Max(0, held))
		weights = append(weights, invested.InexactFloat64())
	}

	if !totalInvested.IsPositive() {
		return 0
	}

	invested := totalInvested.InexactFloat64()
	averageMonthsHeld := 1.0
	if len(monthsHeld) > 0 {
		averageMonthsHeld = math.Max(1, floats.Dot(monthsHeld, weights)/invested)
	}

	gainPct := (totalCurrent.InexactFloat64() - invested) / invested * 100
	return clamp(gainPct / averageMonthsHeld)
}

// HasHistory reports whether the snapshots span at least two calendar days
func HasHistory(snapshots []domain.PortfolioSnapshot) bool {
	return len(dedupeByDay(snapshots)) >= 2
}

// dedupeByDay keeps the first snapshot of each UTC calendar day, preserving order
func dedupeByDay(snapshots []domain.PortfolioSnapshot) []domain.PortfolioSnapshot {
	seen := make(map[string]bool, len(snapshots))
	unique := make([]domain.PortfolioSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		day := s.Timestamp.UTC().Format(time.DateOnly)
		if seen[day] {
			continue
		}
		seen[day] = true
		unique = append(unique, s)
	}
	return unique
}

// filterByGap greedily keeps snapshots at least MinGapDays after the last kept one.
// The last snapshot is forced in when nothing else qualified, so at least two remain.
func filterByGap(snapshots []domain.PortfolioSnapshot) []domain.PortfolioSnapshot {
	filtered := []domain.PortfolioSnapshot{snapshots[0]}
	for _, s := range snapshots[1:] {
		last := filtered[len(filtered)-1]
		if daysBetween(last.Timestamp, s.Timestamp) >= MinGapDays {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) < 2 {
		filtered = append(filtered, snapshots[len(snapshots)-1])
	}
	return filtered
}

// overallRate is the fallback used when every pair was discarded as an outlier
func overallRate(first, last domain.PortfolioSnapshot) float64 {
	start := first.TotalValue.InexactFloat64()
	if start <= 0 {
		return 0
	}
	end := last.TotalValue.InexactFloat64()
	months := monthsBetween(first.Timestamp, last.Timestamp)
	return clamp((end - start) / start / months * 100)
}

// median sorts a copy of values and averages the two middle elements for even counts
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return stat.Mean(sorted[mid-1:mid+1], nil)
	}
	return sorted[mid]
}

func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

func monthsBetween(from, to time.Time) float64 {
	return math.Max(minElapsedMonths, daysBetween(from, to)/DaysPerMonth)
}

func clamp(rate float64) float64 {
	return math.Max(-MaxMonthlyRatePercent, math.Min(MaxMonthlyRatePercent, rate))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
