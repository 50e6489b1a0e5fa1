package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/summary"
)

// PositionValuer values positions in a currency
type PositionValuer interface {
	ValuePositions(ctx context.Context, positions []domain.AssetPosition, currency string, now time.Time) (*domain.PortfolioValuation, error)
}

// ParameterSeeder builds the starting parameters of a user
type ParameterSeeder interface {
	Seed(settings *domain.UserSettings) domain.ForecastParameters
}

// Overrides are user-supplied parameter changes. Nil fields keep the seeded value.
type Overrides struct {
	YearsAhead                      *int
	GrowthRatePercent               *float64 // setting a rate disables the automatic rate
	GrowthRateUnit                  *domain.RateUnit
	AnnualInflationPercent          *float64
	ContributionAmount              *decimal.Decimal
	AnnualContributionGrowthPercent *float64
	UseNominalValues                *bool
}

// Apply returns params with every non-nil override set
func (o Overrides) Apply(params domain.ForecastParameters) domain.ForecastParameters {
	if o.YearsAhead != nil {
		params.YearsAhead = *o.YearsAhead
	}
	if o.GrowthRatePercent != nil {
		params.GrowthRatePercent = *o.GrowthRatePercent
		params.AutoGrowthRate = false
	}
	if o.GrowthRateUnit != nil {
		params.GrowthRateUnit = *o.GrowthRateUnit
	}
	if o.AnnualInflationPercent != nil {
		params.AnnualInflationPercent = *o.AnnualInflationPercent
	}
	if o.ContributionAmount != nil {
		params.ContributionAmount = *o.ContributionAmount
	}
	if o.AnnualContributionGrowthPercent != nil {
		params.AnnualContributionGrowthPercent = *o.AnnualContributionGrowthPercent
	}
	if o.UseNominalValues != nil {
		params.UseNominalValues = *o.UseNominalValues
	}
	return params
}

// Report is a complete forecast for one user
type Report struct {
	UserID      uuid.UUID
	Currency    string
	GeneratedAt time.Time
	Parameters  domain.ForecastParameters
	StartValue  decimal.Decimal
	Projection  Projection
	Summary     domain.ForecastSummary
	Formatted   summary.Formatted
}

// ForecastService builds forecasts from the stored history of a user
type ForecastService struct {
	SnapshotRepo domain.SnapshotRepository
	AssetRepo    domain.AssetRepository
	SettingsRepo domain.UserSettingsRepository
	Valuer       PositionValuer
	Seeder       ParameterSeeder
	logger       zerolog.Logger
}

// NewForecastService creates a new ForecastService instance
func NewForecastService(
	snapshotRepo domain.SnapshotRepository,
	assetRepo domain.AssetRepository,
	settingsRepo domain.UserSettingsRepository,
	valuer PositionValuer,
	seeder ParameterSeeder,
	logger zerolog.Logger,
) *ForecastService {
	return &ForecastService{
		SnapshotRepo: snapshotRepo,
		AssetRepo:    assetRepo,
		SettingsRepo: settingsRepo,
		Valuer:       valuer,
		Seeder:       seeder,
		logger:       logger.With().Str("component", "forecast").Logger(),
	}
}

// BuildForecast loads a user's data and runs the projection engine on it.
// Logic:
//  1. Seed parameters from the user settings (defaults when the user has none), then apply overrides
//  2. With the automatic rate, estimate it from snapshots, falling back to positions
//  3. Start from the latest snapshot total, or from the valuation of the positions without history
//  4. Project, summarize and log every warning raised by the growth assumption
func (s *ForecastService) BuildForecast(ctx context.Context, userID uuid.UUID, overrides Overrides, now time.Time) (*Report, error) {
	log := s.logger.With().Str("user_id", userID.String()).Logger()

	settings, err := s.SettingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user settings: %w", err)
		}
		log.Debug().Msg("no user settings, seeding defaults")
		settings = nil
	}

	currency := domain.DefaultCurrency
	if settings != nil && settings.Currency != "" {
		currency = settings.Currency
	}

	params := overrides.Apply(s.Seeder.Seed(settings)).Normalize()

	snapshots, positions, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.AutoGrowthRate {
		rate, err := EstimateGrowthRate(snapshots, positions, now)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate growth rate: %w", err)
		}
		params.GrowthRatePercent = rate
		params.GrowthRateUnit = domain.RateUnitMonthly
	}

	startValue, err := s.startValue(ctx, snapshots, positions, currency, now)
	if err != nil {
		return nil, err
	}

	result := RunProjection(params, startValue, now)
	for _, warning := range result.Warnings {
		log.Warn().
			Str("code", string(warning.Code)).
			Float64("rate", warning.Value).
			Msg(warning.Message)
	}

	forecastSummary := SummarizeProjection(result.Monthly, params, startValue)

	log.Debug().
		Float64("monthly_rate", result.MonthlyRatePercent).
		Int("years", params.YearsAhead).
		Str("start_value", startValue.String()).
		Str("final_value", forecastSummary.FinalValue.String()).
		Msg("forecast built")

	return &Report{
		UserID:      userID,
		Currency:    currency,
		GeneratedAt: now,
		Parameters:  params,
		StartValue:  startValue,
		Projection:  result,
		Summary:     forecastSummary,
		Formatted:   summary.Format(forecastSummary, currency),
	}, nil
}

// EstimateGrowthRate returns the historical monthly growth rate of a user, in percent
func (s *ForecastService) EstimateGrowthRate(ctx context.Context, userID uuid.UUID, now time.Time) (float64, error) {
	snapshots, positions, err := s.loadHistory(ctx, userID)
	if err != nil {
		return 0, err
	}

	rate, err := EstimateGrowthRate(snapshots, positions, now)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate growth rate: %w", err)
	}
	return rate, nil
}

// loadHistory reads the snapshots and active positions of a user
func (s *ForecastService) loadHistory(ctx context.Context, userID uuid.UUID) ([]domain.PortfolioSnapshot, []domain.AssetPosition, error) {
	snapshots, err := s.SnapshotRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	positions, err := s.AssetRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return snapshots, positions, nil
}

// startValue is the latest snapshot total, or the current value of the positions without history
func (s *ForecastService) startValue(ctx context.Context, snapshots []domain.PortfolioSnapshot, positions []domain.AssetPosition, currency string, now time.Time) (decimal.Decimal, error) {
	if len(snapshots) > 0 {
		return snapshots[len(snapshots)-1].TotalValue, nil
	}
	if len(positions) == 0 {
		return decimal.Zero, nil
	}

	valuation, err := s.Valuer.ValuePositions(ctx, positions, currency, now)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to value positions: %w", err)
	}
	return valuation.Total, nil
}
