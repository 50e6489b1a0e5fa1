package forecast

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/seeder"
)

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PortfolioSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PortfolioSnapshot), args.Error(1)
}

// MockAssetRepository is a mock implementation of AssetRepository for testing
type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.AssetPosition, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssetPosition), args.Error(1)
}

// MockUserSettingsRepository is a mock implementation of UserSettingsRepository for testing
type MockUserSettingsRepository struct {
	mock.Mock
}

func (m *MockUserSettingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSettings), args.Error(1)
}

// MockPositionValuer is a mock implementation of PositionValuer for testing
type MockPositionValuer struct {
	mock.Mock
}

func (m *MockPositionValuer) ValuePositions(ctx context.Context, positions []domain.AssetPosition, currency string, now time.Time) (*domain.PortfolioValuation, error) {
	args := m.Called(ctx, positions, currency, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioValuation), args.Error(1)
}

type mocks struct {
	snapshots *MockSnapshotRepository
	assets    *MockAssetRepository
	settings  *MockUserSettingsRepository
	valuer    *MockPositionValuer
}

func newTestService(logs *bytes.Buffer) (*ForecastService, mocks) {
	m := mocks{
		snapshots: new(MockSnapshotRepository),
		assets:    new(MockAssetRepository),
		settings:  new(MockUserSettingsRepository),
		valuer:    new(MockPositionValuer),
	}
	logger := zerolog.Nop()
	if logs != nil {
		logger = zerolog.New(logs).Level(zerolog.DebugLevel)
	}
	service := NewForecastService(m.snapshots, m.assets, m.settings, m.valuer, seeder.NewParameterSeeder(2.5), logger)
	return service, m
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func unitPtr(u domain.RateUnit) *domain.RateUnit {
	return &u
}

func TestBuildForecast_FromHistory(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	service, m := newTestService(&logs)
	userID := uuid.New()

	m.settings.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{
		UserID:         userID,
		Currency:       "USD",
		SalaryPerMonth: decimal.NewFromInt(5000),
	}, nil)
	m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{
		snapshot(40, 100000),
		{Timestamp: now.AddDate(0, 0, -40).Add(time.Hour), TotalValue: decimal.NewFromInt(100000)},
		snapshot(0, 110000),
	}, nil)
	m.assets.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{}, nil)

	report, err := service.BuildForecast(ctx, userID, Overrides{}, now)

	require.NoError(t, err)
	assert.Equal(t, userID, report.UserID)
	assert.Equal(t, "USD", report.Currency)
	assert.Equal(t, now, report.GeneratedAt)
	assert.True(t, decimal.NewFromInt(110000).Equal(report.StartValue))
	assert.True(t, decimal.NewFromInt(1000).Equal(report.Parameters.ContributionAmount))
	assert.InDelta(t, 7.61, report.Parameters.GrowthRatePercent, 0.0001)
	assert.Equal(t, domain.RateUnitMonthly, report.Parameters.GrowthRateUnit)
	assert.Len(t, report.Projection.Monthly, 10*12+1)
	assert.Len(t, report.Projection.Yearly, 11)
	assert.True(t, report.Summary.FinalValue.Equal(report.Projection.Monthly[120].NominalValue))
	assert.Equal(t, "USD", report.Formatted.Currency)

	require.Len(t, report.Projection.Warnings, 1)
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), string(domain.WarningAggressiveMonthlyRate))
	assert.Contains(t, logs.String(), userID.String())

	m.valuer.AssertNotCalled(t, "ValuePositions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.settings.AssertExpectations(t)
	m.snapshots.AssertExpectations(t)
	m.assets.AssertExpectations(t)
}

func TestBuildForecast_WithoutHistoryValuesPositions(t *testing.T) {
	ctx := context.Background()
	service, m := newTestService(nil)
	userID := uuid.New()

	yearAgo := now.AddDate(0, 0, -365)
	positions := []domain.AssetPosition{
		{ID: uuid.New(), Type: domain.AssetTypeStocks, PurchasePrice: decimal.NewFromInt(4000), CurrentPrice: decPtr(4480), PurchaseDate: &yearAgo},
	}

	m.settings.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)
	m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{}, nil)
	m.assets.On("ListActiveByUser", ctx, userID).Return(positions, nil)
	m.valuer.On("ValuePositions", ctx, positions, domain.DefaultCurrency, now).Return(&domain.PortfolioValuation{
		Currency: domain.DefaultCurrency,
		Total:    decimal.NewFromInt(4480),
	}, nil)

	report, err := service.BuildForecast(ctx, userID, Overrides{}, now)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCurrency, report.Currency)
	assert.True(t, decimal.NewFromInt(4480).Equal(report.StartValue))
	assert.True(t, report.Parameters.ContributionAmount.IsZero())
	assert.InDelta(t, 1, report.Parameters.GrowthRatePercent, 0.01)
	assert.Empty(t, report.Projection.Warnings)

	m.valuer.AssertExpectations(t)
}

func TestBuildForecast_Overrides(t *testing.T) {
	ctx := context.Background()
	service, m := newTestService(nil)
	userID := uuid.New()

	m.settings.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{UserID: userID, Currency: "EUR"}, nil)
	m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{
		snapshot(60, 10000),
		snapshot(30, 20000),
		snapshot(0, 10000),
	}, nil)
	m.assets.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{}, nil)

	contribution := decimal.NewFromInt(250)
	overrides := Overrides{
		YearsAhead:                      intPtr(2),
		GrowthRatePercent:               floatPtr(6),
		GrowthRateUnit:                  unitPtr(domain.RateUnitAnnual),
		AnnualInflationPercent:          floatPtr(4),
		ContributionAmount:              &contribution,
		AnnualContributionGrowthPercent: floatPtr(0),
		UseNominalValues:                boolPtr(false),
	}

	report, err := service.BuildForecast(ctx, userID, overrides, now)

	require.NoError(t, err)
	assert.False(t, report.Parameters.AutoGrowthRate)
	assert.Equal(t, 6.0, report.Parameters.GrowthRatePercent)
	assert.Equal(t, domain.RateUnitAnnual, report.Parameters.GrowthRateUnit)
	assert.Len(t, report.Projection.Monthly, 25)
	assert.NotNil(t, report.Projection.Monthly[24].RealValue)
	assert.InDelta(t, 0.4868, report.Projection.MonthlyRatePercent, 0.0001)
	assert.True(t, decimal.NewFromInt(10000).Equal(report.StartValue))
	assert.Equal(t, "EUR", report.Formatted.Currency)
}

func TestBuildForecast_Errors(t *testing.T) {
	ctx := context.Background()
	repoErr := errors.New("connection refused")

	tests := []struct {
		name      string
		setup     func(m mocks, userID uuid.UUID)
		errMsg    string
		wantIsErr error
	}{
		{
			name: "Settings lookup fails",
			setup: func(m mocks, userID uuid.UUID) {
				m.settings.On("GetByUserID", ctx, userID).Return(nil, repoErr)
			},
			errMsg:    "failed to get user settings",
			wantIsErr: repoErr,
		},
		{
			name: "Snapshot listing fails",
			setup: func(m mocks, userID uuid.UUID) {
				m.settings.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)
				m.snapshots.On("ListByUser", ctx, userID).Return(nil, repoErr)
			},
			errMsg:    "failed to list snapshots",
			wantIsErr: repoErr,
		},
		{
			name: "Asset listing fails",
			setup: func(m mocks, userID uuid.UUID) {
				m.settings.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)
				m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{}, nil)
				m.assets.On("ListActiveByUser", ctx, userID).Return(nil, repoErr)
			},
			errMsg:    "failed to list assets",
			wantIsErr: repoErr,
		},
		{
			name: "Snapshots out of order",
			setup: func(m mocks, userID uuid.UUID) {
				m.settings.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)
				m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{
					snapshot(0, 100), snapshot(30, 100),
				}, nil)
				m.assets.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{}, nil)
			},
			errMsg:    "failed to estimate growth rate",
			wantIsErr: domain.ErrInvalidInput,
		},
		{
			name: "Valuation fails",
			setup: func(m mocks, userID uuid.UUID) {
				m.settings.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)
				m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{}, nil)
				m.assets.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
					{ID: uuid.New(), Type: domain.AssetTypeStocks, Currency: "GBP", PurchasePrice: decimal.NewFromInt(10)},
				}, nil)
				m.valuer.On("ValuePositions", ctx, mock.Anything, domain.DefaultCurrency, now).Return(nil, domain.ErrExchangeRateNotFound)
			},
			errMsg:    "failed to value positions",
			wantIsErr: domain.ErrExchangeRateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := newTestService(nil)
			userID := uuid.New()
			tt.setup(m, userID)

			report, err := service.BuildForecast(ctx, userID, Overrides{}, now)

			assert.Nil(t, report)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.Is(err, tt.wantIsErr))
		})
	}
}

func TestOverrides_Apply(t *testing.T) {
	base := domain.DefaultForecastParameters()

	t.Run("Empty overrides keep parameters", func(t *testing.T) {
		assert.Equal(t, base, Overrides{}.Apply(base))
	})

	t.Run("Manual rate disables the automatic rate", func(t *testing.T) {
		params := Overrides{GrowthRatePercent: floatPtr(0.8)}.Apply(base)

		assert.False(t, params.AutoGrowthRate)
		assert.Equal(t, 0.8, params.GrowthRatePercent)
	})
}

func TestForecastService_EstimateGrowthRate(t *testing.T) {
	ctx := context.Background()
	service, m := newTestService(nil)
	userID := uuid.New()

	m.snapshots.On("ListByUser", ctx, userID).Return([]domain.PortfolioSnapshot{
		snapshot(40, 100000),
		snapshot(0, 110000),
	}, nil)
	m.assets.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{}, nil)

	rate, err := service.EstimateGrowthRate(ctx, userID, now)

	require.NoError(t, err)
	assert.InDelta(t, 7.61, rate, 0.0001)
	m.settings.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}

func TestForecastService_EstimateGrowthRate_RepositoryError(t *testing.T) {
	ctx := context.Background()
	service, m := newTestService(nil)
	userID := uuid.New()

	m.snapshots.On("ListByUser", ctx, userID).Return(nil, errors.New("timeout"))

	_, err := service.EstimateGrowthRate(ctx, userID, now)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list snapshots")
}
