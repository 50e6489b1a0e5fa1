package valuation

import (
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
)

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

// MockExchangeRateRepository is a mock implementation of ExchangeRateRepository for testing
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) GetRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	args := m.Called(ctx, source, target)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func newTestService() (*ValuationService, *MockAssetRepository, *MockUserSettingsRepository, *MockExchangeRateRepository) {
	assetRepo := new(MockAssetRepository)
	settingsRepo := new(MockUserSettingsRepository)
	rateRepo := new(MockExchangeRateRepository)
	return NewValuationService(assetRepo, settingsRepo, rateRepo, zerolog.Nop()), assetRepo, settingsRepo, rateRepo
}

func TestGetPortfolioValue_SameCurrency(t *testing.T) {
	ctx := context.Background()
	service, assetRepo, settingsRepo, rateRepo := newTestService()
	userID := uuid.New()

	settingsRepo.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{UserID: userID, Currency: "USD"}, nil)
	assetRepo.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
		{ID: uuid.New(), Type: domain.AssetTypeStocks, Currency: "USD", PurchasePrice: decimal.NewFromInt(100), CurrentPrice: dec(120), Quantity: dec(10)},
		{ID: uuid.New(), Type: domain.AssetTypeSavings, Currency: "usd", PurchasePrice: decimal.NewFromInt(5000)},
	}, nil)

	valuation, err := service.GetPortfolioValue(ctx, userID, now)

	require.NoError(t, err)
	assert.Equal(t, "USD", valuation.Currency)
	assert.True(t, decimal.NewFromInt(6200).Equal(valuation.Total))
	assert.True(t, decimal.NewFromInt(1200).Equal(valuation.Distribution[domain.AssetTypeStocks]))
	assert.True(t, decimal.NewFromInt(5000).Equal(valuation.Distribution[domain.AssetTypeSavings]))
	assert.True(t, valuation.Distribution[domain.AssetTypeCrypto].IsZero())
	assert.Len(t, valuation.Distribution, len(domain.AssetTypes))
	require.Len(t, valuation.Positions, 2)
	assert.True(t, decimal.NewFromInt(120).Equal(valuation.Positions[0].Price))
	assert.InDelta(t, 20, valuation.Positions[0].GrowthPercent, 1e-9)
	assert.Equal(t, 0.0, valuation.Positions[1].GrowthPercent)

	rateRepo.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything, mock.Anything)
	assetRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestGetPortfolioValue_TranslatesCurrencies(t *testing.T) {
	ctx := context.Background()
	service, assetRepo, settingsRepo, rateRepo := newTestService()
	userID := uuid.New()

	settingsRepo.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{UserID: userID, Currency: "PLN"}, nil)
	assetRepo.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
		{ID: uuid.New(), Type: domain.AssetTypeStocks, Currency: "USD", PurchasePrice: decimal.NewFromInt(100), Quantity: dec(2)},
		{ID: uuid.New(), Type: domain.AssetTypeCrypto, Currency: "USD", PurchasePrice: decimal.NewFromInt(50)},
		{ID: uuid.New(), Type: domain.AssetTypeSavings, Currency: "PLN", PurchasePrice: decimal.NewFromInt(1000)},
	}, nil)
	rateRepo.On("GetRate", ctx, "USD", "PLN").Return(decimal.NewFromInt(4), nil).Once()

	valuation, err := service.GetPortfolioValue(ctx, userID, now)

	require.NoError(t, err)
	assert.Equal(t, "PLN", valuation.Currency)
	assert.True(t, decimal.NewFromInt(2000).Equal(valuation.Total), "got %s", valuation.Total)
	assert.True(t, decimal.NewFromInt(800).Equal(valuation.Distribution[domain.AssetTypeStocks]))
	assert.True(t, decimal.NewFromInt(200).Equal(valuation.Distribution[domain.AssetTypeCrypto]))

	rateRepo.AssertExpectations(t)
}

func TestGetPortfolioValue_MissingExchangeRate(t *testing.T) {
	ctx := context.Background()
	service, assetRepo, settingsRepo, rateRepo := newTestService()
	userID := uuid.New()

	settingsRepo.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{UserID: userID, Currency: "EUR"}, nil)
	assetRepo.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
		{ID: uuid.New(), Type: domain.AssetTypeStocks, Currency: "JPY", PurchasePrice: decimal.NewFromInt(100)},
	}, nil)
	rateRepo.On("GetRate", ctx, "JPY", "EUR").Return(decimal.Zero, domain.ErrExchangeRateNotFound)

	valuation, err := service.GetPortfolioValue(ctx, userID, now)

	assert.Nil(t, valuation)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExchangeRateNotFound))
	assert.Contains(t, err.Error(), "failed to convert JPY to EUR")
}

func TestGetPortfolioValue_PricesBondsWithAccrual(t *testing.T) {
	ctx := context.Background()
	service, assetRepo, settingsRepo, _ := newTestService()
	userID := uuid.New()

	purchased := now.AddDate(-1, 0, 0)
	maturity := now.AddDate(4, 0, 0)
	assetRepo.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
		{
			ID:            uuid.New(),
			Type:          domain.AssetTypeBonds,
			PurchasePrice: decimal.NewFromInt(100),
			CurrentPrice:  dec(999),
			Quantity:      dec(10),
			PurchaseDate:  &purchased,
			BondSettings: &domain.BondSettings{
				MaturityDate:                     &maturity,
				InterestRateResetFrequencyMonths: 12,
				InterestRates:                    map[int]domain.BondRate{1: {Rate: 5}},
			},
		},
	}, nil)
	settingsRepo.On("GetByUserID", ctx, userID).Return(nil, domain.ErrNotFound)

	valuation, err := service.GetPortfolioValue(ctx, userID, now)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCurrency, valuation.Currency)
	assert.InDelta(t, 1050, valuation.Total.InexactFloat64(), 1e-6)
	assert.InDelta(t, 105, valuation.Positions[0].Price.InexactFloat64(), 1e-6)
	assert.InDelta(t, 1050, valuation.Distribution[domain.AssetTypeBonds].InexactFloat64(), 1e-6)
}

func TestPositionPrice_BondWithoutMaturityUsesCurrentPrice(t *testing.T) {
	purchased := now.AddDate(-1, 0, 0)
	position := domain.AssetPosition{
		ID:            uuid.New(),
		Type:          domain.AssetTypeBonds,
		PurchasePrice: decimal.NewFromInt(100),
		CurrentPrice:  dec(103),
		PurchaseDate:  &purchased,
		BondSettings: &domain.BondSettings{
			InterestRateResetFrequencyMonths: 12,
			InterestRates:                    map[int]domain.BondRate{1: {Rate: 5}},
		},
	}

	assert.True(t, decimal.NewFromInt(103).Equal(PositionPrice(&position, now)))

	position.CurrentPrice = nil
	assert.True(t, decimal.NewFromInt(100).Equal(PositionPrice(&position, now)))
}

func TestGetPortfolioValue_Errors(t *testing.T) {
	ctx := context.Background()
	repoErr := errors.New("connection refused")

	tests := []struct {
		name   string
		setup  func(assetRepo *MockAssetRepository, settingsRepo *MockUserSettingsRepository, userID uuid.UUID)
		errMsg string
	}{
		{
			name: "Settings lookup fails",
			setup: func(_ *MockAssetRepository, settingsRepo *MockUserSettingsRepository, userID uuid.UUID) {
				settingsRepo.On("GetByUserID", ctx, userID).Return(nil, repoErr)
			},
			errMsg: "failed to get user settings",
		},
		{
			name: "Asset listing fails",
			setup: func(assetRepo *MockAssetRepository, settingsRepo *MockUserSettingsRepository, userID uuid.UUID) {
				settingsRepo.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{Currency: "USD"}, nil)
				assetRepo.On("ListActiveByUser", ctx, userID).Return(nil, repoErr)
			},
			errMsg: "failed to list assets",
		},
		{
			name: "Invalid position",
			setup: func(assetRepo *MockAssetRepository, settingsRepo *MockUserSettingsRepository, userID uuid.UUID) {
				settingsRepo.On("GetByUserID", ctx, userID).Return(&domain.UserSettings{Currency: "USD"}, nil)
				assetRepo.On("ListActiveByUser", ctx, userID).Return([]domain.AssetPosition{
					{ID: uuid.New(), Type: "art", PurchasePrice: decimal.NewFromInt(1)},
				}, nil)
			},
			errMsg: "invalid asset type: art",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, assetRepo, settingsRepo, _ := newTestService()
			userID := uuid.New()
			tt.setup(assetRepo, settingsRepo, userID)

			valuation, err := service.GetPortfolioValue(ctx, userID, now)

			assert.Nil(t, valuation)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValuePositions_Empty(t *testing.T) {
	service, _, _, _ := newTestService()

	valuation, err := service.ValuePositions(context.Background(), nil, "", now)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCurrency, valuation.Currency)
	assert.True(t, valuation.Total.IsZero())
	assert.Empty(t, valuation.Positions)
}
