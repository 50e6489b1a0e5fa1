package valuation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/usecase/bond"
)

// ValuationService computes the current value of a user's portfolio
type ValuationService struct {
	AssetRepo        domain.AssetRepository
	SettingsRepo     domain.UserSettingsRepository
	ExchangeRateRepo domain.ExchangeRateRepository
	logger           zerolog.Logger
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	assetRepo domain.AssetRepository,
	settingsRepo domain.UserSettingsRepository,
	exchangeRateRepo domain.ExchangeRateRepository,
	logger zerolog.Logger,
) *ValuationService {
	return &ValuationService{
		AssetRepo:        assetRepo,
		SettingsRepo:     settingsRepo,
		ExchangeRateRepo: exchangeRateRepo,
		logger:           logger.With().Str("component", "valuation").Logger(),
	}
}

// GetPortfolioValue values every active position of the user in the user's currency
func (s *ValuationService) GetPortfolioValue(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.PortfolioValuation, error) {
	currency := domain.DefaultCurrency
	settings, err := s.SettingsRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if settings.Currency != "" {
			currency = settings.Currency
		}
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Debug().Str("user_id", userID.String()).Msg("no user settings, using default currency")
	default:
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}

	positions, err := s.AssetRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return s.ValuePositions(ctx, positions, currency, now)
}

// ValuePositions values the given positions in currency.
// Logic:
//  1. Bond positions with settings, a purchase date and a maturity date are priced by the bond accrual model at now
//  2. Other positions use current price, falling back to purchase price
//  3. Value = price * quantity, translated from the asset currency into currency
//  4. Total and per-type distribution are sums of the translated values
func (s *ValuationService) ValuePositions(ctx context.Context, positions []domain.AssetPosition, currency string, now time.Time) (*domain.PortfolioValuation, error) {
	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	valuation := &domain.PortfolioValuation{
		Currency:     currency,
		Total:        decimal.Zero,
		Distribution: make(map[domain.AssetType]decimal.Decimal, len(domain.AssetTypes)),
		Positions:    make([]domain.PositionValue, 0, len(positions)),
	}
	for _, assetType := range domain.AssetTypes {
		valuation.Distribution[assetType] = decimal.Zero
	}

	rates := make(map[string]decimal.Decimal)

	for i := range positions {
		position := &positions[i]
		if err := position.Validate(); err != nil {
			return nil, fmt.Errorf("asset %s: %w", position.ID, err)
		}

		price := PositionPrice(position, now)
		value := price.Mul(position.EffectiveQuantity())

		rate, err := s.rate(ctx, rates, position.Currency, currency)
		if err != nil {
			return nil, err
		}
		value = value.Mul(rate)

		valuation.Total = valuation.Total.Add(value)
		valuation.Distribution[position.Type] = valuation.Distribution[position.Type].Add(value)
		valuation.Positions = append(valuation.Positions, domain.PositionValue{
			AssetID: position.ID,
			Type:    position.Type,
			Price:   price,
			Value:   value,

			GrowthPercent: position.GrowthPercent(),
		})
	}

	return valuation, nil
}

// PositionPrice returns the per-unit price of a position at now.
// Bonds are priced by accrual only when both purchase and maturity dates are known.
func PositionPrice(position *domain.AssetPosition, now time.Time) decimal.Decimal {
	if position.IsBond() && position.PurchaseDate != nil && position.BondSettings.MaturityDate != nil {
		return bond.Value(position.BondSettings, position.PurchasePrice, *position.PurchaseDate, now)
	}
	return position.EffectivePrice()
}

// rate returns the conversion multiplier from source into target, caching lookups per call
func (s *ValuationService) rate(ctx context.Context, cache map[string]decimal.Decimal, source, target string) (decimal.Decimal, error) {
	source = strings.ToUpper(source)
	if source == "" || source == target {
		return decimal.NewFromInt(1), nil
	}

	if rate, ok := cache[source]; ok {
		return rate, nil
	}

	rate, err := s.ExchangeRateRepo.GetRate(ctx, source, target)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to convert %s to %s: %w", source, target, err)
	}
	cache[source] = rate
	return rate, nil
}
