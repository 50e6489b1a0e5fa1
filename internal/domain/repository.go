package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotRepository reads the portfolio value history of a user
type SnapshotRepository interface {
	// ListByUser returns every snapshot of the user ordered by timestamp ascending
	ListByUser(ctx context.Context, userID uuid.UUID) ([]PortfolioSnapshot, error)
}

// AssetRepository reads asset positions
type AssetRepository interface {
	// ListActiveByUser returns the user's active (not closed) positions
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]AssetPosition, error)
}

// UserSettingsRepository reads user-configured defaults
type UserSettingsRepository interface {
	// GetByUserID returns the settings of a user
	// Returns an error wrapping ErrNotFound if the user has no settings
	GetByUserID(ctx context.Context, userID uuid.UUID) (*UserSettings, error)
}

// ExchangeRateRepository reads currency conversion rates
type ExchangeRateRepository interface {
	// GetRate returns the multiplier converting an amount in source into target
	// Returns an error wrapping ErrExchangeRateNotFound if the pair is unknown
	GetRate(ctx context.Context, source, target string) (decimal.Decimal, error)
}
