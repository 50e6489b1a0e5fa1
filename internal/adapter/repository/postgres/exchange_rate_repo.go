package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

// exchangeRateRepository implements domain.ExchangeRateRepository
type exchangeRateRepository struct {
	db *DB
}

// NewExchangeRateRepository creates a new exchange rate repository
func NewExchangeRateRepository(db *DB) domain.ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

// GetRate retrieves the latest rate converting source into target
func (r *exchangeRateRepository) GetRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	query := `
		SELECT rate
		FROM currency_exchange_rates
		WHERE source_currency = $1 AND target_currency = $2
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	source = strings.ToUpper(source)
	target = strings.ToUpper(target)

	var rateStr string
	err := r.db.QueryRowContext(ctx, query, source, target).Scan(&rateStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%s to %s: %w", source, target, domain.ErrExchangeRateNotFound)
		}
		return decimal.Zero, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse rate: %w", err)
	}

	return rate, nil
}
