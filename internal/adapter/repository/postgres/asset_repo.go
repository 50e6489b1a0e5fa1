package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

// assetRepository implements domain.AssetRepository
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// ListActiveByUser retrieves the active positions of a user
func (r *assetRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.AssetPosition, error) {
	query := `
		SELECT id, name, type, currency, purchase_price, current_price, quantity, purchase_date, bond_settings
		FROM assets
		WHERE user_id = $1 AND status = 'active'
		ORDER BY purchase_date ASC NULLS LAST, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	positions := make([]domain.AssetPosition, 0)
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return positions, nil
}

// scanPosition reads one assets row, parsing nullable columns and the bond_settings document
func scanPosition(rows *sql.Rows) (*domain.AssetPosition, error) {
	var position domain.AssetPosition
	var typeStr string
	var purchasePriceStr string
	var currentPrice sql.NullString
	var quantity sql.NullString
	var purchaseDate sql.NullTime
	var bondSettings []byte

	err := rows.Scan(
		&position.ID,
		&position.Name,
		&typeStr,
		&position.Currency,
		&purchasePriceStr,
		&currentPrice,
		&quantity,
		&purchaseDate,
		&bondSettings,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	assetType, err := domain.ParseAssetType(typeStr)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", position.ID, err)
	}
	position.Type = assetType

	// Parse purchase_price (NUMERIC)
	purchasePrice, err := decimal.NewFromString(purchasePriceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse purchase_price: %w", err)
	}
	position.PurchasePrice = purchasePrice

	if position.CurrentPrice, err = parseNullDecimal(currentPrice); err != nil {
		return nil, fmt.Errorf("failed to parse current_price: %w", err)
	}
	if position.Quantity, err = parseNullDecimal(quantity); err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}

	if purchaseDate.Valid {
		date := purchaseDate.Time
		position.PurchaseDate = &date
	}

	// bond_settings is only meaningful for bonds, other types may carry leftovers
	if len(bondSettings) > 0 && assetType == domain.AssetTypeBonds {
		var settings domain.BondSettings
		if err := json.Unmarshal(bondSettings, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse bond_settings of asset %s: %w", position.ID, err)
		}
		position.BondSettings = &settings
	}

	return &position, nil
}

func parseNullDecimal(value sql.NullString) (*decimal.Decimal, error) {
	if !value.Valid {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
