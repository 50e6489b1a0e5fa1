package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

// userSettingsRepository implements domain.UserSettingsRepository
type userSettingsRepository struct {
	db *DB
}

// NewUserSettingsRepository creates a new user settings repository
func NewUserSettingsRepository(db *DB) domain.UserSettingsRepository {
	return &userSettingsRepository{db: db}
}

// GetByUserID retrieves the settings of a user
func (r *userSettingsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	query := `
		SELECT user_id, currency, salary_per_month
		FROM user_settings
		WHERE user_id = $1
	`

	var settings domain.UserSettings
	var salary sql.NullString

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.Currency,
		&salary,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings of user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}

	settings.SalaryPerMonth = decimal.Zero
	if salary.Valid {
		parsed, err := decimal.NewFromString(salary.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse salary_per_month: %w", err)
		}
		settings.SalaryPerMonth = parsed
	}

	return &settings, nil
}
