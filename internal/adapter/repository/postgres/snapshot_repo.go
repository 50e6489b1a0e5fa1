package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/networth-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// ListByUser retrieves the portfolio value history of a user, oldest first
func (r *snapshotRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PortfolioSnapshot, error) {
	query := `
		SELECT id, date, total_portfolio_value
		FROM statistics
		WHERE user_id = $1
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.PortfolioSnapshot, 0)
	for rows.Next() {
		var snapshot domain.PortfolioSnapshot
		var valueStr string

		if err := rows.Scan(&snapshot.ID, &snapshot.Timestamp, &valueStr); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse total_portfolio_value: %w", err)
		}
		snapshot.TotalValue = value

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
