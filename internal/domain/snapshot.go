package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PortfolioSnapshot is one persisted total portfolio value.
// Snapshots are produced by an external periodic job and are immutable.
type PortfolioSnapshot struct {
	ID         uuid.UUID
	Timestamp  time.Time
	TotalValue decimal.Decimal
}

// ValidateSnapshots checks that timestamps never go backwards.
// Same-day duplicates and irregular gaps are allowed.
func ValidateSnapshots(snapshots []PortfolioSnapshot) error {
	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].Timestamp.Before(snapshots[i-1].Timestamp) {
			return &InvalidInputError{
				Field:  "snapshots",
				Reason: fmt.Sprintf("timestamp at index %d is before index %d", i, i-1),
			}
		}
	}
	return nil
}
