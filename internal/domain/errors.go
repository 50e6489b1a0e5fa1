package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the sentinel wrapped by every InvalidInputError
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrExchangeRateNotFound is returned when no rate exists for a currency pair
	ErrExchangeRateNotFound = errors.New("exchange rate not found")
)

// InvalidInputError reports a contract violation in data handed to the engine
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}
