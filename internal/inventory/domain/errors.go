package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound      = errors.New("inventory record not found")
	ErrNonPositiveQuantity = errors.New("quantity must be greater than 0")
	ErrNegativeValue       = errors.New("value cannot be negative")
	ErrExceedsReserved     = errors.New("release quantity exceeds reserved quantity")
)

// InsufficientStockError reports a quantity request that exceeds what the
// ledger holds. Requested and Available are surfaced so callers can render a
// correction hint.
type InsufficientStockError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ItemName, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
