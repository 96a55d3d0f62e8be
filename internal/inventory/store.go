package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// Common errors returned by inventory stores
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a failed reservation with enough detail
// for the caller to adjust the requested quantity and retry.
type InsufficientStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Store is the source of truth for item existence, price and available
// stock. ReserveStock's check-and-decrement is a single atomic unit per
// item so concurrent checkouts can never oversell.
type Store interface {
	// GetItem returns the item, or ErrItemNotFound
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)

	// ReserveStock decrements stock by quantity if and only if
	// stock >= quantity. Returns *InsufficientStockError otherwise.
	ReserveStock(ctx context.Context, itemID string, quantity int) error

	// ReleaseStock returns previously reserved stock to the pool
	// (rollback of a partial checkout, or a cancelled reservation)
	ReleaseStock(ctx context.Context, itemID string, quantity int) error

	// PutItem creates or replaces an item (used for seeding)
	PutItem(ctx context.Context, item domain.Item) error
}
