package repository

import (
	"context"
	"errors"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart persistence.
// Consumers define this interface, not the MongoDB implementation.
// Carts are stored whole (read-modify-write documents); the services
// serialize all writes to one user's cart, so the repository never has
// to merge concurrent updates itself.
type CartRepository interface {
	// GetPendingCart returns the user's open cart, or ErrCartNotFound
	GetPendingCart(ctx context.Context, userID string) (*domain.Cart, error)

	// UpsertCart creates or replaces a cart keyed by cart ID.
	// Ordered and cancelled carts stay behind as history.
	UpsertCart(ctx context.Context, cart *domain.Cart) error
}
