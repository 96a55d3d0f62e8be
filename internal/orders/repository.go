package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateCart = errors.New("an order for this cart already exists")
)

// Repository is the append-only order store. Orders are never mutated
// after creation; fulfillment owns later status updates.
type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}
