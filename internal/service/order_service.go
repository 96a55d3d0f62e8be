package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ishan739/sanskriti-bazaar/internal/cache"
	"github.com/ishan739/sanskriti-bazaar/internal/domain"
	"github.com/ishan739/sanskriti-bazaar/internal/events"
	"github.com/ishan739/sanskriti-bazaar/internal/inventory"
	"github.com/ishan739/sanskriti-bazaar/internal/orders"
	"github.com/ishan739/sanskriti-bazaar/internal/repository"
)

// OrderService drives the cart state machine: pending -> ordered via
// PlaceOrder, pending -> cancelled via CancelCart. Stock is reserved
// only here, never at add-to-cart time; carts are long-lived and
// speculative, and reserving on add would starve inventory across
// abandoned carts.
type OrderService struct {
	carts     repository.CartRepository
	orders    orders.Repository
	inventory inventory.Store
	cache     cache.CartCache
	publisher events.Publisher
	locks     *UserLocks
}

func NewOrderService(
	carts repository.CartRepository,
	orderRepo orders.Repository,
	inv inventory.Store,
	cartCache cache.CartCache,
	publisher events.Publisher,
	locks *UserLocks,
) *OrderService {
	return &OrderService{
		carts:     carts,
		orders:    orderRepo,
		inventory: inv,
		cache:     cartCache,
		publisher: publisher,
		locks:     locks,
	}
}

// PlaceOrder converts the user's pending cart into an immutable order.
// Stock is reserved line by line; any failure releases every
// reservation taken so far and leaves the cart pending and untouched,
// so the user can adjust quantities and retry.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string) (*domain.Order, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.carts.GetPendingCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	reserved, err := s.reserveAll(ctx, cart)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrderFromCart(cart)
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.releaseAll(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := cart.MarkOrdered(); err != nil {
		// Unreachable for a cart loaded as pending under the lock
		return nil, err
	}
	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		// The order exists and stock is committed; only the cart
		// status write failed. Surface it loudly rather than
		// double-selling by releasing stock for a live order.
		log.Printf("failed to mark cart %s ordered after placing order %s: %v", cart.ID, order.ID, err)
		return nil, fmt.Errorf("finalize cart: %w", err)
	}

	s.invalidateCache(userID)

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		log.Printf("failed to publish order placed event for %s: %v", order.ID, err)
	}

	return order, nil
}

// CancelCart moves the pending cart to its cancelled terminal state.
// Nothing was reserved for a pending cart, so stock is untouched.
func (s *OrderService) CancelCart(ctx context.Context, userID string) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.carts.GetPendingCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.MarkCancelled(); err != nil {
		return nil, err
	}
	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOrderByID(ctx, userID, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

// reserveAll attempts a reservation for every cart line. On the first
// failure it rolls back the reservations already taken and returns the
// failure, carrying the offending item.
func (s *OrderService) reserveAll(ctx context.Context, cart *domain.Cart) ([]domain.CartLine, error) {
	var reserved []domain.CartLine
	for _, line := range cart.Lines {
		if err := s.inventory.ReserveStock(ctx, line.ItemID, line.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			if errors.Is(err, inventory.ErrItemNotFound) {
				return nil, fmt.Errorf("item %s: %w", line.ItemID, err)
			}
			return nil, err
		}
		reserved = append(reserved, line)
	}
	return reserved, nil
}

func (s *OrderService) releaseAll(ctx context.Context, reserved []domain.CartLine) {
	for _, line := range reserved {
		if err := s.inventory.ReleaseStock(ctx, line.ItemID, line.Quantity); err != nil {
			log.Printf("failed to release %d of item %s during rollback: %v", line.Quantity, line.ItemID, err)
		}
	}
}

func (s *OrderService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
