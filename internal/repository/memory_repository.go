package repository

import (
	"context"
	"sync"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// MemoryRepository keeps carts in process memory. Used by tests and as a
// reference implementation of CartRepository.
type MemoryRepository struct {
	mu      sync.RWMutex
	carts   map[string]*domain.Cart // cart ID -> cart
	pending map[string]string       // user ID -> pending cart ID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts:   make(map[string]*domain.Cart),
		pending: make(map[string]string),
	}
}

func (r *MemoryRepository) GetPendingCart(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cartID, ok := r.pending[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cloneCart(r.carts[cartID]), nil
}

func (r *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.ID] = cloneCart(cart)

	if cart.Status == domain.CartStatusPending {
		r.pending[cart.UserID] = cart.ID
	} else if r.pending[cart.UserID] == cart.ID {
		delete(r.pending, cart.UserID)
	}
	return nil
}

// cloneCart copies the cart so callers can't mutate stored state through
// shared slices.
func cloneCart(cart *domain.Cart) *domain.Cart {
	copied := *cart
	copied.Lines = append([]domain.CartLine(nil), cart.Lines...)
	return &copied
}
