package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// MemoryRepository is an in-process order store for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Order
	byCart map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[uuid.UUID]*domain.Order),
		byCart: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCart[order.CartID]; exists {
		return ErrDuplicateCart
	}
	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	r.byID[order.ID] = &copied
	r.byCart[order.CartID] = order.ID
	return nil
}

func (r *MemoryRepository) GetOrderByID(_ context.Context, userID string, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byID[id]
	if !ok || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	copied := *order
	copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &copied, nil
}

func (r *MemoryRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Order
	for _, order := range r.byID {
		if order.UserID != userID {
			continue
		}
		copied := *order
		copied.Lines = append([]domain.OrderLine(nil), order.Lines...)
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PlacedAt.After(result[j].PlacedAt)
	})
	return result, nil
}
