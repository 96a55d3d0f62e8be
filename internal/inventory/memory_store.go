package inventory

import (
	"context"
	"sync"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// MemoryStore implements Store with in-memory storage. The mutex makes
// the check-and-decrement in ReserveStock atomic per store; there is no
// window between the stock check and the write.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

// NewMemoryStore creates an empty in-memory inventory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*domain.Item),
	}
}

func (s *MemoryStore) GetItem(_ context.Context, itemID string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[itemID]
	if !exists {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryStore) ReserveStock(_ context.Context, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemID]
	if !exists {
		return ErrItemNotFound
	}
	if item.Stock < quantity {
		return &InsufficientStockError{
			ItemID:    itemID,
			Requested: quantity,
			Available: item.Stock,
		}
	}
	item.Stock -= quantity
	return nil
}

func (s *MemoryStore) ReleaseStock(_ context.Context, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[itemID]
	if !exists {
		return ErrItemNotFound
	}
	item.Stock += quantity
	return nil
}

func (s *MemoryStore) PutItem(_ context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := item
	s.items[item.ID] = &copied
	return nil
}
