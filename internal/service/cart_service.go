package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ishan739/sanskriti-bazaar/internal/cache"
	"github.com/ishan739/sanskriti-bazaar/internal/domain"
	"github.com/ishan739/sanskriti-bazaar/internal/inventory"
	"github.com/ishan739/sanskriti-bazaar/internal/repository"
)

// CartService owns all mutation of a user's pending cart. Every mutating
// operation runs under the user's lock and recomputes the cart total
// before persisting, so a stored cart is never observed with a stale
// total.
type CartService struct {
	repo      repository.CartRepository
	inventory inventory.Store
	cache     cache.CartCache
	locks     *UserLocks
	sfg       singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, inv inventory.Store, cartCache cache.CartCache, locks *UserLocks) *CartService {
	return &CartService{
		repo:      repo,
		inventory: inv,
		cache:     cartCache,
		locks:     locks,
	}
}

// GetCart returns the user's pending cart without creating one; callers
// holding no cart see an empty, unpersisted pending cart with a zero
// ID.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetPendingCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if errSet := s.cache.Set(setCtx, userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// GetOrCreateCart returns the user's pending cart, persisting a fresh
// empty one if none exists. The per-user lock means concurrent calls
// can never create two pending carts.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.getOrCreateLocked(ctx, userID)
}

// AddItem puts quantity of an item into the cart at the item's current
// inventory price. An existing line is topped up and its price snapshot
// refreshed.
func (s *CartService) AddItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("look up item %s: %w", itemID, err)
	}

	cart, err := s.getOrCreateLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.UpsertLine(item.ID, item.Name, quantity, item.Price); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

// UpdateQuantity replaces a line's quantity; zero or less removes the
// line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.repo.GetPendingCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil, domain.ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := cart.SetLineQuantity(itemID, quantity); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

// RemoveItem drops a line from the cart. Removing an absent line returns
// the unchanged cart so client retries stay harmless.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.repo.GetPendingCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.EmptyCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	if !cart.RemoveLine(itemID) {
		return cart, nil
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}

	s.invalidateCache(userID)
	return cart, nil
}

func (s *CartService) getOrCreateLocked(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetPendingCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		cart = domain.NewCart(userID)
		if err := s.repo.UpsertCart(ctx, cart); err != nil {
			return nil, fmt.Errorf("create cart: %w", err)
		}
		return cart, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
