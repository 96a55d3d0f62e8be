package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishan739/sanskriti-bazaar/internal/cache"
	"github.com/ishan739/sanskriti-bazaar/internal/domain"
	"github.com/ishan739/sanskriti-bazaar/internal/inventory"
	"github.com/ishan739/sanskriti-bazaar/internal/repository"
)

type mockCache struct {
	m     sync.RWMutex
	carts map[string]*domain.Cart
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[userID] = cart
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *mockCache) cached(userID string) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

type cartFixture struct {
	svc   *CartService
	repo  *repository.MemoryRepository
	inv   *inventory.MemoryStore
	cache *mockCache
	locks *UserLocks
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	repo := repository.NewMemoryRepository()
	inv := inventory.NewMemoryStore()
	mc := newMockCache()
	locks := NewUserLocks()
	return &cartFixture{
		svc:   NewCartService(repo, inv, mc, locks),
		repo:  repo,
		inv:   inv,
		cache: mc,
		locks: locks,
	}
}

func (f *cartFixture) seedItem(t *testing.T, id string, price int64, stock int) {
	t.Helper()
	err := f.inv.PutItem(context.Background(), domain.Item{
		ID:    id,
		Name:  "Item " + id,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	})
	require.NoError(t, err)
}

func TestGetCart_EmptyWhenNoneExists(t *testing.T) {
	f := newCartFixture(t)

	cart, err := f.svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalAmount.IsZero())
	assert.Equal(t, domain.CartStatusPending, cart.Status)
	assert.Empty(t, cart.ID, "a cart that was never persisted has no identity")

	// Repeated reads agree instead of minting a fresh phantom ID each
	// time.
	again, err := f.svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	// A plain read never persists a cart.
	_, err = f.repo.GetPendingCart(context.Background(), "user-1")
	assert.ErrorIs(t, err, repository.ErrCartNotFound)
}

func TestGetOrCreateCart_NeverCreatesSecondPendingCart(t *testing.T) {
	f := newCartFixture(t)

	const callers = 20
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cart, err := f.svc.GetOrCreateCart(context.Background(), "user-1")
			if assert.NoError(t, err) {
				ids[n] = cart.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id, "every caller sees the same pending cart")
	}
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)

	for _, qty := range []int{0, -1} {
		_, err := f.svc.AddItem(context.Background(), "user-1", "item-1", qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestAddItem_UnknownItem(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.AddItem(context.Background(), "user-1", "missing", 1)
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestAddItem_SnapshotsCurrentPrice(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	cart, err := f.svc.AddItem(ctx, "user-1", "item-1", 2)
	require.NoError(t, err)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(100)))

	// A price change does not rewrite the stored snapshot...
	f.seedItem(t, "item-1", 80, 10)
	stored, err := f.repo.GetPendingCart(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].PriceAtAdd.Equal(decimal.NewFromInt(50)))

	// ...until the same item is added again, which refreshes it.
	cart, err = f.svc.AddItem(ctx, "user-1", "item-1", 1)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.True(t, cart.Lines[0].PriceAtAdd.Equal(decimal.NewFromInt(80)))
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(240)))
}

func TestAddItem_DoesNotTouchStock(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "user-1", "item-1", 7)
	require.NoError(t, err)

	item, err := f.inv.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Stock, "stock is reserved only at checkout")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "user-1", "item-1", 2)
	require.NoError(t, err)

	cart, err := f.svc.UpdateQuantity(ctx, "user-1", "item-1", 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	// No cart at all
	_, err := f.svc.UpdateQuantity(ctx, "user-1", "item-1", 2)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	// Cart exists but has no such line
	_, err = f.svc.AddItem(ctx, "user-1", "item-1", 1)
	require.NoError(t, err)
	_, err = f.svc.UpdateQuantity(ctx, "user-1", "other", 2)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, "user-1", "item-1", 2)
	require.NoError(t, err)

	first, err := f.svc.RemoveItem(ctx, "user-1", "item-1")
	require.NoError(t, err)
	assert.True(t, first.IsEmpty())

	second, err := f.svc.RemoveItem(ctx, "user-1", "item-1")
	require.NoError(t, err, "removing an absent line is not an error")
	assert.True(t, second.IsEmpty())
	assert.Equal(t, first.ID, second.ID)
}

func TestRemoveItem_NoCart(t *testing.T) {
	f := newCartFixture(t)

	cart, err := f.svc.RemoveItem(context.Background(), "user-1", "item-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.ID)
}

func TestConcurrentAddItem_NoLostUpdates(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		f.seedItem(t, fmt.Sprintf("item-%d", i), 10, 100)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.AddItem(ctx, "user-1", fmt.Sprintf("item-%d", i), 1)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	cart, err := f.repo.GetPendingCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, n)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(n*10)),
		"total = %s", cart.TotalAmount)
}

func TestAddItem_InvalidatesCache(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	stale := domain.NewCart("user-1")
	require.NoError(t, f.cache.Set(ctx, "user-1", stale))

	_, err := f.svc.AddItem(ctx, "user-1", "item-1", 1)
	require.NoError(t, err)

	assert.Nil(t, f.cache.cached("user-1"))
}

func TestGetCart_PopulatesCacheAfterMiss(t *testing.T) {
	f := newCartFixture(t)
	f.seedItem(t, "item-1", 50, 10)
	ctx := context.Background()

	added, err := f.svc.AddItem(ctx, "user-1", "item-1", 1)
	require.NoError(t, err)

	cart, err := f.svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, added.ID, cart.ID)

	assert.Eventually(t, func() bool {
		return f.cache.cached("user-1") != nil
	}, time.Second, 10*time.Millisecond, "read-through populates the cache")
}
