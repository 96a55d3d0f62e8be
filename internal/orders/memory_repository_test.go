package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

func placedOrder(userID, cartID string) *domain.Order {
	cart := domain.NewCart(userID)
	cart.ID = cartID
	_ = cart.UpsertLine("item-1", "Scroll", 2, decimal.NewFromInt(50))
	return domain.NewOrderFromCart(cart)
}

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	order := placedOrder("user-1", "cart-1")
	require.NoError(t, repo.CreateOrder(ctx, order))

	got, err := repo.GetOrderByID(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(order.TotalAmount))

	_, err = repo.GetOrderByID(ctx, "someone-else", order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound, "orders are scoped to their owner")
}

func TestMemoryRepository_DuplicateCart(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateOrder(ctx, placedOrder("user-1", "cart-1")))

	err := repo.CreateOrder(ctx, placedOrder("user-1", "cart-1"))
	assert.ErrorIs(t, err, ErrDuplicateCart, "one order per cart")
}

func TestMemoryRepository_ListIsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := placedOrder("user-1", "cart-1")
	second := placedOrder("user-1", "cart-2")
	second.PlacedAt = first.PlacedAt.Add(1)

	require.NoError(t, repo.CreateOrder(ctx, first))
	require.NoError(t, repo.CreateOrder(ctx, second))

	list, err := repo.ListOrdersByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}
