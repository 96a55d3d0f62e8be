package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart_Empty(t *testing.T) {
	cart := NewCart("user-1")

	assert.Equal(t, CartStatusPending, cart.Status)
	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalAmount.IsZero())
	assert.NotEmpty(t, cart.ID)
}

func TestUpsertLine_RecomputesTotal(t *testing.T) {
	cart := NewCart("user-1")

	require.NoError(t, cart.UpsertLine("item-a", "Madhubani Painting", 2, decimal.NewFromInt(50)))
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(100)), "total = %s", cart.TotalAmount)

	require.NoError(t, cart.UpsertLine("item-b", "Dhokra Figurine", 1, decimal.NewFromInt(15)))
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(115)))
}

func TestUpsertLine_MergesDuplicateItem(t *testing.T) {
	cart := NewCart("user-1")

	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 2, decimal.NewFromInt(50)))
	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 3, decimal.NewFromInt(50)))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(250)))
}

func TestUpsertLine_RefreshesPriceOnRepeatedAdd(t *testing.T) {
	cart := NewCart("user-1")

	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 1, decimal.NewFromInt(50)))
	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 1, decimal.NewFromInt(60)))

	require.Len(t, cart.Lines, 1)
	assert.True(t, cart.Lines[0].PriceAtAdd.Equal(decimal.NewFromInt(60)))
	assert.True(t, cart.TotalAmount.Equal(decimal.NewFromInt(120)), "both units reprice at last touch")
}

func TestSetLineQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 2, decimal.NewFromInt(50)))

	require.NoError(t, cart.SetLineQuantity("item-a", 0))

	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestSetLineQuantity_LineNotFound(t *testing.T) {
	cart := NewCart("user-1")

	err := cart.SetLineQuantity("missing", 3)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveLine_Idempotent(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 2, decimal.NewFromInt(50)))

	assert.True(t, cart.RemoveLine("item-a"))
	assert.False(t, cart.RemoveLine("item-a"), "second removal is a no-op")
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestTerminalStates_RejectMutation(t *testing.T) {
	for _, mark := range []func(*Cart) error{(*Cart).MarkOrdered, (*Cart).MarkCancelled} {
		cart := NewCart("user-1")
		require.NoError(t, cart.UpsertLine("item-a", "Scroll", 1, decimal.NewFromInt(50)))
		require.NoError(t, mark(cart))

		assert.ErrorIs(t, cart.UpsertLine("item-b", "Toy", 1, decimal.NewFromInt(10)), ErrCartNotMutable)
		assert.ErrorIs(t, cart.SetLineQuantity("item-a", 2), ErrCartNotMutable)
		assert.ErrorIs(t, mark(cart), ErrCartNotMutable, "terminal states are terminal")
	}
}

func TestNewOrderFromCart_SnapshotIsIndependent(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.UpsertLine("item-a", "Scroll", 3, decimal.NewFromInt(20)))
	require.NoError(t, cart.UpsertLine("item-b", "Toy", 1, decimal.NewFromInt(15)))

	order := NewOrderFromCart(cart)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, OrderStatusPlaced, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, cart.ID, order.CartID)

	// Mutating the cart afterwards must not leak into the order.
	require.NoError(t, cart.SetLineQuantity("item-a", 1))
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(75)))
}
