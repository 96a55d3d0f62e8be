package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotMutable = errors.New("cart is not in pending status")
	ErrLineNotFound   = errors.New("line item not found in cart")
)

type CartStatus string

const (
	CartStatusPending   CartStatus = "pending"
	CartStatusOrdered   CartStatus = "ordered"
	CartStatusCancelled CartStatus = "cancelled"
)

// CartLine is one (item, quantity, snapshotted price) entry. PriceAtAdd
// is copied from the inventory price when the line is created or topped
// up and is never recomputed from the current item price.
type CartLine struct {
	ItemID     string          `json:"item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"price_at_add"`
	AddedAt    time.Time       `json:"added_at"`
}

// Cart is a user's open selection of items. At most one cart per user is
// in pending status; ordered and cancelled carts are immutable history.
type Cart struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Lines       []CartLine      `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      CartStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewCart(userID string) *Cart {
	cart := EmptyCart(userID)
	cart.ID = uuid.New().String()
	return cart
}

// EmptyCart represents "no cart yet": a pending cart with no identity
// and no lines. It is never persisted, so repeated reads for a cartless
// user all present the same zero ID; the first mutation creates a real
// cart via NewCart.
func EmptyCart(userID string) *Cart {
	now := time.Now()
	return &Cart{
		UserID:      userID,
		TotalAmount: decimal.Zero,
		Status:      CartStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Cart) IsMutable() bool {
	return c.Status == CartStatusPending
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the line referencing itemID, or nil.
func (c *Cart) Line(itemID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			return &c.Lines[i]
		}
	}
	return nil
}

// UpsertLine adds quantity of an item at the given unit price. An
// existing line for the same item is topped up and its price snapshot
// refreshed; a repeated add therefore reflects a price change.
func (c *Cart) UpsertLine(itemID, name string, quantity int, price decimal.Decimal) error {
	if !c.IsMutable() {
		return ErrCartNotMutable
	}
	now := time.Now()
	if line := c.Line(itemID); line != nil {
		line.Quantity += quantity
		line.PriceAtAdd = price
		line.AddedAt = now
	} else {
		c.Lines = append(c.Lines, CartLine{
			ItemID:     itemID,
			Name:       name,
			Quantity:   quantity,
			PriceAtAdd: price,
			AddedAt:    now,
		})
	}
	c.recompute(now)
	return nil
}

// SetLineQuantity replaces a line's quantity. Quantity <= 0 removes the
// line instead of storing a non-positive value.
func (c *Cart) SetLineQuantity(itemID string, quantity int) error {
	if !c.IsMutable() {
		return ErrCartNotMutable
	}
	line := c.Line(itemID)
	if line == nil {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.RemoveLine(itemID)
		return nil
	}
	line.Quantity = quantity
	c.recompute(time.Now())
	return nil
}

// RemoveLine drops the line referencing itemID. Removing an absent line
// is a no-op so client retries stay idempotent.
func (c *Cart) RemoveLine(itemID string) bool {
	for i, line := range c.Lines {
		if line.ItemID == itemID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.recompute(time.Now())
			return true
		}
	}
	return false
}

func (c *Cart) MarkOrdered() error {
	if !c.IsMutable() {
		return ErrCartNotMutable
	}
	c.Status = CartStatusOrdered
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Cart) MarkCancelled() error {
	if !c.IsMutable() {
		return ErrCartNotMutable
	}
	c.Status = CartStatusCancelled
	c.UpdatedAt = time.Now()
	return nil
}

// recompute keeps TotalAmount equal to the sum of quantity x priceAtAdd
// over all lines. Called on every mutation.
func (c *Cart) recompute(now time.Time) {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.PriceAtAdd.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	c.TotalAmount = total
	c.UpdatedAt = now
}
