package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced OrderStatus = "placed"

	// Later transitions are owned by fulfillment, which only ever
	// updates the status column of an existing order.
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderLine is a frozen copy of a cart line at checkout time.
type OrderLine struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is the immutable record created from a cart at successful
// checkout. Mutating the source cart afterwards must not affect it.
type Order struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"user_id"`
	CartID      string          `json:"cart_id"`
	Lines       []OrderLine     `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	PlacedAt    time.Time       `json:"placed_at"`
}

// NewOrderFromCart snapshots a cart's lines and total into a new order.
func NewOrderFromCart(cart *Cart) *Order {
	lines := make([]OrderLine, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = OrderLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.PriceAtAdd,
		}
	}
	return &Order{
		ID:          uuid.New(),
		UserID:      cart.UserID,
		CartID:      cart.ID,
		Lines:       lines,
		TotalAmount: cart.TotalAmount,
		Status:      OrderStatusPlaced,
		PlacedAt:    time.Now(),
	}
}
