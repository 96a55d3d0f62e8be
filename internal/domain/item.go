package domain

import "github.com/shopspring/decimal"

// Item is a sellable bazaar entry. Price and Stock are owned by the
// inventory store; the rest is descriptive metadata from the catalog.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Origin   string          `json:"origin,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Rating   *float64        `json:"rating,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}
