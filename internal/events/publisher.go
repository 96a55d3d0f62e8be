package events

import (
	"context"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// Publisher feeds order lifecycle events to downstream consumers
// (fulfillment listens for placed orders). Publishing is best-effort
// from the service's point of view; a failed publish never rolls back
// a placed order.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }

func (NopPublisher) Close() error { return nil }
