package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

// cartDocument is the bson shape of a cart. Money travels as strings so
// decimal amounts survive the round trip exactly.
type cartDocument struct {
	ID          string         `bson:"_id"`
	UserID      string         `bson:"user_id"`
	Lines       []lineDocument `bson:"lines"`
	TotalAmount string         `bson:"total_amount"`
	Status      string         `bson:"status"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

type lineDocument struct {
	ItemID     string    `bson:"item_id"`
	Name       string    `bson:"name"`
	Quantity   int       `bson:"quantity"`
	PriceAtAdd string    `bson:"price_at_add"`
	AddedAt    time.Time `bson:"added_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *MongoRepository) GetPendingCart(ctx context.Context, userID string) (*domain.Cart, error) {
	filter := bson.M{"user_id": userID, "status": string(domain.CartStatusPending)}

	var doc cartDocument
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return decodeCart(&doc)
}

func (m *MongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	doc := encodeCart(cart)

	filter := bson.M{"_id": cart.ID}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

// CreateIndexes sets up the partial unique index that backs the
// one-pending-cart-per-user invariant at the storage level.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.CartStatusPending)}),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func encodeCart(cart *domain.Cart) *cartDocument {
	lines := make([]lineDocument, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = lineDocument{
			ItemID:     l.ItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			PriceAtAdd: l.PriceAtAdd.String(),
			AddedAt:    l.AddedAt,
		}
	}
	return &cartDocument{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Lines:       lines,
		TotalAmount: cart.TotalAmount.String(),
		Status:      string(cart.Status),
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
}

func decodeCart(doc *cartDocument) (*domain.Cart, error) {
	total, err := decimal.NewFromString(doc.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("corrupt total_amount in cart %s: %w", doc.ID, err)
	}

	lines := make([]domain.CartLine, len(doc.Lines))
	for i, l := range doc.Lines {
		price, err := decimal.NewFromString(l.PriceAtAdd)
		if err != nil {
			return nil, fmt.Errorf("corrupt price_at_add in cart %s: %w", doc.ID, err)
		}
		lines[i] = domain.CartLine{
			ItemID:     l.ItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			PriceAtAdd: price,
			AddedAt:    l.AddedAt,
		}
	}

	return &domain.Cart{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Lines:       lines,
		TotalAmount: total,
		Status:      domain.CartStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
