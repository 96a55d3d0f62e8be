package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

const (
	itemKeyPrefix  = "bazaar:item:"
	stockKeyPrefix = "bazaar:stock:"
)

// reserveStockScript performs the check-and-decrement server-side so the
// reservation is atomic even across multiple service instances.
// Returns 1 on success, 0 on insufficient stock, -1 on unknown item.
var reserveStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// RedisStore implements Store on top of Redis: item metadata in a hash,
// stock in a plain integer counter mutated only via DECRBY/INCRBY.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	fields, err := s.client.HGetAll(ctx, itemKeyPrefix+itemID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get item failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrItemNotFound
	}

	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return nil, fmt.Errorf("corrupt price for item %s: %w", itemID, err)
	}

	stock, err := s.client.Get(ctx, stockKeyPrefix+itemID).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis get stock failed: %w", err)
	}

	item := &domain.Item{
		ID:       itemID,
		Name:     fields["name"],
		Category: fields["category"],
		Origin:   fields["origin"],
		Price:    price,
		Stock:    stock,
	}
	if tags := fields["tags"]; tags != "" {
		item.Tags = strings.Split(tags, ",")
	}
	if raw := fields["rating"]; raw != "" {
		if rating, err := strconv.ParseFloat(raw, 64); err == nil {
			item.Rating = &rating
		}
	}
	return item, nil
}

func (s *RedisStore) ReserveStock(ctx context.Context, itemID string, quantity int) error {
	result, err := reserveStockScript.Run(ctx, s.client, []string{stockKeyPrefix + itemID}, quantity).Int()
	if err != nil {
		return fmt.Errorf("reserve script failed: %w", err)
	}

	switch result {
	case 1:
		return nil
	case -1:
		return ErrItemNotFound
	default:
		available, _ := s.client.Get(ctx, stockKeyPrefix+itemID).Int()
		return &InsufficientStockError{
			ItemID:    itemID,
			Requested: quantity,
			Available: available,
		}
	}
}

func (s *RedisStore) ReleaseStock(ctx context.Context, itemID string, quantity int) error {
	exists, err := s.client.Exists(ctx, stockKeyPrefix+itemID).Result()
	if err != nil {
		return fmt.Errorf("redis exists failed: %w", err)
	}
	if exists == 0 {
		return ErrItemNotFound
	}
	return s.client.IncrBy(ctx, stockKeyPrefix+itemID, int64(quantity)).Err()
}

func (s *RedisStore) PutItem(ctx context.Context, item domain.Item) error {
	fields := map[string]interface{}{
		"name":     item.Name,
		"category": item.Category,
		"origin":   item.Origin,
		"price":    item.Price.String(),
		"tags":     strings.Join(item.Tags, ","),
	}
	if item.Rating != nil {
		fields["rating"] = strconv.FormatFloat(*item.Rating, 'f', -1, 64)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, itemKeyPrefix+item.ID, fields)
	pipe.Set(ctx, stockKeyPrefix+item.ID, item.Stock, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put item failed: %w", err)
	}
	return nil
}
