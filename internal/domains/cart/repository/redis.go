package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"freshbasket-backend/internal/domains/cart"
	"freshbasket-backend/pkg/logger"
)

type redisProvider struct {
	client *redis.Client
	key    string
}

// NewRedisProvider reads the cart mirror the storefront app maintains in
// redis. The cart is external to this core; an absent or unreadable mirror
// is simply an empty cart.
func NewRedisProvider(client *redis.Client, subscriberID uuid.UUID) cart.Provider {
	return &redisProvider{
		client: client,
		key:    fmt.Sprintf("cart:%s", subscriberID),
	}
}

func (p *redisProvider) Current(ctx context.Context) (cart.Snapshot, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.NewSnapshot(nil), nil
		}
		return cart.Snapshot{}, fmt.Errorf("read cart mirror: %w", err)
	}

	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Discarding corrupt cart mirror", map[string]interface{}{
			"key":   p.key,
			"error": err.Error(),
		})
		return cart.NewSnapshot(nil), nil
	}

	return cart.NewSnapshot(items), nil
}
