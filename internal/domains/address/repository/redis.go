package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	a "freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/pkg/logger"
)

type redisRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRepository backs a subscriber's address slot with a single redis
// key holding the serialized collection.
func NewRedisRepository(client *redis.Client, subscriberID uuid.UUID) a.Repository {
	return &redisRepository{
		client: client,
		key:    addressSlotKey(subscriberID),
	}
}

func addressSlotKey(subscriberID uuid.UUID) string {
	return fmt.Sprintf("addresses:%s", subscriberID)
}

// Load reads the slot. A missing key or an unreadable payload yields an
// empty collection without error; only transport faults are reported.
func (r *redisRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, a.NewPersistenceError("load", err)
	}

	var addresses []model.DeliveryAddress
	if err := json.Unmarshal(data, &addresses); err != nil {
		logger.Warn("Discarding corrupt address slot", map[string]interface{}{
			"key":   r.key,
			"error": err.Error(),
		})
		return nil, nil
	}

	return addresses, nil
}

// Save overwrites the slot with the full collection.
func (r *redisRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	if addresses == nil {
		addresses = []model.DeliveryAddress{}
	}

	data, err := json.Marshal(addresses)
	if err != nil {
		return a.NewPersistenceError("save", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return a.NewPersistenceError("save", err)
	}

	return nil
}
