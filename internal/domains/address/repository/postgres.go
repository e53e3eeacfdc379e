package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	a "freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/pkg/logger"
)

type postgresRepository struct {
	pool         *pgxpool.Pool
	subscriberID uuid.UUID
}

// NewPostgresRepository backs a subscriber's address slot with one jsonb
// row in the address_books table.
func NewPostgresRepository(pool *pgxpool.Pool, subscriberID uuid.UUID) a.Repository {
	return &postgresRepository{
		pool:         pool,
		subscriberID: subscriberID,
	}
}

func (r *postgresRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	query := `
    SELECT addresses
    FROM address_books
    WHERE subscriber_id = $1
  `

	var data []byte
	err := r.pool.QueryRow(ctx, query, r.subscriberID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, a.NewPersistenceError("load", err)
	}

	var addresses []model.DeliveryAddress
	if err := json.Unmarshal(data, &addresses); err != nil {
		logger.Warn("Discarding corrupt address slot", map[string]interface{}{
			"subscriber_id": r.subscriberID.String(),
			"error":         err.Error(),
		})
		return nil, nil
	}

	return addresses, nil
}

func (r *postgresRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	if addresses == nil {
		addresses = []model.DeliveryAddress{}
	}

	data, err := json.Marshal(addresses)
	if err != nil {
		return a.NewPersistenceError("save", err)
	}

	query := `
    INSERT INTO address_books (subscriber_id, addresses, updated_at)
    VALUES ($1, $2, NOW())
    ON CONFLICT (subscriber_id)
    DO UPDATE SET addresses = EXCLUDED.addresses, updated_at = NOW()
  `

	if _, err := r.pool.Exec(ctx, query, r.subscriberID, data); err != nil {
		return a.NewPersistenceError("save", err)
	}

	return nil
}
