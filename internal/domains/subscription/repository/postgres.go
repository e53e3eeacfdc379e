package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freshbasket-backend/internal/domains/subscription"
)

type postgresProvider struct {
	pool         *pgxpool.Pool
	subscriberID uuid.UUID
}

// NewPostgresProvider reads the subscriber's plan row. remaining_weight is
// decremented by the billing side as orders are confirmed; no row means no
// active subscription.
func NewPostgresProvider(pool *pgxpool.Pool, subscriberID uuid.UUID) subscription.Provider {
	return &postgresProvider{
		pool:         pool,
		subscriberID: subscriberID,
	}
}

func (p *postgresProvider) Current(ctx context.Context) (subscription.Ledger, error) {
	query := `
    SELECT plan_id, is_active, remaining_weight
    FROM subscriptions
    WHERE subscriber_id = $1
  `

	var ledger subscription.Ledger
	err := p.pool.QueryRow(ctx, query, p.subscriberID).Scan(
		&ledger.PlanID, &ledger.Active, &ledger.RemainingWeight,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subscription.Ledger{}, nil
		}
		return subscription.Ledger{}, fmt.Errorf("read subscription ledger: %w", err)
	}

	return ledger, nil
}
