package repository

import (
	"context"
	"sync"

	a "freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
)

type memoryRepository struct {
	mu        sync.Mutex
	addresses []model.DeliveryAddress
	stored    bool
}

// NewMemoryRepository keeps the slot in process memory. Used in
// development mode when no durable backend is configured.
func NewMemoryRepository() a.Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.stored {
		return nil, nil
	}
	out := make([]model.DeliveryAddress, len(r.addresses))
	copy(out, r.addresses)
	return out, nil
}

func (r *memoryRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addresses = make([]model.DeliveryAddress, len(addresses))
	copy(r.addresses, addresses)
	r.stored = true
	return nil
}
