package address

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RepositoryFactory builds the slot-backed repository for one subscriber.
type RepositoryFactory func(subscriberID uuid.UUID) Repository

// Registry hands out one Book per subscriber so that all writes against a
// given storage slot in this process go through the same mutex. Books are
// constructed and loaded lazily on first use.
type Registry struct {
	mu      sync.Mutex
	books   map[uuid.UUID]*Book
	factory RepositoryFactory
}

func NewRegistry(factory RepositoryFactory) *Registry {
	return &Registry{
		books:   make(map[uuid.UUID]*Book),
		factory: factory,
	}
}

// Book returns the subscriber's book, loading it from storage on first
// access. A load fault drops the half-initialized book so the next call
// retries instead of serving an empty collection.
func (r *Registry) Book(ctx context.Context, subscriberID uuid.UUID) (*Book, error) {
	r.mu.Lock()
	if book, ok := r.books[subscriberID]; ok {
		r.mu.Unlock()
		return book, nil
	}

	book := NewBook(r.factory(subscriberID))
	r.books[subscriberID] = book
	r.mu.Unlock()

	if err := book.Load(ctx); err != nil {
		r.mu.Lock()
		delete(r.books, subscriberID)
		r.mu.Unlock()
		return nil, err
	}

	return book, nil
}

// Evict drops the subscriber's book, forcing a fresh load on next access.
func (r *Registry) Evict(subscriberID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, subscriberID)
}
