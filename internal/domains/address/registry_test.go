package address

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SameBookPerSubscriber(t *testing.T) {
	registry := NewRegistry(func(subscriberID uuid.UUID) Repository {
		return &fakeRepository{}
	})
	subscriber := uuid.New()

	first, err := registry.Book(context.Background(), subscriber)
	require.NoError(t, err)
	again, err := registry.Book(context.Background(), subscriber)
	require.NoError(t, err)

	assert.Same(t, first, again)

	other, err := registry.Book(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestRegistry_LoadFaultRetriesOnNextAccess(t *testing.T) {
	repo := &fakeRepository{loadErr: NewPersistenceError("load", errors.New("timeout"))}
	registry := NewRegistry(func(subscriberID uuid.UUID) Repository {
		return repo
	})
	subscriber := uuid.New()

	_, err := registry.Book(context.Background(), subscriber)
	require.Error(t, err)

	repo.loadErr = nil
	book, err := registry.Book(context.Background(), subscriber)
	require.NoError(t, err)
	assert.Empty(t, book.All())
}

func TestRegistry_EvictForcesFreshLoad(t *testing.T) {
	repo := &fakeRepository{}
	registry := NewRegistry(func(subscriberID uuid.UUID) Repository {
		return repo
	})
	subscriber := uuid.New()

	book, err := registry.Book(context.Background(), subscriber)
	require.NoError(t, err)
	_, err = book.Add(context.Background(), testInput())
	require.NoError(t, err)

	registry.Evict(subscriber)

	reloaded, err := registry.Book(context.Background(), subscriber)
	require.NoError(t, err)
	assert.NotSame(t, book, reloaded)
	assert.Len(t, reloaded.All(), 1, "the durable slot survives eviction")
}
