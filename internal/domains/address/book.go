package address

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"freshbasket-backend/internal/domains/address/model"
)

// Book is the in-process view of one subscriber's address book. It keeps
// the collection in insertion order plus an optional selected id — a weak
// reference resolved against the collection, never a duplicated value.
//
// Every mutation computes the new collection, persists it through the
// Repository, and only then commits it in memory: in-memory and durable
// state never diverge. Writes against the same slot are serialized through
// the Book's mutex.
type Book struct {
	mu         sync.Mutex
	repo       Repository
	addresses  []model.DeliveryAddress
	selectedID uuid.UUID // uuid.Nil means no selection
	lastErr    error
}

func NewBook(repo Repository) *Book {
	return &Book{repo: repo}
}

// Load reads the persisted collection. A missing or corrupt slot leaves
// the collection empty without error; a storage fault leaves the prior
// in-memory state untouched and is returned.
func (b *Book) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	addresses, err := b.repo.Load(ctx)
	if err != nil {
		b.lastErr = err
		return err
	}

	b.addresses = addresses
	b.lastErr = nil
	return nil
}

// Add assigns a fresh identifier and creation timestamp, persists the
// extended collection and appends in memory only on success.
func (b *Book) Add(ctx context.Context, input model.AddressInput) (model.DeliveryAddress, error) {
	input = input.Normalize()
	if field, blank := input.FirstBlankField(); blank {
		return model.DeliveryAddress{}, NewInvalidAddress(field)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	addr := model.DeliveryAddress{
		ID:           uuid.New(),
		Street:       input.Street,
		Number:       input.Number,
		Neighborhood: input.Neighborhood,
		PostalCode:   input.PostalCode,
		City:         input.City,
		Region:       input.Region,
		Phone:        input.Phone,
		Reference:    input.Reference,
		IsFavorite:   input.IsFavorite,
		CreatedAt:    time.Now().UTC(),
	}

	next := make([]model.DeliveryAddress, len(b.addresses), len(b.addresses)+1)
	copy(next, b.addresses)
	next = append(next, addr)

	if err := b.repo.Save(ctx, next); err != nil {
		b.lastErr = err
		return model.DeliveryAddress{}, err
	}

	b.addresses = next
	b.lastErr = nil
	return addr, nil
}

// Update merges the patch into the matching address and re-persists the
// collection. An unknown id is an explicit ADDRESS_NOT_FOUND error.
func (b *Book) Update(ctx context.Context, id uuid.UUID, patch model.AddressPatch) (model.DeliveryAddress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.DeliveryAddress{}, NewAddressNotFound()
	}

	merged := patch.Apply(b.addresses[idx])

	next := make([]model.DeliveryAddress, len(b.addresses))
	copy(next, b.addresses)
	next[idx] = merged

	if err := b.repo.Save(ctx, next); err != nil {
		b.lastErr = err
		return model.DeliveryAddress{}, err
	}

	b.addresses = next
	b.lastErr = nil
	return merged, nil
}

// Delete removes the matching address and re-persists. Deleting an unknown
// id is a no-op: the collection is untouched and no error is raised. If the
// selection pointed at the removed entry it is cleared.
func (b *Book) Delete(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := make([]model.DeliveryAddress, 0, len(b.addresses)-1)
	next = append(next, b.addresses[:idx]...)
	next = append(next, b.addresses[idx+1:]...)

	if err := b.repo.Save(ctx, next); err != nil {
		b.lastErr = err
		return err
	}

	b.addresses = next
	if b.selectedID == id {
		b.selectedID = uuid.Nil
	}
	b.lastErr = nil
	return nil
}

// SetFavorite flips the favorite flag. Sugar over Update.
func (b *Book) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) (model.DeliveryAddress, error) {
	return b.Update(ctx, id, model.AddressPatch{IsFavorite: &favorite})
}

// Select sets the selection weak reference by looking the id up in the
// current collection. uuid.Nil clears it. Storage is not touched.
func (b *Book) Select(id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id == uuid.Nil {
		b.selectedID = uuid.Nil
		return nil
	}

	if b.indexOf(id) < 0 {
		return NewAddressNotFound()
	}

	b.selectedID = id
	return nil
}

// Selected resolves the selection against the current collection. Returns
// nil when nothing is selected.
func (b *Book) Selected() *model.DeliveryAddress {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selectedID == uuid.Nil {
		return nil
	}
	idx := b.indexOf(b.selectedID)
	if idx < 0 {
		return nil
	}
	addr := b.addresses[idx]
	return &addr
}

// Favorites returns the subsequence of favorite addresses, preserving
// collection order.
func (b *Book) Favorites() []model.DeliveryAddress {
	b.mu.Lock()
	defer b.mu.Unlock()

	var favorites []model.DeliveryAddress
	for _, addr := range b.addresses {
		if addr.IsFavorite {
			favorites = append(favorites, addr)
		}
	}
	return favorites
}

// All returns a copy of the collection in insertion order.
func (b *Book) All() []model.DeliveryAddress {
	b.mu.Lock()
	defer b.mu.Unlock()

	all := make([]model.DeliveryAddress, len(b.addresses))
	copy(all, b.addresses)
	return all
}

// Get looks up one address by id.
func (b *Book) Get(id uuid.UUID) (model.DeliveryAddress, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.DeliveryAddress{}, false
	}
	return b.addresses[idx], true
}

// SelectedID returns the raw selection reference, uuid.Nil when cleared.
func (b *Book) SelectedID() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedID
}

// LastErr reports the error of the last persistence operation, nil after
// a successful one.
func (b *Book) LastErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// indexOf must be called with the mutex held.
func (b *Book) indexOf(id uuid.UUID) int {
	for i, addr := range b.addresses {
		if addr.ID == id {
			return i
		}
	}
	return -1
}
