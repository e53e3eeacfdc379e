package address

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freshbasket-backend/internal/domains/address/model"
)

// MockRepository mocks the persistence slot.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryAddress), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	args := m.Called(ctx, addresses)
	return args.Error(0)
}

// fakeRepository is a plain in-memory slot for flows where call-by-call
// expectations would only add noise.
type fakeRepository struct {
	saved   []model.DeliveryAddress
	saveErr error
	loadErr error
}

func (f *fakeRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]model.DeliveryAddress, len(f.saved))
	copy(out, f.saved)
	return out, nil
}

func (f *fakeRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = make([]model.DeliveryAddress, len(addresses))
	copy(f.saved, addresses)
	return nil
}

func testInput() model.AddressInput {
	return model.AddressInput{
		Street:       "Rua das Laranjeiras",
		Number:       "142",
		Neighborhood: "Jardim Europa",
		PostalCode:   "04532-001",
		City:         "São Paulo",
		Region:       "SP",
		Phone:        "+55 11 98888-1234",
	}
}

func TestBook_AddAssignsIdentityAndPersists(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	addr, err := book.Add(context.Background(), testInput())

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, addr.ID)
	assert.False(t, addr.CreatedAt.IsZero())
	require.Len(t, repo.saved, 1)
	assert.Equal(t, addr, repo.saved[0])
	assert.NoError(t, book.LastErr())
}

func TestBook_AddRejectsFirstBlankField(t *testing.T) {
	repo := new(MockRepository)
	book := NewBook(repo)

	in := testInput()
	in.City = "  "
	in.Region = ""

	_, err := book.Add(context.Background(), in)

	require.Error(t, err)
	assert.True(t, IsInvalidAddress(err))
	var addrErr *AddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, model.FieldCity, addrErr.Field)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBook_AddPersistFailureKeepsMemoryUnchanged(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	first, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)

	repo.saveErr = NewPersistenceError("save", errors.New("connection reset"))
	_, err = book.Add(context.Background(), testInput())

	require.Error(t, err)
	assert.Equal(t, []model.DeliveryAddress{first}, book.All())
	assert.Error(t, book.LastErr())

	// A later successful write clears the sticky error.
	repo.saveErr = nil
	_, err = book.Add(context.Background(), testInput())
	require.NoError(t, err)
	assert.NoError(t, book.LastErr())
	assert.Len(t, book.All(), 2)
}

func TestBook_LoadFaultLeavesPriorState(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	addr, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)

	repo.loadErr = NewPersistenceError("load", errors.New("timeout"))
	err = book.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, []model.DeliveryAddress{addr}, book.All())
}

func TestBook_LoadMissingSlotIsEmptyCollection(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Load", mock.Anything).Return(nil, nil)
	book := NewBook(repo)

	require.NoError(t, book.Load(context.Background()))
	assert.Empty(t, book.All())
}

func TestBook_UpdateUnknownIDIsNotFound(t *testing.T) {
	book := NewBook(&fakeRepository{})

	street := "Rua Nova"
	_, err := book.Update(context.Background(), uuid.New(), model.AddressPatch{Street: &street})

	assert.True(t, IsAddressNotFound(err))
}

func TestBook_UpdateMergesAndPersists(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	addr, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)

	phone := "+55 11 90000-0000"
	updated, err := book.Update(context.Background(), addr.ID, model.AddressPatch{Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, addr.ID, updated.ID)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, []model.DeliveryAddress{updated}, repo.saved)
}

func TestBook_DeleteUnknownIDIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	book := NewBook(repo)

	require.NoError(t, book.Delete(context.Background(), uuid.New()))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBook_DeleteClearsMatchingSelection(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	a1, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)
	a2, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)

	require.NoError(t, book.Select(a1.ID))
	require.NoError(t, book.Delete(context.Background(), a1.ID))

	assert.Equal(t, uuid.Nil, book.SelectedID())
	assert.Nil(t, book.Selected())
	assert.Equal(t, []model.DeliveryAddress{a2}, book.All())

	// Deleting an unrelated entry leaves the selection alone.
	require.NoError(t, book.Select(a2.ID))
	require.NoError(t, book.Delete(context.Background(), uuid.New()))
	assert.Equal(t, a2.ID, book.SelectedID())
}

func TestBook_SelectUnknownIDFails(t *testing.T) {
	book := NewBook(&fakeRepository{})

	err := book.Select(uuid.New())

	assert.True(t, IsAddressNotFound(err))
}

func TestBook_SelectNilClears(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	addr, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)
	require.NoError(t, book.Select(addr.ID))

	require.NoError(t, book.Select(uuid.Nil))
	assert.Nil(t, book.Selected())
}

func TestBook_FavoritesPreserveInsertionOrder(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	in := testInput()
	in.IsFavorite = true
	fav1, err := book.Add(context.Background(), in)
	require.NoError(t, err)

	_, err = book.Add(context.Background(), testInput())
	require.NoError(t, err)

	fav2, err := book.Add(context.Background(), in)
	require.NoError(t, err)

	favorites := book.Favorites()
	require.Len(t, favorites, 2)
	assert.Equal(t, fav1.ID, favorites[0].ID)
	assert.Equal(t, fav2.ID, favorites[1].ID)
}

func TestBook_SetFavoriteRoundTrip(t *testing.T) {
	repo := &fakeRepository{}
	book := NewBook(repo)

	addr, err := book.Add(context.Background(), testInput())
	require.NoError(t, err)

	updated, err := book.SetFavorite(context.Background(), addr.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)

	updated, err = book.SetFavorite(context.Background(), addr.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsFavorite)
	assert.Empty(t, book.Favorites())
}
