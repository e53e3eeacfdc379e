package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/internal/domains/cart"
	"freshbasket-backend/internal/domains/subscription"
)

// ---------------------------------------------------------------------
// test doubles
// ---------------------------------------------------------------------

type slotRepository struct {
	saved   []model.DeliveryAddress
	saveErr error
}

func (r *slotRepository) Load(ctx context.Context) ([]model.DeliveryAddress, error) {
	out := make([]model.DeliveryAddress, len(r.saved))
	copy(out, r.saved)
	return out, nil
}

func (r *slotRepository) Save(ctx context.Context, addresses []model.DeliveryAddress) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = make([]model.DeliveryAddress, len(addresses))
	copy(r.saved, addresses)
	return nil
}

type stubCart struct {
	snapshot cart.Snapshot
	err      error
}

func (s *stubCart) Current(ctx context.Context) (cart.Snapshot, error) {
	return s.snapshot, s.err
}

type stubSubscription struct {
	ledger subscription.Ledger
	err    error
}

func (s *stubSubscription) Current(ctx context.Context) (subscription.Ledger, error) {
	return s.ledger, s.err
}

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) CreateOrder(ctx context.Context, deliveryAddress string, notes *string) (uuid.UUID, error) {
	args := m.Called(ctx, deliveryAddress, notes)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func accept() Confirmer {
	return ConfirmerFunc(func(ctx context.Context, summary OrderSummary) bool { return true })
}

func decline() Confirmer {
	return ConfirmerFunc(func(ctx context.Context, summary OrderSummary) bool { return false })
}

// ---------------------------------------------------------------------
// fixture
// ---------------------------------------------------------------------

func weight(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func groceries() cart.Snapshot {
	return cart.NewSnapshot([]cart.Item{
		{Name: "Tomatoes", Quantity: 2, UnitWeight: weight("1.20")},
		{Name: "Free-range eggs", Quantity: 1, UnitWeight: weight("0.70")},
		{Name: "Sourdough loaf", Quantity: 2, UnitWeight: weight("0.85")},
	}) // 2*1.20 + 0.70 + 2*0.85 = 5.10 kg, 5 items
}

func activeLedger(remaining string) subscription.Ledger {
	return subscription.Ledger{
		PlanID:          "family-weekly",
		Active:          true,
		RemainingWeight: weight(remaining),
	}
}

func validForm() AddressForm {
	return AddressForm{
		Street:       "Rua das Laranjeiras",
		Number:       "142",
		Neighborhood: "Jardim Europa",
		PostalCode:   "04532-001",
		City:         "São Paulo",
		Region:       "SP",
		Phone:        "+55 11 98888-1234",
	}
}

type fixture struct {
	workflow  *Workflow
	book      *address.Book
	repo      *slotRepository
	cart      *stubCart
	sub       *stubSubscription
	submitter *MockSubmitter
	notifier  *RecordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := &slotRepository{}
	book := address.NewBook(repo)
	require.NoError(t, book.Load(context.Background()))

	f := &fixture{
		book:      book,
		repo:      repo,
		cart:      &stubCart{snapshot: groceries()},
		sub:       &stubSubscription{ledger: activeLedger("8.00")},
		submitter: new(MockSubmitter),
		notifier:  NewRecordingNotifier(),
	}
	f.workflow = NewWorkflow(Deps{
		SubscriberID: uuid.New(),
		Book:         book,
		Cart:         f.cart,
		Subscription: f.sub,
		Submitter:    f.submitter,
		Notifier:     f.notifier,
	})
	return f
}

func (f *fixture) reachReview(t *testing.T) {
	t.Helper()
	require.NoError(t, f.workflow.EnterAddress(validForm(), false))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))
	require.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
}

// ---------------------------------------------------------------------
// address step
// ---------------------------------------------------------------------

func TestWorkflow_StartsAwaitingAddress(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, PhaseAwaitingAddress, f.workflow.Phase())
	assert.Equal(t, uuid.Nil, f.workflow.OrderID())
	assert.Nil(t, f.workflow.Chosen())
}

func TestConfirmAddress_FirstBlankFieldWins(t *testing.T) {
	f := newFixture(t)

	form := validForm()
	form.PostalCode = "  "
	form.City = ""
	form.Region = ""
	require.NoError(t, f.workflow.EnterAddress(form, false))

	err := f.workflow.ConfirmAddress(context.Background())

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	var chkErr *CheckoutError
	require.ErrorAs(t, err, &chkErr)
	assert.Equal(t, model.FieldPostalCode, chkErr.Field)
	assert.Equal(t, PhaseAwaitingAddress, f.workflow.Phase())
}

func TestConfirmAddress_ValidFormMovesToReview(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.workflow.EnterAddress(validForm(), false))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	require.NotNil(t, f.workflow.Chosen())
	assert.Equal(t, "Rua das Laranjeiras", f.workflow.Chosen().Street)
	assert.Empty(t, f.book.All(), "no favorite save was requested")
}

func TestConfirmAddress_SaveAsFavoritePersistsBeforeReview(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.workflow.EnterAddress(validForm(), true))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	all := f.book.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].IsFavorite)
	require.NotNil(t, f.workflow.Chosen())
	assert.Equal(t, all[0].ID, f.workflow.Chosen().ID, "review shows the saved entry")
}

func TestConfirmAddress_FavoriteSaveFailureWarnsAndProceeds(t *testing.T) {
	f := newFixture(t)
	f.repo.saveErr = errors.New("slot unavailable")

	require.NoError(t, f.workflow.EnterAddress(validForm(), true))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	warnings := f.notifier.DrainWarnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "favorite")
	assert.Empty(t, f.book.All())
}

func TestUseFavorite_PicksAndSelects(t *testing.T) {
	f := newFixture(t)

	fav, err := f.book.Add(context.Background(), model.AddressInput{
		Street: "Rua A", Number: "1", Neighborhood: "Centro",
		PostalCode: "00000-000", City: "Campinas", Region: "SP",
		Phone: "123", IsFavorite: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.workflow.UseFavorite(fav.ID))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	assert.Equal(t, fav.ID, f.workflow.Chosen().ID)
	assert.Equal(t, fav.ID, f.book.SelectedID())
}

func TestUseFavorite_UnknownIDFails(t *testing.T) {
	f := newFixture(t)

	err := f.workflow.UseFavorite(uuid.New())

	assert.True(t, address.IsAddressNotFound(err))
	assert.Equal(t, PhaseAwaitingAddress, f.workflow.Phase())
}

func TestEdit_ReturnsToFormWithValuesIntact(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	require.NoError(t, f.workflow.Edit())

	assert.Equal(t, PhaseAwaitingAddress, f.workflow.Phase())
	assert.Equal(t, validForm(), f.workflow.Form())
}

func TestEnterAddress_RejectedOutsideAddressPhase(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	err := f.workflow.EnterAddress(validForm(), false)

	var chkErr *CheckoutError
	require.ErrorAs(t, err, &chkErr)
	assert.Equal(t, ErrCodeInvalidPhase, chkErr.Code)
}

// ---------------------------------------------------------------------
// order confirmation
// ---------------------------------------------------------------------

func TestConfirm_HappyPathCompletesWithOrderID(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	orderID := uuid.New()
	wantAddress := "Rua das Laranjeiras 142, Jardim Europa, 04532-001, São Paulo, SP"
	f.submitter.On("CreateOrder", mock.Anything, wantAddress, (*string)(nil)).
		Return(orderID, nil).Once()

	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	assert.Equal(t, PhaseCompleted, f.workflow.Phase())
	assert.Equal(t, orderID, f.workflow.OrderID())
	f.submitter.AssertExpectations(t)
}

func TestConfirm_DeclinedPromptLeavesEverythingUntouched(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	err := f.workflow.Confirm(context.Background(), decline())

	assert.True(t, IsNotConfirmed(err))
	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	f.submitter.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)

	// Still fully re-confirmable.
	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))
	assert.Equal(t, PhaseCompleted, f.workflow.Phase())
}

func TestConfirm_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)
	f.cart.snapshot = cart.NewSnapshot(nil)

	err := f.workflow.Confirm(context.Background(), accept())

	assert.True(t, IsEmptyCart(err))
	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
}

func TestConfirm_InactiveSubscription(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)
	f.sub.ledger = subscription.Ledger{Active: false, RemainingWeight: weight("10.00")}

	err := f.workflow.Confirm(context.Background(), accept())

	assert.True(t, IsNoActiveSubscription(err))
	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
}

func TestConfirm_CapacityExceededCarriesBothWeights(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	// Basket weighs 6.10 kg against a 5.00 kg allowance.
	f.cart.snapshot = cart.NewSnapshot([]cart.Item{
		{Name: "Watermelon", Quantity: 1, UnitWeight: weight("6.10")},
	})
	f.sub.ledger = activeLedger("5.00")

	err := f.workflow.Confirm(context.Background(), accept())

	require.True(t, IsCapacityExceeded(err))
	var chkErr *CheckoutError
	require.ErrorAs(t, err, &chkErr)
	assert.True(t, chkErr.Requested.Equal(weight("6.10")))
	assert.True(t, chkErr.Remaining.Equal(weight("5.00")))
	f.submitter.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_ExactCapacityPasses(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	// 4.80 kg basket against exactly 4.80 kg remaining: equality passes.
	f.cart.snapshot = cart.NewSnapshot([]cart.Item{
		{Name: "Vegetable box", Quantity: 1, UnitWeight: weight("4.80")},
	})
	f.sub.ledger = activeLedger("4.80")
	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()

	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))
	assert.Equal(t, PhaseCompleted, f.workflow.Phase())
}

func TestConfirm_CapacityReadAtConfirmationTime(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	// The allowance shrank after review began; the fresh read governs.
	f.sub.ledger = activeLedger("0.50")

	err := f.workflow.Confirm(context.Background(), accept())

	assert.True(t, IsCapacityExceeded(err))
}

func TestConfirm_SubmitterFailureStaysReviewing(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.Nil, errors.New("upstream 503")).Once()

	err := f.workflow.Confirm(context.Background(), accept())

	assert.True(t, IsOrderCreationError(err))
	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	assert.Equal(t, uuid.Nil, f.workflow.OrderID())

	// Retry succeeds.
	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))
	f.submitter.AssertExpectations(t)
}

func TestConfirm_CartReadFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)
	f.cart.err = errors.New("mirror unavailable")

	err := f.workflow.Confirm(context.Background(), accept())

	require.Error(t, err)
	assert.Equal(t, PhaseReviewingOrder, f.workflow.Phase())
	f.submitter.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_OutsideReviewIsRejected(t *testing.T) {
	f := newFixture(t)

	err := f.workflow.Confirm(context.Background(), accept())

	var chkErr *CheckoutError
	require.ErrorAs(t, err, &chkErr)
	assert.Equal(t, ErrCodeInvalidPhase, chkErr.Code)
}

func TestConfirm_CompletedIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)
	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	err := f.workflow.Confirm(context.Background(), accept())
	var chkErr *CheckoutError
	require.ErrorAs(t, err, &chkErr)
	assert.Equal(t, ErrCodeInvalidPhase, chkErr.Code)

	assert.Error(t, f.workflow.Edit())
	assert.Error(t, f.workflow.Reset())
	f.submitter.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestConfirm_SubmitterCalledExactlyOnce(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()

	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	f.submitter.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestConfirm_PendingSubmissionRejectsReconfirm(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := ConfirmerFunc(func(ctx context.Context, summary OrderSummary) bool {
		close(entered)
		<-release
		return false
	})

	done := make(chan error, 1)
	go func() {
		done <- f.workflow.Confirm(context.Background(), blocking)
	}()
	<-entered

	err := f.workflow.Confirm(context.Background(), accept())
	assert.True(t, IsConfirmationPending(err))

	close(release)
	assert.True(t, IsNotConfirmed(<-done))
}

// ---------------------------------------------------------------------
// late favorite save
// ---------------------------------------------------------------------

func TestConfirm_LateFavoriteIntentSavesDuringConfirmation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.workflow.EnterAddress(validForm(), false))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	// Intent arrives on the review screen, after the address step ran.
	f.workflow.SetSaveAsFavorite(true)

	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	all := f.book.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].IsFavorite)
}

func TestConfirm_FavoriteSavedOnceAcrossBothPaths(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.workflow.EnterAddress(validForm(), true))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	// Toggling again after the address-step save must not duplicate it.
	f.workflow.SetSaveAsFavorite(true)

	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	assert.Len(t, f.book.All(), 1)
}

func TestSetSaveAsFavorite_IgnoredForPickedFavorite(t *testing.T) {
	f := newFixture(t)

	fav, err := f.book.Add(context.Background(), model.AddressInput{
		Street: "Rua A", Number: "1", Neighborhood: "Centro",
		PostalCode: "00000-000", City: "Campinas", Region: "SP",
		Phone: "123", IsFavorite: true,
	})
	require.NoError(t, err)
	require.NoError(t, f.workflow.UseFavorite(fav.ID))
	require.NoError(t, f.workflow.ConfirmAddress(context.Background()))

	f.workflow.SetSaveAsFavorite(true)

	f.submitter.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(uuid.New(), nil).Once()
	require.NoError(t, f.workflow.Confirm(context.Background(), accept()))

	assert.Len(t, f.book.All(), 1, "the existing favorite is not duplicated")
}

// ---------------------------------------------------------------------
// reset
// ---------------------------------------------------------------------

func TestReset_ClearsBackToAddressStep(t *testing.T) {
	f := newFixture(t)
	f.reachReview(t)

	require.NoError(t, f.workflow.Reset())

	assert.Equal(t, PhaseAwaitingAddress, f.workflow.Phase())
	assert.Equal(t, AddressForm{}, f.workflow.Form())
	assert.Nil(t, f.workflow.Chosen())
}
