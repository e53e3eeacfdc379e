package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"freshbasket-backend/internal/domains/address"
	"freshbasket-backend/internal/domains/address/model"
	"freshbasket-backend/internal/domains/cart"
	"freshbasket-backend/internal/domains/subscription"
	"freshbasket-backend/pkg/logger"
)

// Phase is the workflow's current state.
type Phase string

const (
	PhaseAwaitingAddress Phase = "awaiting_address"
	PhaseReviewingOrder  Phase = "reviewing_order"
	PhaseCompleted       Phase = "completed"
)

func (p Phase) String() string {
	return string(p)
}

// Deps are the collaborators one checkout session works against. They are
// constructed per session and passed in by reference; the workflow never
// reaches for process-wide state.
type Deps struct {
	SubscriberID uuid.UUID
	Book         *address.Book
	Cart         cart.Provider
	Subscription subscription.Provider
	Submitter    OrderSubmitter
	Notifier     Notifier
	Completions  CompletionPublisher // optional
}

// Workflow drives one checkout session from AwaitingAddress to Completed.
//
//	AwaitingAddress --(validate & confirm)--> ReviewingOrder
//	ReviewingOrder  --(edit)----------------> AwaitingAddress
//	ReviewingOrder  --(confirm order)-------> Completed | ReviewingOrder
//
// Completed is terminal: a new instance is required to check out again.
// User actions are processed one at a time; a pending order submission
// rejects reconfirmation instead of running twice.
type Workflow struct {
	mu sync.Mutex

	phase          Phase
	form           AddressForm
	chosen         *model.DeliveryAddress
	pickedFavorite bool
	saveAsFavorite bool
	favoriteSaved  bool // one save attempt per checkout, success or not
	submitting     bool
	orderID        uuid.UUID

	deps Deps
}

func NewWorkflow(deps Deps) *Workflow {
	return &Workflow{
		phase: PhaseAwaitingAddress,
		deps:  deps,
	}
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// OrderID returns the created order's identifier, uuid.Nil before
// completion.
func (w *Workflow) OrderID() uuid.UUID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orderID
}

// Form returns the in-progress address form values.
func (w *Workflow) Form() AddressForm {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Chosen returns the delivery address under review, nil before one is
// chosen.
func (w *Workflow) Chosen() *model.DeliveryAddress {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chosen == nil {
		return nil
	}
	addr := *w.chosen
	return &addr
}

// EnterAddress stores fresh form values, replacing any picked favorite.
func (w *Workflow) EnterAddress(form AddressForm, saveAsFavorite bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseAwaitingAddress {
		return NewInvalidPhase("enter address", w.phase)
	}

	w.form = form
	w.chosen = nil
	w.pickedFavorite = false
	w.saveAsFavorite = saveAsFavorite
	return nil
}

// UseFavorite picks an existing address from the book and records it as
// the book's current selection.
func (w *Workflow) UseFavorite(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseAwaitingAddress {
		return NewInvalidPhase("pick favorite", w.phase)
	}

	addr, ok := w.deps.Book.Get(id)
	if !ok {
		return address.NewAddressNotFound()
	}

	if err := w.deps.Book.Select(id); err != nil {
		return err
	}

	w.chosen = &addr
	w.pickedFavorite = true
	w.saveAsFavorite = false
	return nil
}

// SetSaveAsFavorite records or withdraws the persistence intent. Allowed
// while reviewing so the toggle on the review screen keeps working; the
// save then happens during order confirmation.
func (w *Workflow) SetSaveAsFavorite(save bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pickedFavorite {
		w.saveAsFavorite = save
	}
}

// ConfirmAddress validates the entered address and moves to review.
// Validation is fail-fast: the first blank mandatory field in the fixed
// order produces the single error. If the user asked to keep the address
// as favorite it is persisted here; a failed save degrades to a warning
// and never blocks the transition.
func (w *Workflow) ConfirmAddress(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseAwaitingAddress {
		return NewInvalidPhase("confirm address", w.phase)
	}

	if w.pickedFavorite && w.chosen != nil {
		w.phase = PhaseReviewingOrder
		return nil
	}

	if err := w.form.Validate(); err != nil {
		chkErr := err.(*CheckoutError)
		w.deps.Notifier.ValidationFailed(chkErr.Field, chkErr.Message)
		return err
	}

	addr := w.form.Address()
	if w.saveAsFavorite && !w.favoriteSaved {
		w.saveFavorite(ctx, &addr)
	}

	w.chosen = &addr
	w.phase = PhaseReviewingOrder
	return nil
}

// Edit returns from review to the address form without losing any state.
func (w *Workflow) Edit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase != PhaseReviewingOrder {
		return NewInvalidPhase("edit", w.phase)
	}

	w.phase = PhaseAwaitingAddress
	return nil
}

// Confirm runs the order confirmation sequence. The confirmer is the
// blocking prompt: nothing is mutated unless it accepts. Capacity is
// checked against the cart and ledger as they are now, not as they were
// when review began. On success the session reaches Completed with the
// created order's id retained; on failure it stays reviewing, fully
// re-confirmable.
func (w *Workflow) Confirm(ctx context.Context, confirmer Confirmer) error {
	w.mu.Lock()
	if w.phase != PhaseReviewingOrder {
		w.mu.Unlock()
		return NewInvalidPhase("confirm order", w.phase)
	}
	if w.submitting {
		w.mu.Unlock()
		return NewConfirmationPending()
	}
	if w.chosen == nil {
		w.mu.Unlock()
		return NewInvalidPhase("confirm order without address", w.phase)
	}
	w.submitting = true
	chosen := *w.chosen
	w.mu.Unlock()

	err := w.runConfirmation(ctx, confirmer, chosen)

	w.mu.Lock()
	w.submitting = false
	w.mu.Unlock()
	return err
}

func (w *Workflow) runConfirmation(ctx context.Context, confirmer Confirmer, chosen model.DeliveryAddress) error {
	snapshot, err := w.deps.Cart.Current(ctx)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	ledger, err := w.deps.Subscription.Current(ctx)
	if err != nil {
		return fmt.Errorf("read subscription: %w", err)
	}

	deliveryAddress := chosen.FormatOneLine()

	summary := OrderSummary{
		ItemCount:       snapshot.TotalItemCount(),
		TotalWeight:     snapshot.TotalWeight(),
		DeliveryAddress: deliveryAddress,
	}
	if !confirmer.ConfirmOrder(ctx, summary) {
		return NewNotConfirmed()
	}

	if snapshot.TotalItemCount() == 0 {
		return NewEmptyCart()
	}
	if !ledger.IsActive() {
		return NewNoActiveSubscription()
	}
	requested := snapshot.TotalWeight()
	if requested.GreaterThan(ledger.RemainingWeight) {
		return NewCapacityExceeded(requested, ledger.RemainingWeight)
	}

	// Late favorite save: the intent was set after the address step, and
	// only one save attempt runs per checkout.
	w.mu.Lock()
	if !w.pickedFavorite && w.saveAsFavorite && !w.favoriteSaved {
		w.saveFavorite(ctx, &chosen)
		w.chosen = &chosen
	}
	w.mu.Unlock()

	orderID, err := w.deps.Submitter.CreateOrder(ctx, deliveryAddress, chosen.Reference)
	if err != nil {
		return NewOrderCreationError(err)
	}

	w.mu.Lock()
	w.phase = PhaseCompleted
	w.orderID = orderID
	w.mu.Unlock()

	w.deps.Notifier.Completed(orderID)
	w.publishCompletion(ctx, orderID, deliveryAddress)
	return nil
}

// saveFavorite persists the chosen address with the favorite flag set.
// Must be called with the mutex held. Failure is a warning, not a block.
func (w *Workflow) saveFavorite(ctx context.Context, addr *model.DeliveryAddress) {
	w.favoriteSaved = true

	input := model.AddressInput{
		Street:       addr.Street,
		Number:       addr.Number,
		Neighborhood: addr.Neighborhood,
		PostalCode:   addr.PostalCode,
		City:         addr.City,
		Region:       addr.Region,
		Phone:        addr.Phone,
		Reference:    addr.Reference,
		IsFavorite:   true,
	}

	saved, err := w.deps.Book.Add(ctx, input)
	if err != nil {
		logger.Error("Favorite save failed during checkout", err)
		w.deps.Notifier.Warn("Could not save the address as favorite; checkout continues")
		return
	}
	*addr = saved
}

func (w *Workflow) publishCompletion(ctx context.Context, orderID uuid.UUID, deliveryAddress string) {
	if w.deps.Completions == nil {
		return
	}

	payload := CheckoutCompletedPayload{
		OrderID:         orderID,
		SubscriberID:    w.deps.SubscriberID,
		DeliveryAddress: deliveryAddress,
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.deps.Completions.Publish(ctx, payload); err != nil {
		// The order exists either way; the handoff event is best effort.
		logger.Error("Failed to publish checkout completion", err)
	}
}

// Reset clears the session back to AwaitingAddress. A completed session
// cannot be reset; checking out again takes a new instance.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.phase == PhaseCompleted {
		return NewInvalidPhase("reset", w.phase)
	}
	if w.submitting {
		return NewConfirmationPending()
	}

	w.phase = PhaseAwaitingAddress
	w.form = AddressForm{}
	w.chosen = nil
	w.pickedFavorite = false
	w.saveAsFavorite = false
	w.favoriteSaved = false
	w.orderID = uuid.Nil
	return nil
}
