package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSummary is what the confirmation prompt presents to the user.
type OrderSummary struct {
	ItemCount       int
	TotalWeight     decimal.Decimal
	DeliveryAddress string
}

// Notifier receives the user-facing effects the workflow emits. Rendering
// is the storefront app's job; the core only invokes callbacks.
type Notifier interface {
	// ValidationFailed reports a blocking validation error naming the field.
	ValidationFailed(field, message string)
	// Warn reports a non-blocking warning (e.g. a failed favorite save).
	Warn(message string)
	// Completed announces the created order for post-checkout navigation.
	Completed(orderID uuid.UUID)
}

// Confirmer is the blocking confirmation gate: order submission only
// proceeds when it accepts. It stands in for a real payment step.
type Confirmer interface {
	ConfirmOrder(ctx context.Context, summary OrderSummary) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, summary OrderSummary) bool

func (f ConfirmerFunc) ConfirmOrder(ctx context.Context, summary OrderSummary) bool {
	return f(ctx, summary)
}

// RecordingNotifier buffers notifications so a transport layer can drain
// them into its responses.
type RecordingNotifier struct {
	mu       sync.Mutex
	warnings []string
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) ValidationFailed(field, message string) {
	// The blocking error is already surfaced through the returned error;
	// nothing extra to buffer.
}

func (n *RecordingNotifier) Warn(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, message)
}

func (n *RecordingNotifier) Completed(orderID uuid.UUID) {}

// DrainWarnings returns and clears the buffered warnings.
func (n *RecordingNotifier) DrainWarnings() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.warnings
	n.warnings = nil
	return out
}
