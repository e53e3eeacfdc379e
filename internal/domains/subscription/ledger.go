package subscription

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger is a read-only view over the active subscription: the plan, its
// activity flag and the weight allowance still available in the current
// billing period. The allowance is maintained by the billing side; this
// core only reads it.
type Ledger struct {
	PlanID          string
	Active          bool
	RemainingWeight decimal.Decimal
}

func (l Ledger) IsActive() bool {
	return l.Active
}

// Provider yields the current ledger. The checkout workflow reads it again
// at confirmation time: capacity may have changed between steps.
type Provider interface {
	Current(ctx context.Context) (Ledger, error)
}
