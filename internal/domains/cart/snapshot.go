package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is one cart line. UnitWeight is the weight of a single unit; the
// line's contribution to the basket weight is quantity times unit weight.
type Item struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitWeight decimal.Decimal `json:"unit_weight"`
	Producer   *string         `json:"producer,omitempty"`
}

// Snapshot is a read-only view of the subscriber's cart at one instant.
// The cart itself is owned by the storefront app; this core only reads it.
type Snapshot struct {
	items []Item
}

func NewSnapshot(items []Item) Snapshot {
	copied := make([]Item, len(items))
	copy(copied, items)
	return Snapshot{items: copied}
}

// Items returns the cart lines in cart order.
func (s Snapshot) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalWeight is the sum over all lines of quantity times unit weight.
func (s Snapshot) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.UnitWeight.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalItemCount is the sum of line quantities.
func (s Snapshot) TotalItemCount() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Provider yields the current cart snapshot. The checkout workflow reads
// it again at confirmation time: contents may have changed between steps.
type Provider interface {
	Current(ctx context.Context) (Snapshot, error)
}
