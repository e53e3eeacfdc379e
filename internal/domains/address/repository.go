package address

import (
	"context"

	"freshbasket-backend/internal/domains/address/model"
)

// Repository persists a subscriber's full address collection in a single
// named durable slot. The collection is always written whole: there is no
// per-entry mutation at the storage layer.
//
// Load must distinguish three outcomes:
//   - slot present: the stored collection, in insertion order
//   - slot absent or unreadable (corrupt payload): empty collection, nil
//     error — absence is not a failure
//   - storage fault: nil collection and a PERSISTENCE_ERROR
type Repository interface {
	Load(ctx context.Context) ([]model.DeliveryAddress, error)
	Save(ctx context.Context, addresses []model.DeliveryAddress) error
}
