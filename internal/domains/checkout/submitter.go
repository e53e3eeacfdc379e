package checkout

import (
	"context"

	"github.com/google/uuid"
)

// OrderSubmitter is the boundary adapter performing the remote order
// creation. The call is opaque to this core: it either yields the created
// order's identifier or fails. The workflow guarantees at most one
// in-flight invocation per session.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, deliveryAddress string, notes *string) (uuid.UUID, error)
}
