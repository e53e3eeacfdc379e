package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"freshbasket-backend/internal/shared/utils"
)

// TypeCheckoutCompleted is the task emitted when a session reaches
// Completed. The worker turns it into the order-tracking handoff the
// app picks up; any delay before navigating is the consumer's policy,
// not this core's.
const TypeCheckoutCompleted = "checkout:completed"

type CheckoutCompletedPayload struct {
	OrderID         uuid.UUID `json:"order_id"`
	SubscriberID    uuid.UUID `json:"subscriber_id"`
	DeliveryAddress string    `json:"delivery_address"`
	CompletedAt     string    `json:"completed_at"` // RFC3339
}

// CompletionPublisher emits the completion event. Failures must never
// fail the checkout itself.
type CompletionPublisher interface {
	Publish(ctx context.Context, payload CheckoutCompletedPayload) error
}

type asynqPublisher struct {
	client *asynq.Client
}

func NewAsynqPublisher(client *asynq.Client) CompletionPublisher {
	return &asynqPublisher{client: client}
}

func (p *asynqPublisher) Publish(ctx context.Context, payload CheckoutCompletedPayload) error {
	task, err := utils.MarshalTask(TypeCheckoutCompleted, payload)
	if err != nil {
		return err
	}

	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(5),
	)
	return err
}
