package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"freshbasket-backend/internal/domains/checkout"
	"freshbasket-backend/internal/shared/utils"
	"freshbasket-backend/pkg/logger"
)

// handoffTTL bounds how long the order-tracking handoff stays readable
// after checkout; the app picks it up on its next screen load.
const handoffTTL = 24 * time.Hour

type CheckoutCompletedHandler struct {
	redis *redis.Client
}

func NewCheckoutCompletedHandler(redisClient *redis.Client) *CheckoutCompletedHandler {
	return &CheckoutCompletedHandler{
		redis: redisClient,
	}
}

func (h *CheckoutCompletedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload checkout.CheckoutCompletedPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	logger.Info("Processing checkout completed task", map[string]interface{}{
		"order_id":      payload.OrderID,
		"subscriber_id": payload.SubscriberID,
	})

	// Point the app's order-tracking screen at the new order.
	handoffKey := fmt.Sprintf("order:handoff:%s", payload.SubscriberID)
	if err := h.redis.Set(ctx, handoffKey, payload.OrderID.String(), handoffTTL).Err(); err != nil {
		return fmt.Errorf("write order handoff: %w", err)
	}

	// The ordered items left the cart; drop the stale mirror so the next
	// checkout starts from whatever the cart service publishes next.
	cartKey := fmt.Sprintf("cart:%s", payload.SubscriberID)
	if err := h.redis.Del(ctx, cartKey).Err(); err != nil {
		logger.Info("Failed to clear cart mirror", map[string]interface{}{
			"subscriber_id": payload.SubscriberID,
			"error":         err.Error(),
		})
		// Handoff is written; a stale mirror self-heals on next publish.
	}

	logger.Info("Checkout handoff recorded", map[string]interface{}{
		"order_id":      payload.OrderID,
		"subscriber_id": payload.SubscriberID,
	})

	return nil
}
