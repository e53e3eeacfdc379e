package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"freshbasket-backend/internal/config"
	"freshbasket-backend/internal/domains/checkout"
)

// HTTPSubmitter posts order-creation requests to the fulfillment service.
// Fulfillment is opaque to this backend: we hand over the flattened
// delivery address and get back an order id.
type HTTPSubmitter struct {
	cfg        config.FulfillmentConfig
	httpClient *http.Client
}

func NewHTTPSubmitter(cfg config.FulfillmentConfig) checkout.OrderSubmitter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSubmitter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createOrderRequest struct {
	DeliveryAddress string  `json:"delivery_address"`
	Notes           *string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	OrderID uuid.UUID `json:"order_id"`
}

func (s *HTTPSubmitter) CreateOrder(ctx context.Context, deliveryAddress string, notes *string) (uuid.UUID, error) {
	body, err := json.Marshal(createOrderRequest{
		DeliveryAddress: deliveryAddress,
		Notes:           notes,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal order request: %w", err)
	}

	url := fmt.Sprintf("%s/orders", s.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("call fulfillment service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return uuid.Nil, fmt.Errorf("read fulfillment response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("fulfillment service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var created createOrderResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return uuid.Nil, fmt.Errorf("decode fulfillment response: %w", err)
	}
	if created.OrderID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("fulfillment service returned no order id")
	}

	return created.OrderID, nil
}
