package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"freshbasket-backend/internal/domains/checkout"
	checkoutJob "freshbasket-backend/internal/domains/checkout/job"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	redis *redis.Client

	checkoutCompleted *checkoutJob.CheckoutCompletedHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(cfg *Config) *HandlerRegistry {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	return &HandlerRegistry{
		redis:             redisClient,
		checkoutCompleted: checkoutJob.NewCheckoutCompletedHandler(redisClient),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(checkout.TypeCheckoutCompleted, h.checkoutCompleted.ProcessTask)
}

// Close releases handler resources
func (h *HandlerRegistry) Close() {
	if err := h.redis.Close(); err != nil {
		log.Printf("[Worker] ⚠️ Failed to close Redis: %v", err)
	}
}
