// cmd/worker/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"freshbasket-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := loadConfig()
	logger.Init(cfg.Environment)

	// Initialize handlers
	handlers := initializeHandlers(cfg)

	// Setup Asynq server
	srv := setupAsynqServer(cfg, handlers)

	// Wait for shutdown signal
	waitForShutdown(srv, handlers)
}

func waitForShutdown(srv *asynqServer, handlers *HandlerRegistry) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	srv.Shutdown()
	handlers.Close()
	log.Println("[Shutdown] ✓ Stopped")
}
