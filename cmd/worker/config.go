package main

import (
	"log"

	"freshbasket-backend/internal/shared/utils"
)

// Config holds all configuration for the worker
type Config struct {
	Environment   string
	RedisAddr     string
	RedisPassword string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		Environment:   utils.GetEnvVariable("APP_ENV", "development"),
		RedisAddr:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: utils.GetEnvVariable("REDIS_PASSWORD", ""),
	}

	log.Printf("[Config] Environment: %s, Redis: %s", cfg.Environment, cfg.RedisAddr)

	return cfg
}
