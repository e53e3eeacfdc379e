package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freshbasket-backend/internal/shared/middleware"
	"freshbasket-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAddressRoutes(v1, c)
		setupCheckoutRoutes(v1, c)
	}

	return router
}

// ========================================
// ADDRESS ROUTES
// ========================================
func setupAddressRoutes(v1 *gin.RouterGroup, c *container.Container) {
	addresses := v1.Group("/addresses")
	addresses.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		addresses.POST("", c.AddressHandler.CreateAddress)
		addresses.GET("", c.AddressHandler.ListAddresses)
		addresses.GET("/favorites", c.AddressHandler.ListFavorites)
		addresses.PATCH("/:id", c.AddressHandler.UpdateAddress)
		addresses.PUT("/:id/favorite", c.AddressHandler.SetFavorite)
		addresses.PUT("/:id/select", c.AddressHandler.SelectAddress)
		addresses.DELETE("/select", c.AddressHandler.ClearSelection)
		addresses.DELETE("/:id", c.AddressHandler.DeleteAddress)
	}
}

// ========================================
// CHECKOUT ROUTES
// ========================================
func setupCheckoutRoutes(v1 *gin.RouterGroup, c *container.Container) {
	checkout := v1.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		checkout.POST("", c.CheckoutHandler.StartCheckout)
		checkout.GET("", c.CheckoutHandler.GetCheckout)
		checkout.POST("/address", c.CheckoutHandler.SubmitAddress)
		checkout.POST("/edit", c.CheckoutHandler.EditAddress)
		checkout.POST("/confirm", c.CheckoutHandler.ConfirmOrder)
		checkout.DELETE("", c.CheckoutHandler.AbandonCheckout)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Redis == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Redis.HealthCheck(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
