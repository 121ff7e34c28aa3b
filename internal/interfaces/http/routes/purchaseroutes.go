package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/interfaces/http/handlers"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
)

// PurchaseRouteConfig holds dependencies for purchase routes.
type PurchaseRouteConfig struct {
	PurchaseHandler *handlers.PurchaseHandler
	AuthMiddleware  *middleware.AuthMiddleware
	// ChargeLimit guards calls that may charge the customer.
	ChargeLimit gin.HandlerFunc
}

// SetupPurchaseRoutes configures plan quote and purchase routes.
func SetupPurchaseRoutes(engine *gin.Engine, cfg *PurchaseRouteConfig) {
	plans := engine.Group("/plans")
	plans.Use(cfg.AuthMiddleware.RequireAuth())
	{
		plans.GET("/:alias/quote", cfg.PurchaseHandler.Quote)
	}

	purchases := engine.Group("/purchases")
	purchases.Use(cfg.AuthMiddleware.RequireAuth())
	{
		purchases.POST("", cfg.ChargeLimit, cfg.PurchaseHandler.Purchase)
	}
}
