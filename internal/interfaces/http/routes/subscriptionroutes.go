package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/interfaces/http/handlers"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
)

// SubscriptionRouteConfig holds dependencies for subscription routes.
type SubscriptionRouteConfig struct {
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
	ChargeLimit         gin.HandlerFunc
}

// SetupSubscriptionRoutes configures the routes customers use to manage
// their own subscriptions.
func SetupSubscriptionRoutes(engine *gin.Engine, cfg *SubscriptionRouteConfig) {
	subscriptions := engine.Group("/subscriptions")
	subscriptions.Use(cfg.AuthMiddleware.RequireAuth())
	{
		subscriptions.GET("", cfg.SubscriptionHandler.ListSubscriptions)
		subscriptions.GET("/:id", cfg.SubscriptionHandler.GetSubscription)
		subscriptions.POST("/:id/cancel", cfg.SubscriptionHandler.CancelSubscription)
		subscriptions.PUT("/:id/auto-renew", cfg.SubscriptionHandler.SetAutoRenew)
		subscriptions.POST("/:id/renew", cfg.ChargeLimit, cfg.SubscriptionHandler.RenewSubscription)
	}
}
