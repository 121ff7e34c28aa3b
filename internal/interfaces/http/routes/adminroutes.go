package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/interfaces/http/handlers"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
	"github.com/ptuchik/billing/internal/shared/constants"
)

// AdminRouteConfig holds dependencies for admin routes.
type AdminRouteConfig struct {
	PurchaseHandler      *handlers.PurchaseHandler
	SubscriptionHandler  *handlers.SubscriptionHandler
	PaymentHandler       *handlers.PaymentHandler
	SweepHandler         *handlers.SweepHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupAdminRoutes configures operator routes. Every group requires the
// manage permission on its resource.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())

	perm := cfg.PermissionMiddleware

	transactions := admin.Group("/transactions")
	transactions.Use(perm.RequirePermission(constants.ResourceTransactions, constants.ActionManage))
	{
		transactions.GET("", cfg.PaymentHandler.ListTransactions)
		transactions.POST("/:id/refund", cfg.PaymentHandler.RefundTransaction)
		transactions.POST("/:id/void", cfg.PaymentHandler.VoidTransaction)
		transactions.POST("/:id/complete", cfg.PaymentHandler.CompleteTransaction)
	}

	subscriptions := admin.Group("/subscriptions")
	subscriptions.Use(perm.RequirePermission(constants.ResourceSubscriptions, constants.ActionManage))
	{
		subscriptions.POST("/:id/cancel", cfg.SubscriptionHandler.AdminCancelSubscription)
		subscriptions.POST("/:id/prolong", cfg.SubscriptionHandler.ProlongSubscription)
	}

	purchases := admin.Group("/purchases")
	purchases.Use(perm.RequirePermission(constants.ResourceSubscriptions, constants.ActionManage))
	{
		purchases.POST("/:id/deactivate", cfg.PurchaseHandler.DeactivatePurchase)
	}

	sweeps := admin.Group("/sweeps")
	sweeps.Use(perm.RequirePermission(constants.ResourceSweeps, constants.ActionManage))
	{
		sweeps.POST("/:kind", cfg.SweepHandler.RunSweep)
	}
}
