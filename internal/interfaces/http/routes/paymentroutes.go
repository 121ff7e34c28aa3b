package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/interfaces/http/handlers"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	AuthMiddleware *middleware.AuthMiddleware
	ChargeLimit    gin.HandlerFunc
}

// SetupPaymentRoutes configures balance, order, transaction and payment
// method routes of the current user.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	auth := cfg.AuthMiddleware.RequireAuth()

	engine.GET("/transactions", auth, cfg.PaymentHandler.ListMyTransactions)
	engine.POST("/balance/refill", auth, cfg.ChargeLimit, cfg.PaymentHandler.RefillBalance)

	orders := engine.Group("/orders")
	orders.Use(auth)
	{
		orders.POST("", cfg.PaymentHandler.CreateOrder)
		orders.POST("/:id/complete", cfg.ChargeLimit, cfg.PaymentHandler.CompleteOrder)
	}

	methods := engine.Group("/payment-methods")
	methods.Use(auth)
	{
		methods.GET("", cfg.PaymentHandler.ListPaymentMethods)
		methods.POST("", cfg.PaymentHandler.CreatePaymentMethod)
		methods.DELETE("/:token", cfg.PaymentHandler.DeletePaymentMethod)
		methods.PUT("/:token/default", cfg.PaymentHandler.SetDefaultPaymentMethod)
	}
}
