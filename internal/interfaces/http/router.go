package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ptuchik/billing/internal/infrastructure/ratelimit"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
	"github.com/ptuchik/billing/internal/interfaces/http/routes"
	"github.com/ptuchik/billing/internal/shared/utils"

	_ "github.com/ptuchik/billing/docs"
)

// SetupRoutes installs global middleware and every route group.
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.RequestLogger(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", c.health)
	c.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	chargeLimit := middleware.ChargeRateLimit(c.chargeLimiter, ratelimit.Limits{
		PerMinute: c.cfg.Billing.ChargeRateLimit.PerMinute,
		PerHour:   c.cfg.Billing.ChargeRateLimit.PerHour,
	}, c.log)

	routes.SetupPurchaseRoutes(c.engine, &routes.PurchaseRouteConfig{
		PurchaseHandler: c.hdlrs.purchase,
		AuthMiddleware:  c.authMiddleware,
		ChargeLimit:     chargeLimit,
	})

	routes.SetupSubscriptionRoutes(c.engine, &routes.SubscriptionRouteConfig{
		SubscriptionHandler: c.hdlrs.subscription,
		AuthMiddleware:      c.authMiddleware,
		ChargeLimit:         chargeLimit,
	})

	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		PaymentHandler: c.hdlrs.payment,
		AuthMiddleware: c.authMiddleware,
		ChargeLimit:    chargeLimit,
	})

	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		PurchaseHandler:      c.hdlrs.purchase,
		SubscriptionHandler:  c.hdlrs.subscription,
		PaymentHandler:       c.hdlrs.payment,
		SweepHandler:         c.hdlrs.sweep,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})
}

func (c *Container) health(ctx *gin.Context) {
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		c.log.Errorw("health check failed", "error", err)
		utils.ErrorResponse(ctx, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.SuccessResponse(ctx, http.StatusOK, "ok", gin.H{"status": "healthy"})
}

// Run starts the HTTP server on addr.
func (c *Container) Run(addr string) error {
	return c.engine.Run(addr)
}
