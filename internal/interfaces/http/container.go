package http

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/infrastructure/auth"
	"github.com/ptuchik/billing/internal/infrastructure/cache"
	"github.com/ptuchik/billing/internal/infrastructure/config"
	"github.com/ptuchik/billing/internal/infrastructure/email"
	"github.com/ptuchik/billing/internal/infrastructure/permission"
	"github.com/ptuchik/billing/internal/infrastructure/ratelimit"
	"github.com/ptuchik/billing/internal/infrastructure/scheduler"
	"github.com/ptuchik/billing/internal/interfaces/http/handlers"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
	"github.com/ptuchik/billing/internal/shared/logger"
)

const eventBufferSize = 256

// Container holds all infrastructure components, repositories, use cases, handlers,
// and background services. It is responsible for wiring everything together and
// providing a Shutdown() method for graceful termination.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *billingUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	chargeLimiter        middleware.Limiter

	// Background services
	dispatcher *events.InMemoryEventDispatcher
	scheduler  *scheduler.SchedulerManager

	shutdownOnce sync.Once
}

type allHandlers struct {
	purchase     *handlers.PurchaseHandler
	subscription *handlers.SubscriptionHandler
	payment      *handlers.PaymentHandler
	sweep        *handlers.SweepHandler
}

// NewContainer wires the billing engine on top of an open database.
// Redis is optional: without it sweeps run unlocked and charges are not
// rate limited.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(ctx); err != nil {
		return nil, err
	}
	if err := c.initUseCases(); err != nil {
		c.closeInfrastructure()
		return nil, err
	}
	if err := c.initAccessControl(); err != nil {
		c.closeInfrastructure()
		return nil, err
	}
	if err := c.initNotifications(); err != nil {
		c.closeInfrastructure()
		return nil, err
	}
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	c.repos = newRepositories(c.db, c.log)
	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, c.log)

	if c.cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, &c.cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redis = client
		c.log.Infow("redis connected", "addr", c.cfg.Redis.GetAddr())
	} else {
		c.log.Warnw("redis disabled, sweeps run without locks and charges are not rate limited")
	}
	return nil
}

func (c *Container) initNotifications() error {
	sender := email.NewSender(c.cfg.Email, c.log)
	mailer := email.NewBillingMailer(c.repos.Customers, sender, c.log)
	if err := mailer.Register(c.dispatcher); err != nil {
		return fmt.Errorf("failed to register billing mailer: %w", err)
	}
	return c.dispatcher.Start()
}

func (c *Container) initAccessControl() error {
	enforcer, err := permission.NewEnforcer(c.db, c.cfg.Permission.ModelPath, c.log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.InitBillingPermissions(); err != nil {
		return fmt.Errorf("failed to init billing permissions: %w", err)
	}

	jwtSvc := auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.Issuer)
	c.authMiddleware = middleware.NewAuthMiddleware(jwtSvc, c.log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(enforcer, c.log)

	// Leave the interface nil without redis; a typed nil would not be.
	if c.redis != nil {
		c.chargeLimiter = ratelimit.NewRedisRateLimiter(c.redis)
	}
	return nil
}

func (c *Container) initHandlers() {
	u := c.ucs
	c.hdlrs = &allHandlers{
		purchase: handlers.NewPurchaseHandler(u.getQuote, u.purchasePlan, u.deactivatePurchase, c.log),
		subscription: handlers.NewSubscriptionHandler(
			u.getSubscription, u.listSubscriptions, u.cancelSubscription,
			u.setAutoRenew, u.prolongSubscription, u.purchasePlan, c.log,
		),
		payment: handlers.NewPaymentHandler(handlers.PaymentUseCases{
			ListTransactions:    u.listTransactions,
			Refill:              u.refillBalance,
			Refund:              u.refundTransaction,
			Void:                u.voidTransaction,
			CompleteTransaction: u.completeTransaction,
			CreateOrder:         u.createOrder,
			CompleteOrder:       u.completeOrder,
			ListMethods:         u.listPaymentMethods,
			CreateMethod:        u.createPaymentMethod,
			DeleteMethod:        u.deletePaymentMethod,
			DefaultMethod:       u.setDefaultPaymentMethod,
		}, c.log),
		sweep: handlers.NewSweepHandler(map[string]handlers.SweepRunner{
			"renew":  u.renewSubscriptions,
			"expire": u.expireSubscriptions,
			"remind": u.sendReminders,
		}, c.log),
	}
}

// Engine returns the gin engine. Call SetupRoutes first.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// SweepJobs returns the lifecycle sweeps for the scheduler and the CLI.
func (c *Container) SweepJobs() scheduler.BillingJobs {
	return scheduler.BillingJobs{
		Renew:  c.ucs.renewSubscriptions,
		Expire: c.ucs.expireSubscriptions,
		Remind: c.ucs.sendReminders,
	}
}

// StartScheduler registers the sweeps on their crontabs and starts them.
// It is a no-op when the scheduler is disabled.
func (c *Container) StartScheduler() error {
	if !c.cfg.Scheduler.Enabled {
		c.log.Infow("scheduler disabled")
		return nil
	}
	manager, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := manager.RegisterBillingJobs(c.SweepJobs(), c.cfg.Scheduler); err != nil {
		return fmt.Errorf("failed to register billing jobs: %w", err)
	}
	manager.Start()
	c.scheduler = manager
	return nil
}

// Shutdown stops background services and closes connections. It is safe to
// call more than once.
func (c *Container) Shutdown() {
	c.shutdownOnce.Do(func() {
		if c.scheduler != nil {
			if err := c.scheduler.Stop(); err != nil {
				c.log.Warnw("failed to stop scheduler", "error", err)
			}
		}
		if err := c.dispatcher.Stop(); err != nil {
			c.log.Warnw("failed to stop event dispatcher", "error", err)
		}
		c.closeInfrastructure()
		c.log.Infow("container shut down")
	})
}

func (c *Container) closeInfrastructure() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis", "error", err)
		}
		c.redis = nil
	}
}
