package app

import (
	"context"
	"fmt"
	"time"

	"nexora/internal/auth"
	"nexora/internal/catalog"
	"nexora/internal/config"
	"nexora/internal/handlers"
	"nexora/internal/jobs"
	"nexora/internal/middleware"
	"nexora/internal/payments"
	"nexora/internal/repositories"
	"nexora/internal/services"
	"nexora/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options overrides collaborators that default to external services.
type Options struct {
	DB       *gorm.DB
	Verifier auth.IdentityVerifier
	Payments payments.Provider
	Events   services.EventPublisher
}

// App is the assembled storefront server.
type App struct {
	Fiber    *fiber.App
	Catalog  *catalog.Catalog
	Products *services.ProductService
	Auth     *services.AuthService

	cfg   config.Config
	db    *gorm.DB // set only when NewApp opened it
	sched *cron.Cron
	mq    *rabbitmq.Client
}

// NewApp wires repositories, services and handlers. With no DB in opts the
// configured database is opened and Shutdown closes it.
func NewApp(cfg config.Config, opts Options) (*App, error) {
	a := &App{cfg: cfg}
	db := opts.DB
	if db == nil {
		var err error
		if db, err = OpenDatabase(cfg.Database); err != nil {
			return nil, err
		}
		a.db = db
	}

	var (
		productRepo repositories.ProductRepository
		userRepo    repositories.UserRepository
	)
	if db != nil {
		productRepo = repositories.NewGORMProductRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
	} else {
		zap.L().Warn("using in-memory repositories; data is lost on restart")
		productRepo = repositories.NewMockProductRepository()
		userRepo = repositories.NewMockUserRepository()
	}

	verifier := opts.Verifier
	if verifier == nil {
		verifier = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	}
	provider := opts.Payments
	if provider == nil {
		provider = payments.NewStripeProvider(cfg.Payments.StripeSecretKey, cfg.Payments.Currency)
	}

	events := opts.Events
	if events == nil && cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, InstanceID: uuid.New().String()})
		if err != nil {
			zap.L().Warn("catalog events disabled", zap.Error(err))
		} else {
			a.mq = mq
			events = mq
		}
	}

	client := catalog.NewStoreClient(productRepo)
	a.Catalog = catalog.New(client)
	a.Products = services.NewProductService(client, a.Catalog, events)
	a.Auth = services.NewAuthService(userRepo, verifier, services.AuthConfig{
		JWTSecret:   cfg.Auth.JWTSecret,
		TokenTTL:    cfg.Auth.SessionTTL,
		AdminEmails: cfg.Auth.AdminEmails,
	})
	storefront := services.NewStorefrontService(a.Catalog, productRepo)
	checkout := services.NewCheckoutService(provider)

	productHandler := handlers.NewProductHandler(a.Products)
	storefrontHandler := handlers.NewStorefrontHandler(storefront)
	authHandler := handlers.NewAuthHandler(a.Auth)
	checkoutHandler := handlers.NewCheckoutHandler(checkout)

	a.Fiber = fiber.New(fiber.Config{AppName: "nexora"})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(logger.New())

	a.Fiber.Get("/health", storefrontHandler.HandleHealth)

	api := a.Fiber.Group("/api")
	storefrontHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api, middleware.AuthRequired(a.Auth))

	admin := api.Group("/admin",
		middleware.NoCache(),
		middleware.AuthRequired(a.Auth),
		middleware.AdminRequired(a.Auth),
	)
	productHandler.RegisterRoutes(admin)

	return a, nil
}

// Start loads the catalog, schedules the refresh job and subscribes to
// catalog events from other instances. A failed first load is logged; the
// refresh job retries it.
func (a *App) Start(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := a.Catalog.Load(loadCtx); err != nil {
		zap.L().Warn("initial catalog load failed", zap.Error(err))
	} else {
		zap.L().Info("catalog loaded", zap.Int("products", a.Catalog.Len()))
	}

	sched, err := jobs.StartCatalogRefresh(a.cfg.CatalogRefresh, a.Products)
	if err != nil {
		return err
	}
	a.sched = sched

	if a.mq != nil {
		if err := a.mq.ConsumeCatalogEvents(a.Products.HandleCatalogEvent); err != nil {
			return fmt.Errorf("failed to start catalog event consumer: %w", err)
		}
	}
	return nil
}

// Shutdown stops the HTTP server and background work, then releases the
// connections NewApp opened.
func (a *App) Shutdown() error {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	err := a.Fiber.Shutdown()
	if a.mq != nil {
		if mqErr := a.mq.Close(); mqErr != nil {
			zap.L().Warn("error closing rabbitmq client", zap.Error(mqErr))
		}
	}
	if a.db != nil {
		if dbErr := closeDatabase(a.db); dbErr != nil {
			zap.L().Warn("error closing database", zap.Error(dbErr))
			if err == nil {
				err = dbErr
			}
		}
	}
	return err
}
