package main

import (
	"fmt"
	"time"

	"storerating/internal/config"
	"storerating/internal/database"
	"storerating/internal/handlers"
	"storerating/internal/middleware"
	"storerating/internal/observability"
	"storerating/internal/repositories"
	"storerating/internal/services"
	"storerating/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the optional collaborators of the application. Zero values are
// valid: no broker, no cache, a fresh registry and a database opened from cfg.
type Deps struct {
	DB        *gorm.DB
	Publisher services.EventPublisher
	Cache     services.Cache
	Registry  *prometheus.Registry
}

// App is the wired HTTP application together with the services seeding needs.
type App struct {
	Fiber   *fiber.App
	DB      *gorm.DB
	Metrics *observability.Metrics
	Auth    *services.AuthService
	Stores  *services.StoreService
	Ratings *services.RatingService
}

type repos struct {
	users   repositories.UserRepository
	stores  repositories.StoreRepository
	ratings repositories.RatingRepository
}

func openRepositories(cfg *config.Config, db *gorm.DB) (repos, *gorm.DB, error) {
	if cfg.DB.Driver == config.DriverMemory {
		return repos{
			users:   repositories.NewMockUserRepository(),
			stores:  repositories.NewMockStoreRepository(),
			ratings: repositories.NewMockRatingRepository(),
		}, nil, nil
	}

	if db == nil {
		var err error
		db, err = database.Open(cfg.DB.Driver, cfg.DB.DSN)
		if err != nil {
			return repos{}, nil, err
		}
	}
	return repos{
		users:   repositories.NewGORMUserRepository(db),
		stores:  repositories.NewGORMStoreRepository(db),
		ratings: repositories.NewGORMRatingRepository(db),
	}, db, nil
}

// NewApp builds repositories, services and handlers and mounts the routes.
func NewApp(cfg *config.Config, log *logger.Logger, deps Deps) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	r, db, err := openRepositories(cfg, deps.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open repositories: %w", err)
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(reg)

	// --- Initialize Services ---
	authService := services.NewAuthService(r.users, cfg.JWT.Secret, cfg.JWT.TTL, log)
	storeService := services.NewStoreService(r.stores, r.ratings, deps.Cache, log)
	ratingService := services.NewRatingService(r.ratings, r.users, storeService, deps.Publisher, metrics, log)
	adminService := services.NewAdminService(r.users, r.stores, r.ratings, storeService)

	// --- Initialize Handlers ---
	submitter := handlers.NewFormSubmitter(cfg.Forms.SubmitDelay, metrics, log)
	authHandler := handlers.NewAuthHandler(authService, submitter, log)
	shellHandler := handlers.NewShellHandler(log)
	adminHandler := handlers.NewAdminHandler(authService, storeService, adminService, submitter, log)
	ratingHandler := handlers.NewRatingHandler(ratingService, submitter, log)

	app := fiber.New(fiber.Config{AppName: "storerating"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(metrics.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"time":      time.Now().Format(time.RFC3339),
			"db_driver": cfg.DB.Driver,
			"broker":    deps.Publisher != nil,
			"cache":     deps.Cache != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	shellHandler.RegisterRoutes(apiV1)

	// Registered after the public routes, which end the chain before it runs.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	adminHandler.RegisterRoutes(protected)
	ratingHandler.RegisterRoutes(protected)

	return &App{
		Fiber:   app,
		DB:      db,
		Metrics: metrics,
		Auth:    authService,
		Stores:  storeService,
		Ratings: ratingService,
	}, nil
}
