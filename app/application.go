// Package app wires configuration, storage, cache, and services together
package app

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"marketplace.app/api"
	"marketplace.app/cache"
	"marketplace.app/config"
	"marketplace.app/database"
	"marketplace.app/repository"
	"marketplace.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config *config.Config
	db     *gorm.DB
	store  *cache.RedisStore
	server *api.Server
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeCache(); err != nil {
		return nil, err
	}

	app.initializeServices()

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeCache() error {
	slog.Info("Initializing cache store...")

	store, err := cache.NewRedisStore(&app.config.Redis)
	if err != nil {
		slog.Error("Failed to connect to cache store", "error", err)
		return fmt.Errorf("initialize cache store: %w", err)
	}

	app.store = store
	return nil
}

func (app *Application) initializeServices() {
	slog.Info("Initializing services...")

	sellerRepo := repository.NewSellerRepository(app.db)
	productRepo := repository.NewProductRepository(app.db)
	orderRepo := repository.NewOrderRepository(app.db)
	reviewRepo := repository.NewReviewRepository(app.db)

	accessor := cache.NewAccessor(app.store)
	coordinator := cache.NewCoordinator(app.store)

	viewService := service.NewViewService(accessor, sellerRepo, productRepo, orderRepo, reviewRepo, app.config.Cache)
	ratingService := service.NewRatingService(sellerRepo, coordinator)
	sellerService := service.NewSellerService(sellerRepo, productRepo, coordinator)
	inventoryService := service.NewInventoryService(productRepo, orderRepo, coordinator)
	loginLimiter := service.NewLoginLimiter(app.store, app.config.RateLimit)

	app.server = api.NewServer(
		app.db,
		app.config,
		viewService,
		ratingService,
		sellerService,
		inventoryService,
		loginLimiter,
	)

	slog.Info("Services initialized successfully")
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			slog.Warn("Error closing cache store", "error", err)
		}
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
