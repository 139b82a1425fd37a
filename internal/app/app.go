package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/steffise60/Suivi-de-chantier/internal/attachment"
	"github.com/steffise60/Suivi-de-chantier/internal/auth"
	"github.com/steffise60/Suivi-de-chantier/internal/config"
	"github.com/steffise60/Suivi-de-chantier/internal/db"
	"github.com/steffise60/Suivi-de-chantier/internal/health"
	"github.com/steffise60/Suivi-de-chantier/internal/ledger"
	"github.com/steffise60/Suivi-de-chantier/internal/logger"
	"github.com/steffise60/Suivi-de-chantier/internal/messaging"
	"github.com/steffise60/Suivi-de-chantier/internal/metrics"
	"github.com/steffise60/Suivi-de-chantier/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type App struct {
	config *config.Config
	router chi.Router
	server *http.Server
	logger *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	database := db.New(cfg.Database)

	ctx := context.Background()
	if err := db.RunMigrations(ctx, database,
		(*ledger.Project)(nil),
		(*ledger.Task)(nil),
		(*ledger.TimeLog)(nil),
		(*ledger.Cost)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	attachmentDir := cfg.Attachments.Dir
	if attachmentDir == "" {
		attachmentDir = "attachments"
	}
	store, err := attachment.NewDiskStore(attachmentDir, slogLogger)
	if err != nil {
		log.Fatal("failed to initialize attachment store:", err)
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Stored receipts are served as static files
	app.router.Handle("/attachments/*",
		http.StripPrefix("/attachments/", http.FileServer(http.Dir(store.Dir()))))

	// Metrics setup (no-op meter unless an SDK is installed)
	meter := otel.Meter(ServiceName)
	ledgerMetrics, err := metrics.New(meter)
	if err != nil {
		slogLogger.Warn("failed to initialize metrics", "error", err)
		ledgerMetrics = metrics.NewMock()
	}

	// NATS producer setup
	var events ledger.EventPublisher
	if cfg.NATS.URL != "" {
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			slogLogger.Info("NATS producer initialized successfully")
			events = producer
		}
	}

	// Ledger setup
	repo := ledger.NewRepository(database)
	cascade := ledger.NewCascadeDeleter(database, store, slogLogger)
	ledgerService := ledger.NewService(repo, store, cascade, events, slogLogger)
	ledgerHandler := ledger.NewHandler(ledgerService, slogLogger, ledgerMetrics)

	apiKey := cfg.Auth.APIKey
	if apiKey == "" {
		apiKey = "changeme-dev-key"
	}
	policy := auth.NewStaticKeyPolicy(apiKey)

	// Every ledger route sits behind the API key gate
	app.router.Group(func(r chi.Router) {
		r.Use(auth.RequireKey(policy, slogLogger))
		ledgerHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", a.config.Server.Port),
		Handler: a.router,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	return a.server.Shutdown(ctx)
}
