package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	apierrors "pricelens/internal/errors"
	"pricelens/internal/infrastructure"
	customMiddleware "pricelens/internal/middleware"
	"pricelens/internal/regression"
	"pricelens/internal/services"
	handlers "pricelens/internal/transport/http"
	"pricelens/pkg/contracts"
)

// AppName is used in startup logs
const AppName = "pricelens"

// runtimeSampleInterval is how often goroutine and heap gauges are refreshed
const runtimeSampleInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Runtime       *infrastructure.RuntimeCollector
	Services      *ServiceContainer

	errorHandler *apierrors.ErrorHandler

	mu       sync.Mutex
	listener net.Listener
	serveWG  sync.WaitGroup
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Catalog    *catalog.Catalog
	Industries *config.Industries
	Cache      *services.CoefficientCache
	Factors    *services.FactorService
	Health     *services.HealthService
}

// NewApplication creates the application with the process-wide logger
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires configuration, telemetry, services and the router around logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_time", contracts.BuildTime))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	logger.Info("Application paths",
		slog.String("executable_dir", paths.ExecutableDir),
		slog.String("data_dir", paths.DataDir),
		slog.String("industries_file", paths.IndustriesFile))

	if !config.FileExists(paths.DataDir) {
		logger.Warn("Data directory not found",
			slog.String("path", paths.DataDir),
			slog.String("action", "readiness will fail until it exists"))
	}

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	collector, err := infrastructure.NewRuntimeCollector(otelProviders.Meter, runtimeSampleInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime collector: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Runtime:       collector,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Server.Debug),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	industries, err := config.LoadIndustries(a.Paths.IndustriesFile)
	if err != nil {
		return fmt.Errorf("failed to load industries: %w", err)
	}

	cat := catalog.New(a.Paths.DataDir)
	cache := services.NewCoefficientCache()

	factors := services.NewFactorService(cat, industries, cache,
		services.WithFitter(regression.NewRidge(a.Config.Model.Alpha)),
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithLogger(a.Logger),
	)

	health := services.NewHealthService(contracts.Version, contracts.BuildTime, cat, cache, a.Logger)

	a.Services = &ServiceContainer{
		Catalog:    cat,
		Industries: industries,
		Cache:      cache,
		Factors:    factors,
		Health:     health,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.CORS(a.Config.Security))

	if rl := a.Config.Security.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/health/ready", healthHandler.ReadinessCheck)
	r.Get("/health/live", healthHandler.LivenessCheck)
	r.Get("/version", healthHandler.Version)

	r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.Services.Factors).Routes())

	industryHandler := handlers.NewIndustryHandler(a.Services.Factors, a.Logger, a.errorHandler)
	r.Get("/", industryHandler.Index)
	r.Get("/industries", industryHandler.ListIndustries)

	r.Mount("/data", handlers.NewDataHandler(a.Services.Factors, a.Logger, a.errorHandler).Routes())
	r.Mount("/coefficients", handlers.NewCoefficientsHandler(a.Services.Factors, a.Logger, a.errorHandler).Routes())

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start binds the listen address and serves in the background. A serve
// failure after startup calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	a.serveWG.Add(2)
	go func() {
		defer a.serveWG.Done()
		a.Runtime.Start(ctx)
	}()
	go func() {
		defer a.serveWG.Done()
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("data_dir", a.Paths.DataDir),
		slog.Float64("alpha", a.Config.Model.Alpha))

	return nil
}

// Addr returns the bound listen address, or the configured one before Start
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.Runtime.Stop()
	a.serveWG.Wait()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	stats := a.Services.Cache.Stats()
	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Uint64("cache_hits", stats.Hits),
		slog.Uint64("cache_misses", stats.Misses),
		slog.Int("cache_entries", stats.Entries))

	return errors.Join(errs...)
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(runCtx, cancel); err != nil {
		return err
	}

	<-runCtx.Done()
	a.Logger.Info("Received shutdown signal")

	return a.Stop(context.Background())
}
