package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docvault/docs"
	"docvault/internal/analysis"
	"docvault/internal/analysis/provider"
	"docvault/internal/cache"
	"docvault/internal/config"
	"docvault/internal/database"
	"docvault/internal/database/migration"
	handlers "docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/keywords"
	"docvault/internal/logger"
	"docvault/internal/metrics"
	"docvault/internal/otel"
	"docvault/internal/pricing"
	"docvault/internal/repository"
	"docvault/internal/repository/postgres"
	"docvault/internal/repository/sqlite"
	"docvault/internal/service"
	"docvault/internal/storage"
)

// @title docvault API
// @version 1.0
// @description Document ingestion with model-extracted metadata and natural-language search.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := logger.LoadLocation(cfg.Log.Timezone)
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Location: loc})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger.Component(log, "otel"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to connect to database")
	}
	defer db.Close()

	dialect, host := migration.Postgres, cfg.Database.Host
	if cfg.Database.Driver == database.DriverSQLite {
		dialect, host = migration.SQLite, cfg.Database.SQLitePath
	}
	if err := migration.EnsureMigrated(ctx, db, dialect, logger.Component(log, "migration"), host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	gen, err := provider.New(ctx, cfg.Analysis)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Analysis.Provider).Msg("failed to initialize analysis provider")
	}
	if cfg.Analysis.APIKey == "" {
		log.Warn().Msg("ANALYSIS_API_KEY is not set: uploads will be rejected and searches will degrade")
	}
	analyzer := analysis.NewClient(gen, analysis.Options{Timeout: time.Duration(cfg.Analysis.TimeoutSec) * time.Second})

	expander := keywords.Default()
	if cfg.KeywordRulesFile != "" {
		if expander, err = keywords.LoadFile(cfg.KeywordRulesFile); err != nil {
			log.Fatal().Err(err).Str("path", cfg.KeywordRulesFile).Msg("failed to load keyword rules")
		}
	}
	prices := pricing.Default()
	if cfg.PricingFile != "" {
		if prices, err = pricing.LoadFile(cfg.PricingFile); err != nil {
			log.Fatal().Err(err).Str("path", cfg.PricingFile).Msg("failed to load pricing table")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics, err := metrics.NewPipeline(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register pipeline metrics")
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	health := []handlers.Pinger{objStore}
	var searchCache service.InterpretationCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		defer rc.Close()
		searchCache = rc
		health = append(health, rc)
	}

	// Initialize repositories and services
	docRepo, costRepo := repositories(cfg.Database.Driver, db)
	docSvc := service.NewDocumentService(objStore, docRepo, costRepo, analyzer, service.DocumentConfig{
		MaxBytes:     cfg.Upload.MaxBytes,
		AllowedTypes: cfg.Upload.AllowedTypes,
		Expander:     expander,
		Pricing:      prices,
		Metrics:      pipelineMetrics,
		Logger:       log,
	})
	searchSvc := service.NewSearchService(docRepo, costRepo, analyzer, service.SearchConfig{
		Cache:   searchCache,
		Pricing: prices,
		Metrics: pipelineMetrics,
		Logger:  log,
	})
	costSvc := service.NewCostService(costRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxBytes)*handlers.MaxFilesPerUpload + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger.Component(log, "http"), loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	handlers.RegisterRoutes(app, db, handlers.Services{
		Documents: docSvc,
		Search:    searchSvc,
		Costs:     costSvc,
	}, handlers.Options{Limiter: limiter.Handler(), Health: health})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("db_driver", cfg.Database.Driver).
		Str("analysis_model", provider.ModelName(cfg.Analysis)).Bool("search_cache", searchCache != nil).
		Msg("server starting")
	if err := app.Listen(addr); err != nil {
		log.Error().Err(err).Msg("failed to start server")
	}
}

func repositories(driver string, db *sql.DB) (repository.DocumentRepository, repository.CostRepository) {
	if driver == database.DriverSQLite {
		return sqlite.NewDocumentSQLite(db), sqlite.NewCostSQLite(db)
	}
	return postgres.NewDocumentPostgres(db), postgres.NewCostPostgres(db)
}
