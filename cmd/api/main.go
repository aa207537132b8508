package main

import (
	"context"
	"database/sql"
	"log"
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
	"go.uber.org/zap"

	"pharmadash/docs"
	"pharmadash/internal/config"
	"pharmadash/internal/database"
	"pharmadash/internal/database/migration"
	"pharmadash/internal/export"
	handlers "pharmadash/internal/http/handler"
	"pharmadash/internal/http/middleware"
	"pharmadash/internal/kv"
	"pharmadash/internal/logger"
	"pharmadash/internal/otel"
	"pharmadash/internal/prefs"
	"pharmadash/internal/repository"
	"pharmadash/internal/repository/memory"
	"pharmadash/internal/repository/postgres"
	"pharmadash/internal/search"
	"pharmadash/internal/service"
	"pharmadash/internal/sheets"
	"pharmadash/internal/storage"
)

// @title Pharmadash API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.ServiceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, cfg.ServiceName, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracing", zap.Error(err))
	}

	checks := map[string]handlers.Check{}

	// Records live in PostgreSQL when DB_HOST is set, in memory otherwise.
	var repo repository.RecordRepository
	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = database.NewPostgres(ctx, cfg.Database, zl)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, zl, cfg.Database.Host); err != nil {
			zl.Fatal("failed to migrate database", zap.Error(err))
		}
		repo = postgres.NewRecordPostgres(db)
		checks["database"] = db.PingContext
	} else {
		zl.Info("using in-memory record store")
		repo = memory.NewRecordMemory()
	}

	// Language preferences and the sheet cache share one KV.
	var store kv.KV
	if cfg.Redis.Enabled() {
		rc := kv.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		redisKV := kv.NewRedisKV(rc)
		if err := redisKV.Ping(ctx); err != nil {
			zl.Warn("redis not reachable yet", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		store = redisKV
		checks["redis"] = redisKV.Ping
	} else {
		store = kv.NewMemoryKV()
	}

	// Object storage is optional; without it only direct XLSX downloads are available.
	var publisher *export.Publisher
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			zl.Fatal("failed to initialize object storage", zap.Error(err))
		}
		publisher = export.NewPublisher(objStore, cfg.MinIO.PresignExpiry, zl)
		checks["object_storage"] = objStore.Ping
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		zl.Fatal("failed to register metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		zl.Fatal("failed to register http metrics", zap.Error(err))
	}

	// Initialize services
	recordSvc := service.NewRecordService(repo, zl, metrics)
	async := service.NewAsync(recordSvc, cfg.Store.Latency, cfg.Store.Jitter)

	if cfg.Store.Seed {
		n, err := service.Seed(ctx, recordSvc)
		if err != nil {
			zl.Fatal("failed to seed demo data", zap.Error(err))
		}
		zl.Info("demo data seeded", zap.Int("records", n))
	}

	supported, err := prefs.ParseTags(cfg.Locale.Supported)
	if err != nil {
		zl.Fatal("invalid locale configuration", zap.Error(err))
	}
	prefStore, err := prefs.NewStore(store, supported, zl)
	if err != nil {
		zl.Fatal("failed to initialize preferences", zap.Error(err))
	}

	sheetClient := sheets.NewClient(cfg.Sheets.BaseURL, cfg.Sheets.Timeout, store, cfg.Sheets.CacheTTL, zl)
	searchSvc := search.NewService(
		recordSvc,
		search.NewDebouncer(cfg.Search.Debounce, cfg.Search.SessionIdle),
		cfg.Search.PerKind,
		zl,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(zl))
	app.Use(httpMetrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		Records:    recordSvc,
		Store:      async,
		Search:     searchSvc,
		Sheets:     sheetClient,
		SheetCache: sheetClient,
		Importer:   sheets.NewImporter(sheetClient, recordSvc, zl),
		Exports:    publisher,
		Prefs:      prefStore,
		Checks:     checks,
		Metrics:    adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		Logger:     zl,
	})

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

	addr := ":" + cfg.Port

	go func() {
		if err := app.Listen(addr); err != nil {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()
	zl.Info("server started", zap.String("addr", addr))

	<-ctx.Done()
	zl.Info("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	// Pending mutations are never cancelled; let them land before closing the stores.
	async.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		zl.Warn("tracing shutdown", zap.Error(err))
	}
}
