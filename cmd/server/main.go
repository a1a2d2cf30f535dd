package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	rdb "github.com/redis/go-redis/v9"
	"github.com/saeid-a/FitTrackBack/internal/config"
	"github.com/saeid-a/FitTrackBack/internal/database"
	"github.com/saeid-a/FitTrackBack/internal/events"
	"github.com/saeid-a/FitTrackBack/internal/logger"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/middleware"
	"github.com/saeid-a/FitTrackBack/internal/ratelimit"
	"github.com/saeid-a/FitTrackBack/internal/routes"
	"github.com/saeid-a/FitTrackBack/internal/services"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(logger.Config{
		Env:         cfg.AppEnv,
		Level:       cfg.LogLevel,
		ServiceName: "fittrack-api",
		Version:     config.AppVersion,
	})
	defer logger.Sync()
	lg := logger.L()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		lg.Fatal("DB_URL is required")
	}
	ctx := context.Background()
	db, err := database.ConnectDB(ctx, cfg.DBUrl)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 3. Infrastructure
	m, err := metrics.New()
	if err != nil {
		lg.Fatal("failed to register metrics", zap.Error(err))
	}

	var limiter ratelimit.Limiter = ratelimit.NewSlidingWindow(cfg.RateLimitMax, cfg.RateLimitWindow)
	if cfg.RateLimitBackend == "redis" {
		opts, err := rdb.ParseURL(cfg.RedisURL)
		if err != nil {
			lg.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		client := rdb.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			lg.Warn("redis unreachable at startup; requests pass until it recovers", zap.Error(err))
		}
		limiter = ratelimit.NewRedisLimiter(client, "fittrack:rl:", cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	publisher := events.NewAuditPublisher(cfg.KafkaBrokers, cfg.AuditTopic, events.ReportDelivery(m, lg.Named("audit")))
	defer publisher.Close()

	var storage services.MediaStorage
	if cfg.StorageEnabled() {
		storage = services.NewSupabaseStorage(cfg.StorageURL, cfg.StorageBucket, cfg.StorageServiceKey)
	} else {
		lg.Info("object storage not configured; workout media uploads are disabled")
	}

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      config.AppName,
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    int(cfg.MaxUploadBytes()) + 1024*1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(middleware.RequestLogger(m))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "X-Request-ID, X-Process-Time, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After",
		AllowCredentials: true,
	}))

	if err := routes.RegisterRoutes(app, cfg, db, routes.Infra{
		Metrics:   m,
		Limiter:   limiter,
		Publisher: publisher,
		Storage:   storage,
	}); err != nil {
		lg.Fatal("failed to register routes", zap.Error(err))
	}

	// 5. Start Server
	go func() {
		lg.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Error("shutdown failed", zap.Error(err))
	}
}
