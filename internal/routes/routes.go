package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/FitTrackBack/internal/auth"
	"github.com/saeid-a/FitTrackBack/internal/config"
	"github.com/saeid-a/FitTrackBack/internal/events"
	"github.com/saeid-a/FitTrackBack/internal/handlers"
	"github.com/saeid-a/FitTrackBack/internal/metrics"
	"github.com/saeid-a/FitTrackBack/internal/middleware"
	"github.com/saeid-a/FitTrackBack/internal/ratelimit"
	"github.com/saeid-a/FitTrackBack/internal/repository"
	"github.com/saeid-a/FitTrackBack/internal/response"
	"github.com/saeid-a/FitTrackBack/internal/services"
)

// Infra carries the process-level collaborators built in main. Storage may
// be nil; media uploads then answer 503.
type Infra struct {
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter
	Publisher events.AuditPublisher
	Storage   services.MediaStorage
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, infra Infra) error {
	userRepo := repository.NewUserRepository(db)
	userProfileRepo := repository.NewUserProfileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	workoutRepo := repository.NewWorkoutRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	measurementRepo := repository.NewMeasurementRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	hasher := auth.NewPasswordHasher(auth.Params{
		Memory:      cfg.Argon2Memory,
		Time:        cfg.Argon2Time,
		Parallelism: cfg.Argon2Parallelism,
	})
	guard := auth.NewGuard(tokens, userRepo)

	auditService := services.NewAuditService(auditRepo, infra.Publisher, infra.Metrics)
	tenantService := services.NewTenantService(db, tenantRepo, auditService, infra.Metrics, cfg.TenantCacheTTL)
	authService := services.NewAuthService(db, userRepo, tenantService, hasher, tokens, auditService)
	userService := services.NewUserService(db, userProfileRepo, notificationRepo, consentRepo, auditService)
	workoutService := services.NewWorkoutService(db, workoutRepo, infra.Storage, auditService)
	goalService := services.NewGoalService(db, goalRepo, auditService)
	measurementService := services.NewMeasurementService(db, measurementRepo, auditService)
	adminService := services.NewAdminService(db, userRepo, userProfileRepo, notificationRepo, infra.Storage, auditService)

	adminPaging := handlers.Paging{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize}
	authHandler := handlers.NewAuthHandler(authService)
	resourcePaging := handlers.ResourcePaging(cfg.MaxPageSize)
	userHandler := handlers.NewUserHandler(userService, resourcePaging)
	workoutHandler := handlers.NewWorkoutHandler(workoutService, resourcePaging, cfg.MaxUploadBytes(), config.AllowedUploadTypes)
	goalHandler := handlers.NewGoalHandler(goalService, resourcePaging)
	measurementHandler := handlers.NewMeasurementHandler(measurementService, resourcePaging)
	tenantHandler := handlers.NewTenantHandler(tenantService, adminPaging)
	adminHandler := handlers.NewAdminHandler(adminService, auditService, adminPaging)

	app.Get("/", func(c *fiber.Ctx) error {
		return response.OK(c, fiber.Map{
			"app_name":   config.AppName,
			"version":    config.AppVersion,
			"health_url": "/health",
		}, "Welcome to Fitness Tracking API")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return response.OK(c, fiber.Map{
			"status":      "healthy",
			"app_name":    config.AppName,
			"version":     config.AppVersion,
			"environment": cfg.AppEnv,
		}, "Service is healthy")
	})
	if infra.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(infra.Metrics.Handler()))
	}
	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api/v1")
	if infra.Limiter != nil {
		api.Use(middleware.RateLimit(infra.Limiter, cfg.RateLimitMax, infra.Metrics))
	}

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	authRequired := middleware.AuthRequired(guard)
	adminRequired := middleware.AdminRequired()

	users := api.Group("/users", authRequired)
	users.Get("/me", userHandler.Me)
	users.Put("/me/profile", userHandler.UpdateProfile)
	users.Get("/me/notifications", userHandler.Notifications)
	users.Put("/me/notifications", userHandler.UpdateNotifications)
	users.Get("/me/consents", userHandler.ListConsents)
	users.Post("/me/consents", userHandler.RecordConsent)

	workouts := api.Group("/workouts", authRequired)
	workouts.Post("", workoutHandler.Create)
	workouts.Get("", workoutHandler.List)
	workouts.Get("/:id", workoutHandler.Get)
	workouts.Put("/:id", workoutHandler.Update)
	workouts.Delete("/:id", workoutHandler.Delete)
	workouts.Post("/:id/strength-exercises", workoutHandler.AddStrengthExercise)
	workouts.Delete("/:id/strength-exercises/:exerciseId", workoutHandler.DeleteStrengthExercise)
	workouts.Post("/:id/cardio-activities", workoutHandler.AddCardioActivity)
	workouts.Delete("/:id/cardio-activities/:activityId", workoutHandler.DeleteCardioActivity)
	workouts.Post("/:id/media", workoutHandler.UploadMedia)

	goals := api.Group("/goals", authRequired)
	goals.Post("", goalHandler.Create)
	goals.Get("", goalHandler.List)
	goals.Get("/:id", goalHandler.Get)
	goals.Put("/:id", goalHandler.Update)
	goals.Delete("/:id", goalHandler.Delete)
	goals.Post("/:id/milestones", goalHandler.AddMilestone)
	goals.Put("/:id/milestones/:milestoneId", goalHandler.UpdateMilestone)

	measurements := api.Group("/measurements", authRequired)
	measurements.Post("", measurementHandler.Record)
	measurements.Get("", measurementHandler.List)
	measurements.Get("/:id", measurementHandler.Get)
	measurements.Put("/:id", measurementHandler.Update)
	measurements.Delete("/:id", measurementHandler.Delete)

	tenants := api.Group("/tenants", authRequired, adminRequired)
	tenants.Post("", tenantHandler.Create)
	tenants.Get("", tenantHandler.List)
	tenants.Get("/:id", tenantHandler.Get)
	tenants.Get("/:id/config", tenantHandler.GetConfig)
	tenants.Put("/:id/config", tenantHandler.UpdateConfig)

	admin := api.Group("/admin", authRequired, adminRequired)
	admin.Get("/users", adminHandler.ListUsers)
	// registered before /users/:id so "stats" is not read as an id
	admin.Get("/users/stats/summary", adminHandler.Stats)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Patch("/users/:id/activate", adminHandler.Activate)
	admin.Patch("/users/:id/deactivate", adminHandler.Deactivate)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Get("/audit-logs", adminHandler.AuditLogs)

	return nil
}
