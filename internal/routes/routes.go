package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/saeid-a/StudioBookingBack/internal/config"
	"github.com/saeid-a/StudioBookingBack/internal/handlers"
	"github.com/saeid-a/StudioBookingBack/internal/metrics"
	"github.com/saeid-a/StudioBookingBack/internal/middleware"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
	"github.com/saeid-a/StudioBookingBack/internal/repository"
	"github.com/saeid-a/StudioBookingBack/internal/services"
)

// RegisterRoutes wires repositories, services and handlers onto app.
// rdb may be nil, in which case rate limiting is skipped.
func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	rdb *redis.Client,
	publisher ports.EventPublisher,
) error {
	studio, err := cfg.StudioLocation()
	if err != nil {
		return err
	}

	store := repository.NewStore(db)
	profileRepo := repository.NewProfileRepository(db)

	profileService := services.NewProfileService(profileRepo)
	bookingService := services.NewBookingService(store, publisher, studio)
	contractService := services.NewContractService(store, profileRepo, publisher)

	healthHandler := handlers.NewHealthHandler(db, rdb)
	profileHandler := handlers.NewProfileHandler(profileService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	contractHandler := handlers.NewContractHandler(contractService, bookingService)

	app.Get("/health", healthHandler.Health)
	app.Get("/health/ready", healthHandler.Ready)
	app.Get("/metrics", metrics.Handler())

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api/v1", middleware.AuthRequired(cfg.JWTSecret))

	// Onboarding runs before a profile exists, so it skips actor resolution.
	api.Post("/profile", profileHandler.Onboard)

	authed := api.Group("",
		middleware.ResolveActor(profileService),
		middleware.RateLimit(cfg.RateLimit, rdb),
	)

	authed.Get("/me", profileHandler.Me)
	authed.Patch("/me", profileHandler.UpdateNames)
	authed.Get("/users", profileHandler.ListUsers)
	authed.Post("/users", profileHandler.CreateProfile)

	contracts := authed.Group("/contracts")
	contracts.Post("", contractHandler.CreateContract)
	contracts.Get("", contractHandler.ListContracts)
	contracts.Post("/status", contractHandler.ChangeContractStatus)
	contracts.Get("/:id", contractHandler.GetContract)
	contracts.Put("/:id", contractHandler.UpdateContract)
	contracts.Get("/:id/sessions", bookingHandler.ListContractSessions)

	sessions := authed.Group("/sessions")
	sessions.Post("", bookingHandler.CreateSession)
	sessions.Get("", bookingHandler.ListSessions)
	sessions.Post("/status", bookingHandler.ChangeSessionStatus)
	sessions.Get("/occupied", bookingHandler.OccupiedSlots)
	sessions.Get("/slots", bookingHandler.Slots)
	sessions.Get("/:id", bookingHandler.GetSession)
	sessions.Put("/:id", bookingHandler.RescheduleSession)

	return nil
}
