package main

import (
	"context"
	"log"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/saeid-a/StudioBookingBack/internal/config"
	"github.com/saeid-a/StudioBookingBack/internal/database"
	"github.com/saeid-a/StudioBookingBack/internal/messaging"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
	"github.com/saeid-a/StudioBookingBack/internal/routes"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// 3. Optional infrastructure
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = config.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, rate limiting disabled: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var publisher ports.EventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsQueue)
		if err != nil {
			log.Printf("RabbitMQ unavailable, events will not be published: %v", err)
		} else {
			defer rabbit.Close()
			publisher = rabbit
		}
	}

	// 4. Setup Fiber
	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	if err := routes.RegisterRoutes(app, cfg, database.DB, rdb, publisher); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// 5. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
