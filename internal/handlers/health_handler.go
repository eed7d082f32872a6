package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type databasePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        databasePinger
	redis     *redis.Client
	startTime time.Time
}

// NewHealthHandler takes a nil redis client when rate limiting runs without Redis.
func NewHealthHandler(db databasePinger, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the liveness probe.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready reports DOWN with 503 when the database or a configured Redis is unreachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := map[string]healthCheck{
		"database": h.checkDatabase(c.Context()),
		"redis":    h.checkRedis(c.Context()),
	}

	status := "UP"
	httpStatus := fiber.StatusOK
	for _, check := range checks {
		if check.Status == "DOWN" {
			status = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}

func (h *HealthHandler) checkDatabase(parent context.Context) healthCheck {
	if h.db == nil {
		return healthCheck{Status: "DOWN", Message: "Database connection is not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return healthCheck{Status: "DOWN", Message: "Cannot connect to database"}
	}
	return healthCheck{Status: "UP"}
}

func (h *HealthHandler) checkRedis(parent context.Context) healthCheck {
	if h.redis == nil {
		return healthCheck{Status: "SKIPPED", Message: "Redis is not configured"}
	}

	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return healthCheck{Status: "DOWN", Message: "Cannot connect to Redis"}
	}
	return healthCheck{Status: "UP"}
}
