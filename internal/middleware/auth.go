package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/pkg/utils"
)

// AuthRequired verifies the bearer token and stores its subject as "actor_id".
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthenticated(c, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthenticated(c, "Invalid authorization header format")
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			return unauthenticated(c, "Invalid or expired token")
		}

		c.Locals("actor_id", claims.UserID)

		return c.Next()
	}
}

type actorResolver interface {
	Resolve(ctx context.Context, actorID string) (models.Actor, error)
}

// ResolveActor loads the caller's role from the profile store and stores the
// models.Actor as "actor". Runs after AuthRequired.
func ResolveActor(resolver actorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, ok := c.Locals("actor_id").(string)
		if !ok || actorID == "" {
			return unauthenticated(c, "Invalid token")
		}

		actor, err := resolver.Resolve(c.Context(), actorID)
		if err != nil {
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "No profile for this account, complete onboarding first",
					"kind":  apperr.KindUnknownRole,
				})
			case errors.Is(err, apperr.ErrUnknownRole):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": err.Error(),
					"kind":  apperr.KindUnknownRole,
				})
			default:
				log.Printf("resolve actor %s: %v", actorID, err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Failed to process request",
					"kind":  apperr.KindInternal,
				})
			}
		}

		c.Locals("actor", actor)
		c.Locals("role", string(actor.Role))

		return c.Next()
	}
}

func unauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"kind":  apperr.KindUnauthenticated,
	})
}
