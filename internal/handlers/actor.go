package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
)

// currentActor reads the actor resolved by middleware.ResolveActor.
func currentActor(c *fiber.Ctx) (models.Actor, error) {
	actor, ok := c.Locals("actor").(models.Actor)
	if !ok || actor.ID == "" {
		return models.Actor{}, apperr.ErrUnauthenticated
	}
	return actor, nil
}

// currentActorID reads the identity set by middleware.AuthRequired. Used on
// routes that run before a profile exists.
func currentActorID(c *fiber.Ctx) (string, error) {
	actorID, ok := c.Locals("actor_id").(string)
	if !ok || actorID == "" {
		return "", apperr.ErrUnauthenticated
	}
	return actorID, nil
}
