package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
)

// writeError maps an error from the services to its HTTP status and the
// {"error", "kind"} body. Internal failures are logged and hidden.
func writeError(c *fiber.Ctx, operation string, err error) error {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %s failed: %v", c.Method(), c.Path(), operation, err)
		return c.Status(status).JSON(fiber.Map{
			"error": "Failed to process request",
			"kind":  apperr.KindInternal,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"kind":  kind,
	})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindUnknownRole:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidField,
		apperr.KindInvalidTimeRange,
		apperr.KindIllegalTransition,
		apperr.KindExpiredContract,
		apperr.KindExpiredSession,
		apperr.KindContractNotActive,
		apperr.KindNoCreditsAvailable,
		apperr.KindTimeConflict:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"kind":  apperr.KindInvalidField,
	})
}
