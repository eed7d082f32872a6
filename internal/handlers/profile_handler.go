package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/services"
)

type ProfileHandler struct {
	service profileApplicationService
}

type profileApplicationService interface {
	Me(ctx context.Context, actorID string) (*models.Profile, error)
	Onboard(ctx context.Context, actorID string, firstName, lastName *string) (*models.Profile, error)
	CreateProfile(ctx context.Context, actor models.Actor, input services.CreateProfileInput) (*models.Profile, error)
	ListByRole(ctx context.Context, role string, page, limit int) ([]models.Profile, int, error)
	UpdateNames(ctx context.Context, actor models.Actor, firstName, lastName *string) (*models.Profile, error)
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type onboardRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type createProfileRequest struct {
	ActorID   string  `json:"actor_id"`
	Role      string  `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "get profile", err)
	}

	profile, err := h.service.Me(c.Context(), actor.ID)
	if err != nil {
		return writeError(c, "get profile", err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UpdateNames(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "update profile", err)
	}

	var req onboardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.FirstName == nil && req.LastName == nil {
		return badRequest(c, "first_name or last_name is required")
	}
	if validationErr := validateNames(req.FirstName, req.LastName); validationErr != "" {
		return badRequest(c, validationErr)
	}

	profile, err := h.service.UpdateNames(c.Context(), actor, req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, "update profile", err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

// Onboard creates the caller's own CUSTOMER profile on first sign-in.
func (h *ProfileHandler) Onboard(c *fiber.Ctx) error {
	actorID, err := currentActorID(c)
	if err != nil {
		return writeError(c, "onboard", err)
	}

	var req onboardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateNames(req.FirstName, req.LastName); validationErr != "" {
		return badRequest(c, validationErr)
	}

	profile, err := h.service.Onboard(c.Context(), actorID, req.FirstName, req.LastName)
	if err != nil {
		return writeError(c, "onboard", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "create profile", err)
	}

	var req createProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateNames(req.FirstName, req.LastName); validationErr != "" {
		return badRequest(c, validationErr)
	}

	profile, err := h.service.CreateProfile(c.Context(), actor, services.CreateProfileInput{
		ActorID:   req.ActorID,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return writeError(c, "create profile", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) ListUsers(c *fiber.Ctx) error {
	page, limit := pageParams(c.Query("page"), c.Query("limit"))
	profiles, total, err := h.service.ListByRole(c.Context(), c.Query("role"), page, limit)
	if err != nil {
		return writeError(c, "list users", err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	return c.JSON(fiber.Map{
		"users":      profiles,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}
