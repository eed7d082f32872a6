package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/services"
	"github.com/saeid-a/StudioBookingBack/internal/timeslot"
)

type BookingHandler struct {
	service bookingApplicationService
}

type bookingApplicationService interface {
	CreateSession(ctx context.Context, actor models.Actor, input services.CreateSessionInput) (*models.SessionDetail, error)
	RescheduleSession(ctx context.Context, actor models.Actor, sessionID string, input services.RescheduleSessionInput) (*models.SessionDetail, error)
	ChangeSessionStatus(ctx context.Context, actor models.Actor, sessionID string, status string) (*models.SessionDetail, error)
	OccupiedSlots(ctx context.Context, trainerID string, date int64) ([]models.OccupiedSlot, error)
	GetSession(ctx context.Context, actor models.Actor, sessionID string) (*models.SessionDetail, error)
	ListContractSessions(ctx context.Context, actor models.Actor, contractID string) ([]models.SessionDetail, error)
	ListSessions(ctx context.Context, actor models.Actor, input services.ListSessionsInput) ([]models.SessionDetail, int, error)
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createSessionRequest struct {
	ContractID string `json:"contract_id"`
	Date       *int64 `json:"date"`
	From       *int   `json:"from"`
	To         *int   `json:"to"`
}

type rescheduleSessionRequest struct {
	Date *int64 `json:"date"`
	From *int   `json:"from"`
	To   *int   `json:"to"`
}

type changeSessionStatusRequest struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (h *BookingHandler) CreateSession(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "create session", err)
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateCreateSessionRequest(req); validationErr != "" {
		return badRequest(c, validationErr)
	}

	detail, err := h.service.CreateSession(c.Context(), actor, services.CreateSessionInput{
		ContractID: strings.TrimSpace(req.ContractID),
		Date:       *req.Date,
		From:       *req.From,
		To:         *req.To,
	})
	if err != nil {
		return writeError(c, "create session", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": detail})
}

func (h *BookingHandler) RescheduleSession(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "reschedule session", err)
	}

	sessionID := strings.TrimSpace(c.Params("id"))
	if sessionID == "" {
		return badRequest(c, "Invalid session id")
	}

	var req rescheduleSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateRescheduleRequest(req); validationErr != "" {
		return badRequest(c, validationErr)
	}

	detail, err := h.service.RescheduleSession(c.Context(), actor, sessionID, services.RescheduleSessionInput{
		Date: req.Date,
		From: req.From,
		To:   req.To,
	})
	if err != nil {
		return writeError(c, "reschedule session", err)
	}

	return c.JSON(fiber.Map{"session": detail})
}

func (h *BookingHandler) ChangeSessionStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "change session status", err)
	}

	var req changeSessionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return badRequest(c, "session_id is required")
	}
	if strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "status is required")
	}

	detail, err := h.service.ChangeSessionStatus(c.Context(), actor, strings.TrimSpace(req.SessionID), req.Status)
	if err != nil {
		return writeError(c, "change session status", err)
	}

	return c.JSON(fiber.Map{"session": detail})
}

func (h *BookingHandler) OccupiedSlots(c *fiber.Ctx) error {
	trainerID := strings.TrimSpace(c.Query("trainer_id"))
	if trainerID == "" {
		return badRequest(c, "trainer_id is required")
	}
	date, err := strconv.ParseInt(c.Query("date"), 10, 64)
	if err != nil || date <= 0 {
		return badRequest(c, "date must be a millisecond timestamp")
	}

	slots, err := h.service.OccupiedSlots(c.Context(), trainerID, date)
	if err != nil {
		return writeError(c, "occupied slots", err)
	}

	return c.JSON(fiber.Map{"occupied_slots": slots})
}

// Slots lists the bookable intervals of a day. Pickers use step=30. With
// ?date= the slots that already started on that day come back flagged past.
func (h *BookingHandler) Slots(c *fiber.Ctx) error {
	step := parsePositiveInt(c.Query("step"), timeslot.BookingStep)
	slots := timeslot.Slots(step)
	if slots == nil {
		return badRequest(c, "step must be between 1 and 1440")
	}
	if raw := c.Query("date"); raw != "" {
		date, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || date <= 0 {
			return badRequest(c, "date must be a millisecond timestamp")
		}
		slots = timeslot.MarkPast(slots, date, time.Now())
	}
	return c.JSON(fiber.Map{"slots": slots})
}

// ListSessions is the caller's session history, newest first.
func (h *BookingHandler) ListSessions(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "list sessions", err)
	}

	page, limit := pageParams(c.Query("page"), c.Query("limit"))
	input := services.ListSessionsInput{Page: page, Limit: limit}
	if raw := strings.TrimSpace(c.Query("statuses")); raw != "" {
		input.Statuses = strings.Split(raw, ",")
	}
	if input.StartDate, err = optionalMillis(c.Query("start_date")); err != nil {
		return badRequest(c, "start_date must be a millisecond timestamp")
	}
	if input.EndDate, err = optionalMillis(c.Query("end_date")); err != nil {
		return badRequest(c, "end_date must be a millisecond timestamp")
	}

	sessions, total, err := h.service.ListSessions(c.Context(), actor, input)
	if err != nil {
		return writeError(c, "list sessions", err)
	}
	if sessions == nil {
		sessions = []models.SessionDetail{}
	}

	return c.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func optionalMillis(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	if value <= 0 {
		return nil, strconv.ErrRange
	}
	return &value, nil
}

func (h *BookingHandler) GetSession(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "get session", err)
	}

	sessionID := strings.TrimSpace(c.Params("id"))
	if sessionID == "" {
		return badRequest(c, "Invalid session id")
	}

	detail, err := h.service.GetSession(c.Context(), actor, sessionID)
	if err != nil {
		return writeError(c, "get session", err)
	}

	return c.JSON(fiber.Map{"session": detail})
}

func (h *BookingHandler) ListContractSessions(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "list contract sessions", err)
	}

	contractID := strings.TrimSpace(c.Params("id"))
	if contractID == "" {
		return badRequest(c, "Invalid contract id")
	}

	sessions, err := h.service.ListContractSessions(c.Context(), actor, contractID)
	if err != nil {
		return writeError(c, "list contract sessions", err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}
