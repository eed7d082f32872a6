package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/services"
)

type ContractHandler struct {
	contracts contractApplicationService
	statuses  contractStatusService
}

type contractApplicationService interface {
	CreateContract(ctx context.Context, actor models.Actor, input services.CreateContractInput) (*models.ContractDetail, error)
	ListContracts(ctx context.Context, actor models.Actor, page, limit int) ([]models.Contract, int, error)
	GetContract(ctx context.Context, actor models.Actor, contractID string) (*models.ContractDetail, error)
	UpdateContract(ctx context.Context, actor models.Actor, contractID string, input services.UpdateContractInput) (*models.ContractDetail, error)
}

type contractStatusService interface {
	ChangeContractStatus(ctx context.Context, actor models.Actor, contractID string, status string) (*models.ContractDetail, error)
}

func NewContractHandler(contracts *services.ContractService, bookings *services.BookingService) *ContractHandler {
	return &ContractHandler{contracts: contracts, statuses: bookings}
}

type createContractRequest struct {
	Kind        string `json:"kind"`
	Money       *int64 `json:"money"`
	Credits     *int   `json:"credits"`
	StartDate   *int64 `json:"start_date"`
	EndDate     *int64 `json:"end_date"`
	PurchasedBy string `json:"purchased_by"`
}

type updateContractRequest struct {
	Kind      *string `json:"kind"`
	Money     *int64  `json:"money"`
	Credits   *int    `json:"credits"`
	StartDate *int64  `json:"start_date"`
	EndDate   *int64  `json:"end_date"`
	SaleBy    *string `json:"sale_by"`
}

type changeContractStatusRequest struct {
	ContractID string `json:"contract_id"`
	Status     string `json:"status"`
}

func (h *ContractHandler) CreateContract(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "create contract", err)
	}

	var req createContractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if validationErr := validateCreateContractRequest(req); validationErr != "" {
		return badRequest(c, validationErr)
	}

	detail, err := h.contracts.CreateContract(c.Context(), actor, services.CreateContractInput{
		Kind:        req.Kind,
		Money:       *req.Money,
		Credits:     req.Credits,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		PurchasedBy: req.PurchasedBy,
	})
	if err != nil {
		return writeError(c, "create contract", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"contract": detail})
}

func (h *ContractHandler) ListContracts(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "list contracts", err)
	}

	page, limit := pageParams(c.Query("page"), c.Query("limit"))
	contracts, total, err := h.contracts.ListContracts(c.Context(), actor, page, limit)
	if err != nil {
		return writeError(c, "list contracts", err)
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}

	return c.JSON(fiber.Map{
		"contracts":  contracts,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ContractHandler) GetContract(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "get contract", err)
	}

	contractID := strings.TrimSpace(c.Params("id"))
	if contractID == "" {
		return badRequest(c, "Invalid contract id")
	}

	detail, err := h.contracts.GetContract(c.Context(), actor, contractID)
	if err != nil {
		return writeError(c, "get contract", err)
	}

	return c.JSON(fiber.Map{"contract": detail})
}

func (h *ContractHandler) UpdateContract(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "update contract", err)
	}

	contractID := strings.TrimSpace(c.Params("id"))
	if contractID == "" {
		return badRequest(c, "Invalid contract id")
	}

	var req updateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	detail, err := h.contracts.UpdateContract(c.Context(), actor, contractID, services.UpdateContractInput{
		Kind:      req.Kind,
		Money:     req.Money,
		Credits:   req.Credits,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		SaleBy:    req.SaleBy,
	})
	if err != nil {
		return writeError(c, "update contract", err)
	}

	return c.JSON(fiber.Map{"contract": detail})
}

func (h *ContractHandler) ChangeContractStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, "change contract status", err)
	}

	var req changeContractStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.ContractID) == "" {
		return badRequest(c, "contract_id is required")
	}
	if strings.TrimSpace(req.Status) == "" {
		return badRequest(c, "status is required")
	}

	detail, err := h.statuses.ChangeContractStatus(c.Context(), actor, strings.TrimSpace(req.ContractID), req.Status)
	if err != nil {
		return writeError(c, "change contract status", err)
	}

	return c.JSON(fiber.Map{"contract": detail})
}
