package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/ledger"
	"github.com/saeid-a/StudioBookingBack/internal/lifecycle"
	"github.com/saeid-a/StudioBookingBack/internal/metrics"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

type profileReader interface {
	GetByActorID(ctx context.Context, actorID string) (*models.Profile, error)
}

type ContractService struct {
	store     ports.UnitOfWork
	profiles  profileReader
	publisher ports.EventPublisher
	now       func() time.Time
}

func NewContractService(store ports.UnitOfWork, profiles profileReader, publisher ports.EventPublisher) *ContractService {
	return &ContractService{
		store:     store,
		profiles:  profiles,
		publisher: publisher,
		now:       time.Now,
	}
}

type CreateContractInput struct {
	Kind        string
	Money       int64
	Credits     *int
	StartDate   *int64
	EndDate     *int64
	PurchasedBy string
}

// CreateContract records a sale. The seller becomes the contract's trainer.
func (s *ContractService) CreateContract(
	ctx context.Context,
	actor models.Actor,
	input CreateContractInput,
) (detail *models.ContractDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("create_contract", started, err) }(time.Now())

	switch actor.Role {
	case models.RoleAdmin, models.RoleStaff:
	case models.RoleCustomer:
		return nil, apperr.Forbidden("only staff can create contracts")
	default:
		return nil, apperr.ErrUnknownRole
	}

	kind := models.ContractKind(normalizeStatus(input.Kind))
	if !kind.Valid() {
		return nil, apperr.Invalid("kind must be one of PT, REHAB, PT_MONTHLY")
	}
	if input.Money < 0 {
		return nil, apperr.Invalid("money must be 0 or greater")
	}
	if input.Credits != nil && *input.Credits <= 0 {
		return nil, apperr.Invalid("credits must be greater than 0")
	}
	if input.StartDate != nil && input.EndDate != nil && *input.EndDate <= *input.StartDate {
		return nil, apperr.Invalid("end_date must be after start_date")
	}
	purchasedBy := strings.TrimSpace(input.PurchasedBy)
	if purchasedBy == "" {
		return nil, apperr.Invalid("purchased_by is required")
	}

	purchaser, err := s.profiles.GetByActorID(ctx, purchasedBy)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("purchased_by must reference an existing customer")
		}
		return nil, err
	}
	if purchaser.Role != models.RoleCustomer {
		return nil, apperr.Invalid("purchased_by must reference a customer")
	}

	contract, err := s.store.Contracts().Create(ctx, ports.CreateContractInput{
		Kind:        kind,
		Money:       input.Money,
		Credits:     input.Credits,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		PurchasedBy: purchasedBy,
		SaleBy:      actor.ID,
	})
	if err != nil {
		return nil, err
	}

	events := newEventBatch(actor, s.now())
	events.add(models.EventContractCreated, contract.ID, string(contract.Status))
	publishAll(ctx, s.publisher, events)

	return contractDetail(actor, contract, nil), nil
}

// UpdateContractInput fields left nil keep their stored value. Status moves
// through ChangeContractStatus, never here.
type UpdateContractInput struct {
	Kind      *string
	Money     *int64
	Credits   *int
	StartDate *int64
	EndDate   *int64
	SaleBy    *string
}

func (in UpdateContractInput) empty() bool {
	return in.Kind == nil && in.Money == nil && in.Credits == nil &&
		in.StartDate == nil && in.EndDate == nil && in.SaleBy == nil
}

// UpdateContract lets an admin correct a contract's terms. The merged record
// must pass the same checks as a new sale, and credits cannot drop below
// what has already been used.
func (s *ContractService) UpdateContract(
	ctx context.Context,
	actor models.Actor,
	contractID string,
	input UpdateContractInput,
) (detail *models.ContractDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("update_contract", started, err) }(time.Now())

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStaff, models.RoleCustomer:
		return nil, apperr.Forbidden("only admins can edit contracts")
	default:
		return nil, apperr.ErrUnknownRole
	}
	if strings.TrimSpace(contractID) == "" {
		return nil, apperr.Invalid("contract_id is required")
	}
	if input.empty() {
		return nil, apperr.Invalid("no fields to update")
	}

	var fields ports.ContractFields
	if input.Kind != nil {
		kind := models.ContractKind(normalizeStatus(*input.Kind))
		if !kind.Valid() {
			return nil, apperr.Invalid("kind must be one of PT, REHAB, PT_MONTHLY")
		}
		fields.Kind = &kind
	}
	if input.Money != nil && *input.Money < 0 {
		return nil, apperr.Invalid("money must be 0 or greater")
	}
	if input.Credits != nil && *input.Credits <= 0 {
		return nil, apperr.Invalid("credits must be greater than 0")
	}
	fields.Money, fields.Credits = input.Money, input.Credits
	fields.StartDate, fields.EndDate = input.StartDate, input.EndDate
	if input.SaleBy != nil {
		saleBy := strings.TrimSpace(*input.SaleBy)
		seller, err := s.profiles.GetByActorID(ctx, saleBy)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Invalid("sale_by must reference an existing staff member")
			}
			return nil, err
		}
		if seller.Role != models.RoleStaff && seller.Role != models.RoleAdmin {
			return nil, apperr.Invalid("sale_by must reference staff or an admin")
		}
		fields.SaleBy = &saleBy
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.store.InTx(ctx, func(tx ports.Tx) error {
		if err := tx.LockContract(ctx, contractID); err != nil {
			return err
		}
		contract, err := tx.Contracts().GetByID(ctx, contractID)
		if err != nil {
			return err
		}

		start, end := contract.StartDate, contract.EndDate
		if fields.StartDate != nil {
			start = fields.StartDate
		}
		if fields.EndDate != nil {
			end = fields.EndDate
		}
		if start != nil && end != nil && *end <= *start {
			return apperr.Invalid("end_date must be after start_date")
		}

		sessions, err := tx.Sessions().ListByContract(ctx, contract.ID)
		if err != nil {
			return err
		}
		if used := ledger.UsedCredits(sessions); fields.Credits != nil && *fields.Credits < used {
			return apperr.Invalid("credits cannot be lower than the %d already used", used)
		}

		updated, err := tx.Contracts().Update(ctx, contract.ID, fields)
		if err != nil {
			return err
		}
		events.add(models.EventContractUpdated, updated.ID, string(updated.Status))
		detail = contractDetail(actor, updated, sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishAll(ctx, s.publisher, events)
	return detail, nil
}

// ListContracts is scoped by role: admins see everything, staff their own
// sales, customers their purchases once past drafting.
func (s *ContractService) ListContracts(
	ctx context.Context,
	actor models.Actor,
	page, limit int,
) ([]models.Contract, int, error) {
	filter := ports.ContractListFilter{Limit: limit, Offset: pageOffset(page, limit)}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStaff:
		filter.SaleBy = actor.ID
	case models.RoleCustomer:
		filter.PurchasedBy = actor.ID
		filter.ExcludeStatus = []models.ContractStatus{models.ContractNewlyCreated}
	default:
		return nil, 0, apperr.ErrUnknownRole
	}

	contracts, total, err := s.store.Contracts().List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	events := newEventBatch(actor, now)
	for i := range contracts {
		if err := s.expireIfEnded(ctx, events, &contracts[i], now); err != nil {
			return nil, 0, err
		}
	}
	publishAll(ctx, s.publisher, events)
	return contracts, total, nil
}

func (s *ContractService) GetContract(ctx context.Context, actor models.Actor, contractID string) (*models.ContractDetail, error) {
	contract, err := s.store.Contracts().GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := authorizeContractView(actor, contract); err != nil {
		return nil, err
	}

	now := s.now()
	events := newEventBatch(actor, now)
	if err := s.expireIfEnded(ctx, events, contract, now); err != nil {
		return nil, err
	}
	publishAll(ctx, s.publisher, events)

	sessions, err := s.store.Sessions().ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	return contractDetail(actor, contract, sessions), nil
}

func (s *ContractService) expireIfEnded(ctx context.Context, events *eventBatch, contract *models.Contract, now time.Time) error {
	if !lifecycle.ShouldExpireContract(*contract, now) {
		return nil
	}
	updated, err := s.store.Contracts().UpdateStatusIfCurrent(ctx, contract.ID, contract.Status, models.ContractExpired)
	if err != nil {
		if errors.Is(err, ports.ErrStaleWrite) {
			return nil
		}
		return err
	}
	*contract = *updated
	events.contractExpired(contract.ID)
	return nil
}

// maxPageOffset caps list offsets so huge page numbers cannot overflow.
const maxPageOffset = 1 << 31

func pageOffset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > maxPageOffset/limit {
		return maxPageOffset
	}
	return (page - 1) * limit
}
