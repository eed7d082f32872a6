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
	"github.com/saeid-a/StudioBookingBack/internal/schedule"
	"github.com/saeid-a/StudioBookingBack/internal/timeslot"
)

// BookingService creates sessions and drives contract and session status
// changes. Every write runs in one store transaction behind the contract
// and trainer-day write fences.
type BookingService struct {
	store     ports.UnitOfWork
	publisher ports.EventPublisher
	location  *time.Location
	now       func() time.Time
}

// NewBookingService builds the orchestrator. studio is the time zone whose
// midnights mark session days; nil means UTC.
func NewBookingService(store ports.UnitOfWork, publisher ports.EventPublisher, studio *time.Location) *BookingService {
	if studio == nil {
		studio = time.UTC
	}
	return &BookingService{
		store:     store,
		publisher: publisher,
		location:  studio,
		now:       time.Now,
	}
}

type CreateSessionInput struct {
	ContractID string
	Date       int64
	From       int
	To         int
}

// RescheduleSessionInput fields left nil keep their current value.
type RescheduleSessionInput struct {
	Date *int64
	From *int
	To   *int
}

// inTx runs fn in one transaction and publishes its events after commit.
// Rule rejections still commit so lazy expiry writes made before the
// rejection persist; any other error rolls back.
func (s *BookingService) inTx(ctx context.Context, events *eventBatch, fn func(tx ports.Tx) error) error {
	var rejection error
	err := s.store.InTx(ctx, func(tx ports.Tx) error {
		err := fn(tx)
		if apperr.IsRule(err) {
			rejection = err
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	publishAll(ctx, s.publisher, events)
	return rejection
}

func (s *BookingService) CreateSession(
	ctx context.Context,
	actor models.Actor,
	input CreateSessionInput,
) (detail *models.SessionDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("create_session", started, err) }(time.Now())

	if strings.TrimSpace(input.ContractID) == "" {
		return nil, apperr.Invalid("contract_id is required")
	}
	if err := timeslot.ValidateDate(input.Date, s.location); err != nil {
		return nil, err
	}
	if err := timeslot.ValidateBounds(input.From, input.To); err != nil {
		return nil, err
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		if err := tx.LockContract(ctx, input.ContractID); err != nil {
			return err
		}
		contract, err := tx.Contracts().GetByID(ctx, input.ContractID)
		if err != nil {
			return err
		}
		if err := authorizeBooking(actor, contract); err != nil {
			return err
		}

		if err := timeslot.ValidateRange(input.From, input.To); err != nil {
			return err
		}
		if err := requireActiveContract(ctx, tx, events, contract, now); err != nil {
			return err
		}
		if err := requireCredit(ctx, tx, contract); err != nil {
			return err
		}
		if err := checkTrainerDay(ctx, tx, events, contract.SaleBy, input.Date, input.From, input.To, "", now); err != nil {
			return err
		}

		session, err := tx.Sessions().Create(ctx, ports.CreateSessionInput{
			ContractID: contract.ID,
			CreatedBy:  actor.ID,
			TeachBy:    contract.SaleBy,
			Date:       input.Date,
			From:       input.From,
			To:         input.To,
		})
		if err != nil {
			return err
		}
		events.add(models.EventSessionCreated, session.ID, string(session.Status))
		detail = sessionDetail(actor, session, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *BookingService) RescheduleSession(
	ctx context.Context,
	actor models.Actor,
	sessionID string,
	input RescheduleSessionInput,
) (detail *models.SessionDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("reschedule_session", started, err) }(time.Now())

	if input.Date != nil {
		if err := timeslot.ValidateDate(*input.Date, s.location); err != nil {
			return nil, err
		}
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		session, contract, err := loadSessionForWrite(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := authorizeReschedule(actor, session, contract); err != nil {
			return err
		}
		if err := requireLiveSession(ctx, tx, events, session, now); err != nil {
			return err
		}
		if session.Status.Terminal() || session.Status == models.SessionPTCheckedIn {
			return apperr.Invalid("a %s session can no longer be rescheduled", session.Status)
		}

		next := ports.ScheduleInput{Date: session.Date, From: session.From, To: session.To}
		if input.Date != nil {
			next.Date = *input.Date
		}
		if input.From != nil {
			next.From = *input.From
		}
		if input.To != nil {
			next.To = *input.To
		}
		if next.Date == session.Date && next.From == session.From && next.To == session.To {
			detail = sessionDetail(actor, session, contract)
			return nil
		}

		if err := timeslot.ValidateRange(next.From, next.To); err != nil {
			return err
		}
		if err := requireActiveContract(ctx, tx, events, contract, now); err != nil {
			return err
		}
		if err := checkTrainerDay(ctx, tx, events, session.TeachBy, next.Date, next.From, next.To, session.ID, now); err != nil {
			return err
		}

		updated, err := tx.Sessions().UpdateSchedule(ctx, session.ID, next)
		if err != nil {
			return err
		}
		events.add(models.EventSessionRescheduled, updated.ID, string(updated.Status))
		detail = sessionDetail(actor, updated, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *BookingService) ChangeSessionStatus(
	ctx context.Context,
	actor models.Actor,
	sessionID string,
	requestedStatus string,
) (detail *models.SessionDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("change_session_status", started, err) }(time.Now())

	if !actor.Role.Valid() {
		return nil, apperr.ErrUnknownRole
	}
	to := models.SessionStatus(normalizeStatus(requestedStatus))
	if !to.Valid() {
		return nil, apperr.Invalid("unknown session status %q", requestedStatus)
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		session, contract, err := loadSessionForWrite(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := requireLiveSession(ctx, tx, events, session, now); err != nil {
			return err
		}
		if err := lifecycle.CheckSessionTransition(actor, *session, *contract, to, now); err != nil {
			return err
		}
		if to == models.SessionPTCheckedIn && session.Status != models.SessionPTCheckedIn {
			if err := requireCredit(ctx, tx, contract); err != nil {
				return err
			}
		}
		// Reviving a canceled or expired session puts it back on the trainer's calendar.
		if session.Status.Terminal() && !to.Terminal() {
			if err := checkTrainerDay(ctx, tx, events, session.TeachBy, session.Date, session.From, session.To, session.ID, now); err != nil {
				return err
			}
		}

		updated, err := tx.Sessions().UpdateStatusIfCurrent(ctx, session.ID, session.Status, to)
		if err != nil {
			if errors.Is(err, ports.ErrStaleWrite) {
				return &apperr.TransitionError{Role: string(actor.Role), From: string(session.Status), To: string(to)}
			}
			return err
		}
		events.add(models.EventSessionStatusChanged, updated.ID, string(updated.Status))
		detail = sessionDetail(actor, updated, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *BookingService) ChangeContractStatus(
	ctx context.Context,
	actor models.Actor,
	contractID string,
	requestedStatus string,
) (detail *models.ContractDetail, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("change_contract_status", started, err) }(time.Now())

	if !actor.Role.Valid() {
		return nil, apperr.ErrUnknownRole
	}
	to := models.ContractStatus(normalizeStatus(requestedStatus))
	if !to.Valid() {
		return nil, apperr.Invalid("unknown contract status %q", requestedStatus)
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		if err := tx.LockContract(ctx, contractID); err != nil {
			return err
		}
		contract, err := tx.Contracts().GetByID(ctx, contractID)
		if err != nil {
			return err
		}
		if lifecycle.ContractExpired(*contract, now) {
			if err := expireContract(ctx, tx, events, contract, now); err != nil {
				return err
			}
			return apperr.ErrExpiredContract
		}
		if err := lifecycle.CheckContractTransition(actor, *contract, to, now); err != nil {
			return err
		}

		updated, err := tx.Contracts().UpdateStatusIfCurrent(ctx, contract.ID, contract.Status, to)
		if err != nil {
			if errors.Is(err, ports.ErrStaleWrite) {
				return &apperr.TransitionError{Role: string(actor.Role), From: string(contract.Status), To: string(to)}
			}
			return err
		}
		events.add(models.EventContractStatusChanged, updated.ID, string(updated.Status))

		sessions, err := tx.Sessions().ListByContract(ctx, updated.ID)
		if err != nil {
			return err
		}
		detail = contractDetail(actor, updated, sessions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// OccupiedSlots lists the intervals a trainer is booked for on date.
func (s *BookingService) OccupiedSlots(
	ctx context.Context,
	trainerID string,
	date int64,
) (slots []models.OccupiedSlot, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("occupied_slots", started, err) }(time.Now())

	if strings.TrimSpace(trainerID) == "" {
		return nil, apperr.Invalid("trainer_id is required")
	}
	if date <= 0 {
		return nil, apperr.Invalid("date is required")
	}

	now := s.now()
	events := newEventBatch(models.Actor{}, now)
	slots, err = schedule.NewChecker(s.store.Sessions(), events.sessionsExpired).OccupiedSlots(ctx, trainerID, date, now)
	if err != nil {
		return nil, err
	}
	publishAll(ctx, s.publisher, events)
	return slots, nil
}

func (s *BookingService) GetSession(
	ctx context.Context,
	actor models.Actor,
	sessionID string,
) (detail *models.SessionDetail, err error) {
	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		session, err := tx.Sessions().GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		contract, err := tx.Contracts().GetByID(ctx, session.ContractID)
		if err != nil {
			return err
		}
		if err := authorizeContractView(actor, contract); err != nil {
			return err
		}
		if lifecycle.ShouldExpireSession(*session, now) {
			expired, err := expireSessions(ctx, tx, events, []models.Session{*session})
			if err != nil {
				return err
			}
			if len(expired) == 1 {
				session.Status = models.SessionExpired
			}
		}
		detail = sessionDetail(actor, session, contract)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListContractSessions returns every session booked on a contract, newest first.
func (s *BookingService) ListContractSessions(
	ctx context.Context,
	actor models.Actor,
	contractID string,
) (details []models.SessionDetail, err error) {
	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		contract, err := tx.Contracts().GetByID(ctx, contractID)
		if err != nil {
			return err
		}
		if err := authorizeContractView(actor, contract); err != nil {
			return err
		}
		sessions, err := tx.Sessions().ListByContract(ctx, contract.ID)
		if err != nil {
			return err
		}

		partition := schedule.DetectExpired(sessions, now)
		expired, err := expireSessions(ctx, tx, events, partition.Expired)
		if err != nil {
			return err
		}

		details = make([]models.SessionDetail, 0, len(sessions))
		for i := range sessions {
			if _, ok := expired[sessions[i].ID]; ok {
				sessions[i].Status = models.SessionExpired
			}
			details = append(details, *sessionDetail(actor, &sessions[i], nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

type ListSessionsInput struct {
	Statuses  []string
	StartDate *int64
	EndDate   *int64
	Page      int
	Limit     int
}

// ListSessions is the session history, scoped by role: admins see every
// session, staff the ones they teach, customers those on contracts they
// purchased. Sessions on the page whose end has passed are expired.
func (s *BookingService) ListSessions(
	ctx context.Context,
	actor models.Actor,
	input ListSessionsInput,
) (details []models.SessionDetail, total int, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("list_sessions", started, err) }(time.Now())

	filter := ports.SessionListFilter{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Limit:     input.Limit,
		Offset:    pageOffset(input.Page, input.Limit),
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleStaff:
		filter.TeachBy = actor.ID
	case models.RoleCustomer:
		filter.PurchasedBy = actor.ID
	default:
		return nil, 0, apperr.ErrUnknownRole
	}
	for _, raw := range input.Statuses {
		status := models.SessionStatus(normalizeStatus(raw))
		if !status.Valid() {
			return nil, 0, apperr.Invalid("unknown session status %q", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if input.StartDate != nil && input.EndDate != nil && *input.EndDate < *input.StartDate {
		return nil, 0, apperr.Invalid("end_date must not be before start_date")
	}

	now := s.now()
	events := newEventBatch(actor, now)
	err = s.inTx(ctx, events, func(tx ports.Tx) error {
		sessions, count, err := tx.Sessions().List(ctx, filter)
		if err != nil {
			return err
		}
		expired, err := expireSessions(ctx, tx, events, schedule.DetectExpired(sessions, now).Expired)
		if err != nil {
			return err
		}

		contracts := map[string]*models.Contract{}
		details = make([]models.SessionDetail, 0, len(sessions))
		for i := range sessions {
			if _, ok := expired[sessions[i].ID]; ok {
				sessions[i].Status = models.SessionExpired
			}
			contract, ok := contracts[sessions[i].ContractID]
			if !ok {
				contract, err = tx.Contracts().GetByID(ctx, sessions[i].ContractID)
				if err != nil {
					return err
				}
				contracts[contract.ID] = contract
			}
			details = append(details, *sessionDetail(actor, &sessions[i], contract))
		}
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func loadSessionForWrite(ctx context.Context, tx ports.Tx, sessionID string) (*models.Session, *models.Contract, error) {
	session, err := tx.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.LockContract(ctx, session.ContractID); err != nil {
		return nil, nil, err
	}
	// Re-read under the fence so the status used for compare-and-set is current.
	session, err = tx.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	contract, err := tx.Contracts().GetByID(ctx, session.ContractID)
	if err != nil {
		return nil, nil, err
	}
	return session, contract, nil
}

// requireActiveContract applies lazy contract expiry, then demands ACTIVE.
func requireActiveContract(ctx context.Context, tx ports.Tx, events *eventBatch, contract *models.Contract, now time.Time) error {
	if lifecycle.ContractExpired(*contract, now) {
		if err := expireContract(ctx, tx, events, contract, now); err != nil {
			return err
		}
		return apperr.ErrExpiredContract
	}
	if contract.Status != models.ContractActive {
		return apperr.ErrContractNotActive
	}
	return nil
}

// requireLiveSession applies lazy session expiry. A session whose end has
// passed rejects every write.
func requireLiveSession(ctx context.Context, tx ports.Tx, events *eventBatch, session *models.Session, now time.Time) error {
	if !lifecycle.SessionExpired(*session, now) {
		return nil
	}
	if lifecycle.ShouldExpireSession(*session, now) {
		if _, err := expireSessions(ctx, tx, events, []models.Session{*session}); err != nil {
			return err
		}
	}
	return apperr.ErrExpiredSession
}

func requireCredit(ctx context.Context, tx ports.Tx, contract *models.Contract) error {
	sessions, err := tx.Sessions().ListByContract(ctx, contract.ID)
	if err != nil {
		return err
	}
	if !ledger.HasAvailableCredit(*contract, ledger.UsedCredits(sessions)) {
		return apperr.ErrNoCreditsAvailable
	}
	return nil
}

func checkTrainerDay(
	ctx context.Context,
	tx ports.Tx,
	events *eventBatch,
	trainerID string,
	date int64,
	from, to int,
	excludeSessionID string,
	now time.Time,
) error {
	if err := tx.LockTrainerDay(ctx, trainerID, date); err != nil {
		return err
	}
	checker := schedule.NewChecker(tx.Sessions(), events.sessionsExpired)
	return checker.CheckConflict(ctx, trainerID, date, from, to, excludeSessionID, now)
}

func expireContract(ctx context.Context, tx ports.Tx, events *eventBatch, contract *models.Contract, now time.Time) error {
	if !lifecycle.ShouldExpireContract(*contract, now) {
		return nil
	}
	updated, err := tx.Contracts().UpdateStatusIfCurrent(ctx, contract.ID, contract.Status, models.ContractExpired)
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

func expireSessions(ctx context.Context, tx ports.Tx, events *eventBatch, sessions []models.Session) (map[string]struct{}, error) {
	if len(sessions) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}
	expiredIDs, err := tx.Sessions().ExpireMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	events.sessionsExpired(expiredIDs)

	expired := make(map[string]struct{}, len(expiredIDs))
	for _, id := range expiredIDs {
		expired[id] = struct{}{}
	}
	return expired, nil
}

func normalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

func sessionDetail(actor models.Actor, session *models.Session, contract *models.Contract) *models.SessionDetail {
	return &models.SessionDetail{
		Session:  *session,
		Contract: contract,
		Actions:  lifecycle.SessionActions(actor.Role, session.Status),
	}
}

func contractDetail(actor models.Actor, contract *models.Contract, sessions []models.Session) *models.ContractDetail {
	return &models.ContractDetail{
		Contract: *contract,
		Credit:   ledger.Summarize(*contract, sessions),
		Actions:  lifecycle.ContractActions(actor.Role, contract.Status),
	}
}
