package lifecycle

import (
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
)

// SessionTransition is one allowed edge for a non-admin role. OwnerOnly rows
// require the actor to own the parent contract.
type SessionTransition struct {
	Role      models.Role
	From      models.SessionStatus
	To        models.SessionStatus
	OwnerOnly bool
}

var sessionTransitions = []SessionTransition{
	{Role: models.RoleStaff, From: models.SessionNewlyCreated, To: models.SessionPTConfirmed},
	{Role: models.RoleStaff, From: models.SessionUserCheckedIn, To: models.SessionPTCheckedIn},
	{Role: models.RoleStaff, From: models.SessionNewlyCreated, To: models.SessionCanceled},
	{Role: models.RoleStaff, From: models.SessionPTConfirmed, To: models.SessionCanceled},
	{Role: models.RoleStaff, From: models.SessionUserCheckedIn, To: models.SessionCanceled},

	{Role: models.RoleCustomer, From: models.SessionPTConfirmed, To: models.SessionUserCheckedIn, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.SessionNewlyCreated, To: models.SessionCanceled, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.SessionPTConfirmed, To: models.SessionCanceled, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.SessionUserCheckedIn, To: models.SessionCanceled, OwnerOnly: true},
}

func SessionTransitionFor(role models.Role, from, to models.SessionStatus) (SessionTransition, bool) {
	for _, tr := range sessionTransitions {
		if tr.Role == role && tr.From == from && tr.To == to {
			return tr, true
		}
	}
	return SessionTransition{}, false
}

// CheckSessionTransition decides whether actor may move session to status to.
// contract is the session's parent and decides ownership.
func CheckSessionTransition(actor models.Actor, session models.Session, contract models.Contract, to models.SessionStatus, now time.Time) error {
	if !actor.Role.Valid() {
		return apperr.ErrUnknownRole
	}
	if !to.Valid() {
		return apperr.Invalid("unknown session status %q", to)
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}

	tr, ok := SessionTransitionFor(actor.Role, session.Status, to)
	if !ok {
		return &apperr.TransitionError{Role: string(actor.Role), From: string(session.Status), To: string(to)}
	}
	if tr.OwnerOnly && contract.PurchasedBy != actor.ID {
		return apperr.ErrForbidden
	}
	return nil
}

func SessionActions(role models.Role, status models.SessionStatus) []models.SessionStatus {
	actions := []models.SessionStatus{}
	for _, next := range models.SessionStatuses {
		if role == models.RoleAdmin {
			if next != status {
				actions = append(actions, next)
			}
			continue
		}
		if _, ok := SessionTransitionFor(role, status, next); ok {
			actions = append(actions, next)
		}
	}
	return actions
}
