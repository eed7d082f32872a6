package services

import (
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/lifecycle"
	"github.com/saeid-a/StudioBookingBack/internal/models"
)

// authorizeBooking: customers book only on contracts they purchased.
func authorizeBooking(actor models.Actor, contract *models.Contract) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleStaff:
		return nil
	case models.RoleCustomer:
		if contract.PurchasedBy != actor.ID {
			return apperr.Forbidden("you can only book sessions on your own contracts")
		}
		return nil
	default:
		return apperr.ErrUnknownRole
	}
}

// authorizeReschedule: staff may only move sessions they created.
func authorizeReschedule(actor models.Actor, session *models.Session, contract *models.Contract) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStaff:
		if session.CreatedBy != actor.ID {
			return apperr.Forbidden("staff can only reschedule sessions they created")
		}
		return nil
	case models.RoleCustomer:
		if contract.PurchasedBy != actor.ID {
			return apperr.Forbidden("you can only reschedule your own sessions")
		}
		return nil
	default:
		return apperr.ErrUnknownRole
	}
}

func authorizeContractView(actor models.Actor, contract *models.Contract) error {
	if !actor.Role.Valid() {
		return apperr.ErrUnknownRole
	}
	if !lifecycle.CanViewContract(actor.Role, contract.Status) {
		return apperr.NotFound("contract")
	}
	if actor.Role == models.RoleCustomer && contract.PurchasedBy != actor.ID {
		return apperr.ErrForbidden
	}
	return nil
}
