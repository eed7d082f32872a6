// Package lifecycle holds the status transition tables for contracts and
// sessions and the predicates that guard them.
package lifecycle

import (
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
)

// ContractTransition is one allowed edge for a non-admin role. OwnerOnly rows
// require the actor to be the contract's purchaser.
type ContractTransition struct {
	Role      models.Role
	From      models.ContractStatus
	To        models.ContractStatus
	OwnerOnly bool
}

var contractTransitions = []ContractTransition{
	{Role: models.RoleStaff, From: models.ContractNewlyCreated, To: models.ContractCustomerReview},
	{Role: models.RoleStaff, From: models.ContractNewlyCreated, To: models.ContractCanceled},
	{Role: models.RoleStaff, From: models.ContractCustomerReview, To: models.ContractCanceled},
	{Role: models.RoleStaff, From: models.ContractCustomerConfirmed, To: models.ContractCanceled},

	{Role: models.RoleCustomer, From: models.ContractCustomerReview, To: models.ContractCustomerConfirmed, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.ContractCustomerConfirmed, To: models.ContractActive, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.ContractNewlyCreated, To: models.ContractCanceled, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.ContractCustomerReview, To: models.ContractCanceled, OwnerOnly: true},
	{Role: models.RoleCustomer, From: models.ContractCustomerConfirmed, To: models.ContractCanceled, OwnerOnly: true},
}

func ContractTransitionFor(role models.Role, from, to models.ContractStatus) (ContractTransition, bool) {
	for _, tr := range contractTransitions {
		if tr.Role == role && tr.From == from && tr.To == to {
			return tr, true
		}
	}
	return ContractTransition{}, false
}

// CheckContractTransition decides whether actor may move contract to status to.
// ADMIN may move any contract to any status.
func CheckContractTransition(actor models.Actor, contract models.Contract, to models.ContractStatus, now time.Time) error {
	if !actor.Role.Valid() {
		return apperr.ErrUnknownRole
	}
	if !to.Valid() {
		return apperr.Invalid("unknown contract status %q", to)
	}

	if actor.Role != models.RoleAdmin {
		tr, ok := ContractTransitionFor(actor.Role, contract.Status, to)
		if !ok {
			return &apperr.TransitionError{Role: string(actor.Role), From: string(contract.Status), To: string(to)}
		}
		if tr.OwnerOnly && contract.PurchasedBy != actor.ID {
			return apperr.ErrForbidden
		}
	}

	if to == models.ContractActive && ContractExpired(contract, now) {
		return apperr.ErrExpiredContract
	}
	return nil
}

// ContractActions lists the statuses role may request from status, in lifecycle order.
func ContractActions(role models.Role, status models.ContractStatus) []models.ContractStatus {
	actions := []models.ContractStatus{}
	for _, next := range models.ContractStatuses {
		if role == models.RoleAdmin {
			if next != status {
				actions = append(actions, next)
			}
			continue
		}
		if _, ok := ContractTransitionFor(role, status, next); ok {
			actions = append(actions, next)
		}
	}
	return actions
}

// CanViewContract hides contracts that are still being drafted from customers.
func CanViewContract(role models.Role, status models.ContractStatus) bool {
	if role == models.RoleCustomer {
		return status != models.ContractNewlyCreated
	}
	return role.Valid()
}
