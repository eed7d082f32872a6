package handlers

import (
	"strings"

	"github.com/saeid-a/StudioBookingBack/internal/timeslot"
)

func validateCreateSessionRequest(req createSessionRequest) string {
	if strings.TrimSpace(req.ContractID) == "" {
		return "contract_id is required"
	}
	if req.Date == nil || *req.Date <= 0 {
		return "date is required"
	}
	if req.From == nil {
		return "from is required"
	}
	if req.To == nil {
		return "to is required"
	}
	return validateMinutes(*req.From, *req.To)
}

func validateRescheduleRequest(req rescheduleSessionRequest) string {
	if req.Date == nil && req.From == nil && req.To == nil {
		return "at least one of date, from, to is required"
	}
	if req.Date != nil && *req.Date <= 0 {
		return "date must be a millisecond timestamp"
	}
	if req.From != nil && (*req.From < 0 || *req.From > timeslot.MinutesPerDay) {
		return "from must be between 0 and 1440"
	}
	if req.To != nil && (*req.To < 0 || *req.To > timeslot.MinutesPerDay) {
		return "to must be between 0 and 1440"
	}
	return ""
}

func validateMinutes(from, to int) string {
	if from < 0 || from > timeslot.MinutesPerDay {
		return "from must be between 0 and 1440"
	}
	if to < 0 || to > timeslot.MinutesPerDay {
		return "to must be between 0 and 1440"
	}
	return ""
}

func validateCreateContractRequest(req createContractRequest) string {
	if strings.TrimSpace(req.Kind) == "" {
		return "kind is required"
	}
	if req.Money == nil {
		return "money is required"
	}
	if *req.Money < 0 {
		return "money must be 0 or greater"
	}
	if strings.TrimSpace(req.PurchasedBy) == "" {
		return "purchased_by is required"
	}
	if req.Credits != nil && *req.Credits <= 0 {
		return "credits must be greater than 0"
	}
	return ""
}

func validateNames(firstName, lastName *string) string {
	if firstName != nil && strings.TrimSpace(*firstName) == "" {
		return "first_name must not be empty"
	}
	if lastName != nil && strings.TrimSpace(*lastName) == "" {
		return "last_name must not be empty"
	}
	return ""
}
