// Package ledger derives credit usage of a contract from its sessions.
// Nothing is reserved: a credit is consumed only when a session reaches PT_CHECKED_IN.
package ledger

import "github.com/saeid-a/StudioBookingBack/internal/models"

func UsedCredits(sessions []models.Session) int {
	used := 0
	for _, session := range sessions {
		if session.Status == models.SessionPTCheckedIn {
			used++
		}
	}
	return used
}

// RemainingCredits returns credits minus used. The second result is false
// when the contract has no credit bound.
func RemainingCredits(contract models.Contract, used int) (int, bool) {
	if contract.Credits == nil {
		return 0, false
	}
	return *contract.Credits - used, true
}

func HasAvailableCredit(contract models.Contract, used int) bool {
	if contract.Kind == models.ContractPTMonthly || contract.Credits == nil {
		return true
	}
	return used < *contract.Credits
}

func Summarize(contract models.Contract, sessions []models.Session) models.CreditSummary {
	used := UsedCredits(sessions)
	summary := models.CreditSummary{
		Used:      used,
		Available: HasAvailableCredit(contract, used),
	}
	if remaining, bounded := RemainingCredits(contract, used); bounded {
		summary.Remaining = &remaining
	}
	return summary
}
