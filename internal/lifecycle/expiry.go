package lifecycle

import (
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/timeslot"
)

func ContractExpired(contract models.Contract, now time.Time) bool {
	return contract.EndDate != nil && time.UnixMilli(*contract.EndDate).Before(now)
}

func SessionExpired(session models.Session, now time.Time) bool {
	return timeslot.EndOf(session.Date, session.To).Before(now)
}

// ShouldExpireContract reports whether a lazy expiry write applies.
// Canceled and expired contracts keep their status.
func ShouldExpireContract(contract models.Contract, now time.Time) bool {
	return ContractExpired(contract, now) && !contract.Status.Terminal()
}

// ShouldExpireSession reports whether a lazy expiry write applies. Completed
// sessions keep PT_CHECKED_IN so their credit stays counted.
func ShouldExpireSession(session models.Session, now time.Time) bool {
	if session.Status.Terminal() || session.Status == models.SessionPTCheckedIn {
		return false
	}
	return SessionExpired(session, now)
}
