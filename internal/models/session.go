package models

import "time"

type SessionStatus string

const (
	SessionNewlyCreated  SessionStatus = "NEWLY_CREATED"
	SessionPTConfirmed   SessionStatus = "PT_CONFIRMED"
	SessionUserCheckedIn SessionStatus = "USER_CHECKED_IN"
	SessionPTCheckedIn   SessionStatus = "PT_CHECKED_IN"
	SessionCanceled      SessionStatus = "CANCELED"
	SessionExpired       SessionStatus = "EXPIRED"
)

var SessionStatuses = []SessionStatus{
	SessionNewlyCreated,
	SessionPTConfirmed,
	SessionUserCheckedIn,
	SessionPTCheckedIn,
	SessionCanceled,
	SessionExpired,
}

func (s SessionStatus) Valid() bool {
	for _, status := range SessionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Terminal statuses never move again except through an ADMIN override.
func (s SessionStatus) Terminal() bool {
	return s == SessionCanceled || s == SessionExpired
}

// Session is one booked time interval with a trainer, charged against a contract.
// Date is the day marker in Unix milliseconds; From and To are minutes from midnight.
type Session struct {
	ID         string        `json:"id"`
	ContractID string        `json:"contract_id"`
	CreatedBy  string        `json:"created_by"`
	TeachBy    string        `json:"teach_by"`
	Date       int64         `json:"date"`
	From       int           `json:"from"`
	To         int           `json:"to"`
	Status     SessionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type SessionDetail struct {
	Session
	Contract *Contract       `json:"contract,omitempty"`
	Actions  []SessionStatus `json:"actions"`
}

type OccupiedSlot struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type Slot struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label"`
	Past  bool   `json:"past,omitempty"`
}
