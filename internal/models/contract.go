package models

import "time"

type ContractKind string

const (
	ContractPT        ContractKind = "PT"
	ContractRehab     ContractKind = "REHAB"
	ContractPTMonthly ContractKind = "PT_MONTHLY"
)

func (k ContractKind) Valid() bool {
	switch k {
	case ContractPT, ContractRehab, ContractPTMonthly:
		return true
	default:
		return false
	}
}

type ContractStatus string

const (
	ContractNewlyCreated      ContractStatus = "NEWLY_CREATED"
	ContractCustomerReview    ContractStatus = "CUSTOMER_REVIEW"
	ContractCustomerConfirmed ContractStatus = "CUSTOMER_CONFIRMED"
	ContractActive            ContractStatus = "ACTIVE"
	ContractCanceled          ContractStatus = "CANCELED"
	ContractExpired           ContractStatus = "EXPIRED"
)

var ContractStatuses = []ContractStatus{
	ContractNewlyCreated,
	ContractCustomerReview,
	ContractCustomerConfirmed,
	ContractActive,
	ContractCanceled,
	ContractExpired,
}

func (s ContractStatus) Valid() bool {
	for _, status := range ContractStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s ContractStatus) Terminal() bool {
	return s == ContractCanceled || s == ContractExpired
}

// Contract is a purchased training package. StartDate and EndDate are Unix
// milliseconds. Credits is nil for unlimited packages.
type Contract struct {
	ID          string         `json:"id"`
	Kind        ContractKind   `json:"kind"`
	Status      ContractStatus `json:"status"`
	Money       int64          `json:"money"`
	Credits     *int           `json:"credits"`
	StartDate   *int64         `json:"start_date"`
	EndDate     *int64         `json:"end_date"`
	PurchasedBy string         `json:"purchased_by"`
	SaleBy      string         `json:"sale_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type CreditSummary struct {
	Used      int  `json:"used"`
	Remaining *int `json:"remaining"`
	Available bool `json:"available"`
}

type ContractDetail struct {
	Contract
	Credit  CreditSummary    `json:"credit"`
	Actions []ContractStatus `json:"actions"`
}
