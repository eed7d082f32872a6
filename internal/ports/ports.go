// Package ports declares the collaborators the booking services depend on.
package ports

import (
	"context"
	"errors"

	"github.com/saeid-a/StudioBookingBack/internal/models"
)

// ErrStaleWrite is returned by compare-and-set updates when the stored status
// no longer matches the expected one.
var ErrStaleWrite = errors.New("record changed concurrently")

type CreateContractInput struct {
	Kind        models.ContractKind
	Money       int64
	Credits     *int
	StartDate   *int64
	EndDate     *int64
	PurchasedBy string
	SaleBy      string
}

type ContractListFilter struct {
	SaleBy        string
	PurchasedBy   string
	ExcludeStatus []models.ContractStatus
	Limit         int
	Offset        int
}

// ContractFields are the editable columns of a contract. Nil keeps the stored value.
type ContractFields struct {
	Kind      *models.ContractKind
	Money     *int64
	Credits   *int
	StartDate *int64
	EndDate   *int64
	SaleBy    *string
}

// SessionListFilter scopes a session listing. PurchasedBy matches sessions on
// contracts bought by that actor. StartDate and EndDate bound the session day, inclusive.
type SessionListFilter struct {
	TeachBy     string
	PurchasedBy string
	Statuses    []models.SessionStatus
	StartDate   *int64
	EndDate     *int64
	Limit       int
	Offset      int
}

type CreateSessionInput struct {
	ContractID string
	CreatedBy  string
	TeachBy    string
	Date       int64
	From       int
	To         int
}

type ScheduleInput struct {
	Date int64
	From int
	To   int
}

type CreateProfileInput struct {
	ActorID   string
	Role      models.Role
	FirstName *string
	LastName  *string
}

type ContractRepository interface {
	GetByID(ctx context.Context, id string) (*models.Contract, error)
	Create(ctx context.Context, input CreateContractInput) (*models.Contract, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.ContractStatus) (*models.Contract, error)
	List(ctx context.Context, filter ContractListFilter) ([]models.Contract, int, error)
	Update(ctx context.Context, id string, fields ContractFields) (*models.Contract, error)
}

type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, input CreateSessionInput) (*models.Session, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, current, next models.SessionStatus) (*models.Session, error)
	UpdateSchedule(ctx context.Context, id string, input ScheduleInput) (*models.Session, error)
	ListByContract(ctx context.Context, contractID string) ([]models.Session, error)
	ListByTrainerAndDate(ctx context.Context, trainerID string, date int64) ([]models.Session, error)
	List(ctx context.Context, filter SessionListFilter) ([]models.Session, int, error)
	// ExpireMany moves the given sessions to EXPIRED unless they already left
	// the live statuses, and returns the ids actually updated.
	ExpireMany(ctx context.Context, ids []string) ([]string, error)
}

type ProfileRepository interface {
	GetByActorID(ctx context.Context, actorID string) (*models.Profile, error)
	Create(ctx context.Context, input CreateProfileInput) (*models.Profile, error)
	ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.Profile, int, error)
	UpdateNames(ctx context.Context, actorID string, firstName, lastName *string) (*models.Profile, error)
}

// Tx is one store transaction. The Lock methods are write fences held until
// the transaction ends.
type Tx interface {
	Contracts() ContractRepository
	Sessions() SessionRepository
	LockContract(ctx context.Context, contractID string) error
	LockTrainerDay(ctx context.Context, trainerID string, date int64) error
}

type UnitOfWork interface {
	Contracts() ContractRepository
	Sessions() SessionRepository
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}
