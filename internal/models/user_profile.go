package models

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleStaff    Role = "STAFF"
	RoleCustomer Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller. ID comes from the identity provider and
// Role from the caller's profile.
type Actor struct {
	ID   string
	Role Role
}

type Profile struct {
	ActorID   string    `json:"actor_id"`
	Role      Role      `json:"role"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Profile) Actor() Actor {
	return Actor{ID: p.ActorID, Role: p.Role}
}
