package services

import (
	"context"
	"strings"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

type ProfileService struct {
	profiles ports.ProfileRepository
}

func NewProfileService(profiles ports.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

type CreateProfileInput struct {
	ActorID   string
	Role      string
	FirstName *string
	LastName  *string
}

// Resolve looks up the caller's role. It runs on every authenticated request.
func (s *ProfileService) Resolve(ctx context.Context, actorID string) (models.Actor, error) {
	profile, err := s.profiles.GetByActorID(ctx, actorID)
	if err != nil {
		return models.Actor{}, err
	}
	if !profile.Role.Valid() {
		return models.Actor{}, apperr.ErrUnknownRole
	}
	return profile.Actor(), nil
}

func (s *ProfileService) Me(ctx context.Context, actorID string) (*models.Profile, error) {
	return s.profiles.GetByActorID(ctx, actorID)
}

// Onboard creates the caller's own profile on first sign-in. Self-service
// profiles are always customers.
func (s *ProfileService) Onboard(ctx context.Context, actorID string, firstName, lastName *string) (*models.Profile, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return s.profiles.Create(ctx, ports.CreateProfileInput{
		ActorID:   actorID,
		Role:      models.RoleCustomer,
		FirstName: trimmed(firstName),
		LastName:  trimmed(lastName),
	})
}

// CreateProfile lets an admin register staff, admins, or customers.
func (s *ProfileService) CreateProfile(ctx context.Context, actor models.Actor, input CreateProfileInput) (*models.Profile, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("only admins can create profiles for others")
	}
	actorID := strings.TrimSpace(input.ActorID)
	if actorID == "" {
		return nil, apperr.Invalid("actor_id is required")
	}
	role := models.Role(normalizeStatus(input.Role))
	if !role.Valid() {
		return nil, apperr.Invalid("role must be one of ADMIN, STAFF, CUSTOMER")
	}
	return s.profiles.Create(ctx, ports.CreateProfileInput{
		ActorID:   actorID,
		Role:      role,
		FirstName: trimmed(input.FirstName),
		LastName:  trimmed(input.LastName),
	})
}

// UpdateNames edits the caller's own first and last name. Nil keeps a name.
func (s *ProfileService) UpdateNames(ctx context.Context, actor models.Actor, firstName, lastName *string) (*models.Profile, error) {
	if firstName == nil && lastName == nil {
		return nil, apperr.Invalid("no fields to update")
	}
	first, last := trimmed(firstName), trimmed(lastName)
	if (firstName != nil && first == nil) || (lastName != nil && last == nil) {
		return nil, apperr.Invalid("names cannot be blank")
	}
	return s.profiles.UpdateNames(ctx, actor.ID, first, last)
}

func (s *ProfileService) ListByRole(ctx context.Context, role string, page, limit int) ([]models.Profile, int, error) {
	r := models.Role(normalizeStatus(role))
	if !r.Valid() {
		return nil, 0, apperr.Invalid("role must be one of ADMIN, STAFF, CUSTOMER")
	}
	return s.profiles.ListByRole(ctx, r, limit, pageOffset(page, limit))
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
