package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

const uniqueViolation = "23505"

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ActorID,
		&profile.Role,
		&profile.FirstName,
		&profile.LastName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, input ports.CreateProfileInput) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (actor_id, role, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING actor_id, role, first_name, last_name, created_at, updated_at
	`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, input.ActorID, input.Role, input.FirstName, input.LastName))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.Invalid("profile already exists")
		}
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) GetByActorID(ctx context.Context, actorID string) (*models.Profile, error) {
	query := `
		SELECT actor_id, role, first_name, last_name, created_at, updated_at
		FROM profiles
		WHERE actor_id = $1
	`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, actorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("profile")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.Profile, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := `
		SELECT actor_id, role, first_name, last_name, created_at, updated_at
		FROM profiles
		WHERE role = $1
		ORDER BY first_name NULLS LAST, actor_id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, role, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, total, nil
}

// UpdateNames overwrites the names that are non-nil.
func (r *ProfileRepository) UpdateNames(ctx context.Context, actorID string, firstName, lastName *string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			updated_at = NOW()
		WHERE actor_id = $1
		RETURNING actor_id, role, first_name, last_name, created_at, updated_at
	`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, actorID, firstName, lastName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("profile")
		}
		return nil, fmt.Errorf("update profile names: %w", err)
	}
	return profile, nil
}
