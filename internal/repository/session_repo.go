package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/ports"
)

const sessionColumns = `id, contract_id, created_by, teach_by, session_date, from_minute, to_minute, status, created_at, updated_at`

const qualifiedSessionColumns = `s.id, s.contract_id, s.created_by, s.teach_by, s.session_date, s.from_minute, s.to_minute, s.status, s.created_at, s.updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ContractID,
		&session.CreatedBy,
		&session.TeachBy,
		&session.Date,
		&session.From,
		&session.To,
		&session.Status,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input ports.CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, contract_id, created_by, teach_by, session_date, from_minute, to_minute, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'NEWLY_CREATED')
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		input.ContractID,
		input.CreatedBy,
		input.TeachBy,
		input.Date,
		input.From,
		input.To,
	))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session")
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id string,
	current, next models.SessionStatus,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, id, current, next))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrStaleWrite
		}
		return nil, fmt.Errorf("update session status: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) UpdateSchedule(ctx context.Context, id string, input ports.ScheduleInput) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET session_date = $2, from_minute = $3, to_minute = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, id, input.Date, input.From, input.To))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session")
		}
		return nil, fmt.Errorf("update session schedule: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) ListByContract(ctx context.Context, contractID string) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE contract_id = $1
		ORDER BY session_date DESC, from_minute DESC
	`
	return r.list(ctx, query, contractID)
}

func (r *SessionRepository) ListByTrainerAndDate(ctx context.Context, trainerID string, date int64) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE teach_by = $1 AND session_date = $2
		ORDER BY from_minute ASC
	`
	return r.list(ctx, query, trainerID, date)
}

// List pages through sessions newest day first. A PurchasedBy filter joins
// the owning contract.
func (r *SessionRepository) List(ctx context.Context, filter ports.SessionListFilter) ([]models.Session, int, error) {
	args := []any{}
	whereParts := []string{"TRUE"}

	if filter.TeachBy != "" {
		args = append(args, filter.TeachBy)
		whereParts = append(whereParts, fmt.Sprintf("s.teach_by = $%d", len(args)))
	}
	if filter.PurchasedBy != "" {
		args = append(args, filter.PurchasedBy)
		whereParts = append(whereParts, fmt.Sprintf(
			"s.contract_id IN (SELECT id FROM contracts WHERE purchased_by = $%d)", len(args),
		))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		args = append(args, statuses)
		whereParts = append(whereParts, fmt.Sprintf("s.status = ANY($%d)", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		whereParts = append(whereParts, fmt.Sprintf("s.session_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		whereParts = append(whereParts, fmt.Sprintf("s.session_date <= $%d", len(args)))
	}
	where := strings.Join(whereParts, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM sessions s WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM sessions s WHERE %s ORDER BY s.session_date DESC, s.from_minute DESC LIMIT $%d OFFSET $%d`,
		qualifiedSessionColumns, where, len(args)-1, len(args),
	)
	sessions, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *SessionRepository) ExpireMany(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		UPDATE sessions
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE id = ANY($1) AND status IN ('NEWLY_CREATED', 'PT_CONFIRMED', 'USER_CHECKED_IN')
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("expire sessions: %w", err)
	}
	expired, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("expire sessions: %w", err)
	}
	return expired, nil
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
