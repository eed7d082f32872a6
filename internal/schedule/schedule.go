// Package schedule detects trainer double-booking and applies lazy session expiry.
package schedule

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/lifecycle"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/timeslot"
)

type sessionStore interface {
	ListByTrainerAndDate(ctx context.Context, trainerID string, date int64) ([]models.Session, error)
	ExpireMany(ctx context.Context, ids []string) ([]string, error)
}

// Partition splits a trainer's sessions for one day. Expired holds sessions
// that must be written as EXPIRED; Live holds those that still occupy time.
type Partition struct {
	Expired []models.Session
	Live    []models.Session
}

// DetectExpired is the pure half of lazy expiry. Canceled and expired
// sessions appear in neither list, and neither does a PT_CHECKED_IN session
// whose end has passed: it keeps its status but no longer occupies time.
func DetectExpired(sessions []models.Session, now time.Time) Partition {
	var p Partition
	for _, session := range sessions {
		switch {
		case lifecycle.ShouldExpireSession(session, now):
			p.Expired = append(p.Expired, session)
		case session.Status.Terminal(), lifecycle.SessionExpired(session, now):
		default:
			p.Live = append(p.Live, session)
		}
	}
	return p
}

// Occupancy is a trainer's day after lazy expiry has been persisted.
type Occupancy struct {
	Live       []models.Session
	ExpiredIDs []string
}

func (o Occupancy) Slots() []models.OccupiedSlot {
	slots := make([]models.OccupiedSlot, 0, len(o.Live))
	for _, session := range o.Live {
		slots = append(slots, models.OccupiedSlot{From: session.From, To: session.To})
	}
	slices.SortFunc(slots, func(a, b models.OccupiedSlot) int {
		return cmp.Compare(a.From, b.From)
	})
	return slots
}

// Conflict returns a *apperr.ConflictError for the first live session that
// overlaps [from,to). excludeSessionID skips the session being rescheduled.
func (o Occupancy) Conflict(from, to int, excludeSessionID string) error {
	for _, session := range o.Live {
		if excludeSessionID != "" && session.ID == excludeSessionID {
			continue
		}
		if timeslot.Overlap(from, to, session.From, session.To) {
			return &apperr.ConflictError{SessionID: session.ID, From: session.From, To: session.To}
		}
	}
	return nil
}

type Checker struct {
	sessions  sessionStore
	onExpired func(ids []string)
}

// NewChecker builds a checker over sessions. onExpired, when non-nil, receives
// the ids each Load moved to EXPIRED.
func NewChecker(sessions sessionStore, onExpired func(ids []string)) *Checker {
	return &Checker{sessions: sessions, onExpired: onExpired}
}

// Load queries the trainer's sessions on date and persists EXPIRED for the
// ones whose end has passed.
func (c *Checker) Load(ctx context.Context, trainerID string, date int64, now time.Time) (Occupancy, error) {
	sessions, err := c.sessions.ListByTrainerAndDate(ctx, trainerID, date)
	if err != nil {
		return Occupancy{}, fmt.Errorf("list trainer sessions: %w", err)
	}

	partition := DetectExpired(sessions, now)
	occupancy := Occupancy{Live: partition.Live}
	if len(partition.Expired) == 0 {
		return occupancy, nil
	}

	ids := make([]string, 0, len(partition.Expired))
	for _, session := range partition.Expired {
		ids = append(ids, session.ID)
	}
	expired, err := c.sessions.ExpireMany(ctx, ids)
	if err != nil {
		return Occupancy{}, fmt.Errorf("expire sessions: %w", err)
	}
	occupancy.ExpiredIDs = expired
	if c.onExpired != nil && len(expired) > 0 {
		c.onExpired(expired)
	}
	return occupancy, nil
}

// OccupiedSlots lists the live intervals of a trainer's day, sorted by start.
func (c *Checker) OccupiedSlots(ctx context.Context, trainerID string, date int64, now time.Time) ([]models.OccupiedSlot, error) {
	occupancy, err := c.Load(ctx, trainerID, date, now)
	if err != nil {
		return nil, err
	}
	return occupancy.Slots(), nil
}

// CheckConflict fails with a *apperr.ConflictError when [from,to) overlaps a
// live session other than excludeSessionID.
func (c *Checker) CheckConflict(
	ctx context.Context,
	trainerID string,
	date int64,
	from, to int,
	excludeSessionID string,
	now time.Time,
) error {
	occupancy, err := c.Load(ctx, trainerID, date, now)
	if err != nil {
		return err
	}
	return occupancy.Conflict(from, to, excludeSessionID)
}
