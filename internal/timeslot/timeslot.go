// Package timeslot models a trainer's day as minutes from midnight.
package timeslot

import (
	"fmt"
	"time"

	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
)

const (
	MinutesPerDay = 24 * 60
	PickerStep    = 30
	BookingStep   = 90
)

// Overlap reports whether [aFrom,aTo) and [bFrom,bTo) share any minute.
// Touching endpoints do not overlap.
func Overlap(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && aTo > bFrom
}

// ValidateBounds checks that both ends fall within one day.
func ValidateBounds(from, to int) error {
	if from < 0 || from > MinutesPerDay || to < 0 || to > MinutesPerDay {
		return apperr.Invalid("from and to must be between 0 and %d", MinutesPerDay)
	}
	return nil
}

func ValidateRange(from, to int) error {
	if err := ValidateBounds(from, to); err != nil {
		return err
	}
	if from >= to {
		return apperr.ErrInvalidTimeRange
	}
	return nil
}

// Slots enumerates back-to-back slots of step minutes that fit in one day.
func Slots(step int) []models.Slot {
	if step <= 0 || step > MinutesPerDay {
		return nil
	}
	slots := make([]models.Slot, 0, MinutesPerDay/step)
	for from := 0; from+step <= MinutesPerDay; from += step {
		to := from + step
		slots = append(slots, models.Slot{From: from, To: to, Label: FormatRange(from, to)})
	}
	return slots
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func FormatRange(from, to int) string {
	return FormatClock(from) + " - " + FormatClock(to)
}

// At returns the instant minutes after the day marker date (Unix milliseconds).
func At(date int64, minutes int) time.Time {
	return time.UnixMilli(date + int64(minutes)*int64(time.Minute/time.Millisecond))
}

// EndOf is the instant a session on date ending at minute to is over.
func EndOf(date int64, to int) time.Time {
	return At(date, to)
}

func IsSlotInPast(date int64, from int, now time.Time) bool {
	return At(date, from).Before(now)
}

// DayStart returns the day marker (Unix milliseconds at midnight in t's location) for t.
func DayStart(t time.Time) int64 {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).UnixMilli()
}

// ValidateDate checks that date is a day marker for midnight in loc.
func ValidateDate(date int64, loc *time.Location) error {
	if date <= 0 {
		return apperr.Invalid("date is required")
	}
	if DayStart(time.UnixMilli(date).In(loc)) != date {
		return apperr.Invalid("date must be midnight of the session day in %s", loc)
	}
	return nil
}

// MarkPast flags the slots of date whose start is before now.
func MarkPast(slots []models.Slot, date int64, now time.Time) []models.Slot {
	for i := range slots {
		slots[i].Past = IsSlotInPast(date, slots[i].From, now)
	}
	return slots
}
