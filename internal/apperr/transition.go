package apperr

import "fmt"

// TransitionError describes a status change the transition tables do not allow.
type TransitionError struct {
	Role string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("role %s cannot change status from %s to %s", e.Role, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// ConflictError names the existing booking that overlaps a requested interval.
// From and To are minutes from midnight.
type ConflictError struct {
	SessionID string
	From      int
	To        int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"time conflict: the trainer already has a session from %02d:%02d to %02d:%02d on this date",
		e.From/60, e.From%60, e.To/60, e.To%60,
	)
}

func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}
