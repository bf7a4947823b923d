package app

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced by the persistence layer. Handlers map these with
// errors.Is: validation -> 400, conflict -> 409, not found -> 404. The pure
// suggestion/stats functions never return errors.
var (
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("time conflict")
	ErrNotFound   = errors.New("not found")
)

func invalidField(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

func conflictWith(s Session) error {
	return fmt.Errorf("%w: overlaps session %s (%s - %s)",
		ErrConflict, s.ID, s.StartTime.Format("2006-01-02 15:04"), s.EndTime.Format("15:04"))
}
