package app

import (
	"strings"
	"time"
)

// Input validation lives at the persistence boundary; the pure engine and
// aggregator assume well-formed arguments.

func validateSessionType(t *SessionType) error {
	if strings.TrimSpace(t.Name) == "" {
		return invalidField("name", "must not be empty")
	}
	if t.Priority < 1 || t.Priority > 5 {
		return invalidField("priority", "must be between 1 and 5")
	}
	return nil
}

func validateAvailabilityWindow(w *AvailabilityWindow) error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return invalidField("day_of_week", "must be between 0 (Sunday) and 6")
	}
	if !validHHMM(w.StartTime) {
		return invalidField("start_time", "must be HH:mm")
	}
	if !validHHMM(w.EndTime) {
		return invalidField("end_time", "must be HH:mm")
	}
	// Safe as a string comparison once both sides passed the HH:mm check.
	if w.StartTime >= w.EndTime {
		return invalidField("start_time", "must be before end_time")
	}
	return nil
}

func validateSessionTimes(start, end time.Time) error {
	if !end.After(start) {
		return invalidField("start_time", "must be before end_time")
	}
	return nil
}
